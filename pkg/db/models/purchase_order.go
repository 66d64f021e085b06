package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

// PurchaseOrder is the workflow-governed procurement document. Milestone
// timestamps are stamped exactly once per lifecycle pass and cleared when a
// rejected order returns to draft.
type PurchaseOrder struct {
	ID           int64                     `gorm:"column:id;primaryKey;autoIncrement"`
	PONumber     string                    `gorm:"column:po_number;type:text;not null;uniqueIndex"`
	SupplierID   int64                     `gorm:"column:supplier_id;not null;index"`
	WarehouseID  *int64                    `gorm:"column:warehouse_id"`
	Status       enums.PurchaseOrderStatus `gorm:"column:status;type:text;not null;default:'draft'"`
	TotalAmount  decimal.Decimal           `gorm:"column:total_amount;type:numeric(12,2);not null;default:0"`
	Notes        *string                   `gorm:"column:notes;type:text"`
	ExpectedDate *time.Time                `gorm:"column:expected_date"`
	RequestedBy  int64                     `gorm:"column:requested_by;not null"`
	ApprovedBy   *int64                    `gorm:"column:approved_by"`
	RejectedBy   *int64                    `gorm:"column:rejected_by"`
	SubmittedAt  *time.Time                `gorm:"column:submitted_at"`
	ApprovedAt   *time.Time                `gorm:"column:approved_at"`
	RejectedAt   *time.Time                `gorm:"column:rejected_at"`
	SentAt       *time.Time                `gorm:"column:sent_at"`
	DeliveredAt  *time.Time                `gorm:"column:delivered_at"`
	CreatedAt    time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
