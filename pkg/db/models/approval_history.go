package models

import (
	"time"

	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

// ApprovalHistory is one append-only workflow transition on a purchase order.
type ApprovalHistory struct {
	ID              int64                     `gorm:"column:id;primaryKey;autoIncrement"`
	PurchaseOrderID int64                     `gorm:"column:purchase_order_id;not null;index"`
	FromStatus      enums.PurchaseOrderStatus `gorm:"column:from_status;type:text;not null"`
	ToStatus        enums.PurchaseOrderStatus `gorm:"column:to_status;type:text;not null"`
	ActorID         int64                     `gorm:"column:actor_id;not null"`
	Comment         *string                   `gorm:"column:comment;type:text"`
	CreatedAt       time.Time                 `gorm:"column:created_at;autoCreateTime"`
}
