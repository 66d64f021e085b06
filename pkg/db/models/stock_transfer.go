package models

import "time"

// StockTransfer is the immutable record of a completed movement between
// locations. FromLocationID is nil for inbound receipts.
type StockTransfer struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ItemID         int64     `gorm:"column:item_id;not null;index"`
	FromLocationID *int64    `gorm:"column:from_location_id;index"`
	ToLocationID   int64     `gorm:"column:to_location_id;not null;index"`
	Quantity       int       `gorm:"column:quantity;not null"`
	Notes          *string   `gorm:"column:notes;type:text"`
	CreatedByID    int64     `gorm:"column:created_by_id;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
