package models

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockroomhq/stockroom-backend/pkg/types"
)

// Item is a catalog entry identified by its SKU. CustomData carries
// user-defined attributes whose schema lives in custom_fields.
type Item struct {
	ID           int64           `gorm:"column:id;primaryKey;autoIncrement"`
	SKU          string          `gorm:"column:sku;type:text;not null;uniqueIndex"`
	Name         string          `gorm:"column:name;type:text;not null"`
	Description  *string         `gorm:"column:description;type:text"`
	UnitPrice    decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null;default:0"`
	ReorderLevel int             `gorm:"column:reorder_level;not null;default:0"`
	CategoryID   *int64          `gorm:"column:category_id"`
	CustomData   types.JSONMap   `gorm:"column:custom_data;type:jsonb;serializer:json"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
