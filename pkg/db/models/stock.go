package models

import "time"

// Stock tracks an item's quantity per warehouse. Quantity never goes
// negative.
type Stock struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ItemID      int64     `gorm:"column:item_id;not null;uniqueIndex:idx_stocks_item_warehouse"`
	WarehouseID int64     `gorm:"column:warehouse_id;not null;uniqueIndex:idx_stocks_item_warehouse"`
	Quantity    int       `gorm:"column:quantity;not null;default:0"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// StockLocation tracks an item's quantity at a specific location.
type StockLocation struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ItemID       int64     `gorm:"column:item_id;not null;uniqueIndex:idx_stock_locations_item_location"`
	LocationID   int64     `gorm:"column:location_id;not null;uniqueIndex:idx_stock_locations_item_location"`
	Quantity     int       `gorm:"column:quantity;not null;default:0"`
	MinThreshold int       `gorm:"column:min_threshold;not null;default:0"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
