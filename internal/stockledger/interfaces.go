package stockledger

import (
	"context"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository defines persistence operations for stock balances and transfers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindItem(ctx context.Context, itemID int64) (*models.Item, error)
	FindWarehouse(ctx context.Context, warehouseID int64) (*models.Warehouse, error)
	FindLocation(ctx context.Context, locationID int64) (*models.Location, error)
	FindStockLocked(ctx context.Context, itemID, warehouseID int64) (*models.Stock, error)
	CreateStock(ctx context.Context, stock *models.Stock) error
	UpdateStockQuantity(ctx context.Context, stockID int64, quantity int) error
	FindLocationStockLocked(ctx context.Context, itemID, locationID int64) (*models.StockLocation, error)
	CreateLocationStock(ctx context.Context, stock *models.StockLocation) error
	UpdateLocationStockQuantity(ctx context.Context, stockLocationID int64, quantity int) error
	CreateTransfer(ctx context.Context, transfer *models.StockTransfer) error
	ListTransfers(ctx context.Context, input ListTransfersInput) ([]models.StockTransfer, int64, error)
}

// LowStockNotifier alerts when an adjustment leaves an item at or below its
// reorder level. Implementations must never fail the caller.
type LowStockNotifier interface {
	LowStock(ctx context.Context, item models.Item, warehouse models.Warehouse, quantity int)
}
