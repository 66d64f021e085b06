package stockledger

import (
	"context"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a stock ledger repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindItem(ctx context.Context, itemID int64) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).Where("id = ?", itemID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindWarehouse(ctx context.Context, warehouseID int64) (*models.Warehouse, error) {
	var warehouse models.Warehouse
	if err := r.db.WithContext(ctx).Where("id = ?", warehouseID).First(&warehouse).Error; err != nil {
		return nil, err
	}
	return &warehouse, nil
}

func (r *repository) FindLocation(ctx context.Context, locationID int64) (*models.Location, error) {
	var location models.Location
	if err := r.db.WithContext(ctx).Where("id = ?", locationID).First(&location).Error; err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *repository) FindStockLocked(ctx context.Context, itemID, warehouseID int64) (*models.Stock, error) {
	var stock models.Stock
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("item_id = ? AND warehouse_id = ?", itemID, warehouseID).
		First(&stock).Error
	if err != nil {
		return nil, err
	}
	return &stock, nil
}

func (r *repository) CreateStock(ctx context.Context, stock *models.Stock) error {
	return r.db.WithContext(ctx).Create(stock).Error
}

func (r *repository) UpdateStockQuantity(ctx context.Context, stockID int64, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.Stock{}).
		Where("id = ?", stockID).
		Update("quantity", quantity).Error
}

func (r *repository) FindLocationStockLocked(ctx context.Context, itemID, locationID int64) (*models.StockLocation, error) {
	var stock models.StockLocation
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("item_id = ? AND location_id = ?", itemID, locationID).
		First(&stock).Error
	if err != nil {
		return nil, err
	}
	return &stock, nil
}

func (r *repository) CreateLocationStock(ctx context.Context, stock *models.StockLocation) error {
	return r.db.WithContext(ctx).Create(stock).Error
}

func (r *repository) UpdateLocationStockQuantity(ctx context.Context, stockLocationID int64, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.StockLocation{}).
		Where("id = ?", stockLocationID).
		Update("quantity", quantity).Error
}

func (r *repository) CreateTransfer(ctx context.Context, transfer *models.StockTransfer) error {
	return r.db.WithContext(ctx).Create(transfer).Error
}

func (r *repository) ListTransfers(ctx context.Context, input ListTransfersInput) ([]models.StockTransfer, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.StockTransfer{})
	if input.ItemID != nil {
		query = query.Where("item_id = ?", *input.ItemID)
	}
	if input.LocationID != nil {
		query = query.Where("from_location_id = ? OR to_location_id = ?", *input.LocationID, *input.LocationID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var transfers []models.StockTransfer
	err := query.
		Order("created_at DESC").
		Limit(input.Limit).
		Offset(input.Offset).
		Find(&transfers).Error
	if err != nil {
		return nil, 0, err
	}
	return transfers, total, nil
}
