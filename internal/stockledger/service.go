package stockledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/stockroomhq/stockroom-backend/internal/audit"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"gorm.io/gorm"
)

const (
	entityTypeStock         = "stock"
	entityTypeStockLocation = "stock_location"
	entityTypeStockTransfer = "stock_transfer"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines stock balance and movement operations.
type Service interface {
	AdjustStock(ctx context.Context, input AdjustInput) (*models.Stock, error)
	SetLocationStock(ctx context.Context, input SetLocationInput) (*models.StockLocation, error)
	Transfer(ctx context.Context, input TransferInput) (*models.StockTransfer, error)
	ListTransfers(ctx context.Context, input ListTransfersInput) (*TransferList, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	audits   audit.Recorder
	notifier LowStockNotifier
}

// NewService builds a stock ledger service with the required dependencies.
func NewService(repo Repository, tx txRunner, audits audit.Recorder, notifier LowStockNotifier) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stock ledger repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if audits == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("low stock notifier required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		audits:   audits,
		notifier: notifier,
	}, nil
}

func requireMutator(actorID int64, role enums.UserRole) error {
	if actorID <= 0 {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if role != enums.UserRoleAdmin && role != enums.UserRoleManager {
		return pkgerrors.New(pkgerrors.CodeForbidden, "role may not mutate stock")
	}
	return nil
}

func (s *service) AdjustStock(ctx context.Context, input AdjustInput) (*models.Stock, error) {
	if input.ItemID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if input.WarehouseID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "warehouse id required")
	}
	if input.Delta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delta must not be zero")
	}
	if err := requireMutator(input.ActorID, input.ActorRole); err != nil {
		return nil, err
	}

	var (
		result    models.Stock
		item      models.Item
		warehouse models.Warehouse
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		loadedItem, err := repo.FindItem(ctx, input.ItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
		}
		loadedWarehouse, err := repo.FindWarehouse(ctx, input.WarehouseID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "warehouse not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load warehouse")
		}

		stock, err := repo.FindStockLocked(ctx, input.ItemID, input.WarehouseID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if input.Delta < 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "adjustment would drive stock negative")
			}
			stock = &models.Stock{
				ItemID:      input.ItemID,
				WarehouseID: input.WarehouseID,
				Quantity:    input.Delta,
			}
			if err := repo.CreateStock(ctx, stock); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stock row")
			}
		case err != nil:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load stock row")
		default:
			newQty := stock.Quantity + input.Delta
			if newQty < 0 {
				return pkgerrors.
					New(pkgerrors.CodeValidation, "adjustment would drive stock negative").
					WithDetails(map[string]any{"available": stock.Quantity})
			}
			if err := repo.UpdateStockQuantity(ctx, stock.ID, newQty); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock quantity")
			}
			stock.Quantity = newQty
		}

		if err := s.audits.Record(ctx, tx, audit.Entry{
			ActorID:    input.ActorID,
			Action:     enums.AuditActionStockAdjustment,
			EntityType: entityTypeStock,
			EntityID:   input.ItemID,
			Details:    fmt.Sprintf("adjusted %s by %+d at warehouse %d", loadedItem.SKU, input.Delta, input.WarehouseID),
		}); err != nil {
			return err
		}

		result = *stock
		item = *loadedItem
		warehouse = *loadedWarehouse
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Reorder alert fires after commit so a rolled-back adjustment never
	// produces a notification.
	if result.Quantity <= item.ReorderLevel {
		s.notifier.LowStock(ctx, item, warehouse, result.Quantity)
	}

	return &result, nil
}

func (s *service) SetLocationStock(ctx context.Context, input SetLocationInput) (*models.StockLocation, error) {
	if input.ItemID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if input.LocationID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location id required")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}
	if err := requireMutator(input.ActorID, input.ActorRole); err != nil {
		return nil, err
	}

	var result models.StockLocation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		item, err := repo.FindItem(ctx, input.ItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
		}
		if _, err := repo.FindLocation(ctx, input.LocationID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "location not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load location")
		}

		stock, err := repo.FindLocationStockLocked(ctx, input.ItemID, input.LocationID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			stock = &models.StockLocation{
				ItemID:     input.ItemID,
				LocationID: input.LocationID,
				Quantity:   input.Quantity,
			}
			if err := repo.CreateLocationStock(ctx, stock); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create location stock row")
			}
		case err != nil:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load location stock row")
		default:
			if err := repo.UpdateLocationStockQuantity(ctx, stock.ID, input.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update location stock quantity")
			}
			stock.Quantity = input.Quantity
		}

		if err := s.audits.Record(ctx, tx, audit.Entry{
			ActorID:    input.ActorID,
			Action:     enums.AuditActionUpdate,
			EntityType: entityTypeStockLocation,
			EntityID:   input.ItemID,
			Details:    fmt.Sprintf("set %s to %d at location %d", item.SKU, input.Quantity, input.LocationID),
		}); err != nil {
			return err
		}

		result = *stock
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *service) Transfer(ctx context.Context, input TransferInput) (*models.StockTransfer, error) {
	if input.ItemID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if input.ToLocationID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "destination location id required")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.FromLocationID != nil && *input.FromLocationID == input.ToLocationID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "source and destination must differ")
	}
	if err := requireMutator(input.ActorID, input.ActorRole); err != nil {
		return nil, err
	}

	var result models.StockTransfer
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		item, err := repo.FindItem(ctx, input.ItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
		}
		if _, err := repo.FindLocation(ctx, input.ToLocationID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "destination location not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load destination location")
		}

		// Source first, destination second. Both rows stay locked until
		// commit so the two balances move together or not at all.
		if input.FromLocationID != nil {
			source, err := repo.FindLocationStockLocked(ctx, input.ItemID, *input.FromLocationID)
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.
					New(pkgerrors.CodeInsufficientStock, "no stock at source location").
					WithDetails(map[string]any{"available": 0, "requested": input.Quantity})
			}
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load source stock")
			}
			if source.Quantity < input.Quantity {
				return pkgerrors.
					New(pkgerrors.CodeInsufficientStock, "source location has insufficient stock").
					WithDetails(map[string]any{"available": source.Quantity, "requested": input.Quantity})
			}
			if err := repo.UpdateLocationStockQuantity(ctx, source.ID, source.Quantity-input.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement source stock")
			}
		}

		dest, err := repo.FindLocationStockLocked(ctx, input.ItemID, input.ToLocationID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			dest = &models.StockLocation{
				ItemID:     input.ItemID,
				LocationID: input.ToLocationID,
				Quantity:   input.Quantity,
			}
			if err := repo.CreateLocationStock(ctx, dest); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create destination stock row")
			}
		case err != nil:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load destination stock")
		default:
			if err := repo.UpdateLocationStockQuantity(ctx, dest.ID, dest.Quantity+input.Quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment destination stock")
			}
		}

		transfer := models.StockTransfer{
			ItemID:         input.ItemID,
			FromLocationID: input.FromLocationID,
			ToLocationID:   input.ToLocationID,
			Quantity:       input.Quantity,
			Notes:          input.Notes,
			CreatedByID:    input.ActorID,
		}
		if err := repo.CreateTransfer(ctx, &transfer); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create transfer record")
		}

		if err := s.audits.Record(ctx, tx, audit.Entry{
			ActorID:    input.ActorID,
			Action:     enums.AuditActionTransfer,
			EntityType: entityTypeStockTransfer,
			EntityID:   transfer.ID,
			Details:    fmt.Sprintf("transferred %d of %s to location %d", input.Quantity, item.SKU, input.ToLocationID),
		}); err != nil {
			return err
		}

		result = transfer
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *service) ListTransfers(ctx context.Context, input ListTransfersInput) (*TransferList, error) {
	input.normalize()

	transfers, total, err := s.repo.ListTransfers(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transfers")
	}
	return &TransferList{
		Transfers: transfers,
		Total:     total,
		Limit:     input.Limit,
		Offset:    input.Offset,
	}, nil
}
