package stockledger

import (
	"context"
	"testing"

	"github.com/stockroomhq/stockroom-backend/internal/audit"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"gorm.io/gorm"
)

type locationStockKey struct {
	itemID     int64
	locationID int64
}

type stubLedgerRepo struct {
	item      *models.Item
	warehouse *models.Warehouse
	locations map[int64]*models.Location
	stock     *models.Stock
	locStocks map[locationStockKey]*models.StockLocation
	transfers []models.StockTransfer
	nextRowID int64
}

func (s *stubLedgerRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubLedgerRepo) FindItem(ctx context.Context, itemID int64) (*models.Item, error) {
	if s.item == nil || s.item.ID != itemID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.item, nil
}

func (s *stubLedgerRepo) FindWarehouse(ctx context.Context, warehouseID int64) (*models.Warehouse, error) {
	if s.warehouse == nil || s.warehouse.ID != warehouseID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.warehouse, nil
}

func (s *stubLedgerRepo) FindLocation(ctx context.Context, locationID int64) (*models.Location, error) {
	if loc, ok := s.locations[locationID]; ok {
		return loc, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubLedgerRepo) FindStockLocked(ctx context.Context, itemID, warehouseID int64) (*models.Stock, error) {
	if s.stock == nil || s.stock.ItemID != itemID || s.stock.WarehouseID != warehouseID {
		return nil, gorm.ErrRecordNotFound
	}
	return s.stock, nil
}

func (s *stubLedgerRepo) CreateStock(ctx context.Context, stock *models.Stock) error {
	s.nextRowID++
	stock.ID = s.nextRowID
	s.stock = stock
	return nil
}

func (s *stubLedgerRepo) UpdateStockQuantity(ctx context.Context, stockID int64, quantity int) error {
	if s.stock == nil || s.stock.ID != stockID {
		return gorm.ErrRecordNotFound
	}
	s.stock.Quantity = quantity
	return nil
}

func (s *stubLedgerRepo) FindLocationStockLocked(ctx context.Context, itemID, locationID int64) (*models.StockLocation, error) {
	if stock, ok := s.locStocks[locationStockKey{itemID, locationID}]; ok {
		return stock, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubLedgerRepo) CreateLocationStock(ctx context.Context, stock *models.StockLocation) error {
	if s.locStocks == nil {
		s.locStocks = map[locationStockKey]*models.StockLocation{}
	}
	s.nextRowID++
	stock.ID = s.nextRowID
	s.locStocks[locationStockKey{stock.ItemID, stock.LocationID}] = stock
	return nil
}

func (s *stubLedgerRepo) UpdateLocationStockQuantity(ctx context.Context, stockLocationID int64, quantity int) error {
	for _, stock := range s.locStocks {
		if stock.ID == stockLocationID {
			stock.Quantity = quantity
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *stubLedgerRepo) CreateTransfer(ctx context.Context, transfer *models.StockTransfer) error {
	s.nextRowID++
	transfer.ID = s.nextRowID
	s.transfers = append(s.transfers, *transfer)
	return nil
}

func (s *stubLedgerRepo) ListTransfers(ctx context.Context, input ListTransfersInput) ([]models.StockTransfer, int64, error) {
	return s.transfers, int64(len(s.transfers)), nil
}

type stubAuditRecorder struct {
	entries []audit.Entry
}

func (s *stubAuditRecorder) Record(ctx context.Context, tx *gorm.DB, entry audit.Entry) error {
	s.entries = append(s.entries, entry)
	return nil
}

type stubLowStockNotifier struct {
	calls []int
}

func (s *stubLowStockNotifier) LowStock(ctx context.Context, item models.Item, warehouse models.Warehouse, quantity int) {
	s.calls = append(s.calls, quantity)
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newLedgerService(t *testing.T, repo *stubLedgerRepo) (Service, *stubAuditRecorder, *stubLowStockNotifier) {
	t.Helper()
	audits := &stubAuditRecorder{}
	notifier := &stubLowStockNotifier{}
	svc, err := NewService(repo, stubTxRunner{}, audits, notifier)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc, audits, notifier
}

func ledgerFixture() *stubLedgerRepo {
	return &stubLedgerRepo{
		item:      &models.Item{ID: 1, SKU: "SKU-1", ReorderLevel: 5},
		warehouse: &models.Warehouse{ID: 2, Name: "Main"},
		locations: map[int64]*models.Location{
			10: {ID: 10, Name: "A-01"},
			20: {ID: 20, Name: "B-02"},
		},
		nextRowID: 100,
	}
}

func TestAdjustStockCreatesRowOnFirstReceipt(t *testing.T) {
	repo := ledgerFixture()
	svc, audits, _ := newLedgerService(t, repo)

	stock, err := svc.AdjustStock(context.Background(), AdjustInput{
		ItemID: 1, WarehouseID: 2, Delta: 30, ActorID: 9, ActorRole: enums.UserRoleManager,
	})
	if err != nil {
		t.Fatalf("AdjustStock returned error: %v", err)
	}
	if stock.Quantity != 30 {
		t.Fatalf("unexpected quantity %d", stock.Quantity)
	}
	if len(audits.entries) != 1 || audits.entries[0].Action != enums.AuditActionStockAdjustment {
		t.Fatalf("expected STOCK_ADJUSTMENT audit entry, got %+v", audits.entries)
	}
}

func TestAdjustStockRejectsUnderflow(t *testing.T) {
	repo := ledgerFixture()
	repo.stock = &models.Stock{ID: 50, ItemID: 1, WarehouseID: 2, Quantity: 3}
	svc, _, notifier := newLedgerService(t, repo)

	_, err := svc.AdjustStock(context.Background(), AdjustInput{
		ItemID: 1, WarehouseID: 2, Delta: -10, ActorID: 9, ActorRole: enums.UserRoleAdmin,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	if repo.stock.Quantity != 3 {
		t.Fatalf("quantity must be unchanged, got %d", repo.stock.Quantity)
	}
	if len(notifier.calls) != 0 {
		t.Fatal("no alert expected for a failed adjustment")
	}
}

func TestAdjustStockFiresLowStockAlert(t *testing.T) {
	repo := ledgerFixture()
	repo.stock = &models.Stock{ID: 50, ItemID: 1, WarehouseID: 2, Quantity: 12}
	svc, _, notifier := newLedgerService(t, repo)

	stock, err := svc.AdjustStock(context.Background(), AdjustInput{
		ItemID: 1, WarehouseID: 2, Delta: -8, ActorID: 9, ActorRole: enums.UserRoleManager,
	})
	if err != nil {
		t.Fatalf("AdjustStock returned error: %v", err)
	}
	if stock.Quantity != 4 {
		t.Fatalf("unexpected quantity %d", stock.Quantity)
	}
	if len(notifier.calls) != 1 || notifier.calls[0] != 4 {
		t.Fatalf("expected one low stock alert at quantity 4, got %v", notifier.calls)
	}
}

func TestSetLocationStockIsAbsolute(t *testing.T) {
	repo := ledgerFixture()
	repo.locStocks = map[locationStockKey]*models.StockLocation{
		{1, 10}: {ID: 60, ItemID: 1, LocationID: 10, Quantity: 7},
	}
	svc, _, _ := newLedgerService(t, repo)

	stock, err := svc.SetLocationStock(context.Background(), SetLocationInput{
		ItemID: 1, LocationID: 10, Quantity: 2, ActorID: 9, ActorRole: enums.UserRoleManager,
	})
	if err != nil {
		t.Fatalf("SetLocationStock returned error: %v", err)
	}
	if stock.Quantity != 2 {
		t.Fatalf("expected absolute set to 2, got %d", stock.Quantity)
	}
}

func TestTransferMovesBothBalances(t *testing.T) {
	repo := ledgerFixture()
	from := int64(10)
	repo.locStocks = map[locationStockKey]*models.StockLocation{
		{1, 10}: {ID: 60, ItemID: 1, LocationID: 10, Quantity: 9},
	}
	svc, audits, _ := newLedgerService(t, repo)

	transfer, err := svc.Transfer(context.Background(), TransferInput{
		ItemID: 1, FromLocationID: &from, ToLocationID: 20, Quantity: 4,
		ActorID: 9, ActorRole: enums.UserRoleManager,
	})
	if err != nil {
		t.Fatalf("Transfer returned error: %v", err)
	}
	if repo.locStocks[locationStockKey{1, 10}].Quantity != 5 {
		t.Fatalf("source not decremented: %d", repo.locStocks[locationStockKey{1, 10}].Quantity)
	}
	if repo.locStocks[locationStockKey{1, 20}].Quantity != 4 {
		t.Fatalf("destination not incremented: %d", repo.locStocks[locationStockKey{1, 20}].Quantity)
	}
	if transfer.ID == 0 {
		t.Fatal("expected persisted transfer record")
	}
	if len(audits.entries) != 1 || audits.entries[0].Action != enums.AuditActionTransfer {
		t.Fatalf("expected TRANSFER audit entry, got %+v", audits.entries)
	}
}

func TestTransferInsufficientStock(t *testing.T) {
	repo := ledgerFixture()
	from := int64(10)
	repo.locStocks = map[locationStockKey]*models.StockLocation{
		{1, 10}: {ID: 60, ItemID: 1, LocationID: 10, Quantity: 2},
	}
	svc, audits, _ := newLedgerService(t, repo)

	_, err := svc.Transfer(context.Background(), TransferInput{
		ItemID: 1, FromLocationID: &from, ToLocationID: 20, Quantity: 4,
		ActorID: 9, ActorRole: enums.UserRoleAdmin,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected INSUFFICIENT_STOCK, got %v", err)
	}
	if repo.locStocks[locationStockKey{1, 10}].Quantity != 2 {
		t.Fatal("source balance must be untouched")
	}
	if _, ok := repo.locStocks[locationStockKey{1, 20}]; ok {
		t.Fatal("destination must not be created")
	}
	if len(repo.transfers) != 0 || len(audits.entries) != 0 {
		t.Fatal("no transfer record or audit entry expected")
	}
}

func TestTransferWithoutSourceIsInboundReceipt(t *testing.T) {
	repo := ledgerFixture()
	svc, _, _ := newLedgerService(t, repo)

	_, err := svc.Transfer(context.Background(), TransferInput{
		ItemID: 1, ToLocationID: 20, Quantity: 6, ActorID: 9, ActorRole: enums.UserRoleManager,
	})
	if err != nil {
		t.Fatalf("Transfer returned error: %v", err)
	}
	if repo.locStocks[locationStockKey{1, 20}].Quantity != 6 {
		t.Fatalf("destination not seeded: %+v", repo.locStocks)
	}
}

func TestTransferRejectsViewer(t *testing.T) {
	repo := ledgerFixture()
	svc, _, _ := newLedgerService(t, repo)

	_, err := svc.Transfer(context.Background(), TransferInput{
		ItemID: 1, ToLocationID: 20, Quantity: 6, ActorID: 9, ActorRole: enums.UserRoleViewer,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestTransferRejectsNonPositiveQuantity(t *testing.T) {
	repo := ledgerFixture()
	svc, _, _ := newLedgerService(t, repo)

	_, err := svc.Transfer(context.Background(), TransferInput{
		ItemID: 1, ToLocationID: 20, Quantity: 0, ActorID: 9, ActorRole: enums.UserRoleAdmin,
	})
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}
