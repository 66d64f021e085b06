package approvals

import (
	"context"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the approval workflow tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.PurchaseOrder) (*models.PurchaseOrder, error)
	FindOrder(ctx context.Context, orderID int64) (*models.PurchaseOrder, error)
	FindSupplier(ctx context.Context, supplierID int64) (*models.Supplier, error)
	UpdateStatusGuarded(ctx context.Context, orderID int64, from enums.PurchaseOrderStatus, updates map[string]any) (int64, error)
	AppendHistory(ctx context.Context, entry *models.ApprovalHistory) error
	ListHistory(ctx context.Context, orderID int64) ([]models.ApprovalHistory, error)
	FindUsernames(ctx context.Context, userIDs []int64) (map[int64]string, error)
}

// Notifier delivers workflow side-effect notifications after the owning
// transaction commits. Implementations must never fail the caller.
type Notifier interface {
	OrderSubmitted(ctx context.Context, order models.PurchaseOrder)
	OrderApproved(ctx context.Context, order models.PurchaseOrder)
	OrderRejected(ctx context.Context, order models.PurchaseOrder, comment *string)
	OrderSent(ctx context.Context, order models.PurchaseOrder)
	OrderDelivered(ctx context.Context, order models.PurchaseOrder)
}
