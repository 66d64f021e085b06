package approvals

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

// CreateOrderInput captures the data needed to open a draft purchase order.
type CreateOrderInput struct {
	PONumber     string
	SupplierID   int64
	WarehouseID  *int64
	TotalAmount  decimal.Decimal
	Notes        *string
	ExpectedDate *time.Time
	ActorID      int64
	ActorRole    enums.UserRole
}

// TransitionInput carries the actor context for a workflow transition.
type TransitionInput struct {
	OrderID   int64
	ActorID   int64
	ActorRole enums.UserRole
	Comment   *string
}

// LeadTimeMetrics reports whole-day durations between workflow milestones.
// ApprovalDays and TotalDays count from the order date; the other metrics
// count between milestones and stay nil until both endpoints exist.
type LeadTimeMetrics struct {
	ApprovalDays *int `json:"approval_days"`
	SendDays     *int `json:"send_days"`
	DeliveryDays *int `json:"delivery_days"`
	TotalDays    *int `json:"total_days"`
	VarianceDays *int `json:"variance_days"`
}

// OrderView is the API shape of a purchase order with derived metrics.
type OrderView struct {
	Order   models.PurchaseOrder `json:"order"`
	Metrics LeadTimeMetrics      `json:"metrics"`
}

// HistoryEntry is one workflow transition enriched with the actor's username.
type HistoryEntry struct {
	ID         int64                     `json:"id"`
	FromStatus enums.PurchaseOrderStatus `json:"from_status"`
	ToStatus   enums.PurchaseOrderStatus `json:"to_status"`
	ActorID    int64                     `json:"actor_id"`
	Username   string                    `json:"username"`
	Comment    *string                   `json:"comment,omitempty"`
	CreatedAt  time.Time                 `json:"created_at"`
}

func buildView(order models.PurchaseOrder) OrderView {
	return OrderView{
		Order:   order,
		Metrics: computeLeadTimes(order),
	}
}

func computeLeadTimes(order models.PurchaseOrder) LeadTimeMetrics {
	ordered := order.CreatedAt
	return LeadTimeMetrics{
		ApprovalDays: wholeDays(&ordered, order.ApprovedAt),
		SendDays:     wholeDays(order.ApprovedAt, order.SentAt),
		DeliveryDays: wholeDays(order.SentAt, order.DeliveredAt),
		TotalDays:    wholeDays(&ordered, order.DeliveredAt),
		VarianceDays: wholeDays(order.ExpectedDate, order.DeliveredAt),
	}
}

func wholeDays(start, end *time.Time) *int {
	if start == nil || end == nil {
		return nil
	}
	days := int(end.Sub(*start).Hours() / 24)
	return &days
}
