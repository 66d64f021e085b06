package approvals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stockroomhq/stockroom-backend/internal/audit"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"gorm.io/gorm"
)

const entityTypePurchaseOrder = "purchase_order"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines the purchase order approval workflow operations.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*OrderView, error)
	Get(ctx context.Context, orderID int64) (*OrderView, error)
	History(ctx context.Context, orderID int64) ([]HistoryEntry, error)
	Submit(ctx context.Context, input TransitionInput) (*OrderView, error)
	Approve(ctx context.Context, input TransitionInput) (*OrderView, error)
	Reject(ctx context.Context, input TransitionInput) (*OrderView, error)
	Send(ctx context.Context, input TransitionInput) (*OrderView, error)
	Deliver(ctx context.Context, input TransitionInput) (*OrderView, error)
	Recall(ctx context.Context, input TransitionInput) (*OrderView, error)
	Resubmit(ctx context.Context, input TransitionInput) (*OrderView, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	audits   audit.Recorder
	notifier Notifier
	now      func() time.Time
}

// NewService builds an approvals service with the required dependencies.
func NewService(repo Repository, tx txRunner, audits audit.Recorder, notifier Notifier) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("approvals repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if audits == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("workflow notifier required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		audits:   audits,
		notifier: notifier,
		now:      time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*OrderView, error) {
	if input.PONumber == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "po number required")
	}
	if input.SupplierID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier id required")
	}
	if input.TotalAmount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total amount must not be negative")
	}
	if input.ActorID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ActorRole != enums.UserRoleAdmin && input.ActorRole != enums.UserRoleManager {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role may not create purchase orders")
	}

	var created models.PurchaseOrder
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.FindSupplier(ctx, input.SupplierID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
		}

		order := models.PurchaseOrder{
			PONumber:     input.PONumber,
			SupplierID:   input.SupplierID,
			WarehouseID:  input.WarehouseID,
			Status:       enums.PurchaseOrderStatusDraft,
			TotalAmount:  input.TotalAmount,
			Notes:        input.Notes,
			ExpectedDate: input.ExpectedDate,
			RequestedBy:  input.ActorID,
		}
		if _, err := repo.CreateOrder(ctx, &order); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return pkgerrors.New(pkgerrors.CodeConflict, "po number already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create purchase order")
		}

		if err := s.audits.Record(ctx, tx, audit.Entry{
			ActorID:    input.ActorID,
			Action:     enums.AuditActionCreate,
			EntityType: entityTypePurchaseOrder,
			EntityID:   order.ID,
			Details:    fmt.Sprintf("created purchase order %s", order.PONumber),
		}); err != nil {
			return err
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	view := buildView(created)
	return &view, nil
}

func (s *service) Get(ctx context.Context, orderID int64) (*OrderView, error) {
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase order")
	}
	view := buildView(*order)
	return &view, nil
}

func (s *service) History(ctx context.Context, orderID int64) ([]HistoryEntry, error) {
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if _, err := s.repo.FindOrder(ctx, orderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase order")
	}

	entries, err := s.repo.ListHistory(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list approval history")
	}

	actorIDs := make([]int64, 0, len(entries))
	seen := map[int64]bool{}
	for _, entry := range entries {
		if !seen[entry.ActorID] {
			seen[entry.ActorID] = true
			actorIDs = append(actorIDs, entry.ActorID)
		}
	}
	usernames, err := s.repo.FindUsernames(ctx, actorIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve actor usernames")
	}

	result := make([]HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		username := usernames[entry.ActorID]
		if username == "" {
			username = "Unknown"
		}
		result = append(result, HistoryEntry{
			ID:         entry.ID,
			FromStatus: entry.FromStatus,
			ToStatus:   entry.ToStatus,
			ActorID:    entry.ActorID,
			Username:   username,
			Comment:    entry.Comment,
			CreatedAt:  entry.CreatedAt,
		})
	}
	return result, nil
}

type transitionSpec struct {
	name   string
	from   enums.PurchaseOrderStatus
	to     enums.PurchaseOrderStatus
	action enums.AuditAction
	stamp  func(now time.Time, actorID int64, updates map[string]any)
	notify func(s *service, ctx context.Context, order models.PurchaseOrder, comment *string)
}

func (s *service) Submit(ctx context.Context, input TransitionInput) (*OrderView, error) {
	return s.transition(ctx, input, transitionSpec{
		name:   "submit",
		from:   enums.PurchaseOrderStatusDraft,
		to:     enums.PurchaseOrderStatusPendingApproval,
		action: enums.AuditActionSubmitApproval,
		stamp: func(now time.Time, _ int64, updates map[string]any) {
			updates["submitted_at"] = now
		},
		notify: func(s *service, ctx context.Context, order models.PurchaseOrder, _ *string) {
			s.notifier.OrderSubmitted(ctx, order)
		},
	})
}

func (s *service) Approve(ctx context.Context, input TransitionInput) (*OrderView, error) {
	return s.transition(ctx, input, transitionSpec{
		name:   "approve",
		from:   enums.PurchaseOrderStatusPendingApproval,
		to:     enums.PurchaseOrderStatusApproved,
		action: enums.AuditActionApprove,
		stamp: func(now time.Time, actorID int64, updates map[string]any) {
			updates["approved_at"] = now
			updates["approved_by"] = actorID
			updates["rejected_at"] = nil
			updates["rejected_by"] = nil
		},
		notify: func(s *service, ctx context.Context, order models.PurchaseOrder, _ *string) {
			s.notifier.OrderApproved(ctx, order)
		},
	})
}

func (s *service) Reject(ctx context.Context, input TransitionInput) (*OrderView, error) {
	return s.transition(ctx, input, transitionSpec{
		name:   "reject",
		from:   enums.PurchaseOrderStatusPendingApproval,
		to:     enums.PurchaseOrderStatusRejected,
		action: enums.AuditActionReject,
		stamp: func(now time.Time, actorID int64, updates map[string]any) {
			updates["rejected_at"] = now
			updates["rejected_by"] = actorID
		},
		notify: func(s *service, ctx context.Context, order models.PurchaseOrder, comment *string) {
			s.notifier.OrderRejected(ctx, order, comment)
		},
	})
}

func (s *service) Send(ctx context.Context, input TransitionInput) (*OrderView, error) {
	return s.transition(ctx, input, transitionSpec{
		name:   "send",
		from:   enums.PurchaseOrderStatusApproved,
		to:     enums.PurchaseOrderStatusSentToVendor,
		action: enums.AuditActionSendToVendor,
		stamp: func(now time.Time, _ int64, updates map[string]any) {
			updates["sent_at"] = now
		},
		notify: func(s *service, ctx context.Context, order models.PurchaseOrder, _ *string) {
			s.notifier.OrderSent(ctx, order)
		},
	})
}

func (s *service) Deliver(ctx context.Context, input TransitionInput) (*OrderView, error) {
	return s.transition(ctx, input, transitionSpec{
		name:   "deliver",
		from:   enums.PurchaseOrderStatusSentToVendor,
		to:     enums.PurchaseOrderStatusDelivered,
		action: enums.AuditActionDeliver,
		stamp: func(now time.Time, _ int64, updates map[string]any) {
			updates["delivered_at"] = now
		},
		notify: func(s *service, ctx context.Context, order models.PurchaseOrder, _ *string) {
			s.notifier.OrderDelivered(ctx, order)
		},
	})
}

func (s *service) Recall(ctx context.Context, input TransitionInput) (*OrderView, error) {
	return s.transition(ctx, input, transitionSpec{
		name:   "recall",
		from:   enums.PurchaseOrderStatusPendingApproval,
		to:     enums.PurchaseOrderStatusDraft,
		action: enums.AuditActionRecall,
		stamp: func(_ time.Time, _ int64, updates map[string]any) {
			updates["submitted_at"] = nil
		},
	})
}

func (s *service) Resubmit(ctx context.Context, input TransitionInput) (*OrderView, error) {
	return s.transition(ctx, input, transitionSpec{
		name:   "resubmit",
		from:   enums.PurchaseOrderStatusRejected,
		to:     enums.PurchaseOrderStatusDraft,
		action: enums.AuditActionResubmit,
		stamp: func(_ time.Time, _ int64, updates map[string]any) {
			// A fresh lifecycle pass clears every prior milestone stamp.
			updates["submitted_at"] = nil
			updates["approved_at"] = nil
			updates["approved_by"] = nil
			updates["rejected_at"] = nil
			updates["rejected_by"] = nil
		},
	})
}

func (s *service) transition(ctx context.Context, input TransitionInput, spec transitionSpec) (*OrderView, error) {
	if input.OrderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.ActorID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.ActorRole.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "unknown actor role")
	}

	var updated models.PurchaseOrder
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrder(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "purchase order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase order")
		}

		if order.Status != spec.from {
			return pkgerrors.
				New(pkgerrors.CodeStateConflict, fmt.Sprintf("cannot %s order in status %s", spec.name, order.Status)).
				WithDetails(map[string]any{"current_status": order.Status})
		}
		if !Allowed(input.ActorRole, spec.from, spec.to) {
			return pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("role %s may not %s this order", input.ActorRole, spec.name))
		}

		now := s.now().UTC()
		updates := map[string]any{"status": spec.to}
		if spec.stamp != nil {
			spec.stamp(now, input.ActorID, updates)
		}

		rows, err := repo.UpdateStatusGuarded(ctx, order.ID, spec.from, updates)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		if rows == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "purchase order was modified concurrently")
		}

		if err := repo.AppendHistory(ctx, &models.ApprovalHistory{
			PurchaseOrderID: order.ID,
			FromStatus:      spec.from,
			ToStatus:        spec.to,
			ActorID:         input.ActorID,
			Comment:         input.Comment,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append approval history")
		}

		if err := s.audits.Record(ctx, tx, audit.Entry{
			ActorID:    input.ActorID,
			Action:     spec.action,
			EntityType: entityTypePurchaseOrder,
			EntityID:   order.ID,
			Details:    fmt.Sprintf("%s: %s -> %s", order.PONumber, spec.from, spec.to),
		}); err != nil {
			return err
		}

		fresh, err := repo.FindOrder(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload purchase order")
		}
		updated = *fresh
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Side effects run only after the transaction committed. The notifier is
	// best-effort and must not surface failures here.
	if spec.notify != nil {
		spec.notify(s, ctx, updated, input.Comment)
	}

	view := buildView(updated)
	return &view, nil
}
