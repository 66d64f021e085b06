package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stockroomhq/stockroom-backend/api/controllers"
	"github.com/stockroomhq/stockroom-backend/api/middleware"
	"github.com/stockroomhq/stockroom-backend/internal/approvals"
	"github.com/stockroomhq/stockroom-backend/internal/audit"
	"github.com/stockroomhq/stockroom-backend/internal/imports"
	"github.com/stockroomhq/stockroom-backend/internal/notifications"
	"github.com/stockroomhq/stockroom-backend/internal/stockledger"
	"github.com/stockroomhq/stockroom-backend/pkg/config"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
)

// Services bundles the wired domain services the router exposes.
type Services struct {
	Approvals     approvals.Service
	Stock         stockledger.Service
	Imports       imports.Service
	Notifications notifications.Service
	Audit         audit.Service
}

// NewRouter assembles the HTTP surface. Health and metrics endpoints stay
// outside the auth boundary.
func NewRouter(cfg *config.Config, logg *logger.Logger, checks map[string]controllers.Pinger, svcs Services) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer(logg))
	r.Use(middleware.RequestID(logg))
	r.Use(middleware.CORS())
	r.Use(middleware.Logging(logg))

	r.Get("/health/live", controllers.HealthLive(cfg.App.Env))
	r.Get("/health/ready", controllers.HealthReady(cfg.App.Env, checks, logg))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/purchase-orders", func(r chi.Router) {
			r.Post("/", controllers.OrderCreate(svcs.Approvals, logg))
			r.Get("/{orderID}", controllers.OrderGet(svcs.Approvals, logg))
			r.Get("/{orderID}/history", controllers.OrderHistory(svcs.Approvals, logg))

			r.Post("/{orderID}/submit", controllers.OrderTransition(transition(svcs.Approvals, approvals.Service.Submit), logg))
			r.Post("/{orderID}/send", controllers.OrderTransition(transition(svcs.Approvals, approvals.Service.Send), logg))
			r.Post("/{orderID}/deliver", controllers.OrderTransition(transition(svcs.Approvals, approvals.Service.Deliver), logg))
			r.Post("/{orderID}/recall", controllers.OrderTransition(transition(svcs.Approvals, approvals.Service.Recall), logg))
			r.Post("/{orderID}/resubmit", controllers.OrderTransition(transition(svcs.Approvals, approvals.Service.Resubmit), logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
				r.Post("/{orderID}/approve", controllers.OrderTransition(transition(svcs.Approvals, approvals.Service.Approve), logg))
				r.Post("/{orderID}/reject", controllers.OrderTransition(transition(svcs.Approvals, approvals.Service.Reject), logg))
			})
		})

		r.Post("/items/{itemID}/stock", controllers.StockAdjust(svcs.Stock, logg))

		r.Route("/locations", func(r chi.Router) {
			r.Post("/stock", controllers.LocationStockSet(svcs.Stock, logg))
			r.Post("/transfer", controllers.StockTransfer(svcs.Stock, logg))
			r.Get("/transfers", controllers.StockTransfersList(svcs.Stock, logg))
		})

		r.Route("/imports", func(r chi.Router) {
			r.Post("/upload", controllers.ImportUpload(svcs.Imports, logg))
			r.Get("/jobs", controllers.ImportJobsList(svcs.Imports, logg))
			r.Get("/jobs/{jobID}", controllers.ImportJobGet(svcs.Imports, logg))
			r.Get("/export", controllers.ItemsExport(svcs.Imports, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.NotificationsList(svcs.Notifications, logg))
			r.Get("/unread-count", controllers.NotificationsUnreadCount(svcs.Notifications, logg))
			r.Post("/read-all", controllers.NotificationsMarkAllRead(svcs.Notifications, logg))
			r.Post("/{notificationID}/read", controllers.NotificationMarkRead(svcs.Notifications, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin, enums.UserRoleManager))
			r.Get("/audit-logs", controllers.AuditLogsList(svcs.Audit, logg))
		})
	})

	return r
}

// transition binds a workflow method expression to its service, tolerating a
// nil service during partial wiring.
func transition(
	svc approvals.Service,
	method func(approvals.Service, context.Context, approvals.TransitionInput) (*approvals.OrderView, error),
) func(context.Context, approvals.TransitionInput) (*approvals.OrderView, error) {
	if svc == nil {
		return nil
	}
	return func(ctx context.Context, input approvals.TransitionInput) (*approvals.OrderView, error) {
		return method(svc, ctx, input)
	}
}
