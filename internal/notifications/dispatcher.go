package notifications

import (
	"context"
	"fmt"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
)

const (
	entityTypePurchaseOrder = "purchase_order"
	entityTypeItem          = "item"
	entityTypeImportJob     = "import_job"
)

// Dispatcher fans workflow events out to in-app notifications and email.
// Every method is best effort: failures are logged and swallowed so a
// notification problem never unwinds the transaction that triggered it.
type Dispatcher struct {
	repo   Repository
	mailer Mailer
	logg   *logger.Logger
}

// NewDispatcher builds the notification dispatcher.
func NewDispatcher(repo Repository, mailer Mailer, logg *logger.Logger) (*Dispatcher, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if mailer == nil {
		return nil, fmt.Errorf("mailer required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Dispatcher{repo: repo, mailer: mailer, logg: logg}, nil
}

// OrderSubmitted alerts every active admin that an order awaits review.
func (d *Dispatcher) OrderSubmitted(ctx context.Context, order models.PurchaseOrder) {
	supplierName := d.supplierName(ctx, order.SupplierID)

	admins, err := d.repo.ListActiveUsersByRole(ctx, enums.UserRoleAdmin)
	if err != nil {
		d.logg.Error(ctx, "failed to resolve approvers", err)
		return
	}
	for _, admin := range admins {
		d.persist(ctx, models.Notification{
			UserID:  admin.ID,
			Type:    enums.NotificationTypeApprovalRequest,
			Title:   "Approval required",
			Message: fmt.Sprintf("Purchase order %s from %s needs your approval.", order.PONumber, supplierName),
		}, order.ID, entityTypePurchaseOrder)

		if admin.Email != "" {
			subject, body := approvalRequestMail(order.PONumber, supplierName, order.TotalAmount.StringFixed(2), admin.Username)
			d.mail(ctx, admin.Email, subject, body)
		}
	}
}

// OrderApproved tells the requester their order cleared review.
func (d *Dispatcher) OrderApproved(ctx context.Context, order models.PurchaseOrder) {
	supplierName := d.supplierName(ctx, order.SupplierID)

	d.persist(ctx, models.Notification{
		UserID:  order.RequestedBy,
		Type:    enums.NotificationTypeOrderApproved,
		Title:   "Order approved",
		Message: fmt.Sprintf("Purchase order %s has been approved.", order.PONumber),
	}, order.ID, entityTypePurchaseOrder)

	if requester := d.user(ctx, order.RequestedBy); requester != nil && requester.Email != "" {
		subject, body := approvalGrantedMail(order.PONumber, supplierName, order.TotalAmount.StringFixed(2), requester.Username)
		d.mail(ctx, requester.Email, subject, body)
	}
}

// OrderRejected tells the requester, carrying the reviewer's comment.
func (d *Dispatcher) OrderRejected(ctx context.Context, order models.PurchaseOrder, comment *string) {
	supplierName := d.supplierName(ctx, order.SupplierID)

	message := fmt.Sprintf("Purchase order %s has been rejected.", order.PONumber)
	var comments string
	if comment != nil && *comment != "" {
		comments = *comment
		message = fmt.Sprintf("%s Reason: %s", message, comments)
	}
	d.persist(ctx, models.Notification{
		UserID:  order.RequestedBy,
		Type:    enums.NotificationTypeOrderRejected,
		Title:   "Order rejected",
		Message: message,
	}, order.ID, entityTypePurchaseOrder)

	if requester := d.user(ctx, order.RequestedBy); requester != nil && requester.Email != "" {
		subject, body := approvalRejectedMail(order.PONumber, supplierName, order.TotalAmount.StringFixed(2), requester.Username, comments)
		d.mail(ctx, requester.Email, subject, body)
	}
}

// OrderSent confirms dispatch to the requester and emails the supplier.
func (d *Dispatcher) OrderSent(ctx context.Context, order models.PurchaseOrder) {
	d.persist(ctx, models.Notification{
		UserID:  order.RequestedBy,
		Type:    enums.NotificationTypeOrderSent,
		Title:   "Order sent to vendor",
		Message: fmt.Sprintf("Purchase order %s was sent to the vendor.", order.PONumber),
	}, order.ID, entityTypePurchaseOrder)

	supplier, err := d.repo.FindSupplier(ctx, order.SupplierID)
	if err != nil {
		d.logg.Error(ctx, "failed to resolve supplier for order email", err)
		return
	}
	if supplier.ContactEmail != nil && *supplier.ContactEmail != "" {
		subject, body := orderSentMail(order.PONumber, supplier.Name, order.TotalAmount.StringFixed(2))
		d.mail(ctx, *supplier.ContactEmail, subject, body)
	}
}

// OrderDelivered closes the loop with the requester.
func (d *Dispatcher) OrderDelivered(ctx context.Context, order models.PurchaseOrder) {
	d.persist(ctx, models.Notification{
		UserID:  order.RequestedBy,
		Type:    enums.NotificationTypeOrderDelivered,
		Title:   "Order delivered",
		Message: fmt.Sprintf("Purchase order %s has been delivered.", order.PONumber),
	}, order.ID, entityTypePurchaseOrder)
}

// LowStock warns admins and managers that an item fell to its reorder level.
func (d *Dispatcher) LowStock(ctx context.Context, item models.Item, warehouse models.Warehouse, quantity int) {
	users, err := d.repo.ListActiveUsersByRole(ctx, enums.UserRoleAdmin, enums.UserRoleManager)
	if err != nil {
		d.logg.Error(ctx, "failed to resolve low stock recipients", err)
		return
	}
	for _, user := range users {
		d.persist(ctx, models.Notification{
			UserID: user.ID,
			Type:   enums.NotificationTypeLowStock,
			Title:  "Low stock",
			Message: fmt.Sprintf("%s (%s) is down to %d at %s, reorder level %d.",
				item.Name, item.SKU, quantity, warehouse.Name, item.ReorderLevel),
		}, item.ID, entityTypeItem)
	}
}

// ImportFinished tells the uploader their job reached a terminal status.
func (d *Dispatcher) ImportFinished(ctx context.Context, job models.ImportJob) {
	title := "Import completed"
	message := fmt.Sprintf("Import of %s finished: %d rows processed, %d errors.",
		job.Filename, job.ProcessedRows, job.ErrorCount)
	if job.Status == enums.ImportJobStatusFailed {
		title = "Import failed"
		message = fmt.Sprintf("Import of %s failed.", job.Filename)
	}
	d.persist(ctx, models.Notification{
		UserID:  job.CreatedByID,
		Type:    enums.NotificationTypeImportFinished,
		Title:   title,
		Message: message,
	}, job.ID, entityTypeImportJob)
}

func (d *Dispatcher) persist(ctx context.Context, notification models.Notification, entityID int64, entityType string) {
	notification.EntityType = &entityType
	notification.EntityID = &entityID
	if err := d.repo.Create(ctx, &notification); err != nil {
		d.logg.Error(ctx, "failed to persist notification", err)
	}
}

func (d *Dispatcher) mail(ctx context.Context, to, subject, body string) {
	if err := d.mailer.Send(to, subject, body); err != nil {
		d.logg.Error(ctx, "failed to send notification email", err)
	}
}

func (d *Dispatcher) user(ctx context.Context, userID int64) *models.User {
	user, err := d.repo.FindUser(ctx, userID)
	if err != nil {
		d.logg.Error(ctx, "failed to resolve notification recipient", err)
		return nil
	}
	return user
}

func (d *Dispatcher) supplierName(ctx context.Context, supplierID int64) string {
	supplier, err := d.repo.FindSupplier(ctx, supplierID)
	if err != nil {
		d.logg.Error(ctx, "failed to resolve supplier name", err)
		return "Unknown supplier"
	}
	return supplier.Name
}
