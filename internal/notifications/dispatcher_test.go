package notifications

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
	"gorm.io/gorm"
)

type stubNotificationsRepo struct {
	users         map[int64]*models.User
	suppliers     map[int64]*models.Supplier
	notifications []models.Notification
	nextID        int64
}

func newStubNotificationsRepo() *stubNotificationsRepo {
	return &stubNotificationsRepo{
		users:     map[int64]*models.User{},
		suppliers: map[int64]*models.Supplier{},
	}
}

func (s *stubNotificationsRepo) Create(ctx context.Context, notification *models.Notification) error {
	s.nextID++
	notification.ID = s.nextID
	s.notifications = append(s.notifications, *notification)
	return nil
}

func (s *stubNotificationsRepo) ListForUser(ctx context.Context, input ListInput) ([]models.Notification, int64, error) {
	var out []models.Notification
	for _, n := range s.notifications {
		if n.UserID != input.UserID {
			continue
		}
		if input.UnreadOnly && n.ReadAt != nil {
			continue
		}
		out = append(out, n)
	}
	return out, int64(len(out)), nil
}

func (s *stubNotificationsRepo) MarkRead(ctx context.Context, userID, notificationID int64, at time.Time) (int64, error) {
	for i, n := range s.notifications {
		if n.ID == notificationID && n.UserID == userID && n.ReadAt == nil {
			s.notifications[i].ReadAt = &at
			return 1, nil
		}
	}
	return 0, nil
}

func (s *stubNotificationsRepo) MarkAllRead(ctx context.Context, userID int64, at time.Time) (int64, error) {
	var rows int64
	for i, n := range s.notifications {
		if n.UserID == userID && n.ReadAt == nil {
			s.notifications[i].ReadAt = &at
			rows++
		}
	}
	return rows, nil
}

func (s *stubNotificationsRepo) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	var count int64
	for _, n := range s.notifications {
		if n.UserID == userID && n.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (s *stubNotificationsRepo) ListActiveUsersByRole(ctx context.Context, roles ...enums.UserRole) ([]models.User, error) {
	var out []models.User
	for _, user := range s.users {
		if !user.IsActive {
			continue
		}
		for _, role := range roles {
			if user.Role == role {
				out = append(out, *user)
				break
			}
		}
	}
	return out, nil
}

func (s *stubNotificationsRepo) FindUser(ctx context.Context, userID int64) (*models.User, error) {
	user, ok := s.users[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubNotificationsRepo) FindSupplier(ctx context.Context, supplierID int64) (*models.Supplier, error) {
	supplier, ok := s.suppliers[supplierID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return supplier, nil
}

type sentMail struct {
	to      string
	subject string
	body    string
}

type stubMailer struct {
	sent []sentMail
}

func (s *stubMailer) Send(to, subject, body string) error {
	s.sent = append(s.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func newDispatcherFixture(t *testing.T) (*Dispatcher, *stubNotificationsRepo, *stubMailer) {
	t.Helper()
	repo := newStubNotificationsRepo()
	mailer := &stubMailer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	dispatcher, err := NewDispatcher(repo, mailer, logg)
	if err != nil {
		t.Fatalf("NewDispatcher returned error: %v", err)
	}
	return dispatcher, repo, mailer
}

func testOrder() models.PurchaseOrder {
	return models.PurchaseOrder{
		ID:          10,
		PONumber:    "PO-2026-001",
		SupplierID:  3,
		RequestedBy: 5,
		TotalAmount: decimal.NewFromFloat(1250.50),
	}
}

func TestOrderSubmittedNotifiesEveryActiveAdmin(t *testing.T) {
	dispatcher, repo, mailer := newDispatcherFixture(t)
	repo.suppliers[3] = &models.Supplier{ID: 3, Name: "Acme"}
	repo.users[1] = &models.User{ID: 1, Username: "root", Email: "root@x.test", Role: enums.UserRoleAdmin, IsActive: true}
	repo.users[2] = &models.User{ID: 2, Username: "boss", Email: "boss@x.test", Role: enums.UserRoleAdmin, IsActive: true}
	repo.users[4] = &models.User{ID: 4, Username: "gone", Email: "gone@x.test", Role: enums.UserRoleAdmin, IsActive: false}
	repo.users[5] = &models.User{ID: 5, Username: "req", Email: "req@x.test", Role: enums.UserRoleManager, IsActive: true}

	dispatcher.OrderSubmitted(context.Background(), testOrder())

	if len(repo.notifications) != 2 {
		t.Fatalf("expected 2 in-app notifications, got %d", len(repo.notifications))
	}
	for _, n := range repo.notifications {
		if n.Type != enums.NotificationTypeApprovalRequest {
			t.Fatalf("unexpected notification type %s", n.Type)
		}
	}
	if len(mailer.sent) != 2 {
		t.Fatalf("expected 2 emails, got %d", len(mailer.sent))
	}
	if !strings.Contains(mailer.sent[0].subject, "PO-2026-001") {
		t.Fatalf("subject missing po number: %q", mailer.sent[0].subject)
	}
	if !strings.Contains(mailer.sent[0].body, "$1250.50") {
		t.Fatalf("body missing total: %q", mailer.sent[0].body)
	}
}

func TestOrderRejectedCarriesCommentWithFallback(t *testing.T) {
	dispatcher, repo, mailer := newDispatcherFixture(t)
	repo.suppliers[3] = &models.Supplier{ID: 3, Name: "Acme"}
	repo.users[5] = &models.User{ID: 5, Username: "req", Email: "req@x.test", Role: enums.UserRoleManager, IsActive: true}

	comment := "price too high"
	dispatcher.OrderRejected(context.Background(), testOrder(), &comment)
	if !strings.Contains(repo.notifications[0].Message, "price too high") {
		t.Fatalf("comment missing from notification: %q", repo.notifications[0].Message)
	}
	if !strings.Contains(mailer.sent[0].body, "Comments: price too high") {
		t.Fatalf("comment missing from email: %q", mailer.sent[0].body)
	}

	dispatcher.OrderRejected(context.Background(), testOrder(), nil)
	if !strings.Contains(mailer.sent[1].body, "Comments: No comments provided") {
		t.Fatalf("missing comment fallback: %q", mailer.sent[1].body)
	}
}

func TestOrderSentEmailsSupplier(t *testing.T) {
	dispatcher, repo, mailer := newDispatcherFixture(t)
	email := "orders@acme.test"
	repo.suppliers[3] = &models.Supplier{ID: 3, Name: "Acme", ContactEmail: &email}
	repo.users[5] = &models.User{ID: 5, Username: "req", Email: "req@x.test", Role: enums.UserRoleManager, IsActive: true}

	dispatcher.OrderSent(context.Background(), testOrder())

	if len(repo.notifications) != 1 || repo.notifications[0].UserID != 5 {
		t.Fatalf("requester not notified in-app: %+v", repo.notifications)
	}
	if len(mailer.sent) != 1 || mailer.sent[0].to != email {
		t.Fatalf("supplier not emailed: %+v", mailer.sent)
	}
}

func TestOrderSentWithoutSupplierEmailSkipsMail(t *testing.T) {
	dispatcher, repo, mailer := newDispatcherFixture(t)
	repo.suppliers[3] = &models.Supplier{ID: 3, Name: "Acme"}

	dispatcher.OrderSent(context.Background(), testOrder())

	if len(mailer.sent) != 0 {
		t.Fatalf("no email expected, got %+v", mailer.sent)
	}
}

func TestLowStockNotifiesAdminsAndManagers(t *testing.T) {
	dispatcher, repo, _ := newDispatcherFixture(t)
	repo.users[1] = &models.User{ID: 1, Username: "root", Role: enums.UserRoleAdmin, IsActive: true}
	repo.users[2] = &models.User{ID: 2, Username: "mgr", Role: enums.UserRoleManager, IsActive: true}
	repo.users[3] = &models.User{ID: 3, Username: "view", Role: enums.UserRoleViewer, IsActive: true}

	item := models.Item{ID: 7, SKU: "SKU-7", Name: "Bolt", ReorderLevel: 5}
	dispatcher.LowStock(context.Background(), item, models.Warehouse{ID: 2, Name: "Main"}, 4)

	if len(repo.notifications) != 2 {
		t.Fatalf("expected 2 recipients, got %d", len(repo.notifications))
	}
	for _, n := range repo.notifications {
		if n.Type != enums.NotificationTypeLowStock {
			t.Fatalf("unexpected type %s", n.Type)
		}
		if !strings.Contains(n.Message, "down to 4") {
			t.Fatalf("quantity missing from message: %q", n.Message)
		}
	}
}

func TestImportFinishedTargetsUploader(t *testing.T) {
	dispatcher, repo, _ := newDispatcherFixture(t)

	dispatcher.ImportFinished(context.Background(), models.ImportJob{
		ID:            9,
		Filename:      "catalog.csv",
		Status:        enums.ImportJobStatusFailed,
		CreatedByID:   5,
		ProcessedRows: 0,
	})

	if len(repo.notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(repo.notifications))
	}
	n := repo.notifications[0]
	if n.UserID != 5 || n.Type != enums.NotificationTypeImportFinished || n.Title != "Import failed" {
		t.Fatalf("unexpected notification: %+v", n)
	}
}
