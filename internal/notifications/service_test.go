package notifications

import (
	"context"
	"testing"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
)

func seedInbox(repo *stubNotificationsRepo, userID int64, count int) {
	for i := 0; i < count; i++ {
		_ = repo.Create(context.Background(), &models.Notification{
			UserID:  userID,
			Type:    enums.NotificationTypeLowStock,
			Title:   "Low stock",
			Message: "test",
		})
	}
}

func TestListReturnsUnreadCount(t *testing.T) {
	repo := newStubNotificationsRepo()
	seedInbox(repo, 5, 3)
	seedInbox(repo, 6, 1)
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	page, err := svc.List(context.Background(), ListInput{UserID: 5})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if page.Total != 3 || page.UnreadCount != 3 {
		t.Fatalf("unexpected page counts: %+v", page)
	}
	for _, n := range page.Notifications {
		if n.UserID != 5 {
			t.Fatalf("leaked another user's notification: %+v", n)
		}
	}
}

func TestMarkReadIsScopedToOwner(t *testing.T) {
	repo := newStubNotificationsRepo()
	seedInbox(repo, 5, 1)
	svc, _ := NewService(repo)

	err := svc.MarkRead(context.Background(), 6, repo.notifications[0].ID)
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND for someone else's notification, got %v", err)
	}

	if err := svc.MarkRead(context.Background(), 5, repo.notifications[0].ID); err != nil {
		t.Fatalf("MarkRead returned error: %v", err)
	}
	if repo.notifications[0].ReadAt == nil {
		t.Fatal("notification not marked read")
	}

	err = svc.MarkRead(context.Background(), 5, repo.notifications[0].ID)
	if !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND for an already-read notification, got %v", err)
	}
}

func TestMarkAllReadReportsRows(t *testing.T) {
	repo := newStubNotificationsRepo()
	seedInbox(repo, 5, 4)
	svc, _ := NewService(repo)

	rows, err := svc.MarkAllRead(context.Background(), 5)
	if err != nil {
		t.Fatalf("MarkAllRead returned error: %v", err)
	}
	if rows != 4 {
		t.Fatalf("expected 4 rows marked, got %d", rows)
	}

	count, err := svc.UnreadCount(context.Background(), 5)
	if err != nil {
		t.Fatalf("UnreadCount returned error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 unread, got %d", count)
	}
}

func TestInboxRequiresIdentity(t *testing.T) {
	repo := newStubNotificationsRepo()
	svc, _ := NewService(repo)

	if _, err := svc.List(context.Background(), ListInput{}); !pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
	if err := svc.MarkRead(context.Background(), 0, 1); !pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected UNAUTHORIZED, got %v", err)
	}
}
