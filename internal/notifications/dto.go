package notifications

import "github.com/stockroomhq/stockroom-backend/pkg/db/models"

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// ListInput pages through a user's inbox, newest first.
type ListInput struct {
	UserID     int64
	UnreadOnly bool
	Limit      int
	Offset     int
}

func (in *ListInput) normalize() {
	if in.Limit <= 0 {
		in.Limit = defaultPageSize
	}
	if in.Limit > maxPageSize {
		in.Limit = maxPageSize
	}
	if in.Offset < 0 {
		in.Offset = 0
	}
}

// InboxPage is one page of a user's notifications plus the unread total.
type InboxPage struct {
	Notifications []models.Notification `json:"notifications"`
	Total         int64                 `json:"total"`
	UnreadCount   int64                 `json:"unread_count"`
	Limit         int                   `json:"limit"`
	Offset        int                   `json:"offset"`
}
