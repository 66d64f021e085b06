package audit

import "github.com/stockroomhq/stockroom-backend/pkg/db/models"

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// ListInput filters the audit log page.
type ListInput struct {
	EntityType string
	EntityID   *int64
	ActorID    *int64
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

// ListResult is one page of audit entries plus the unfiltered total.
type ListResult struct {
	Entries []models.AuditLog `json:"entries"`
	Total   int64             `json:"total"`
	Limit   int               `json:"limit"`
	Offset  int               `json:"offset"`
}
