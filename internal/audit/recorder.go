package audit

import (
	"context"

	pkgerrors "github.com/stockroomhq/stockroom-backend/pkg/errors"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	"gorm.io/gorm"
)

// Entry captures one auditable mutation.
type Entry struct {
	ActorID    int64
	Action     enums.AuditAction
	EntityType string
	EntityID   int64
	Details    string
}

// Recorder appends audit entries inside the caller's transaction. Every
// mutating service takes one; the append shares the transaction so the audit
// row commits or rolls back with the mutation it describes.
type Recorder interface {
	Record(ctx context.Context, tx *gorm.DB, entry Entry) error
}

type recorder struct{}

// NewRecorder returns the default relational audit recorder.
func NewRecorder() Recorder {
	return recorder{}
}

func (recorder) Record(ctx context.Context, tx *gorm.DB, entry Entry) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for audit record")
	}
	if entry.ActorID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "audit actor id required")
	}
	if !entry.Action.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid audit action")
	}
	if entry.EntityType == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "audit entity type required")
	}

	row := models.AuditLog{
		UserID:     entry.ActorID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
	}
	if entry.Details != "" {
		details := entry.Details
		row.Details = &details
	}

	if err := tx.WithContext(ctx).Create(&row).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert audit log")
	}
	return nil
}
