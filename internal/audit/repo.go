package audit

import (
	"context"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository defines read operations over the audit log.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context, input ListInput) ([]models.AuditLog, int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an audit repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) List(ctx context.Context, input ListInput) ([]models.AuditLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditLog{})
	if input.EntityType != "" {
		query = query.Where("entity_type = ?", input.EntityType)
	}
	if input.EntityID != nil {
		query = query.Where("entity_id = ?", *input.EntityID)
	}
	if input.ActorID != nil {
		query = query.Where("user_id = ?", *input.ActorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.AuditLog
	err := query.
		Order("created_at DESC").
		Limit(input.Limit).
		Offset(input.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
