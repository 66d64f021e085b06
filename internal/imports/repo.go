package imports

import (
	"context"

	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an import pipeline repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateJob(ctx context.Context, job *models.ImportJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *repository) FindJob(ctx context.Context, jobID int64) (*models.ImportJob, error) {
	var job models.ImportJob
	if err := r.db.WithContext(ctx).Where("id = ?", jobID).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *repository) UpdateJob(ctx context.Context, jobID int64, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.ImportJob{}).
		Where("id = ?", jobID).
		Updates(updates).Error
}

func (r *repository) ListJobs(ctx context.Context, input ListJobsInput) ([]models.ImportJob, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ImportJob{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var jobs []models.ImportJob
	err := query.
		Order("created_at DESC").
		Limit(input.Limit).
		Offset(input.Offset).
		Find(&jobs).Error
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

func (r *repository) FindItemBySKU(ctx context.Context, sku string) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) CreateItem(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) SaveItem(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *repository) ListItems(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	if err := r.db.WithContext(ctx).Order("sku ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ListCustomFieldKeys(ctx context.Context) ([]string, error) {
	var keys []string
	err := r.db.WithContext(ctx).
		Model(&models.CustomField{}).
		Pluck("field_key", &keys).Error
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *repository) ListCustomFields(ctx context.Context) ([]models.CustomField, error) {
	var fields []models.CustomField
	err := r.db.WithContext(ctx).
		Order("display_order ASC, field_key ASC").
		Find(&fields).Error
	if err != nil {
		return nil, err
	}
	return fields, nil
}

func (r *repository) MaxCustomFieldDisplayOrder(ctx context.Context) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).
		Model(&models.CustomField{}).
		Select("MAX(display_order)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (r *repository) CreateCustomField(ctx context.Context, field *models.CustomField) error {
	return r.db.WithContext(ctx).Create(field).Error
}
