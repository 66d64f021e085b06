package imports

import (
	"context"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/stockroomhq/stockroom-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the import pipeline.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateJob(ctx context.Context, job *models.ImportJob) error
	FindJob(ctx context.Context, jobID int64) (*models.ImportJob, error)
	UpdateJob(ctx context.Context, jobID int64, updates map[string]any) error
	ListJobs(ctx context.Context, input ListJobsInput) ([]models.ImportJob, int64, error)
	FindItemBySKU(ctx context.Context, sku string) (*models.Item, error)
	CreateItem(ctx context.Context, item *models.Item) error
	SaveItem(ctx context.Context, item *models.Item) error
	ListItems(ctx context.Context) ([]models.Item, error)
	ListCustomFieldKeys(ctx context.Context) ([]string, error)
	ListCustomFields(ctx context.Context) ([]models.CustomField, error)
	MaxCustomFieldDisplayOrder(ctx context.Context) (int, error)
	CreateCustomField(ctx context.Context, field *models.CustomField) error
}

// Queue hands queued import jobs to the worker.
type Queue interface {
	Enqueue(ctx context.Context, msg *pubsub.Message) (string, error)
}

// PublisherQueue adapts a Pub/Sub publisher to the Queue interface, waiting
// for the server-assigned message id.
type PublisherQueue struct {
	Publisher *pubsub.Publisher
}

func (q PublisherQueue) Enqueue(ctx context.Context, msg *pubsub.Message) (string, error) {
	if q.Publisher == nil {
		return "", fmt.Errorf("publisher not configured")
	}
	return q.Publisher.Publish(ctx, msg).Get(ctx)
}

// Notifier announces terminal jobs to the uploader. Implementations must
// never fail the caller.
type Notifier interface {
	ImportFinished(ctx context.Context, job models.ImportJob)
}
