package models

import (
	"time"

	"github.com/stockroomhq/stockroom-backend/pkg/enums"
	"github.com/stockroomhq/stockroom-backend/pkg/types"
)

// ImportJob tracks a bulk catalog import through the pipeline. ErrorDetails
// keeps per-row failure messages; a row failure never fails the job.
type ImportJob struct {
	ID            int64                 `gorm:"column:id;primaryKey;autoIncrement"`
	Filename      string                `gorm:"column:filename;type:text;not null"`
	FilePath      string                `gorm:"column:file_path;type:text;not null"`
	FileSizeBytes int64                 `gorm:"column:file_size_bytes;not null;default:0"`
	Status        enums.ImportJobStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	TotalRows     int                   `gorm:"column:total_rows;not null;default:0"`
	ProcessedRows int                   `gorm:"column:processed_rows;not null;default:0"`
	SuccessCount  int                   `gorm:"column:success_count;not null;default:0"`
	ErrorCount    int                   `gorm:"column:error_count;not null;default:0"`
	ErrorDetails  types.StringList      `gorm:"column:error_details;type:jsonb;serializer:json"`
	CreatedByID   int64                 `gorm:"column:created_by_id;not null"`
	StartedAt     *time.Time            `gorm:"column:started_at"`
	CompletedAt   *time.Time            `gorm:"column:completed_at"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
