package models

import (
	"time"

	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

// AuditLog is an append-only record of a mutation. Rows are never updated
// or deleted.
type AuditLog struct {
	ID         int64             `gorm:"column:id;primaryKey;autoIncrement"`
	UserID     int64             `gorm:"column:user_id;not null;index"`
	Action     enums.AuditAction `gorm:"column:action;type:text;not null"`
	EntityType string            `gorm:"column:entity_type;type:text;not null;index:idx_audit_logs_entity"`
	EntityID   int64             `gorm:"column:entity_id;not null;index:idx_audit_logs_entity"`
	Details    *string           `gorm:"column:details;type:text"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
}
