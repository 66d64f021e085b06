package models

import (
	"time"

	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

// Notification stores in-app notification payloads scoped to users.
// EntityType/EntityID weakly reference the subject record.
type Notification struct {
	ID         int64                  `gorm:"column:id;primaryKey;autoIncrement"`
	UserID     int64                  `gorm:"column:user_id;not null;index"`
	Type       enums.NotificationType `gorm:"column:type;type:text;not null"`
	Title      string                 `gorm:"column:title;type:text;not null"`
	Message    string                 `gorm:"column:message;type:text;not null"`
	EntityType *string                `gorm:"column:entity_type;type:text"`
	EntityID   *int64                 `gorm:"column:entity_id"`
	ReadAt     *time.Time             `gorm:"column:read_at"`
	CreatedAt  time.Time              `gorm:"column:created_at;autoCreateTime"`
}
