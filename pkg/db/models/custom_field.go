package models

import (
	"time"

	"github.com/stockroomhq/stockroom-backend/pkg/enums"
)

// CustomField declares a user-defined item attribute. Field values live in
// each item's custom_data bag keyed by FieldKey.
type CustomField struct {
	ID           int64                 `gorm:"column:id;primaryKey;autoIncrement"`
	FieldKey     string                `gorm:"column:field_key;type:text;not null;uniqueIndex"`
	Label        string                `gorm:"column:label;type:text;not null"`
	FieldType    enums.CustomFieldType `gorm:"column:field_type;type:text;not null;default:'text'"`
	GroupName    string                `gorm:"column:group_name;type:text;not null;default:'General'"`
	ShowInForm   bool                  `gorm:"column:show_in_form;not null;default:true"`
	ShowInTable  bool                  `gorm:"column:show_in_table;not null;default:true"`
	DisplayOrder int                   `gorm:"column:display_order;not null;default:0"`
	CreatedAt    time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
