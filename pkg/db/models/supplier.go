package models

import "time"

// Supplier is a vendor purchase orders are placed against.
type Supplier struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name         string    `gorm:"column:name;type:text;not null"`
	ContactEmail *string   `gorm:"column:contact_email;type:text"`
	Phone        *string   `gorm:"column:phone;type:text"`
	Address      *string   `gorm:"column:address;type:text"`
	IsActive     bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
