package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Removable is implemented by every entity that is tombstoned instead of
// physically deleted.
type Removable interface {
	IsRemoved() bool
}

// Base carries the identity, timestamps and removal marker shared by all
// persisted entities.
type Base struct {
	ID        string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

func (b Base) IsRemoved() bool {
	return b.DeletedAt.Valid
}
