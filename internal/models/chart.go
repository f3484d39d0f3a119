package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Chart stores a square tree as an opaque JSON blob.
type Chart struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;index;not null" json:"user_id"`
	Title     string         `gorm:"size:255;not null" json:"title" validate:"required"`
	Data      datatypes.JSON `gorm:"not null" json:"data" swaggertype:"object"`
	IsPublic  bool           `gorm:"not null;default:false;index" json:"is_public"`
	Theme     string         `gorm:"size:32;not null;default:'light'" json:"theme"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-" swaggerignore:"true"`
}

// VisibleTo reports whether userID may read the chart.
func (c *Chart) VisibleTo(userID uuid.UUID) bool {
	return c.IsPublic || c.UserID == userID
}
