package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/chartviz/engine/internal/square"
)

// SquareDetailing holds the free-text metadata entered on the detailings form.
// It is never merged back into the chart tree.
type SquareDetailing struct {
	ID          uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	ChartID     uint64         `gorm:"not null;index:idx_detailing_key,priority:1" json:"chartId"`
	SquareClass square.Class   `gorm:"size:16;not null;index:idx_detailing_key,priority:2" json:"squareClass"`
	ParentText  string         `gorm:"size:255;not null;index:idx_detailing_key,priority:3" json:"parentText"`
	Depth       int            `gorm:"not null;index:idx_detailing_key,priority:4" json:"depth"`
	Plane       string         `gorm:"type:text" json:"plane"`
	Purpose     string         `gorm:"type:text" json:"purpose"`
	Delineator  string         `gorm:"type:text" json:"delineator"`
	Notations   string         `gorm:"type:text" json:"notations"`
	Details     string         `gorm:"type:text" json:"details"`
	ExtraData   datatypes.JSON `json:"extraData,omitempty" swaggertype:"object"`
	CreatedBy   uuid.UUID      `gorm:"type:uuid;index" json:"createdBy"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// Key returns the (class, parent, depth) tuple of the row.
func (d *SquareDetailing) Key() square.Key {
	return square.Key{SquareClass: d.SquareClass, ParentText: d.ParentText, Depth: d.Depth}
}
