package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/chartviz/engine/internal/square"
)

// SquareCustomization is one saved edit for every square matching its key.
// Rows are append-only; the newest row for a key is the effective one.
type SquareCustomization struct {
	ID          uint64                               `gorm:"primaryKey;autoIncrement" json:"id"`
	ChartID     uint64                               `gorm:"not null;index:idx_customization_key,priority:1" json:"chartId"`
	SquareClass square.Class                         `gorm:"size:16;not null;index:idx_customization_key,priority:2" json:"squareClass"`
	ParentText  string                               `gorm:"size:255;not null;index:idx_customization_key,priority:3" json:"parentText"`
	Depth       int                                  `gorm:"not null;index:idx_customization_key,priority:4" json:"depth"`
	Title       string                               `gorm:"size:255" json:"title"`
	Priority    datatypes.JSONType[square.Priority]  `json:"priority" swaggertype:"object"`
	Urgency     square.Urgency                       `gorm:"size:16" json:"urgency"`
	Aesthetic   datatypes.JSONType[square.Aesthetic] `json:"aesthetic" swaggertype:"object"`
	CreatedBy   uuid.UUID                            `gorm:"type:uuid;index" json:"createdBy"`
	CreatedAt   time.Time                            `json:"createdAt"`
}

// NewSquareCustomization keys d under chartID and key.
func NewSquareCustomization(chartID uint64, key square.Key, d square.SquareData) *SquareCustomization {
	return &SquareCustomization{
		ChartID:     chartID,
		SquareClass: key.SquareClass,
		ParentText:  key.ParentText,
		Depth:       key.Depth,
		Title:       d.Title,
		Priority:    datatypes.NewJSONType(d.Priority),
		Urgency:     d.Urgency,
		Aesthetic:   datatypes.NewJSONType(d.Aesthetic),
	}
}

// Key returns the (class, parent, depth) tuple of the row.
func (c *SquareCustomization) Key() square.Key {
	return square.Key{SquareClass: c.SquareClass, ParentText: c.ParentText, Depth: c.Depth}
}

// SquareData returns the editor view of the row.
func (c *SquareCustomization) SquareData() square.SquareData {
	return square.SquareData{
		Title:     c.Title,
		Priority:  c.Priority.Data(),
		Urgency:   c.Urgency,
		Aesthetic: c.Aesthetic.Data(),
	}
}
