package models

import "time"

// ChartSnapshot is a versioned SVG rendering of a chart produced by the worker.
type ChartSnapshot struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ChartID   uint64    `gorm:"not null;index:idx_snapshot_chart_version,unique,priority:1" json:"chart_id"`
	Version   int       `gorm:"not null;index:idx_snapshot_chart_version,unique,priority:2" json:"version"`
	Mode      string    `gorm:"size:32;not null" json:"mode"`
	Layout    string    `gorm:"size:32" json:"layout"`
	Theme     string    `gorm:"size:32;not null" json:"theme"`
	SVG       string    `gorm:"type:text;not null" json:"-"`
	Checksum  string    `gorm:"size:64;not null" json:"checksum"`
	IsCurrent bool      `gorm:"not null;default:false;index" json:"is_current"`
	CreatedAt time.Time `json:"created_at"`
}

// All lists every model managed by migrations, in dependency order.
func All() []any {
	return []any{
		&User{},
		&Chart{},
		&SquareCustomization{},
		&SquareDetailing{},
		&ChartSnapshot{},
	}
}
