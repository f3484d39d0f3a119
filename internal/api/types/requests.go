package types

import (
	"encoding/json"

	"github.com/chartviz/engine/internal/square"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChartCreateRequest struct {
	Title    string          `json:"title" validate:"required,max=255"`
	Data     json.RawMessage `json:"data" validate:"required" swaggertype:"object"`
	IsPublic bool            `json:"is_public"`
	Theme    string          `json:"theme" validate:"omitempty,theme"`
}

type ChartUpdateRequest struct {
	Title    *string         `json:"title" validate:"omitempty,max=255"`
	Data     json.RawMessage `json:"data" swaggertype:"object"`
	IsPublic *bool           `json:"is_public"`
	Theme    *string         `json:"theme" validate:"omitempty,theme"`
}

// SquareKeyRequest carries the (class, parent, depth) key in the camelCase form the editor uses.
type SquareKeyRequest struct {
	ChartID     uint64 `json:"chartId" validate:"required"`
	SquareClass string `json:"squareClass" validate:"required,square_class"`
	ParentText  string `json:"parentText"`
	Depth       *int   `json:"depth" validate:"required,gte=0"`
}

func (k SquareKeyRequest) Key() square.Key {
	d := 0
	if k.Depth != nil {
		d = *k.Depth
	}
	return square.Key{SquareClass: square.Class(k.SquareClass), ParentText: k.ParentText, Depth: d}
}

type CustomizationRequest struct {
	SquareKeyRequest
	Title     string           `json:"title" validate:"max=255"`
	Priority  square.Priority  `json:"priority"`
	Urgency   string           `json:"urgency" validate:"omitempty,urgency"`
	Aesthetic square.Aesthetic `json:"aesthetic"`
}

func (c CustomizationRequest) Data() square.SquareData {
	return square.SquareData{
		Title:     c.Title,
		Priority:  c.Priority,
		Urgency:   square.Urgency(c.Urgency),
		Aesthetic: c.Aesthetic,
	}
}

type DetailingRequest struct {
	SquareKeyRequest
	Plane      string          `json:"plane"`
	Purpose    string          `json:"purpose"`
	Delineator string          `json:"delineator"`
	Notations  string          `json:"notations"`
	Details    string          `json:"details"`
	ExtraData  json.RawMessage `json:"extraData" swaggertype:"object"`
}

type SquareUpdateRequest struct {
	Title     string           `json:"title" validate:"max=255"`
	Priority  square.Priority  `json:"priority"`
	Urgency   string           `json:"urgency" validate:"omitempty,urgency"`
	Aesthetic square.Aesthetic `json:"aesthetic"`
}

func (s SquareUpdateRequest) Data() square.SquareData {
	return square.SquareData{
		Title:     s.Title,
		Priority:  s.Priority,
		Urgency:   square.Urgency(s.Urgency),
		Aesthetic: s.Aesthetic,
	}
}

type SnapshotCreateRequest struct {
	Mode       string `json:"mode" validate:"omitempty,oneof=scaled scoped included-build treemap"`
	Layout     string `json:"layout" validate:"omitempty,oneof=radial diagonal"`
	Class      string `json:"class" validate:"omitempty,square_class"`
	Theme      string `json:"theme" validate:"omitempty,theme"`
	Customized bool   `json:"customized"`
}
