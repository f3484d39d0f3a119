// Package editor implements the modal form used to restyle a single square.
package editor

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/chartviz/engine/internal/square"
	appErr "github.com/chartviz/engine/pkg/errors"
)

// DetailingsPath is the standalone form page for extended square metadata.
const DetailingsPath = "/square-form"

var (
	ErrClosed         = errors.New("editor: already closed")
	ErrInvalidUrgency = appErr.New(appErr.CodeInvalid, "urgency must be one of red, yellow, orange, green, black")
	ErrMissingContext = appErr.New(appErr.CodeMissingContext, "square class, parent text and depth are required to view detailings")
)

// SaveFunc receives the edited data when the user saves.
type SaveFunc func(square.SquareData) error

// Context locates the edited square for the detailings hand-off.
type Context struct {
	NodeID      square.NodeID
	SquareClass square.Class
	ParentText  string
	Depth       *int
}

// ContextFor builds the routing context of id within tree.
func ContextFor(tree *square.Tree, id square.NodeID) Context {
	depth := tree.Depth(id)
	return Context{
		NodeID:      id,
		SquareClass: tree.Class(id),
		ParentText:  tree.ParentText(id),
		Depth:       &depth,
	}
}

// Editor holds the working copy of one square's data while the form is open.
type Editor struct {
	ctx     Context
	initial square.SquareData
	current square.SquareData
	onSave  SaveFunc
	open    bool
}

// New opens an editor pre-populated with initial.
func New(initial square.SquareData, onSave SaveFunc) *Editor {
	return &Editor{initial: initial, current: initial, onSave: onSave, open: true}
}

// WithContext attaches routing context used by DetailingsLink.
func (e *Editor) WithContext(ctx Context) *Editor {
	e.ctx = ctx
	return e
}

func (e *Editor) Context() Context             { return e.ctx }
func (e *Editor) Initial() square.SquareData   { return e.initial }
func (e *Editor) Data() square.SquareData      { return e.current }
func (e *Editor) IsOpen() bool                 { return e.open }
func (e *Editor) Dirty() bool                  { return e.current != e.initial }
func (e *Editor) SetTitle(title string)        { e.current.Title = title }
func (e *Editor) SetDensity(density int)       { e.current.Priority.Density = density }
func (e *Editor) SetDurability(d string)       { e.current.Priority.Durability = d }
func (e *Editor) SetDecor(decor string)        { e.current.Priority.Decor = decor }
func (e *Editor) SetImpact(s square.TextStyle) { e.current.Aesthetic.Impact = s }
func (e *Editor) SetColor(color string)        { e.current.Aesthetic.Effect.Color = color }

// SetUrgency rejects levels outside the known set.
func (e *Editor) SetUrgency(u square.Urgency) error {
	if !u.Valid() {
		return ErrInvalidUrgency
	}
	e.current.Urgency = u
	return nil
}

// SetFont updates the affect group. A non-positive size keeps the current size.
func (e *Editor) SetFont(family string, size int) {
	if family != "" {
		e.current.Aesthetic.Affect.FontFamily = family
	}
	if size > 0 {
		e.current.Aesthetic.Affect.FontSize = size
	}
}

// Replace overwrites the whole working copy.
func (e *Editor) Replace(d square.SquareData) { e.current = d }

// Save hands the working copy to onSave and closes the editor.
// If onSave fails the editor stays open and the error is returned.
func (e *Editor) Save() error {
	if !e.open {
		return ErrClosed
	}
	if e.onSave != nil {
		if err := e.onSave(e.current); err != nil {
			return err
		}
	}
	e.open = false
	return nil
}

// Cancel closes the editor and discards the working copy.
func (e *Editor) Cancel() {
	e.current = e.initial
	e.open = false
}

// DetailingsLink returns the form URL for this editor's square.
func (e *Editor) DetailingsLink() (string, error) {
	return DetailingsLink(e.ctx)
}

// DetailingsLink builds the detailings form URL, passing class, parent and depth as query parameters.
func DetailingsLink(ctx Context) (string, error) {
	if ctx.SquareClass == "" || ctx.ParentText == "" || ctx.Depth == nil {
		return "", ErrMissingContext
	}
	q := url.Values{}
	q.Set("squareClass", string(ctx.SquareClass))
	q.Set("parentText", ctx.ParentText)
	q.Set("depth", strconv.Itoa(*ctx.Depth))
	return DetailingsPath + "?" + q.Encode(), nil
}

// ParseDetailingsQuery is the receiving side of DetailingsLink.
func ParseDetailingsQuery(q url.Values) (square.Key, error) {
	class, ok := square.ParseClass(q.Get("squareClass"))
	parent := q.Get("parentText")
	rawDepth := q.Get("depth")
	if !ok || parent == "" || rawDepth == "" {
		return square.Key{}, ErrMissingContext
	}
	depth, err := strconv.Atoi(rawDepth)
	if err != nil || depth < 0 {
		return square.Key{}, appErr.Wrap(err, appErr.CodeInvalid, fmt.Sprintf("invalid depth %q", rawDepth))
	}
	if want := square.ClassForDepth(depth); want != class {
		return square.Key{}, appErr.New(appErr.CodeInvalid, fmt.Sprintf("class %q does not match depth %d (want %q)", class, depth, want))
	}
	return square.Key{SquareClass: class, ParentText: parent, Depth: depth}, nil
}
