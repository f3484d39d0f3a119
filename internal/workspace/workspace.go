// Package workspace ties a square tree to its view state, the editor and persistence.
package workspace

import (
	"context"
	"fmt"
	"sync"

	"github.com/chartviz/engine/internal/client"
	"github.com/chartviz/engine/internal/editor"
	"github.com/chartviz/engine/internal/render"
	"github.com/chartviz/engine/internal/square"
	"github.com/chartviz/engine/internal/theme"
	appErr "github.com/chartviz/engine/pkg/errors"
	"github.com/chartviz/engine/pkg/logger"
	"go.uber.org/zap"
)

// Persister stores customizations. *client.Client satisfies it.
type Persister interface {
	Save(ctx context.Context, c client.Customization) (*client.Customization, error)
}

// Config seeds a Workspace.
type Config struct {
	ChartID   uint64
	Persister Persister
	Palette   theme.Palette
	Width     float64
	Height    float64
	// OnRedraw is invoked with every freshly computed scene. It runs under the
	// workspace lock and must not call back into the workspace.
	OnRedraw func(*render.Scene)
	// OnError receives failures that are otherwise swallowed, such as a failed persist.
	OnError func(error)
}

// Workspace holds one chart's tree and view state. Every state change redraws the whole scene.
type Workspace struct {
	mu sync.Mutex

	tree      *square.Tree
	cfg       Config
	mode      render.Mode
	layout    render.Variant
	class     square.Class
	inclusion *render.Inclusion
	scene     *render.Scene
	frames    int
}

// New creates a workspace in scaled radial mode.
func New(tree *square.Tree, cfg Config) *Workspace {
	if cfg.Palette.Name == "" {
		cfg.Palette = theme.Resolve(theme.Default, "")
	}
	return &Workspace{
		tree:      tree,
		cfg:       cfg,
		mode:      render.ModeScaled,
		layout:    render.VariantRadial,
		class:     square.ClassRoot,
		inclusion: &render.Inclusion{},
	}
}

// Tree returns the live tree. Callers must not mutate it.
func (w *Workspace) Tree() *square.Tree {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tree
}

// Frames counts completed redraws.
func (w *Workspace) Frames() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.frames
}

// Scene returns the current scene, drawing it first if nothing has been drawn yet.
func (w *Workspace) Scene() (*render.Scene, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.scene != nil {
		return w.scene, nil
	}
	return w.redrawLocked()
}

// Redraw forces a full redraw.
func (w *Workspace) Redraw() (*render.Scene, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.redrawLocked()
}

// SetMode switches the view mode and redraws.
func (w *Workspace) SetMode(m render.Mode) (*render.Scene, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.mode = m
	return w.redrawLocked()
}

// SetLayout switches the scaled geometry and redraws.
func (w *Workspace) SetLayout(v render.Variant) (*render.Scene, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.layout = v
	return w.redrawLocked()
}

// SetClass changes the scoped filter and redraws.
func (w *Workspace) SetClass(c square.Class) (*render.Scene, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.class = c
	return w.redrawLocked()
}

// SetPalette swaps the theme and redraws.
func (w *Workspace) SetPalette(p theme.Palette) (*render.Scene, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cfg.Palette = p
	return w.redrawLocked()
}

// Toggle flips the inclusion of id and redraws.
func (w *Workspace) Toggle(id square.NodeID) (*render.Scene, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.tree.Node(id) == nil {
		return nil, appErr.New(appErr.CodeNotFound, fmt.Sprintf("square %d not found", id))
	}
	w.inclusion.Toggle(id)
	return w.redrawLocked()
}

// Click opens an editor for id pre-populated from the node's current style.
// Saving merges the edit into the tree, redraws, and persists when a chart is attached.
func (w *Workspace) Click(id square.NodeID) (*editor.Editor, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := w.tree.Node(id)
	if n == nil {
		return nil, appErr.New(appErr.CodeNotFound, fmt.Sprintf("square %d not found", id))
	}
	key := w.tree.KeyOf(id)
	ed := editor.New(editor.FromNode(n), func(d square.SquareData) error {
		return w.commit(id, key, d)
	})
	return ed.WithContext(editor.ContextFor(w.tree, id)), nil
}

// ClickAt hit-tests the current scene and opens the editor for the topmost square.
func (w *Workspace) ClickAt(x, y float64) (*editor.Editor, bool, error) {
	scene, err := w.Scene()
	if err != nil {
		return nil, false, err
	}
	sq, ok := scene.HitTest(x, y)
	if !ok {
		return nil, false, nil
	}
	ed, err := w.Click(sq.ID)
	return ed, err == nil, err
}

func (w *Workspace) commit(id square.NodeID, key square.Key, d square.SquareData) error {
	w.mu.Lock()
	editor.ApplyTo(w.tree.Node(id), d)
	_, err := w.redrawLocked()
	persister, chartID := w.cfg.Persister, w.cfg.ChartID
	w.mu.Unlock()
	if err != nil {
		return err
	}

	if persister == nil || chartID == 0 {
		return nil
	}
	if _, err := persister.Save(context.Background(), client.NewCustomization(chartID, key, d)); err != nil {
		logger.L().Warn("persist customization failed",
			zap.Uint64("chart_id", chartID),
			zap.String("square_class", string(key.SquareClass)),
			zap.Int("depth", key.Depth),
			zap.Error(err),
		)
		w.report(err)
	}
	return nil
}

func (w *Workspace) report(err error) {
	if w.cfg.OnError != nil {
		w.cfg.OnError(err)
	}
}

func (w *Workspace) redrawLocked() (*render.Scene, error) {
	scene, err := render.Layout(w.tree, render.Options{
		Mode:      w.mode,
		Layout:    w.layout,
		Class:     w.class,
		Inclusion: w.inclusion,
		Width:     w.cfg.Width,
		Height:    w.cfg.Height,
		Palette:   w.cfg.Palette,
	})
	if err != nil {
		return nil, err
	}
	w.scene = scene
	w.frames++
	if w.cfg.OnRedraw != nil {
		w.cfg.OnRedraw(scene)
	}
	return scene, nil
}
