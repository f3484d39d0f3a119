package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chartviz/engine/internal/render"
	"github.com/chartviz/engine/internal/square"
	"github.com/chartviz/engine/internal/theme"
)

type renderFlags struct {
	mode    string
	layout  string
	class   string
	exclude []int
	theme   string
	width   float64
	height  float64
	scale   float64
	format  string
	out     string
}

func newRenderCmd() *cobra.Command {
	var f renderFlags
	cmd := &cobra.Command{
		Use:   "render [tree.json]",
		Short: "Lay out a square tree and write SVG or scene JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, argOrStdin(args), f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.mode, "mode", "scaled", "scaled, scoped, included-build or treemap")
	fl.StringVar(&f.layout, "layout", "radial", "radial or diagonal")
	fl.StringVar(&f.class, "class", "", "square class shown in scoped mode")
	fl.IntSliceVar(&f.exclude, "exclude", nil, "node ids toggled out in included-build mode")
	fl.StringVar(&f.theme, "theme", theme.Default, "palette name")
	fl.Float64Var(&f.width, "width", render.DefaultWidth, "canvas width")
	fl.Float64Var(&f.height, "height", render.DefaultHeight, "canvas height")
	fl.Float64Var(&f.scale, "scale", render.DefaultScale, "root weight multiplier")
	fl.StringVar(&f.format, "format", "svg", "svg or json")
	fl.StringVarP(&f.out, "out", "o", "-", "output file")
	return cmd
}

func runRender(cmd *cobra.Command, path string, f renderFlags) error {
	tree, err := readTree(cmd, path)
	if err != nil {
		return err
	}
	mode, err := render.ParseMode(f.mode)
	if err != nil {
		return err
	}
	layout, err := render.ParseVariant(f.layout)
	if err != nil {
		return err
	}
	pal, ok := theme.Lookup(f.theme)
	if !ok {
		return fmt.Errorf("unknown theme %q", f.theme)
	}

	ids := make([]square.NodeID, len(f.exclude))
	for i, id := range f.exclude {
		ids[i] = square.NodeID(id)
	}
	scene, err := render.Layout(tree, render.Options{
		Mode:      mode,
		Layout:    layout,
		Class:     square.Class(f.class),
		Inclusion: render.NewInclusion(ids...),
		Width:     f.width,
		Height:    f.height,
		Scale:     f.scale,
		Palette:   pal,
	})
	if err != nil {
		return err
	}

	w, closeOut, err := output(cmd, f.out)
	if err != nil {
		return err
	}
	switch f.format {
	case "svg":
		err = render.WriteSVG(w, scene)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(scene)
	default:
		err = fmt.Errorf("unknown format %q", f.format)
	}
	if cerr := closeOut(); err == nil {
		err = cerr
	}
	return err
}
