package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chartviz/engine/internal/client"
	"github.com/chartviz/engine/internal/square"
	"github.com/chartviz/engine/internal/workspace"
)

type editFlags struct {
	node       int
	title      string
	urgency    string
	density    int
	durability string
	decor      string
	fontFamily string
	fontSize   int
	color      string
	bold       bool
	italic     bool
	underline  bool

	api   string
	chart uint64
	token string
	out   string
}

func newEditCmd() *cobra.Command {
	var f editFlags
	cmd := &cobra.Command{
		Use:   "edit [tree.json]",
		Short: "Edit one square and write the updated tree",
		Long: `Opens the square editor for --node, applies the given fields and saves.
With --api and --chart the edit is also stored as a customization of that chart.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, argOrStdin(args), f)
		},
	}
	fl := cmd.Flags()
	fl.IntVar(&f.node, "node", -1, "node id to edit (see classes)")
	fl.StringVar(&f.title, "title", "", "label text")
	fl.StringVar(&f.urgency, "urgency", "", "red, orange, yellow, green or black")
	fl.IntVar(&f.density, "density", 0, "border width")
	fl.StringVar(&f.durability, "durability", "", "single or double")
	fl.StringVar(&f.decor, "decor", "", "solid, dotted, dashed or double")
	fl.StringVar(&f.fontFamily, "font-family", "", "label font family")
	fl.IntVar(&f.fontSize, "font-size", 0, "label font size")
	fl.StringVar(&f.color, "color", "", "label color")
	fl.BoolVar(&f.bold, "bold", false, "bold label")
	fl.BoolVar(&f.italic, "italic", false, "italic label")
	fl.BoolVar(&f.underline, "underline", false, "underlined label")
	fl.StringVar(&f.api, "api", "", "base URL of the customization API")
	fl.Uint64Var(&f.chart, "chart", 0, "chart id the edit belongs to")
	fl.StringVar(&f.token, "token", "", "bearer token for the API")
	fl.StringVarP(&f.out, "out", "o", "-", "output file for the updated tree")
	_ = cmd.MarkFlagRequired("node")
	return cmd
}

func runEdit(cmd *cobra.Command, path string, f editFlags) error {
	tree, err := readTree(cmd, path)
	if err != nil {
		return err
	}

	var persistErr error
	cfg := workspace.Config{
		ChartID: f.chart,
		OnError: func(err error) { persistErr = err },
	}
	if f.api != "" {
		cfg.Persister = client.New(f.api, client.WithToken(f.token))
	}
	ws := workspace.New(tree, cfg)

	ed, err := ws.Click(square.NodeID(f.node))
	if err != nil {
		return err
	}

	fl := cmd.Flags()
	if fl.Changed("title") {
		ed.SetTitle(f.title)
	}
	if fl.Changed("urgency") {
		if err := ed.SetUrgency(square.Urgency(f.urgency)); err != nil {
			return err
		}
	}
	if fl.Changed("density") {
		ed.SetDensity(f.density)
	}
	if fl.Changed("durability") {
		ed.SetDurability(f.durability)
	}
	if fl.Changed("decor") {
		ed.SetDecor(f.decor)
	}
	if fl.Changed("font-family") || fl.Changed("font-size") {
		family, size := ed.Data().Aesthetic.Affect.FontFamily, ed.Data().Aesthetic.Affect.FontSize
		if fl.Changed("font-family") {
			family = f.fontFamily
		}
		if fl.Changed("font-size") {
			size = f.fontSize
		}
		ed.SetFont(family, size)
	}
	if fl.Changed("color") {
		ed.SetColor(f.color)
	}
	if fl.Changed("bold") || fl.Changed("italic") || fl.Changed("underline") {
		ts := ed.Data().Aesthetic.Impact
		if fl.Changed("bold") {
			ts.Bold = f.bold
		}
		if fl.Changed("italic") {
			ts.Italic = f.italic
		}
		if fl.Changed("underline") {
			ts.Underline = f.underline
		}
		ed.SetImpact(ts)
	}

	if err := ed.Save(); err != nil {
		return err
	}

	b, err := ws.Tree().Marshal()
	if err != nil {
		return err
	}
	w, closeOut, err := output(cmd, f.out)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	if cerr := closeOut(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if persistErr != nil {
		return fmt.Errorf("tree updated but customization was not stored: %w", persistErr)
	}
	return nil
}
