package editor

import (
	"testing"

	"github.com/chartviz/engine/internal/square"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestFromNodeDefaults(t *testing.T) {
	got := FromNode(&square.Node{Name: "Branch 1", Size: 25, Color: "#abcdef"})
	want := square.SquareData{
		Title:    "Branch 1",
		Priority: square.Priority{Density: 1, Durability: "single", Decor: "solid"},
		Urgency:  square.UrgencyBlack,
		Aesthetic: square.Aesthetic{
			Affect: square.Affect{FontFamily: "Arial", FontSize: 14},
			Effect: square.Effect{Color: "black"},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("FromNode mismatch (-want +got):\n%s", diff)
	}
}

func TestFromNodeStyled(t *testing.T) {
	n := &square.Node{
		Name: "Leaf",
		Style: &square.Style{
			BorderWidth: 3,
			BorderStyle: square.BorderDouble,
			BorderColor: "#ff2200",
			TextColor:   "#222222",
			TextStyle:   square.TextStyle{Bold: true, Underline: true},
			FontSize:    18,
		},
	}
	got := FromNode(n)
	assert.Equal(t, 3, got.Priority.Density)
	assert.Equal(t, "double", got.Priority.Durability)
	assert.Equal(t, "double", got.Priority.Decor)
	assert.Equal(t, square.UrgencyRed, got.Urgency)
	assert.Equal(t, square.TextStyle{Bold: true, Underline: true}, got.Aesthetic.Impact)
	assert.Equal(t, square.Affect{FontFamily: "Arial", FontSize: 18}, got.Aesthetic.Affect)
	assert.Equal(t, "#222222", got.Aesthetic.Effect.Color)
}

func TestUrgencyFromColor(t *testing.T) {
	cases := map[string]square.Urgency{
		"red":       square.UrgencyRed,
		" Yellow ":  square.UrgencyYellow,
		"#ff1010":   square.UrgencyRed,
		"#fe9a00":   square.UrgencyOrange,
		"#ffee11":   square.UrgencyYellow,
		"#0a7a0a":   square.UrgencyGreen,
		"#111":      square.UrgencyBlack,
		"":          square.UrgencyBlack,
		"not-a-hex": square.UrgencyBlack,
	}
	for in, want := range cases {
		assert.Equal(t, want, UrgencyFromColor(in), in)
	}
}

func TestApplyToRoundTrip(t *testing.T) {
	nodes := []*square.Node{
		{Name: "plain"},
		{Name: "dashed", Style: &square.Style{BorderStyle: square.BorderDashed, BorderColor: "#00aa00", BorderWidth: 2}},
		{Name: "double", Style: &square.Style{BorderStyle: square.BorderDouble, Urgency: square.UrgencyOrange, FontFamily: "Georgia"}},
	}
	for _, n := range nodes {
		first := FromNode(n)
		ApplyTo(n, first)
		if diff := cmp.Diff(first, FromNode(n)); diff != "" {
			t.Errorf("%s: round trip changed data (-first +second):\n%s", n.Name, diff)
		}
	}
}

func TestApplyToUnchangedLeavesNode(t *testing.T) {
	nodes := []*square.Node{
		{Name: "Plain"},
		{Name: "Hex", Style: &square.Style{BorderColor: "#336699", BorderWidth: 2.5}},
		{Name: "Named", Style: &square.Style{BorderColor: "#333333", TextColor: "navy", FontSize: 11}},
	}
	for _, n := range nodes {
		before := *n
		if n.Style != nil {
			s := *n.Style
			before.Style = &s
		}
		ApplyTo(n, FromNode(n))
		if diff := cmp.Diff(&before, n); diff != "" {
			t.Errorf("%s: unchanged save altered the node (-before +after):\n%s", before.Name, diff)
		}
	}
}

func TestApplyStyleKeepsName(t *testing.T) {
	n := &square.Node{Name: "Leaf B"}
	d := FromNode(&square.Node{Name: "Leaf A"})
	d.Urgency = square.UrgencyRed

	ApplyStyle(n, d)
	assert.Equal(t, "Leaf B", n.Name)
	assert.Equal(t, "red", n.Style.BorderColor)
}

func TestApplyToMergesEdits(t *testing.T) {
	n := &square.Node{Name: "Leaf A", Color: "#ccc"}
	d := FromNode(n)
	d.Title = "Leaf A*"
	d.Urgency = square.UrgencyGreen
	d.Priority.Decor = "dotted"
	d.Priority.Density = 0

	ApplyTo(n, d)
	assert.Equal(t, "Leaf A*", n.Name)
	assert.Equal(t, "#ccc", n.Color)
	assert.Equal(t, square.BorderDotted, n.Style.BorderStyle)
	assert.Equal(t, 1.0, n.Style.BorderWidth)
	assert.Equal(t, "green", n.Style.BorderColor)
	assert.Equal(t, square.UrgencyGreen, n.Style.Urgency)
}
