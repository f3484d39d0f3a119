package editor

import (
	"errors"
	"net/url"
	"testing"

	"github.com/chartviz/engine/internal/square"
	appErr "github.com/chartviz/engine/pkg/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveWithoutChangesPassesInitialData(t *testing.T) {
	initial := FromNode(&square.Node{Name: "Root", Style: &square.Style{BorderColor: "orange"}})

	var saved []square.SquareData
	e := New(initial, func(d square.SquareData) error {
		saved = append(saved, d)
		return nil
	})
	require.True(t, e.IsOpen())
	require.False(t, e.Dirty())

	require.NoError(t, e.Save())
	require.Len(t, saved, 1)
	if diff := cmp.Diff(initial, saved[0]); diff != "" {
		t.Fatalf("saved data differs from initial (-initial +saved):\n%s", diff)
	}
	assert.False(t, e.IsOpen())
	assert.ErrorIs(t, e.Save(), ErrClosed)
}

func TestSaveCarriesEdits(t *testing.T) {
	var got square.SquareData
	e := New(FromNode(&square.Node{Name: "x"}), func(d square.SquareData) error { got = d; return nil })

	e.SetTitle("y")
	e.SetDensity(4)
	e.SetDurability("double")
	e.SetDecor("dashed")
	require.NoError(t, e.SetUrgency(square.UrgencyRed))
	require.ErrorIs(t, e.SetUrgency("purple"), ErrInvalidUrgency)
	e.SetImpact(square.TextStyle{Italic: true})
	e.SetFont("Courier", 0)
	e.SetColor("#ff00ff")
	require.True(t, e.Dirty())

	require.NoError(t, e.Save())
	assert.Equal(t, "y", got.Title)
	assert.Equal(t, square.Priority{Density: 4, Durability: "double", Decor: "dashed"}, got.Priority)
	assert.Equal(t, square.UrgencyRed, got.Urgency)
	assert.Equal(t, square.Affect{FontFamily: "Courier", FontSize: 14}, got.Aesthetic.Affect)
	assert.Equal(t, "#ff00ff", got.Aesthetic.Effect.Color)
}

func TestSaveFailureKeepsEditorOpen(t *testing.T) {
	boom := errors.New("network down")
	e := New(square.SquareData{Title: "a"}, func(square.SquareData) error { return boom })
	require.ErrorIs(t, e.Save(), boom)
	assert.True(t, e.IsOpen())
}

func TestCancelDiscards(t *testing.T) {
	e := New(square.SquareData{Title: "a"}, nil)
	e.SetTitle("b")
	e.Cancel()
	assert.False(t, e.IsOpen())
	assert.Equal(t, "a", e.Data().Title)
}

func TestDetailingsLink(t *testing.T) {
	tree, err := square.Parse([]byte(`{"name":"Root","children":[{"name":"Branch 1","children":[{"name":"Leaf"}]}]}`))
	require.NoError(t, err)

	e := New(FromNode(tree.Node(2)), nil).WithContext(ContextFor(tree, 2))
	link, err := e.DetailingsLink()
	require.NoError(t, err)
	assert.Equal(t, "/square-form?depth=2&parentText=Branch+1&squareClass=leaf", link)

	u, err := url.Parse(link)
	require.NoError(t, err)
	key, err := ParseDetailingsQuery(u.Query())
	require.NoError(t, err)
	assert.Equal(t, square.Key{SquareClass: square.ClassLeaf, ParentText: "Branch 1", Depth: 2}, key)
}

func TestDetailingsLinkMissingParentIsBlocked(t *testing.T) {
	tree, err := square.Parse([]byte(`{"name":"Root"}`))
	require.NoError(t, err)

	e := New(FromNode(tree.Root), nil).WithContext(ContextFor(tree, 0))
	link, err := e.DetailingsLink()
	assert.Empty(t, link)
	require.ErrorIs(t, err, ErrMissingContext)
	assert.True(t, appErr.IsCode(err, appErr.CodeMissingContext))

	_, err = DetailingsLink(Context{SquareClass: square.ClassLeaf, ParentText: "p"})
	require.ErrorIs(t, err, ErrMissingContext)
}

func TestParseDetailingsQueryRejectsBadDepth(t *testing.T) {
	_, err := ParseDetailingsQuery(url.Values{"squareClass": {"leaf"}, "parentText": {"p"}, "depth": {"two"}})
	require.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	_, err = ParseDetailingsQuery(url.Values{"squareClass": {"trunk"}, "parentText": {"p"}, "depth": {"1"}})
	require.ErrorIs(t, err, ErrMissingContext)
}

func TestParseDetailingsQueryRejectsClassDepthMismatch(t *testing.T) {
	_, err := ParseDetailingsQuery(url.Values{"squareClass": {"root"}, "parentText": {"p"}, "depth": {"2"}})
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	key, err := ParseDetailingsQuery(url.Values{"squareClass": {"fruit"}, "parentText": {"Leaf A"}, "depth": {"5"}})
	require.NoError(t, err)
	assert.Equal(t, square.ClassFruit, key.SquareClass)
}
