package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSVG(t *testing.T) {
	tree := mustTree(t, `{"name": "R&D <core>", "children": [
		{"name": "Ops", "style": {"borderStyle": "double", "borderWidth": 1, "textStyle": {"bold": true, "underline": true}}},
		{"name": "Dev", "style": {"borderStyle": "dotted"}}
	]}`)
	scene, err := Layout(tree, Options{Mode: ModeIncludedBuild, Inclusion: NewInclusion(2)})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, scene))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" width="800" height="800"`))
	assert.True(t, strings.HasSuffix(out, "</svg>\n"))
	assert.Contains(t, out, "R&amp;D &lt;core&gt;")
	assert.Contains(t, out, `data-node-id="0"`)
	assert.Contains(t, out, `data-node-id="2" data-depth="1" opacity="0.35"`)
	assert.Contains(t, out, `font-weight="bold" text-decoration="underline"`)
	assert.Contains(t, out, `stroke-dasharray="1 2"`)
	assert.Equal(t, 3, strings.Count(out, "<g "))
	// the double border adds an inner outline
	assert.Equal(t, 1+3+1, strings.Count(out, "<rect "))
	assert.Equal(t, out, string(SVG(scene)))
}
