package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/chartviz/engine/internal/square"
)

const svgHeader = `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">` + "\n"

// WriteSVG draws the scene as a standalone SVG document.
func WriteSVG(w io.Writer, scene *Scene) error {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, svgHeader, num(scene.Width), num(scene.Height), num(scene.Width), num(scene.Height))
	fmt.Fprintf(&buf, `  <rect class="background" x="0" y="0" width="%s" height="%s" fill="%s"/>`+"\n",
		num(scene.Width), num(scene.Height), attr(scene.Background))

	for _, sq := range scene.Squares {
		writeSquare(&buf, sq)
	}
	buf.WriteString("</svg>\n")

	_, err := w.Write(buf.Bytes())
	return err
}

// SVG is WriteSVG into a byte slice.
func SVG(scene *Scene) []byte {
	var buf bytes.Buffer
	_ = WriteSVG(&buf, scene)
	return buf.Bytes()
}

func writeSquare(buf *bytes.Buffer, sq Square) {
	fmt.Fprintf(buf, `  <g class="square %s" data-node-id="%d" data-depth="%d" opacity="%s">`+"\n",
		sq.Class, sq.ID, sq.Depth, num(sq.Opacity))

	fmt.Fprintf(buf, `    <rect x="%s" y="%s" width="%s" height="%s" fill="%s" stroke="%s" stroke-width="%s"%s/>`+"\n",
		num(sq.X), num(sq.Y), num(sq.W), num(sq.H), attr(sq.Fill), attr(sq.Stroke), num(sq.StrokeWidth), dash(sq))

	if sq.BorderStyle == square.BorderDouble {
		inset := sq.StrokeWidth * 2
		if sq.W > 2*inset && sq.H > 2*inset {
			fmt.Fprintf(buf, `    <rect x="%s" y="%s" width="%s" height="%s" fill="none" stroke="%s" stroke-width="%s"/>`+"\n",
				num(sq.X+inset), num(sq.Y+inset), num(sq.W-2*inset), num(sq.H-2*inset), attr(sq.Stroke), num(sq.StrokeWidth))
		}
	}

	if sq.Label != "" {
		fmt.Fprintf(buf, `    <text x="%s" y="%s" text-anchor="middle" dominant-baseline="middle" font-family="%s" font-size="%d" fill="%s"%s>`,
			num(sq.X+sq.W/2), num(sq.Y+sq.H/2), attr(sq.FontFamily), sq.FontSize, attr(sq.TextColor), textDecor(sq.TextStyle))
		_ = xml.EscapeText(buf, []byte(sq.Label))
		buf.WriteString("</text>\n")
	}
	buf.WriteString("  </g>\n")
}

func dash(sq Square) string {
	switch sq.BorderStyle {
	case square.BorderDotted:
		return fmt.Sprintf(` stroke-dasharray="%s %s"`, num(sq.StrokeWidth), num(sq.StrokeWidth*2))
	case square.BorderDashed:
		return fmt.Sprintf(` stroke-dasharray="%s %s"`, num(sq.StrokeWidth*4), num(sq.StrokeWidth*2))
	}
	return ""
}

func textDecor(ts square.TextStyle) string {
	var out string
	if ts.Bold {
		out += ` font-weight="bold"`
	}
	if ts.Italic {
		out += ` font-style="italic"`
	}
	if ts.Underline {
		out += ` text-decoration="underline"`
	}
	return out
}

func num(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}

func attr(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
