package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rmax-ai/docgraph/pkg/layout"
)

func TestCanvas_LineSkipsEndpoints(t *testing.T) {
	c := newCanvas(5, 1)
	c.line(0, 0, 4, 0, '-', "#ffffff", false)
	assert.Equal(t, " --- ", c.plain())
}

func TestCanvas_Layers(t *testing.T) {
	c := newCanvas(3, 1)
	c.set(1, 0, 'o', "#ffffff", false, layerNode)
	c.line(0, 0, 2, 0, '-', "#ffffff", false)
	assert.Equal(t, " o ", c.plain())

	c.text(0, 0, "abcd", "#ffffff", false)
	assert.Equal(t, "abc", c.plain())
}

func TestCanvas_DiagonalLine(t *testing.T) {
	c := newCanvas(4, 4)
	c.line(0, 0, 3, 3, '\\', "#ffffff", false)
	assert.Equal(t, "    \n \\  \n  \\ \n    ", c.plain())
}

func TestCanvas_RenderKeepsText(t *testing.T) {
	c := newCanvas(4, 2)
	c.text(0, 1, "hi", "#ff0000", true)
	out := c.render()
	assert.Contains(t, out, "hi")
}

func TestBlend(t *testing.T) {
	assert.Equal(t, "#808080", blend("#ffffff", "#000000", 0.5))
	assert.Equal(t, "#123456", blend("#123456", "#000000", 1))
	assert.Equal(t, "red", blend("red", "#000000", 0.5))
}

func TestFit(t *testing.T) {
	p := fit(layout.Point{X: -10, Y: -10}, layout.Point{X: 10, Y: 10}, 84, 22)
	x0, y0 := p.toCell(layout.Point{X: -10, Y: -10})
	x1, y1 := p.toCell(layout.Point{X: 10, Y: 10})
	cx, cy := p.toCell(layout.Point{})

	assert.GreaterOrEqual(t, x0, 0)
	assert.GreaterOrEqual(t, y0, 0)
	assert.Less(t, x1, 84)
	assert.Less(t, y1, 22)
	assert.Equal(t, 42, cx)
	assert.Equal(t, 11, cy)

	single := fit(layout.Point{X: 5, Y: 5}, layout.Point{X: 5, Y: 5}, 10, 10)
	sx, sy := single.toCell(layout.Point{X: 5, Y: 5})
	assert.Equal(t, 5, sx)
	assert.Equal(t, 5, sy)
}
