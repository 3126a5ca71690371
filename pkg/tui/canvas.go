package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rmax-ai/docgraph/pkg/layout"
)

// Cell layers; a higher layer overwrites a lower one.
const (
	layerEmpty = iota
	layerEdge
	layerNode
	layerLabel
)

type cell struct {
	r     rune
	fg    string
	bold  bool
	layer int
}

// canvas is a fixed grid of styled runes.
type canvas struct {
	w, h  int
	cells []cell
}

func newCanvas(w, h int) *canvas {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &canvas{w: w, h: h, cells: make([]cell, w*h)}
}

func (c *canvas) set(x, y int, r rune, fg string, bold bool, layer int) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	i := y*c.w + x
	if c.cells[i].layer > layer {
		return
	}
	c.cells[i] = cell{r: r, fg: fg, bold: bold, layer: layer}
}

func (c *canvas) at(x, y int) cell {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return cell{}
	}
	return c.cells[y*c.w+x]
}

// line draws a Bresenham segment, leaving both endpoints to the nodes.
func (c *canvas) line(x0, y0, x1, y1 int, r rune, fg string, bold bool) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	x, y := x0, y0
	for {
		if (x != x0 || y != y0) && (x != x1 || y != y1) {
			c.set(x, y, r, fg, bold, layerEdge)
		}
		if x == x1 && y == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

// text writes s starting at x, clipped to the canvas.
func (c *canvas) text(x, y int, s string, fg string, bold bool) {
	for _, r := range s {
		c.set(x, y, r, fg, bold, layerLabel)
		x++
	}
}

// render joins runs of equally styled cells into lipgloss-styled strings.
func (c *canvas) render() string {
	var b strings.Builder
	for y := 0; y < c.h; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		x := 0
		for x < c.w {
			start := c.at(x, y)
			var run strings.Builder
			for x < c.w {
				cur := c.at(x, y)
				if cur.fg != start.fg || cur.bold != start.bold || (cur.layer == layerEmpty) != (start.layer == layerEmpty) {
					break
				}
				if cur.layer == layerEmpty {
					run.WriteByte(' ')
				} else {
					run.WriteRune(cur.r)
				}
				x++
			}
			if start.layer == layerEmpty {
				b.WriteString(run.String())
				continue
			}
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(start.fg)).Bold(start.bold).Render(run.String()))
		}
	}
	return b.String()
}

// plain returns the canvas runes without styling.
func (c *canvas) plain() string {
	var b strings.Builder
	for y := 0; y < c.h; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < c.w; x++ {
			cl := c.at(x, y)
			if cl.layer == layerEmpty {
				b.WriteByte(' ')
			} else {
				b.WriteRune(cl.r)
			}
		}
	}
	return b.String()
}

// projection maps layout units onto canvas cells, fitting the bounding box
// and treating a cell as twice as tall as it is wide.
type projection struct {
	lo      layout.Point
	scale   float64 // cells per unit, vertically
	offX    float64
	offY    float64
	visible bool
}

const canvasPadding = 2

func fit(lo, hi layout.Point, w, h int) projection {
	if w <= 0 || h <= 0 {
		return projection{}
	}
	spanX := hi.X - lo.X
	spanY := hi.Y - lo.Y
	availW := math.Max(float64(w-2*canvasPadding), 1)
	availH := math.Max(float64(h-2), 1)

	scale := math.Inf(1)
	if spanX > 0 {
		scale = math.Min(scale, availW/(2*spanX))
	}
	if spanY > 0 {
		scale = math.Min(scale, availH/spanY)
	}
	if math.IsInf(scale, 1) {
		scale = 1
	}

	return projection{
		lo:      lo,
		scale:   scale,
		offX:    (float64(w) - 2*spanX*scale) / 2,
		offY:    (float64(h) - spanY*scale) / 2,
		visible: true,
	}
}

func (p projection) toCell(pt layout.Point) (int, int) {
	x := p.offX + (pt.X-p.lo.X)*2*p.scale
	y := p.offY + (pt.Y-p.lo.Y)*p.scale
	return int(math.Round(x)), int(math.Round(y))
}

// blend mixes fg over bg with the given opacity. Both are #rrggbb.
func blend(fg, bg string, alpha float64) string {
	if alpha >= 1 {
		return fg
	}
	fr, fgc, fb, ok1 := parseHex(fg)
	br, bgc, bb, ok2 := parseHex(bg)
	if !ok1 || !ok2 {
		return fg
	}
	mix := func(f, b uint8) uint8 {
		return uint8(math.Round(float64(f)*alpha + float64(b)*(1-alpha)))
	}
	return fmt.Sprintf("#%02x%02x%02x", mix(fr, br), mix(fgc, bgc), mix(fb, bb))
}

func parseHex(s string) (r, g, b uint8, ok bool) {
	if len(s) != 7 || s[0] != '#' {
		return 0, 0, 0, false
	}
	var v uint32
	if _, err := fmt.Sscanf(s[1:], "%06x", &v); err != nil {
		return 0, 0, 0, false
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
