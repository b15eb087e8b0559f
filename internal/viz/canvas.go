package viz

import (
	"math"
	"strings"

	"github.com/san-kum/navsim/internal/geom"
	"github.com/san-kum/navsim/internal/workspace"
)

// Braille cells hold 2x4 dots:
// 1 4
// 2 5
// 3 6
// 7 8
const brailleBlank = 0x2800

var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a character grid of braille cells. Pixel coordinates run
// (Width*2) x (Height*4) with y growing downward.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, Grid: make([][]rune, h)}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= pixelMap[y%4][x%2]
}

func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&pixelMap[y%4][x%2] != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Viewport maps workspace coordinates onto canvas pixels, keeping the
// aspect ratio and flipping y so north is up.
type Viewport struct {
	bounds workspace.Bounds
	scale  float64
	height int
}

func NewViewport(b workspace.Bounds, c *Canvas) Viewport {
	pw, ph := float64(c.Width*2-1), float64(c.Height*4-1)
	scale := math.Min(pw/b.Width(), ph/b.Height())
	return Viewport{bounds: b, scale: scale, height: c.Height*4 - 1}
}

func (v Viewport) Project(p geom.Point) (int, int) {
	x := (p.X - v.bounds.MinX) * v.scale
	y := (p.Y - v.bounds.MinY) * v.scale
	return int(math.Round(x)), v.height - int(math.Round(y))
}

// Scale is pixels per world unit.
func (v Viewport) Scale() float64 { return v.scale }

func (c *Canvas) Line(v Viewport, a, b geom.Point) {
	x0, y0 := v.Project(a)
	x1, y1 := v.Project(b)
	c.DrawLine(x0, y0, x1, y1)
}

func (c *Canvas) Polyline(v Viewport, pts []geom.Point) {
	if len(pts) == 1 {
		x, y := v.Project(pts[0])
		c.Set(x, y)
		return
	}
	for i := 1; i < len(pts); i++ {
		c.Line(v, pts[i-1], pts[i])
	}
}

func (c *Canvas) Circle(v Viewport, center geom.Point, r float64) {
	n := int(math.Max(12, math.Ceil(2*math.Pi*r*v.scale)))
	prev := center.Step(0, r)
	for i := 1; i <= n; i++ {
		next := center.Step(2*math.Pi*float64(i)/float64(n), r)
		c.Line(v, prev, next)
		prev = next
	}
}

// Cross marks p with a small x.
func (c *Canvas) Cross(v Viewport, p geom.Point) {
	x, y := v.Project(p)
	for d := -1; d <= 1; d++ {
		c.Set(x+d, y+d)
		c.Set(x+d, y-d)
	}
}

// DrawWorkspace renders the bounds, obstacles, reference line and endpoints.
func (c *Canvas) DrawWorkspace(v Viewport, ws *workspace.Workspace) {
	b := ws.Bounds()
	corners := []geom.Point{
		geom.Pt(b.MinX, b.MinY), geom.Pt(b.MaxX, b.MinY),
		geom.Pt(b.MaxX, b.MaxY), geom.Pt(b.MinX, b.MaxY),
		geom.Pt(b.MinX, b.MinY),
	}
	c.Polyline(v, corners)
	for _, o := range ws.Obstacles() {
		c.Circle(v, o.Center, o.Radius)
	}
	c.dashed(v, ws.Start(), ws.Goal())
	c.Cross(v, ws.Start())
	c.Cross(v, ws.Goal())
}

func (c *Canvas) dashed(v Viewport, a, b geom.Point) {
	l := geom.Line{From: a, To: b}
	n := int(l.Length() * v.scale / 2)
	for i := 0; i <= n; i += 2 {
		x, y := v.Project(l.Lerp(float64(i) / float64(max(n, 1))))
		c.Set(x, y)
	}
}

// Robot draws the pose as a dot with a short heading tick.
func (c *Canvas) Robot(v Viewport, p geom.Point, heading float64) {
	x, y := v.Project(p)
	c.Set(x, y)
	c.Set(x+1, y)
	c.Set(x, y+1)
	c.Set(x+1, y+1)
	tip := 4 / v.scale
	c.Line(v, p, p.Step(heading, tip))
}

// PlotScenario renders a static map of ws with the given paths overlaid.
func PlotScenario(ws *workspace.Workspace, w, h int, paths ...[]geom.Point) string {
	c := NewCanvas(w, h)
	v := NewViewport(ws.Bounds(), c)
	c.DrawWorkspace(v, ws)
	for _, p := range paths {
		c.Polyline(v, p)
	}
	return c.String()
}
