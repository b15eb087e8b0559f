package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/navsim/internal/geom"
	"github.com/san-kum/navsim/internal/workspace"
)

// Palette for overlaid paths, cycled in order.
var pathColors = []string{"#00d7ff", "#ff5fd7", "#afff5f", "#ffaf00", "#af87ff"}

type Path struct {
	Name   string
	Points []geom.Point
	Color  string
}

// Scene is a workspace and the paths driven through it.
type Scene struct {
	Workspace *workspace.Workspace
	Paths     []Path
	Width     int
}

func NewScene(ws *workspace.Workspace, width int) *Scene {
	if width <= 0 {
		width = 600
	}
	return &Scene{Workspace: ws, Width: width}
}

func (s *Scene) AddPath(name string, pts []geom.Point) {
	color := pathColors[len(s.Paths)%len(pathColors)]
	s.Paths = append(s.Paths, Path{Name: name, Points: pts, Color: color})
}

// frame maps world coordinates to SVG pixels with y pointing up.
type frame struct {
	b     workspace.Bounds
	scale float64
	h     float64
}

func (f frame) x(v float64) float64 { return (v - f.b.MinX) * f.scale }
func (f frame) y(v float64) float64 { return f.h - (v-f.b.MinY)*f.scale }

// SVG renders the scene. Obstacles are drawn with their safety margin as a
// dashed ring and the start-goal reference line is dotted.
func (s *Scene) SVG() string {
	b := s.Workspace.Bounds()
	scale := float64(s.Width) / b.Width()
	height := b.Height() * scale
	f := frame{b: b, scale: scale, h: height}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%.0f" viewBox="0 0 %d %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, s.Width, height, s.Width, height))

	sb.WriteString(`<g id="obstacles">` + "\n")
	margin := s.Workspace.Margin()
	for _, o := range s.Workspace.Obstacles() {
		cx, cy := f.x(o.Center.X), f.y(o.Center.Y)
		if margin > 0 {
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="#5f5f5f" stroke-dasharray="3,3"/>`+"\n",
				cx, cy, (o.Radius+margin)*scale))
		}
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="#3a3a3a"/>`+"\n",
			cx, cy, o.Radius*scale))
	}
	sb.WriteString("</g>\n")

	start, goal := s.Workspace.Start(), s.Workspace.Goal()
	sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#767676" stroke-dasharray="2,4"/>`+"\n",
		f.x(start.X), f.y(start.Y), f.x(goal.X), f.y(goal.Y)))

	for _, p := range s.Paths {
		writePath(&sb, f, p)
	}

	sb.WriteString(fmt.Sprintf(`<circle id="start" cx="%.1f" cy="%.1f" r="4" fill="#5fff87"/>`+"\n", f.x(start.X), f.y(start.Y)))
	sb.WriteString(fmt.Sprintf(`<circle id="goal" cx="%.1f" cy="%.1f" r="4" fill="#ff5f5f"/>`+"\n", f.x(goal.X), f.y(goal.Y)))
	sb.WriteString("</svg>\n")
	return sb.String()
}

func writePath(sb *strings.Builder, f frame, p Path) {
	if len(p.Points) < 2 {
		return
	}
	sb.WriteString(fmt.Sprintf(`<path id="%s" fill="none" stroke="%s" stroke-width="1.5" d="M`, p.Name, p.Color))
	for i, pt := range p.Points {
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", f.x(pt.X), f.y(pt.Y)))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", f.x(pt.X), f.y(pt.Y)))
		}
	}
	sb.WriteString(`"/>` + "\n")
}

func (s *Scene) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, s.SVG())
	return int64(n), err
}
