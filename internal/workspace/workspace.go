// Package workspace defines the immutable 2-D world a scenario runs in:
// domain bounds, start/goal/initial positions and circular obstacles.
package workspace

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/navsim/internal/geom"
)

// DefaultMargin keeps the obstacle boundary non-degenerate.
const DefaultMargin = 0.1

var (
	ErrInvalidBounds   = errors.New("workspace: bounds must satisfy min <= max")
	ErrInvalidObstacle = errors.New("workspace: obstacle radius must be non-negative")
	ErrInvalidMargin   = errors.New("workspace: margin must be non-negative")
)

// Bounds is a closed axis-aligned rectangle.
type Bounds struct {
	MinX float64 `json:"min_x" yaml:"min_x"`
	MaxX float64 `json:"max_x" yaml:"max_x"`
	MinY float64 `json:"min_y" yaml:"min_y"`
	MaxY float64 `json:"max_y" yaml:"max_y"`
}

func Rect(minX, maxX, minY, maxY float64) Bounds {
	return Bounds{MinX: minX, MaxX: maxX, MinY: minY, MaxY: maxY}
}

func (b Bounds) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

func (b Bounds) Width() float64  { return b.MaxX - b.MinX }
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

func (b Bounds) validate() error {
	for _, v := range []float64{b.MinX, b.MaxX, b.MinY, b.MaxY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrInvalidBounds
		}
	}
	if b.MinX > b.MaxX || b.MinY > b.MaxY {
		return ErrInvalidBounds
	}
	return nil
}

type Obstacle struct {
	Center geom.Point `json:"center" yaml:"center"`
	Radius float64    `json:"radius" yaml:"radius"`
}

func Circle(x, y, r float64) Obstacle {
	return Obstacle{Center: geom.Pt(x, y), Radius: r}
}

type Workspace struct {
	bounds    Bounds
	start     geom.Point
	goal      geom.Point
	init      geom.Point
	obstacles []Obstacle
	margin    float64
}

type Option func(*Workspace)

func WithObstacles(obs ...Obstacle) Option {
	return func(w *Workspace) {
		w.obstacles = append(w.obstacles, obs...)
	}
}

func WithMargin(m float64) Option {
	return func(w *Workspace) { w.margin = m }
}

// WithInit sets the robot's initial position; it defaults to start.
func WithInit(p geom.Point) Option {
	return func(w *Workspace) { w.init = p }
}

func New(bounds Bounds, start, goal geom.Point, opts ...Option) (*Workspace, error) {
	w := &Workspace{
		bounds: bounds,
		start:  start,
		goal:   goal,
		init:   start,
		margin: DefaultMargin,
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := bounds.validate(); err != nil {
		return nil, fmt.Errorf("%w: %+v", err, bounds)
	}
	if w.margin < 0 || math.IsNaN(w.margin) {
		return nil, fmt.Errorf("%w: %f", ErrInvalidMargin, w.margin)
	}
	for i, o := range w.obstacles {
		if o.Radius < 0 || math.IsNaN(o.Radius) {
			return nil, fmt.Errorf("%w: obstacle %d has radius %f", ErrInvalidObstacle, i, o.Radius)
		}
	}

	obs := make([]Obstacle, len(w.obstacles))
	copy(obs, w.obstacles)
	w.obstacles = obs
	return w, nil
}

func (w *Workspace) Bounds() Bounds    { return w.bounds }
func (w *Workspace) Start() geom.Point { return w.start }
func (w *Workspace) Goal() geom.Point  { return w.goal }
func (w *Workspace) Init() geom.Point  { return w.init }
func (w *Workspace) Margin() float64   { return w.margin }
func (w *Workspace) Line() geom.Line   { return geom.Line{From: w.start, To: w.goal} }

// Obstacles returns a copy of the obstacle set.
func (w *Workspace) Obstacles() []Obstacle {
	out := make([]Obstacle, len(w.obstacles))
	copy(out, w.obstacles)
	return out
}

// InCollision reports whether (x, y) lies within radius+margin of any obstacle centre.
func (w *Workspace) InCollision(x, y float64) bool {
	return w.InCollisionMargin(x, y, w.margin)
}

func (w *Workspace) InCollisionMargin(x, y, margin float64) bool {
	for _, o := range w.obstacles {
		if math.Hypot(x-o.Center.X, y-o.Center.Y) <= o.Radius+margin {
			return true
		}
	}
	return false
}

func (w *Workspace) IsValid(x, y float64) bool {
	if !w.bounds.Contains(x, y) {
		return false
	}
	return !w.InCollision(x, y)
}

func (w *Workspace) IsValidPoint(p geom.Point) bool { return w.IsValid(p.X, p.Y) }

func (w *Workspace) DistanceToGoal(x, y float64) float64 {
	return math.Hypot(x-w.goal.X, y-w.goal.Y)
}
