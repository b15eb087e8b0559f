package guidance

import (
	"fmt"
	"math"

	"github.com/san-kum/navsim/internal/geom"
	"github.com/san-kum/navsim/internal/nav"
	"github.com/san-kum/navsim/internal/workspace"
)

type NLGLParams struct {
	L     float64 // capture circle radius
	Speed float64 // forward speed of the run, not tunable
}

func DefaultNLGLParams() NLGLParams {
	return NLGLParams{L: 10, Speed: 1}
}

func (p NLGLParams) validate() error {
	if p.L <= 0 {
		return fmt.Errorf("%w: L must be positive, got %f", nav.ErrParameterBounds, p.L)
	}
	if p.Speed <= 0 {
		return fmt.Errorf("%w: speed must be positive, got %f", nav.ErrParameterBounds, p.Speed)
	}
	return nil
}

// NLGL commands a turn rate proportional to the sine of the angle to the
// point where a circle of radius L around the robot cuts the path segment.
type NLGL struct {
	ws     *workspace.Workspace
	line   geom.Line
	params NLGLParams
}

func NewNLGL(ws *workspace.Workspace, params NLGLParams) (*NLGL, error) {
	if ws == nil {
		return nil, fmt.Errorf("nlgl: nil workspace")
	}
	line := ws.Line()
	if line.Degenerate() {
		return nil, nav.ErrDegenerateLine
	}
	if err := params.validate(); err != nil {
		return nil, err
	}
	return &NLGL{ws: ws, line: line, params: params}, nil
}

func (n *NLGL) Name() string       { return "nlgl" }
func (n *NLGL) Goal() geom.Point   { return n.ws.Goal() }
func (n *NLGL) Params() NLGLParams { return n.params }

// Roots solves |start + t*(goal-start) - p| = L for t. ok is false when the
// discriminant is negative.
func (n *NLGL) Roots(p geom.Point) (t1, t2 float64, ok bool) {
	s := n.line.From
	d := n.line.To.Sub(s)

	a := d.X*d.X + d.Y*d.Y
	b := 2 * (d.X*(s.X-p.X) + d.Y*(s.Y-p.Y))
	c := (s.X-p.X)*(s.X-p.X) + (s.Y-p.Y)*(s.Y-p.Y) - n.params.L*n.params.L

	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, 0, false
	}
	sq := math.Sqrt(disc)
	return (-b + sq) / (2 * a), (-b - sq) / (2 * a), true
}

// Target returns the capture-circle intersection on the segment with the
// larger x coordinate. It returns nav.ErrNoTarget when the circle misses
// the segment.
func (n *NLGL) Target(p geom.Point) (geom.Point, error) {
	t1, t2, ok := n.Roots(p)
	if !ok {
		return geom.Point{}, nav.ErrNoTarget
	}

	var (
		best  geom.Point
		bestT float64
		found bool
	)
	for _, t := range []float64{t1, t2} {
		if t < 0 || t > 1 {
			continue
		}
		cand := n.line.Lerp(t)
		if !found || cand.X > best.X || (cand.X == best.X && t > bestT) {
			best, bestT, found = cand, t, true
		}
	}
	if !found {
		return geom.Point{}, nav.ErrNoTarget
	}
	return best, nil
}

func (n *NLGL) Guide(p nav.Pose, t float64) (nav.Command, error) {
	target, err := n.Target(p.Point())
	if err != nil {
		return nav.Command{}, err
	}

	eta := geom.WrapAngle(p.Point().Bearing(target) - p.Heading)
	u := 2 * n.params.Speed / n.params.L * math.Sin(eta)

	return nav.Command{Mode: nav.ModeTrack, TurnRate: u, Target: target}, nil
}

func (n *NLGL) GetParams() map[string]float64 {
	return map[string]float64{
		"L": n.params.L,
	}
}

func (n *NLGL) SetParam(name string, value float64) error {
	p := n.params
	switch name {
	case "L":
		p.L = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	if err := p.validate(); err != nil {
		return err
	}
	n.params = p
	return nil
}
