package guidance

import (
	"fmt"

	"github.com/san-kum/navsim/internal/geom"
	"github.com/san-kum/navsim/internal/nav"
	"github.com/san-kum/navsim/internal/workspace"
)

type CarrotParams struct {
	Delta float64 // look-ahead along the path
	K     float64 // heading gain
}

func DefaultCarrotParams() CarrotParams {
	return CarrotParams{Delta: 2.0, K: 1.0}
}

func (p CarrotParams) validate() error {
	if p.Delta <= 0 {
		return fmt.Errorf("%w: delta must be positive, got %f", nav.ErrParameterBounds, p.Delta)
	}
	if p.K <= 0 {
		return fmt.Errorf("%w: gain must be positive, got %f", nav.ErrParameterBounds, p.K)
	}
	return nil
}

// CarrotChase steers toward a virtual point Delta ahead of the robot's
// projection on the start-goal line.
type CarrotChase struct {
	ws     *workspace.Workspace
	line   geom.Line
	params CarrotParams
}

func NewCarrotChase(ws *workspace.Workspace, params CarrotParams) (*CarrotChase, error) {
	if ws == nil {
		return nil, fmt.Errorf("carrot: nil workspace")
	}
	line := ws.Line()
	if line.Degenerate() {
		return nil, nav.ErrDegenerateLine
	}
	if err := params.validate(); err != nil {
		return nil, err
	}
	return &CarrotChase{ws: ws, line: line, params: params}, nil
}

func (c *CarrotChase) Name() string         { return "carrot" }
func (c *CarrotChase) Goal() geom.Point     { return c.ws.Goal() }
func (c *CarrotChase) Params() CarrotParams { return c.params }

// Carrot returns the look-ahead point for position p.
func (c *CarrotChase) Carrot(p geom.Point) geom.Point {
	return c.line.At(c.line.AlongTrack(p) + c.params.Delta)
}

func (c *CarrotChase) Guide(p nav.Pose, t float64) (nav.Command, error) {
	carrot := c.Carrot(p.Point())
	desired := p.Point().Bearing(carrot)
	headingErr := geom.WrapAngle(desired - p.Heading)

	return nav.Command{
		Mode:     nav.ModeTrack,
		TurnRate: c.params.K * headingErr,
		Target:   carrot,
	}, nil
}

func (c *CarrotChase) GetParams() map[string]float64 {
	return map[string]float64{
		"delta": c.params.Delta,
		"k":     c.params.K,
	}
}

func (c *CarrotChase) SetParam(name string, value float64) error {
	p := c.params
	switch name {
	case "delta":
		p.Delta = value
	case "k":
		p.K = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	if err := p.validate(); err != nil {
		return err
	}
	c.params = p
	return nil
}
