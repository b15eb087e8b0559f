package guidance

import (
	"fmt"
	"math"

	"github.com/san-kum/navsim/internal/geom"
	"github.com/san-kum/navsim/internal/nav"
	"github.com/san-kum/navsim/internal/workspace"
)

type VectorFieldParams struct {
	Tau          float64 // boundary layer half-width
	K            float64 // heading gain
	Kappa        float64 // shape exponent inside the layer
	Alpha        float64 // approach angle at the layer edge
	EntryHeading float64 // approach angle outside the layer
}

func DefaultVectorFieldParams() VectorFieldParams {
	return VectorFieldParams{
		Tau:          5,
		K:            2,
		Kappa:        1,
		Alpha:        math.Pi / 4,
		EntryHeading: math.Pi / 3,
	}
}

func (p VectorFieldParams) validate() error {
	switch {
	case p.Tau <= 0:
		return fmt.Errorf("%w: tau must be positive, got %f", nav.ErrParameterBounds, p.Tau)
	case p.K <= 0:
		return fmt.Errorf("%w: k must be positive, got %f", nav.ErrParameterBounds, p.K)
	case p.Kappa <= 0:
		return fmt.Errorf("%w: kappa must be positive, got %f", nav.ErrParameterBounds, p.Kappa)
	case p.Alpha <= 0 || p.Alpha > p.EntryHeading:
		return fmt.Errorf("%w: alpha must be in (0, entry heading], got %f", nav.ErrParameterBounds, p.Alpha)
	case p.EntryHeading > math.Pi/2:
		return fmt.Errorf("%w: entry heading must not exceed pi/2, got %f", nav.ErrParameterBounds, p.EntryHeading)
	}
	return nil
}

// VectorField defines a desired heading at every point around the
// start-goal line. Outside the boundary layer the robot approaches the
// line at EntryHeading; inside it the approach angle decays to zero with
// the cross-track error.
type VectorField struct {
	ws     *workspace.Workspace
	line   geom.Line
	params VectorFieldParams
}

func NewVectorField(ws *workspace.Workspace, params VectorFieldParams) (*VectorField, error) {
	if ws == nil {
		return nil, fmt.Errorf("vectorfield: nil workspace")
	}
	line := ws.Line()
	if line.Degenerate() {
		return nil, nav.ErrDegenerateLine
	}
	if err := params.validate(); err != nil {
		return nil, err
	}
	return &VectorField{ws: ws, line: line, params: params}, nil
}

func (v *VectorField) Name() string              { return "vectorfield" }
func (v *VectorField) Goal() geom.Point          { return v.ws.Goal() }
func (v *VectorField) Params() VectorFieldParams { return v.params }

// ApproachAngle returns the unsigned angle between the field and the path
// direction at cross-track error e.
func (v *VectorField) ApproachAngle(e float64) float64 {
	ae := math.Abs(e)
	if ae >= v.params.Tau {
		return v.params.EntryHeading
	}
	return v.params.Alpha * math.Pow(ae/v.params.Tau, v.params.Kappa)
}

// DesiredHeading is the field direction at p.
func (v *VectorField) DesiredHeading(p geom.Point) float64 {
	e := v.line.CrossTrack(p)
	sign := 0.0
	switch {
	case e > 0:
		sign = 1
	case e < 0:
		sign = -1
	}
	return geom.WrapAngle(v.line.Bearing() - sign*v.ApproachAngle(e))
}

func (v *VectorField) Guide(p nav.Pose, t float64) (nav.Command, error) {
	desired := v.DesiredHeading(p.Point())
	headingErr := geom.WrapAngle(desired - p.Heading)

	return nav.Command{
		Mode:     nav.ModeTrack,
		TurnRate: v.params.K * headingErr,
		Target:   p.Point().Step(desired, 1),
	}, nil
}

func (v *VectorField) GetParams() map[string]float64 {
	return map[string]float64{
		"tau":           v.params.Tau,
		"k":             v.params.K,
		"kappa":         v.params.Kappa,
		"alpha":         v.params.Alpha,
		"entry_heading": v.params.EntryHeading,
	}
}

func (v *VectorField) SetParam(name string, value float64) error {
	p := v.params
	switch name {
	case "tau":
		p.Tau = value
	case "k":
		p.K = value
	case "kappa":
		p.Kappa = value
	case "alpha":
		p.Alpha = value
	case "entry_heading":
		p.EntryHeading = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	if err := p.validate(); err != nil {
		return err
	}
	v.params = p
	return nil
}
