package guidance

import (
	"fmt"
	"math"

	"github.com/san-kum/navsim/internal/geom"
	"github.com/san-kum/navsim/internal/nav"
	"github.com/san-kum/navsim/internal/workspace"
)

const (
	ScanCandidates = 36
	scanFrom       = math.Pi / 6
	scanTo         = 2 * math.Pi
)

// ScanOffsets returns the wall-follow heading offsets in scan order: an
// inclusive sweep from pi/6 to 2pi.
func ScanOffsets() []float64 {
	offsets := make([]float64, ScanCandidates)
	inc := (scanTo - scanFrom) / float64(ScanCandidates-1)
	for i := range offsets {
		offsets[i] = scanFrom + float64(i)*inc
	}
	return offsets
}

var scanOffsets = ScanOffsets()

type Bug0Params struct {
	StepSize      float64
	GoalThreshold float64
}

func DefaultBug0Params() Bug0Params {
	return Bug0Params{StepSize: 0.1, GoalThreshold: 0.2}
}

func (p Bug0Params) validate() error {
	if p.StepSize <= 0 {
		return fmt.Errorf("%w: step size must be positive, got %f", nav.ErrParameterBounds, p.StepSize)
	}
	if p.GoalThreshold <= 0 {
		return fmt.Errorf("%w: goal threshold must be positive, got %f", nav.ErrParameterBounds, p.GoalThreshold)
	}
	return nil
}

// Decision is the outcome of one Bug0 step.
type Decision struct {
	Mode    nav.Mode
	Heading float64
	// Candidate is the index into ScanOffsets that was accepted, or -1.
	Candidate int
	Next      geom.Point
}

type Bug0 struct {
	ws     *workspace.Workspace
	params Bug0Params
}

func NewBug0(ws *workspace.Workspace, params Bug0Params) (*Bug0, error) {
	if ws == nil {
		return nil, fmt.Errorf("bug0: nil workspace")
	}
	if err := params.validate(); err != nil {
		return nil, err
	}
	return &Bug0{ws: ws, params: params}, nil
}

func (b *Bug0) Name() string       { return "bug0" }
func (b *Bug0) Goal() geom.Point   { return b.ws.Goal() }
func (b *Bug0) Params() Bug0Params { return b.params }

func (b *Bug0) ReachedGoal(p nav.Pose) bool {
	return b.ws.DistanceToGoal(p.X, p.Y) <= b.params.GoalThreshold
}

// Decide tries the straight step toward the goal and falls back to the
// first valid heading of the wall-follow scan. When nothing is valid the
// robot holds its position.
func (b *Bug0) Decide(p nav.Pose) Decision {
	pos := p.Point()
	heading := pos.Bearing(b.ws.Goal())

	next := pos.Step(heading, b.params.StepSize)
	if b.ws.IsValidPoint(next) {
		return Decision{Mode: nav.ModeDirect, Heading: heading, Candidate: -1, Next: next}
	}

	for i, off := range scanOffsets {
		h := heading + off
		cand := pos.Step(h, b.params.StepSize)
		if b.ws.IsValidPoint(cand) {
			return Decision{Mode: nav.ModeWallFollow, Heading: geom.WrapAngle(h), Candidate: i, Next: cand}
		}
	}

	return Decision{Mode: nav.ModeHold, Heading: p.Heading, Candidate: -1, Next: pos}
}

func (b *Bug0) Guide(p nav.Pose, t float64) (nav.Command, error) {
	d := b.Decide(p)
	advance := b.params.StepSize
	if d.Mode == nav.ModeHold {
		advance = 0
	}
	return nav.Command{Mode: d.Mode, Heading: d.Heading, Advance: advance, Target: d.Next}, nil
}

func (b *Bug0) GetParams() map[string]float64 {
	return map[string]float64{
		"step_size": b.params.StepSize,
	}
}

func (b *Bug0) SetParam(name string, value float64) error {
	p := b.params
	switch name {
	case "step_size":
		p.StepSize = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	if err := p.validate(); err != nil {
		return err
	}
	b.params = p
	return nil
}
