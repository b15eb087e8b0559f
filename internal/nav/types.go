package nav

import (
	"math"

	"github.com/san-kum/navsim/internal/geom"
)

// Pose is the full kinematic state of the point robot.
type Pose struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
}

func (p Pose) Point() geom.Point { return geom.Point{X: p.X, Y: p.Y} }

func (p Pose) IsValid() bool {
	return !math.IsNaN(p.Heading) && !math.IsInf(p.Heading, 0) && p.Point().IsFinite()
}

// At returns a pose at pt keeping the heading.
func (p Pose) At(pt geom.Point) Pose { return Pose{X: pt.X, Y: pt.Y, Heading: p.Heading} }

type Mode int

const (
	// ModeTrack is a turn-rate command from a path follower.
	ModeTrack Mode = iota
	// ModeDirect is a straight step toward the goal.
	ModeDirect
	// ModeWallFollow is a step along a scanned heading around an obstacle.
	ModeWallFollow
	// ModeHold keeps the current position.
	ModeHold
)

func (m Mode) String() string {
	switch m {
	case ModeTrack:
		return "track"
	case ModeDirect:
		return "direct"
	case ModeWallFollow:
		return "wall_follow"
	case ModeHold:
		return "hold"
	default:
		return "unknown"
	}
}

// Command is what a guidance law asks the integrator to do for one step.
// Unicycle integrators consume TurnRate; the holonomic integrator consumes
// Heading and Advance.
type Command struct {
	Mode     Mode
	TurnRate float64
	Heading  float64
	Advance  float64
	Target   geom.Point
}

type GuidanceLaw interface {
	Name() string
	Guide(p Pose, t float64) (Command, error)
}

// GoalChecker lets a law override the default strict distance check.
type GoalChecker interface {
	ReachedGoal(p Pose) bool
}

// Goaled exposes the goal a law steers to.
type Goaled interface {
	Goal() geom.Point
}

type Integrator interface {
	Step(p Pose, cmd Command, speed, dt float64) Pose
}

type Metric interface {
	Name() string
	Observe(p Pose, cmd Command, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(p Pose, cmd Command, t float64)
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

type Config struct {
	Dt            float64
	Speed         float64
	MaxSteps      int
	GoalTolerance float64
	ValidatePose  bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.1,
		Speed:         1.0,
		MaxSteps:      1000,
		GoalTolerance: 0.5,
		ValidatePose:  true,
	}
}

type Outcome int

const (
	OutcomeReached Outcome = iota
	OutcomeStepLimit
	OutcomeNoTarget
	OutcomeCanceled
	OutcomeInvalidPose
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeReached:
		return "reached goal"
	case OutcomeStepLimit:
		return "stopped: too many steps"
	case OutcomeNoTarget:
		return "no valid target point"
	case OutcomeCanceled:
		return "canceled"
	case OutcomeInvalidPose:
		return "invalid pose"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Label is the short machine-friendly form used in metrics and storage.
func (o Outcome) Label() string {
	switch o {
	case OutcomeReached:
		return "reached"
	case OutcomeStepLimit:
		return "step_limit"
	case OutcomeNoTarget:
		return "no_target"
	case OutcomeCanceled:
		return "canceled"
	case OutcomeInvalidPose:
		return "invalid_pose"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func ParseOutcome(label string) (Outcome, bool) {
	for o := OutcomeReached; o <= OutcomeFailed; o++ {
		if o.Label() == label {
			return o, true
		}
	}
	return 0, false
}

type Result struct {
	Law        string
	Trajectory []geom.Point
	Poses      []Pose
	Commands   []Command
	Times      []float64
	Metrics    map[string]float64
	Outcome    Outcome
	Steps      int
	FinalDist  float64
}

// Final returns the last pose of the run.
func (r *Result) Final() Pose {
	if len(r.Poses) == 0 {
		return Pose{}
	}
	return r.Poses[len(r.Poses)-1]
}
