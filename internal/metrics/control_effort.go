package metrics

import (
	"math"

	"github.com/san-kum/navsim/internal/nav"
)

// ControlEffort is the mean absolute commanded turn rate.
type ControlEffort struct {
	name    string
	sum     float64
	samples int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{
		name: "control_effort",
	}
}

func (c *ControlEffort) Name() string {
	return c.name
}

func (c *ControlEffort) Observe(p nav.Pose, cmd nav.Command, t float64) {
	c.sum += math.Abs(cmd.TurnRate)
	c.samples++
}

func (c *ControlEffort) Value() float64 {
	if c.samples == 0 {
		return 0
	}
	return c.sum / float64(c.samples)
}

func (c *ControlEffort) Reset() {
	c.sum = 0
	c.samples = 0
}

// TurnEnergy integrates the squared turn rate over time. Smooth paths
// score low.
type TurnEnergy struct {
	name  string
	total float64
	lastT float64
}

func NewTurnEnergy() *TurnEnergy {
	return &TurnEnergy{name: "turn_energy"}
}

func (e *TurnEnergy) Name() string { return e.name }

func (e *TurnEnergy) Observe(p nav.Pose, cmd nav.Command, t float64) {
	dt := t - e.lastT
	e.total += cmd.TurnRate * cmd.TurnRate * dt
	e.lastT = t
}

func (e *TurnEnergy) Value() float64 { return e.total }

func (e *TurnEnergy) Reset() {
	e.total = 0
	e.lastT = 0
}
