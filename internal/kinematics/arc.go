package kinematics

import (
	"math"

	"github.com/san-kum/navsim/internal/geom"
	"github.com/san-kum/navsim/internal/nav"
)

const straightTurnRate = 1e-9

// Arc integrates a constant speed and turn rate exactly over dt, so the
// robot moves along a circular arc of radius speed/turnRate.
type Arc struct{}

func NewArc() *Arc {
	return &Arc{}
}

func (a *Arc) Step(p nav.Pose, cmd nav.Command, speed, dt float64) nav.Pose {
	w := cmd.TurnRate
	if math.Abs(w) < straightTurnRate {
		sin, cos := math.Sincos(p.Heading)
		return nav.Pose{
			X:       p.X + speed*cos*dt,
			Y:       p.Y + speed*sin*dt,
			Heading: p.Heading,
		}
	}

	h1 := p.Heading + w*dt
	r := speed / w
	return nav.Pose{
		X:       p.X + r*(math.Sin(h1)-math.Sin(p.Heading)),
		Y:       p.Y - r*(math.Cos(h1)-math.Cos(p.Heading)),
		Heading: geom.WrapAngle(h1),
	}
}
