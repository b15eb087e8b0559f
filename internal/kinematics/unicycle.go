package kinematics

import (
	"math"

	"github.com/san-kum/navsim/internal/geom"
	"github.com/san-kum/navsim/internal/nav"
)

// Unicycle updates the heading with the commanded turn rate and then moves
// along the new heading.
type Unicycle struct{}

func NewUnicycle() *Unicycle {
	return &Unicycle{}
}

func (u *Unicycle) Step(p nav.Pose, cmd nav.Command, speed, dt float64) nav.Pose {
	heading := geom.WrapAngle(p.Heading + cmd.TurnRate*dt)
	sin, cos := math.Sincos(heading)
	return nav.Pose{
		X:       p.X + speed*cos*dt,
		Y:       p.Y + speed*sin*dt,
		Heading: heading,
	}
}
