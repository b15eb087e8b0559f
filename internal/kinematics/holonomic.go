package kinematics

import (
	"github.com/san-kum/navsim/internal/geom"
	"github.com/san-kum/navsim/internal/nav"
)

// Holonomic turns instantly to the commanded heading and moves
// cmd.Advance along it. Speed and dt are ignored.
type Holonomic struct{}

func NewHolonomic() *Holonomic {
	return &Holonomic{}
}

func (h *Holonomic) Step(p nav.Pose, cmd nav.Command, speed, dt float64) nav.Pose {
	if cmd.Advance == 0 {
		return nav.Pose{X: p.X, Y: p.Y, Heading: geom.WrapAngle(cmd.Heading)}
	}
	next := p.Point().Step(cmd.Heading, cmd.Advance)
	return nav.Pose{X: next.X, Y: next.Y, Heading: geom.WrapAngle(cmd.Heading)}
}
