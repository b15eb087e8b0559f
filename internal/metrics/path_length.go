package metrics

import (
	"github.com/san-kum/navsim/internal/geom"
	"github.com/san-kum/navsim/internal/nav"
)

// PathLength sums the distance travelled between consecutive poses.
type PathLength struct {
	name   string
	last   geom.Point
	length float64
}

func NewPathLength() *PathLength {
	return &PathLength{name: "path_length"}
}

func (m *PathLength) Name() string { return m.name }

func (m *PathLength) Start(p nav.Pose) { m.last = p.Point() }

func (m *PathLength) Observe(p nav.Pose, cmd nav.Command, t float64) {
	pt := p.Point()
	m.length += m.last.Dist(pt)
	m.last = pt
}

func (m *PathLength) Value() float64 { return m.length }

func (m *PathLength) Reset() {
	m.last = geom.Point{}
	m.length = 0
}
