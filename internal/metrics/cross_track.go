package metrics

import (
	"math"

	"github.com/san-kum/navsim/internal/geom"
	"github.com/san-kum/navsim/internal/nav"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type CrossTrackMode int

const (
	CrossTrackRMS CrossTrackMode = iota
	CrossTrackMax
)

// CrossTrack records the unsigned distance from every pose to the
// reference line and reduces it to an RMS or a maximum.
type CrossTrack struct {
	name    string
	line    geom.Line
	mode    CrossTrackMode
	samples []float64
}

func NewCrossTrackRMS(line geom.Line) *CrossTrack {
	return &CrossTrack{name: "cross_track_rms", line: line, mode: CrossTrackRMS}
}

func NewCrossTrackMax(line geom.Line) *CrossTrack {
	return &CrossTrack{name: "cross_track_max", line: line, mode: CrossTrackMax}
}

func (c *CrossTrack) Name() string { return c.name }

func (c *CrossTrack) Observe(p nav.Pose, cmd nav.Command, t float64) {
	c.samples = append(c.samples, math.Abs(c.line.CrossTrack(p.Point())))
}

func (c *CrossTrack) Value() float64 {
	if len(c.samples) == 0 {
		return 0
	}
	switch c.mode {
	case CrossTrackMax:
		return floats.Max(c.samples)
	default:
		sq := make([]float64, len(c.samples))
		floats.MulTo(sq, c.samples, c.samples)
		return math.Sqrt(stat.Mean(sq, nil))
	}
}

func (c *CrossTrack) Reset() {
	c.samples = c.samples[:0]
}
