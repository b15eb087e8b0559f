package geom

import "math"

// Line is the directed reference segment a path follower tracks.
type Line struct {
	From, To Point
}

func (l Line) Length() float64 { return l.From.Dist(l.To) }

// Bearing is the direction of travel along the line.
func (l Line) Bearing() float64 { return l.From.Bearing(l.To) }

func (l Line) Degenerate() bool { return l.Length() == 0 }

// AlongTrack returns the signed distance from From to the orthogonal
// projection of p onto the line.
func (l Line) AlongTrack(p Point) float64 {
	ru := l.From.Dist(p)
	if ru == 0 {
		return 0
	}
	beta := l.Bearing() - l.From.Bearing(p)
	return ru * math.Cos(beta)
}

// CrossTrack returns the signed perpendicular distance from the line to p,
// positive to the left of the direction of travel.
func (l Line) CrossTrack(p Point) float64 {
	sin, cos := math.Sincos(l.Bearing())
	d := p.Sub(l.From)
	return -d.X*sin + d.Y*cos
}

// At returns the point at distance s from From along the line direction.
// s is not clamped to the segment.
func (l Line) At(s float64) Point { return l.From.Step(l.Bearing(), s) }

// Lerp returns From + t*(To-From).
func (l Line) Lerp(t float64) Point {
	return l.From.Add(l.To.Sub(l.From).Scale(t))
}
