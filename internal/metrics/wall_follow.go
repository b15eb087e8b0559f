package metrics

import "github.com/san-kum/navsim/internal/nav"

// WallFollowRatio is the fraction of steps spent following an obstacle
// boundary or holding.
type WallFollowRatio struct {
	name    string
	blocked int
	samples int
}

func NewWallFollowRatio() *WallFollowRatio {
	return &WallFollowRatio{
		name: "wall_follow_ratio",
	}
}

func (w *WallFollowRatio) Name() string {
	return w.name
}

func (w *WallFollowRatio) Observe(p nav.Pose, cmd nav.Command, t float64) {
	w.samples++
	if cmd.Mode == nav.ModeWallFollow || cmd.Mode == nav.ModeHold {
		w.blocked++
	}
}

func (w *WallFollowRatio) Value() float64 {
	if w.samples == 0 {
		return 0
	}
	return float64(w.blocked) / float64(w.samples)
}

func (w *WallFollowRatio) Reset() {
	w.blocked = 0
	w.samples = 0
}
