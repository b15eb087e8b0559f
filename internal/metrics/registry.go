package metrics

import (
	"fmt"
	"sort"

	"github.com/san-kum/navsim/internal/geom"
	"github.com/san-kum/navsim/internal/nav"
)

var constructors = map[string]func(line geom.Line) nav.Metric{
	"path_length":       func(geom.Line) nav.Metric { return NewPathLength() },
	"cross_track_rms":   func(l geom.Line) nav.Metric { return NewCrossTrackRMS(l) },
	"cross_track_max":   func(l geom.Line) nav.Metric { return NewCrossTrackMax(l) },
	"control_effort":    func(geom.Line) nav.Metric { return NewControlEffort() },
	"turn_energy":       func(geom.Line) nav.Metric { return NewTurnEnergy() },
	"wall_follow_ratio": func(geom.Line) nav.Metric { return NewWallFollowRatio() },
}

// Names lists every known metric in sorted order.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for n := range constructors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// New builds the named metric against the reference line.
func New(name string, line geom.Line) (nav.Metric, error) {
	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return ctor(line), nil
}

// Standard returns a fresh instance of every metric.
func Standard(line geom.Line) []nav.Metric {
	names := Names()
	out := make([]nav.Metric, 0, len(names))
	for _, n := range names {
		m, _ := New(n, line)
		out = append(out, m)
	}
	return out
}
