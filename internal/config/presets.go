package config

import (
	"sort"

	"github.com/san-kum/navsim/internal/geom"
	"github.com/san-kum/navsim/internal/observability"
	"github.com/san-kum/navsim/internal/workspace"
)

func bugWorld(obstacles ...workspace.Obstacle) WorkspaceConfig {
	return WorkspaceConfig{
		Bounds:    workspace.Rect(0, 31, 0, 31),
		Start:     geom.Pt(0, 0),
		Goal:      geom.Pt(20, 20),
		Obstacles: obstacles,
		Margin:    workspace.DefaultMargin,
	}
}

func pathWorld(init geom.Point) WorkspaceConfig {
	return WorkspaceConfig{
		Bounds: workspace.Rect(0, 51, 0, 51),
		Start:  geom.Pt(5, 5),
		Goal:   geom.Pt(45, 45),
		Init:   ptr(init),
		Margin: workspace.DefaultMargin,
	}
}

func bug0(ws WorkspaceConfig) *Config {
	return &Config{
		Law: "bug0", Integrator: "holonomic", Dt: 0.1, Speed: 1, MaxSteps: 5000,
		GoalTolerance: 0.2, Workspace: ws,
		Params: map[string]float64{"step_size": 0.1},
		Log:    observability.DefaultLogConfig(),
	}
}

func follower(law string, init geom.Point, headingDeg float64, params map[string]float64) *Config {
	return &Config{
		Law: law, Integrator: "euler", Dt: 0.1, Speed: 1, MaxSteps: 1000,
		GoalTolerance: 0.5, HeadingDeg: headingDeg, Workspace: pathWorld(init),
		Params: params,
		Log:    observability.DefaultLogConfig(),
	}
}

var Presets = map[string]map[string]*Config{
	"bug0": {
		"default": bug0(bugWorld(
			workspace.Circle(4.5, 3, 2),
			workspace.Circle(3, 12, 2),
			workspace.Circle(15, 15, 3),
		)),
		"open": bug0(bugWorld()),
		"blocked": bug0(bugWorld(
			workspace.Circle(10, 10, 4),
			workspace.Circle(17, 12, 2),
			workspace.Circle(12, 17, 2),
		)),
	},
	"carrot": {
		"default": follower("carrot", geom.Pt(30, 10), -90, map[string]float64{"delta": 2, "k": 1}),
		"tight":   follower("carrot", geom.Pt(30, 10), -90, map[string]float64{"delta": 1, "k": 2}),
		"lazy":    follower("carrot", geom.Pt(30, 10), -90, map[string]float64{"delta": 5, "k": 0.5}),
	},
	"nlgl": {
		"default": follower("nlgl", geom.Pt(10, 8), 90, map[string]float64{"L": 10}),
		"tight":   follower("nlgl", geom.Pt(10, 8), 90, map[string]float64{"L": 5}),
		"wide":    follower("nlgl", geom.Pt(10, 8), 90, map[string]float64{"L": 20}),
		"offset":  follower("nlgl", geom.Pt(20, 14), 45, map[string]float64{"L": 8}),
	},
	"vectorfield": {
		"default": follower("vectorfield", geom.Pt(30, 10), -90, map[string]float64{
			"tau": 5, "k": 2, "kappa": 1, "alpha": 0.7853981633974483, "entry_heading": 1.0471975511965976,
		}),
		"sharp": follower("vectorfield", geom.Pt(30, 10), -90, map[string]float64{
			"tau": 2, "k": 3, "kappa": 0.5, "alpha": 0.7853981633974483, "entry_heading": 1.3089969389957472,
		}),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(law, preset string) *Config {
	lawPresets, ok := Presets[law]
	if !ok {
		return nil
	}
	cfg, ok := lawPresets[preset]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(law string) []string {
	lawPresets, ok := Presets[law]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(lawPresets))
	for name := range lawPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Laws() []string {
	laws := make([]string, 0, len(Presets))
	for law := range Presets {
		laws = append(laws, law)
	}
	sort.Strings(laws)
	return laws
}
