package experiment

import (
	"errors"
	"reflect"
	"testing"

	"github.com/san-kum/navsim/internal/geom"
	"github.com/san-kum/navsim/internal/guidance"
	"github.com/san-kum/navsim/internal/nav"
	"github.com/san-kum/navsim/internal/workspace"
)

func testWorkspace(t *testing.T) *workspace.Workspace {
	t.Helper()
	ws, err := workspace.New(workspace.Rect(0, 51, 0, 51), geom.Pt(5, 5), geom.Pt(45, 45))
	if err != nil {
		t.Fatal(err)
	}
	return ws
}

func TestRegistryLists(t *testing.T) {
	r := NewRegistry()

	if got, want := r.ListLaws(), []string{"bug0", "carrot", "nlgl", "vectorfield"}; !reflect.DeepEqual(got, want) {
		t.Errorf("laws = %v, want %v", got, want)
	}
	if got, want := r.ListIntegrators(), []string{"arc", "euler", "holonomic"}; !reflect.DeepEqual(got, want) {
		t.Errorf("integrators = %v, want %v", got, want)
	}
	if got := r.DefaultIntegrator("bug0"); got != "holonomic" {
		t.Errorf("bug0 integrator = %s, want holonomic", got)
	}
	if got := r.DefaultIntegrator("carrot"); got != "euler" {
		t.Errorf("carrot integrator = %s, want euler", got)
	}
}

func TestRegistryGetLaw(t *testing.T) {
	r := NewRegistry()
	ws := testWorkspace(t)
	cfg := nav.DefaultConfig()

	for _, name := range r.ListLaws() {
		law, err := r.GetLaw(name, ws, nil, cfg)
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if law.Name() != name {
			t.Errorf("law name = %s, want %s", law.Name(), name)
		}
	}

	if _, err := r.GetLaw("bug1", ws, nil, cfg); err == nil {
		t.Error("expected error for unknown law")
	}
	if _, err := r.GetLaw("carrot", ws, map[string]float64{"lookahead": 2}, cfg); err == nil {
		t.Error("expected error for unknown param")
	}
	if _, err := r.GetLaw("carrot", ws, map[string]float64{"delta": -2}, cfg); !errors.Is(err, nav.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
}

func TestRegistryParamsApplyTogether(t *testing.T) {
	r := NewRegistry()

	// alpha above the default entry heading is only valid with the new entry heading
	law, err := r.GetLaw("vectorfield", testWorkspace(t), map[string]float64{"alpha": 1.2, "entry_heading": 1.3}, nav.DefaultConfig())
	if err != nil {
		t.Fatalf("GetLaw: %v", err)
	}
	got := law.(nav.Configurable).GetParams()
	if got["alpha"] != 1.2 || got["entry_heading"] != 1.3 {
		t.Errorf("params not applied: %v", got)
	}
}

func TestRegistryNLGLSpeed(t *testing.T) {
	r := NewRegistry()
	cfg := nav.DefaultConfig()
	cfg.Speed = 2.5

	law, err := r.GetLaw("nlgl", testWorkspace(t), map[string]float64{"L": 8}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got := law.(*guidance.NLGL).Params().Speed; got != 2.5 {
		t.Errorf("nlgl speed = %f, want run speed 2.5", got)
	}
	if _, err := r.GetLaw("nlgl", testWorkspace(t), map[string]float64{"speed": 1}, cfg); err == nil {
		t.Error("speed is the run's speed and should not be accepted as a param")
	}
}

func TestRegistryBug0Threshold(t *testing.T) {
	r := NewRegistry()
	cfg := nav.DefaultConfig()
	cfg.GoalTolerance = 0.35

	law, err := r.GetLaw("bug0", testWorkspace(t), map[string]float64{"step_size": 0.2}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got := law.(*guidance.Bug0).Params().GoalThreshold; got != 0.35 {
		t.Errorf("bug0 goal threshold = %f, want run tolerance 0.35", got)
	}
}

func TestRegistryPairing(t *testing.T) {
	r := NewRegistry()
	tests := []struct {
		law, integrator string
		ok              bool
	}{
		{"bug0", "holonomic", true},
		{"bug0", "euler", false},
		{"bug0", "arc", false},
		{"carrot", "euler", true},
		{"nlgl", "arc", true},
		{"vectorfield", "holonomic", false},
		{"carrot", "holonomic", false},
	}
	for _, tt := range tests {
		t.Run(tt.law+"/"+tt.integrator, func(t *testing.T) {
			err := r.CheckPairing(tt.law, tt.integrator)
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, nav.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
	if err := r.CheckPairing("bug1", "euler"); err == nil {
		t.Error("expected error for unknown law")
	}
	if got, want := r.Integrators("nlgl"), []string{"euler", "arc"}; !reflect.DeepEqual(got, want) {
		t.Errorf("nlgl integrators = %v, want %v", got, want)
	}
}

func TestRegistryDefaultMetrics(t *testing.T) {
	r := NewRegistry()
	ms := r.DefaultMetrics(testWorkspace(t))
	if len(ms) == 0 {
		t.Fatal("expected default metrics")
	}
	seen := map[string]bool{}
	for _, m := range ms {
		seen[m.Name()] = true
	}
	for _, want := range []string{"path_length", "cross_track_rms", "wall_follow_ratio"} {
		if !seen[want] {
			t.Errorf("missing metric %s", want)
		}
	}
}
