package experiment

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/san-kum/navsim/internal/config"
	"github.com/san-kum/navsim/internal/guidance"
	"github.com/san-kum/navsim/internal/nav"
	"github.com/san-kum/navsim/internal/observability"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestExperimentRun(t *testing.T) {
	collector, err := observability.NewRunCollector(prometheus.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	core, logs := observer.New(zapcore.InfoLevel)

	exp, err := New(config.GetPreset("carrot", "default"), NewRegistry(),
		WithCollector(collector), WithLogger(zap.New(core)))
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Outcome != nav.OutcomeReached {
		t.Fatalf("expected reached, got %v", result.Outcome)
	}
	if result.Metrics["path_length"] < 38 {
		t.Errorf("path length %f shorter than the straight line", result.Metrics["path_length"])
	}
	if got := testutil.ToFloat64(collector.Runs.WithLabelValues("carrot", "reached")); got != 1 {
		t.Errorf("collector counted %v runs", got)
	}

	entries := logs.FilterMessage("run finished").All()
	if len(entries) != 1 {
		t.Fatalf("expected one run log line, got %d", len(entries))
	}
	if entries[0].ContextMap()["integrator"] != "euler" {
		t.Errorf("log line missing integrator field: %v", entries[0].ContextMap())
	}
}

func TestExperimentParams(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Params = map[string]float64{"k": 3}

	exp, err := New(cfg, NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	params := exp.Params()
	if params["k"] != 3 || params["delta"] != 2 {
		t.Errorf("unexpected effective params: %v", params)
	}
}

func TestExperimentInvalid(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Law = "nope"
	if _, err := New(cfg, NewRegistry()); err == nil {
		t.Error("expected error for unknown law")
	}

	cfg = config.DefaultConfig()
	cfg.Integrator = "rk4"
	if _, err := New(cfg, NewRegistry()); err == nil {
		t.Error("expected error for unknown integrator")
	}

	cfg = config.DefaultConfig()
	cfg.Dt = 0
	if _, err := New(cfg, NewRegistry()); err == nil {
		t.Error("expected error for invalid config")
	}
}

func TestExperimentIntegratorPairing(t *testing.T) {
	tests := []struct {
		name       string
		law        string
		integrator string
	}{
		{"bug0 on euler", "bug0", "euler"},
		{"bug0 on arc", "bug0", "arc"},
		{"carrot on holonomic", "carrot", "holonomic"},
		{"nlgl on holonomic", "nlgl", "holonomic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.GetPreset(tt.law, "default")
			cfg.Integrator = tt.integrator
			if _, err := New(cfg, NewRegistry()); !errors.Is(err, nav.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestExperimentDefaultIntegrator(t *testing.T) {
	tests := []struct {
		law  string
		want string
	}{
		{"bug0", "holonomic"},
		{"carrot", "euler"},
	}
	for _, tt := range tests {
		t.Run(tt.law, func(t *testing.T) {
			cfg := config.GetPreset(tt.law, "default")
			cfg.Integrator = ""
			exp, err := New(cfg, NewRegistry())
			if err != nil {
				t.Fatal(err)
			}
			if cfg.Integrator != tt.want {
				t.Errorf("integrator = %q, want %q", cfg.Integrator, tt.want)
			}
			if exp.Config().Integrator != tt.want {
				t.Errorf("experiment config integrator = %q", exp.Config().Integrator)
			}
		})
	}
}

func TestExperimentBug0FileWithoutIntegrator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bug0.yaml")
	doc := `law: bug0
max_steps: 5000
goal_tolerance: 0.2
workspace:
  bounds: {min_x: 0, max_x: 31, min_y: 0, max_y: 31}
  start: {x: 0, y: 0}
  goal: {x: 20, y: 20}
  init: {x: 0, y: 0}
  margin: 0.5
  obstacles:
    - {center: {x: 15, y: 15}, radius: 3}
params:
  step_size: 0.1
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	exp, err := New(cfg, NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Integrator != "holonomic" {
		t.Fatalf("integrator = %q, want holonomic", cfg.Integrator)
	}

	result, err := exp.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range result.Trajectory {
		if !exp.Workspace().IsValid(p.X, p.Y) {
			t.Fatalf("sample %d at %v is inside an obstacle or out of bounds", i, p)
		}
	}
}

func TestExperimentNLGLFollowsRunSpeed(t *testing.T) {
	cfg := config.GetPreset("nlgl", "default")
	cfg.Speed = 2

	exp, err := New(cfg, NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	if got := exp.Law().(*guidance.NLGL).Params().Speed; got != 2 {
		t.Errorf("law speed = %v, want run speed 2", got)
	}
	if _, ok := exp.Params()["speed"]; ok {
		t.Error("speed should not be a tunable param")
	}
}

func TestExperimentSession(t *testing.T) {
	exp, err := New(config.GetPreset("nlgl", "default"), NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	sess, err := exp.Start()
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		if _, err := sess.Next(); err != nil {
			t.Fatal(err)
		}
	}
	if got := len(sess.Result().Trajectory); got != 11 {
		t.Errorf("expected 11 points after 10 steps, got %d", got)
	}
}

func TestCompare(t *testing.T) {
	collector, err := observability.NewRunCollector(prometheus.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}

	var variants []Variant
	for _, law := range []string{"carrot", "nlgl", "vectorfield"} {
		variants = append(variants, Variant{Name: law, Config: config.GetPreset(law, "default")})
	}
	variants[2].Config.MaxSteps = 2000

	got, err := Compare(context.Background(), NewRegistry(), variants, 2, WithCollector(collector))
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	if len(got) != len(variants) {
		t.Fatalf("expected %d comparisons, got %d", len(variants), len(got))
	}
	for i, c := range got {
		if c.Name != variants[i].Name {
			t.Errorf("comparison %d out of order: %s", i, c.Name)
		}
		if c.Result == nil || c.Result.Outcome != nav.OutcomeReached {
			t.Errorf("%s did not reach the goal: %+v", c.Name, c.Result)
		}
		if len(c.Params) == 0 {
			t.Errorf("%s has no params", c.Name)
		}
	}
	if n := testutil.CollectAndCount(collector.Runs); n != 3 {
		t.Errorf("expected 3 outcome series, got %d", n)
	}
}
