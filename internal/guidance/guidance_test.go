package guidance

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/navsim/internal/geom"
	"github.com/san-kum/navsim/internal/nav"
	"github.com/san-kum/navsim/internal/workspace"
)

var (
	_ nav.GuidanceLaw  = (*Bug0)(nil)
	_ nav.GoalChecker  = (*Bug0)(nil)
	_ nav.Configurable = (*Bug0)(nil)
	_ nav.GuidanceLaw  = (*CarrotChase)(nil)
	_ nav.Configurable = (*CarrotChase)(nil)
	_ nav.GuidanceLaw  = (*NLGL)(nil)
	_ nav.Configurable = (*NLGL)(nil)
	_ nav.GuidanceLaw  = (*VectorField)(nil)
	_ nav.Configurable = (*VectorField)(nil)
)

func pathWorkspace(t *testing.T) *workspace.Workspace {
	t.Helper()
	ws, err := workspace.New(workspace.Rect(0, 50, 0, 50), geom.Pt(5, 5), geom.Pt(45, 45))
	if err != nil {
		t.Fatalf("workspace: %v", err)
	}
	return ws
}

func near(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestDegenerateLine(t *testing.T) {
	ws, err := workspace.New(workspace.Rect(0, 10, 0, 10), geom.Pt(5, 5), geom.Pt(5, 5))
	if err != nil {
		t.Fatalf("workspace: %v", err)
	}

	if _, err := NewCarrotChase(ws, DefaultCarrotParams()); !errors.Is(err, nav.ErrDegenerateLine) {
		t.Errorf("carrot: expected ErrDegenerateLine, got %v", err)
	}
	if _, err := NewNLGL(ws, DefaultNLGLParams()); !errors.Is(err, nav.ErrDegenerateLine) {
		t.Errorf("nlgl: expected ErrDegenerateLine, got %v", err)
	}
	if _, err := NewVectorField(ws, DefaultVectorFieldParams()); !errors.Is(err, nav.ErrDegenerateLine) {
		t.Errorf("vectorfield: expected ErrDegenerateLine, got %v", err)
	}
	if _, err := NewBug0(ws, DefaultBug0Params()); err != nil {
		t.Errorf("bug0 does not track a line, got %v", err)
	}
}

func TestCarrotProjection(t *testing.T) {
	law, err := NewCarrotChase(pathWorkspace(t), DefaultCarrotParams())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		pos  geom.Point
		want geom.Point
	}{
		{"at start", geom.Pt(5, 5), geom.Pt(5+math.Sqrt2, 5+math.Sqrt2)},
		{"off the line", geom.Pt(10, 8), geom.Pt(9+math.Sqrt2, 9+math.Sqrt2)},
		{"behind start", geom.Pt(0, 0), geom.Pt(math.Sqrt2, math.Sqrt2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := law.Carrot(tt.pos)
			if !near(got.X, tt.want.X, 1e-9) || !near(got.Y, tt.want.Y, 1e-9) {
				t.Errorf("carrot(%v) = %v, want %v", tt.pos, got, tt.want)
			}
		})
	}
}

func TestCarrotGuide(t *testing.T) {
	law, err := NewCarrotChase(pathWorkspace(t), CarrotParams{Delta: 2, K: 1.5})
	if err != nil {
		t.Fatal(err)
	}

	cmd, err := law.Guide(nav.Pose{X: 5, Y: 5, Heading: 0}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Mode != nav.ModeTrack {
		t.Errorf("expected track mode, got %v", cmd.Mode)
	}
	if want := 1.5 * math.Pi / 4; !near(cmd.TurnRate, want, 1e-9) {
		t.Errorf("turn rate = %f, want %f", cmd.TurnRate, want)
	}

	// heading error wraps the short way round
	cmd, _ = law.Guide(nav.Pose{X: 5, Y: 5, Heading: math.Pi + 0.5}, 0)
	if want := 1.5 * geom.WrapAngle(math.Pi/4-math.Pi-0.5); !near(cmd.TurnRate, want, 1e-9) {
		t.Errorf("turn rate = %f, want %f", cmd.TurnRate, want)
	}
	if math.Abs(cmd.TurnRate) > 1.5*math.Pi {
		t.Errorf("turn rate %f exceeds k*pi", cmd.TurnRate)
	}
}

func TestNLGLTargetFixture(t *testing.T) {
	law, err := NewNLGL(pathWorkspace(t), DefaultNLGLParams())
	if err != nil {
		t.Fatal(err)
	}

	t1, t2, ok := law.Roots(geom.Pt(10, 8))
	if !ok {
		t.Fatal("expected a real intersection")
	}
	inRange := func(v float64) bool { return v >= 0 && v <= 1 }
	if !inRange(t1) && !inRange(t2) {
		t.Fatalf("no root in [0,1]: %f, %f", t1, t2)
	}
	if !near(t1, 0.275, 1e-9) {
		t.Errorf("root = %f, want 0.275", t1)
	}

	target, err := law.Target(geom.Pt(10, 8))
	if err != nil {
		t.Fatal(err)
	}
	if !near(target.X, 16, 1e-9) || !near(target.Y, 16, 1e-9) {
		t.Errorf("target = %v, want (16, 16)", target)
	}
}

func TestNLGLTargetSelection(t *testing.T) {
	law, err := NewNLGL(pathWorkspace(t), DefaultNLGLParams())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		pos     geom.Point
		wantX   float64
		wantErr bool
	}{
		{"on the line picks forward root", geom.Pt(16, 16), 16 + 10/math.Sqrt2, false},
		{"too far from the line", geom.Pt(30, 10), 0, true},
		{"past the goal", geom.Pt(60, 60), 0, true},
		{"near the goal clamps to segment", geom.Pt(44, 44), 44 - 10/math.Sqrt2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := law.Target(tt.pos)
			if tt.wantErr {
				if !errors.Is(err, nav.ErrNoTarget) {
					t.Errorf("expected ErrNoTarget, got %v (%v)", err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !near(got.X, tt.wantX, 1e-9) {
				t.Errorf("target x = %f, want %f", got.X, tt.wantX)
			}
		})
	}
}

func TestNLGLGuide(t *testing.T) {
	law, err := NewNLGL(pathWorkspace(t), NLGLParams{L: 10, Speed: 2})
	if err != nil {
		t.Fatal(err)
	}

	p := nav.Pose{X: 10, Y: 8, Heading: math.Pi / 4}
	cmd, err := law.Guide(p, 0)
	if err != nil {
		t.Fatal(err)
	}
	eta := math.Atan2(8, 6) - math.Pi/4
	if want := 2 * 2 / 10.0 * math.Sin(eta); !near(cmd.TurnRate, want, 1e-9) {
		t.Errorf("turn rate = %f, want %f", cmd.TurnRate, want)
	}
	if !near(cmd.Target.X, 16, 1e-9) || !near(cmd.Target.Y, 16, 1e-9) {
		t.Errorf("target = %v", cmd.Target)
	}

	if _, err := law.Guide(nav.Pose{X: 30, Y: 10}, 0); !errors.Is(err, nav.ErrNoTarget) {
		t.Errorf("expected ErrNoTarget, got %v", err)
	}
}

func TestVectorFieldHeading(t *testing.T) {
	law, err := NewVectorField(pathWorkspace(t), DefaultVectorFieldParams())
	if err != nil {
		t.Fatal(err)
	}
	theta := math.Pi / 4
	left := geom.Pt(-math.Sin(theta), math.Cos(theta))

	tests := []struct {
		name string
		pos  geom.Point
		want float64
	}{
		{"on the line", geom.Pt(20, 20), theta},
		{"far left", geom.Pt(5, 20), theta - math.Pi/3},
		{"far right", geom.Pt(20, 5), theta + math.Pi/3},
		{"inside layer left", geom.Pt(20, 20).Add(left.Scale(2.5)), theta - math.Pi/8},
		{"inside layer right", geom.Pt(20, 20).Add(left.Scale(-2.5)), theta + math.Pi/8},
		{"just outside layer", geom.Pt(20, 20).Add(left.Scale(5.5)), theta - math.Pi/3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := law.DesiredHeading(tt.pos); !near(got, tt.want, 1e-9) {
				t.Errorf("heading = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestVectorFieldGuide(t *testing.T) {
	law, err := NewVectorField(pathWorkspace(t), DefaultVectorFieldParams())
	if err != nil {
		t.Fatal(err)
	}

	cmd, err := law.Guide(nav.Pose{X: 20, Y: 20, Heading: math.Pi / 4}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !near(cmd.TurnRate, 0, 1e-12) {
		t.Errorf("aligned on the line should not turn, got %f", cmd.TurnRate)
	}

	cmd, _ = law.Guide(nav.Pose{X: 20, Y: 20, Heading: 0}, 0)
	if want := 2 * math.Pi / 4; !near(cmd.TurnRate, want, 1e-9) {
		t.Errorf("turn rate = %f, want %f", cmd.TurnRate, want)
	}
}

func TestVectorFieldParamBounds(t *testing.T) {
	ws := pathWorkspace(t)
	tests := []struct {
		name   string
		modify func(*VectorFieldParams)
	}{
		{"zero tau", func(p *VectorFieldParams) { p.Tau = 0 }},
		{"negative kappa", func(p *VectorFieldParams) { p.Kappa = -1 }},
		{"alpha above entry", func(p *VectorFieldParams) { p.Alpha = p.EntryHeading + 0.1 }},
		{"entry above right angle", func(p *VectorFieldParams) { p.EntryHeading = math.Pi }},
		{"zero alpha", func(p *VectorFieldParams) { p.Alpha = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultVectorFieldParams()
			tt.modify(&p)
			if _, err := NewVectorField(ws, p); !errors.Is(err, nav.ErrParameterBounds) {
				t.Errorf("expected ErrParameterBounds, got %v", err)
			}
		})
	}
}

func TestSetParam(t *testing.T) {
	ws := pathWorkspace(t)
	carrot, _ := NewCarrotChase(ws, DefaultCarrotParams())
	nlgl, _ := NewNLGL(ws, DefaultNLGLParams())
	vf, _ := NewVectorField(ws, DefaultVectorFieldParams())
	bug, _ := NewBug0(ws, DefaultBug0Params())

	tests := []struct {
		name  string
		law   nav.Configurable
		param string
		good  float64
		bad   float64
	}{
		{"carrot", carrot, "delta", 3, -1},
		{"nlgl", nlgl, "L", 5, 0},
		{"vectorfield", vf, "tau", 2, -2},
		{"bug0", bug, "step_size", 0.2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.law.SetParam(tt.param, tt.good); err != nil {
				t.Fatalf("set %s: %v", tt.param, err)
			}
			if got := tt.law.GetParams()[tt.param]; got != tt.good {
				t.Errorf("%s = %f, want %f", tt.param, got, tt.good)
			}
			if err := tt.law.SetParam(tt.param, tt.bad); err == nil {
				t.Error("expected error for out-of-bounds value")
			}
			if got := tt.law.GetParams()[tt.param]; got != tt.good {
				t.Errorf("rejected value leaked: %s = %f", tt.param, got)
			}
			if err := tt.law.SetParam("nope", 1); err == nil {
				t.Error("expected error for unknown param")
			}
		})
	}
}

func TestRunBoundValuesAreNotParams(t *testing.T) {
	ws := pathWorkspace(t)
	nlgl, _ := NewNLGL(ws, DefaultNLGLParams())
	bug, _ := NewBug0(ws, DefaultBug0Params())

	tests := []struct {
		name  string
		law   nav.Configurable
		param string
	}{
		{"nlgl speed", nlgl, "speed"},
		{"bug0 goal threshold", bug, "goal_threshold"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := tt.law.GetParams()[tt.param]; ok {
				t.Errorf("%s should not be listed", tt.param)
			}
			if err := tt.law.SetParam(tt.param, 2); err == nil {
				t.Errorf("%s should not be settable", tt.param)
			}
		})
	}
}
