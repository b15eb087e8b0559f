package experiment

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/san-kum/navsim/internal/guidance"
	"github.com/san-kum/navsim/internal/kinematics"
	"github.com/san-kum/navsim/internal/metrics"
	"github.com/san-kum/navsim/internal/nav"
	"github.com/san-kum/navsim/internal/workspace"
)

// LawFactory builds a guidance law from its parameter overrides. cfg is the
// run configuration, for laws whose gain depends on the speed.
type LawFactory func(ws *workspace.Workspace, params map[string]float64, cfg nav.Config) (nav.GuidanceLaw, error)

type Registry struct {
	laws        map[string]LawFactory
	integrators map[string]func() nav.Integrator
	// pairs lists the integrators each law can drive; the first is its default.
	pairs map[string][]string
}

func NewRegistry() *Registry {
	r := &Registry{
		laws:        make(map[string]LawFactory),
		integrators: make(map[string]func() nav.Integrator),
		pairs:       make(map[string][]string),
	}

	r.laws["bug0"] = func(ws *workspace.Workspace, params map[string]float64, cfg nav.Config) (nav.GuidanceLaw, error) {
		p := guidance.DefaultBug0Params()
		p.GoalThreshold = cfg.GoalTolerance
		if err := apply(params, map[string]*float64{
			"step_size": &p.StepSize,
		}); err != nil {
			return nil, err
		}
		return guidance.NewBug0(ws, p)
	}
	r.laws["carrot"] = func(ws *workspace.Workspace, params map[string]float64, cfg nav.Config) (nav.GuidanceLaw, error) {
		p := guidance.DefaultCarrotParams()
		if err := apply(params, map[string]*float64{
			"delta": &p.Delta,
			"k":     &p.K,
		}); err != nil {
			return nil, err
		}
		return guidance.NewCarrotChase(ws, p)
	}
	r.laws["nlgl"] = func(ws *workspace.Workspace, params map[string]float64, cfg nav.Config) (nav.GuidanceLaw, error) {
		p := guidance.DefaultNLGLParams()
		p.Speed = cfg.Speed
		if err := apply(params, map[string]*float64{
			"L": &p.L,
		}); err != nil {
			return nil, err
		}
		return guidance.NewNLGL(ws, p)
	}
	r.laws["vectorfield"] = func(ws *workspace.Workspace, params map[string]float64, cfg nav.Config) (nav.GuidanceLaw, error) {
		p := guidance.DefaultVectorFieldParams()
		if err := apply(params, map[string]*float64{
			"tau":           &p.Tau,
			"k":             &p.K,
			"kappa":         &p.Kappa,
			"alpha":         &p.Alpha,
			"entry_heading": &p.EntryHeading,
		}); err != nil {
			return nil, err
		}
		return guidance.NewVectorField(ws, p)
	}

	r.integrators["euler"] = func() nav.Integrator { return kinematics.NewUnicycle() }
	r.integrators["arc"] = func() nav.Integrator { return kinematics.NewArc() }
	r.integrators["holonomic"] = func() nav.Integrator { return kinematics.NewHolonomic() }

	// bug0 moves by position jumps; the followers steer by turn rate.
	r.pairs["bug0"] = []string{"holonomic"}
	r.pairs["carrot"] = []string{"euler", "arc"}
	r.pairs["nlgl"] = []string{"euler", "arc"}
	r.pairs["vectorfield"] = []string{"euler", "arc"}

	return r
}

func apply(params map[string]float64, fields map[string]*float64) error {
	for name, v := range params {
		dst, ok := fields[name]
		if !ok {
			return fmt.Errorf("unknown param: %s", name)
		}
		*dst = v
	}
	return nil
}

func (r *Registry) GetLaw(name string, ws *workspace.Workspace, params map[string]float64, cfg nav.Config) (nav.GuidanceLaw, error) {
	fn, ok := r.laws[name]
	if !ok {
		return nil, fmt.Errorf("unknown law: %s", name)
	}
	law, err := fn(ws, params, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return law, nil
}

func (r *Registry) GetIntegrator(name string) (nav.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

// DefaultIntegrator is the integrator a law is designed for.
func (r *Registry) DefaultIntegrator(law string) string {
	if names := r.pairs[law]; len(names) > 0 {
		return names[0]
	}
	return "euler"
}

// Integrators lists the integrators law can run with.
func (r *Registry) Integrators(law string) []string {
	return slices.Clone(r.pairs[law])
}

// CheckPairing rejects an integrator that cannot drive law's commands.
func (r *Registry) CheckPairing(law, integrator string) error {
	names, ok := r.pairs[law]
	if !ok {
		return fmt.Errorf("unknown law: %s", law)
	}
	if !slices.Contains(names, integrator) {
		return fmt.Errorf("%w: %s cannot run with integrator %s (use %s)",
			nav.ErrInvalidConfig, law, integrator, strings.Join(names, " or "))
	}
	return nil
}

func (r *Registry) ListLaws() []string {
	return sortedKeys(r.laws)
}

func (r *Registry) ListIntegrators() []string {
	return sortedKeys(r.integrators)
}

func (r *Registry) DefaultMetrics(ws *workspace.Workspace) []nav.Metric {
	return metrics.Standard(ws.Line())
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
