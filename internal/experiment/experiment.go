package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/navsim/internal/config"
	"github.com/san-kum/navsim/internal/nav"
	"github.com/san-kum/navsim/internal/observability"
	"github.com/san-kum/navsim/internal/workspace"
	"go.uber.org/zap"
)

type Option func(*Experiment)

func WithLogger(l *zap.Logger) Option {
	return func(e *Experiment) { e.logger = l }
}

// WithCollector records every finished run in c.
func WithCollector(c *observability.RunCollector) Option {
	return func(e *Experiment) { e.collector = c }
}

func WithObserver(o nav.Observer) Option {
	return func(e *Experiment) { e.observers = append(e.observers, o) }
}

// Experiment is one configured scenario: workspace, law, integrator and
// metrics, ready to run.
type Experiment struct {
	cfg       *config.Config
	ws        *workspace.Workspace
	law       nav.GuidanceLaw
	simulator *nav.Simulator
	logger    *zap.Logger
	collector *observability.RunCollector
	observers []nav.Observer
}

// New builds the experiment for cfg. An empty cfg.Integrator is filled in
// with the law's default integrator.
func New(cfg *config.Config, reg *Registry, opts ...Option) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Integrator == "" {
		cfg.Integrator = reg.DefaultIntegrator(cfg.Law)
	}

	e := &Experiment{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}

	ws, err := cfg.BuildWorkspace()
	if err != nil {
		return nil, err
	}
	law, err := reg.GetLaw(cfg.Law, ws, cfg.Params, cfg.SimConfig())
	if err != nil {
		return nil, err
	}
	integ, err := reg.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	if err := reg.CheckPairing(cfg.Law, cfg.Integrator); err != nil {
		return nil, err
	}

	e.ws = ws
	e.law = law
	e.simulator = nav.New(law, integ)
	e.simulator.SetLogger(e.logger.With(zap.String("law", cfg.Law), zap.String("integrator", cfg.Integrator)))
	for _, m := range reg.DefaultMetrics(ws) {
		e.simulator.AddMetric(m)
	}
	for _, o := range e.observers {
		e.simulator.AddObserver(o)
	}
	return e, nil
}

func (e *Experiment) Run(ctx context.Context) (*nav.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	result, err := e.simulator.Run(ctx, e.cfg.InitialPose(), e.cfg.SimConfig())
	e.collector.ObserveRun(result)
	return result, err
}

// Start opens a session for step-by-step driving, as the live viewer does.
func (e *Experiment) Start() (*nav.Session, error) {
	return e.simulator.Start(e.cfg.InitialPose(), e.cfg.SimConfig())
}

// Params returns the effective law parameters after defaults.
func (e *Experiment) Params() map[string]float64 {
	if c, ok := e.law.(nav.Configurable); ok {
		return c.GetParams()
	}
	return map[string]float64{}
}

func (e *Experiment) Config() *config.Config          { return e.cfg }
func (e *Experiment) Workspace() *workspace.Workspace { return e.ws }
func (e *Experiment) Law() nav.GuidanceLaw            { return e.law }
func (e *Experiment) Simulator() *nav.Simulator       { return e.simulator }
