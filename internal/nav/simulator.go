package nav

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/navsim/internal/geom"
	"go.uber.org/zap"
)

type Simulator struct {
	law        GuidanceLaw
	integrator Integrator
	metrics    []Metric
	observers  []Observer
	logger     *zap.Logger
}

func New(law GuidanceLaw, integrator Integrator) *Simulator {
	return &Simulator{
		law:        law,
		integrator: integrator,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
		logger:     zap.NewNop(),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	s.logger = l
}

func (s *Simulator) Law() GuidanceLaw { return s.law }

// Starter is implemented by metrics that need the initial pose.
type Starter interface {
	Start(p Pose)
}

// Session is a single run advanced one iteration at a time.
type Session struct {
	sim    *Simulator
	cfg    Config
	pose   Pose
	t      float64
	step   int
	result *Result
	done   bool
}

// Start validates cfg and prepares a session at p0 without stepping it.
func (s *Simulator) Start(p0 Pose, cfg Config) (*Session, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if !p0.IsValid() {
		return nil, fmt.Errorf("initial pose: %w", ErrInvalidPose)
	}

	capacity := cfg.MaxSteps + 1
	if capacity > 4096 {
		capacity = 4096
	}
	result := &Result{
		Law:        s.law.Name(),
		Trajectory: make([]geom.Point, 0, capacity),
		Poses:      make([]Pose, 0, capacity),
		Commands:   make([]Command, 0, capacity),
		Times:      make([]float64, 0, capacity),
		Metrics:    make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
		if st, ok := m.(Starter); ok {
			st.Start(p0)
		}
	}

	sess := &Session{sim: s, cfg: cfg, pose: p0, result: result}
	sess.record()
	return sess, nil
}

func (r *Session) Pose() Pose      { return r.pose }
func (r *Session) Time() float64   { return r.t }
func (r *Session) Done() bool      { return r.done }
func (r *Session) Result() *Result { return r.result }

// Next runs one loop iteration: goal check, step cap, guidance, integration.
// It reports true once the run has terminated.
func (r *Session) Next() (bool, error) {
	if r.done {
		return true, nil
	}
	s := r.sim

	if s.reachedGoal(r.pose, r.cfg) {
		r.finish(OutcomeReached)
		return true, nil
	}
	if r.step >= r.cfg.MaxSteps {
		r.finish(OutcomeStepLimit)
		return true, nil
	}

	cmd, err := s.law.Guide(r.pose, r.t)
	if err != nil {
		if errors.Is(err, ErrNoTarget) {
			r.finish(OutcomeNoTarget)
			return true, nil
		}
		r.finish(OutcomeFailed)
		return true, &SimulationError{Step: r.step, Time: r.t, Pose: r.pose, Wrapped: err}
	}
	if cmd.Mode == ModeHold {
		s.logger.Debug("holding position",
			zap.Int("step", r.step),
			zap.Float64("x", r.pose.X),
			zap.Float64("y", r.pose.Y))
	}

	next := s.integrator.Step(r.pose, cmd, r.cfg.Speed, r.cfg.Dt)
	if r.cfg.ValidatePose && !next.IsValid() {
		r.finish(OutcomeInvalidPose)
		return true, &SimulationError{Step: r.step, Time: r.t, Pose: r.pose, Wrapped: ErrInvalidPose}
	}

	r.pose = next
	r.t += r.cfg.Dt
	r.step++

	for _, m := range s.metrics {
		m.Observe(r.pose, cmd, r.t)
	}
	for _, obs := range s.observers {
		obs.OnStep(r.pose, cmd, r.t)
	}

	r.result.Steps = r.step
	r.result.Commands = append(r.result.Commands, cmd)
	r.record()
	return false, nil
}

func (r *Session) record() {
	r.result.Poses = append(r.result.Poses, r.pose)
	r.result.Trajectory = append(r.result.Trajectory, r.pose.Point())
	r.result.Times = append(r.result.Times, r.t)
}

// Cancel ends the session early with OutcomeCanceled.
func (r *Session) Cancel() {
	if !r.done {
		r.finish(OutcomeCanceled)
	}
}

func (r *Session) finish(o Outcome) {
	r.done = true
	r.result.Outcome = o
	r.result.FinalDist = r.sim.goalDistance(r.pose)
	for _, m := range r.sim.metrics {
		r.result.Metrics[m.Name()] = m.Value()
	}
	r.sim.logger.Info("run finished",
		zap.String("law", r.result.Law),
		zap.String("outcome", o.Label()),
		zap.Int("steps", r.result.Steps),
		zap.Float64("final_dist", r.result.FinalDist))
}

func (s *Simulator) Run(ctx context.Context, p0 Pose, cfg Config) (*Result, error) {
	sess, err := s.Start(p0, cfg)
	if err != nil {
		return nil, err
	}

	for {
		select {
		case <-ctx.Done():
			sess.Cancel()
			return sess.Result(), ctx.Err()
		default:
		}

		done, err := sess.Next()
		if err != nil {
			return sess.Result(), err
		}
		if done {
			return sess.Result(), nil
		}
	}
}

// StepFunc receives every integrated pose. Returning false stops the run
// with OutcomeCanceled.
type StepFunc func(p Pose, cmd Command, t float64) bool

// RunWithCallback is Run with a per-step callback.
func (s *Simulator) RunWithCallback(ctx context.Context, p0 Pose, cfg Config, fn StepFunc) (*Result, error) {
	sess, err := s.Start(p0, cfg)
	if err != nil {
		return nil, err
	}

	for {
		if err := ctx.Err(); err != nil {
			sess.Cancel()
			return sess.Result(), err
		}

		done, err := sess.Next()
		if err != nil {
			return sess.Result(), err
		}
		if done {
			return sess.Result(), nil
		}

		res := sess.Result()
		if fn != nil && !fn(sess.Pose(), res.Commands[len(res.Commands)-1], sess.Time()) {
			sess.Cancel()
			return res, nil
		}
	}
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Speed <= 0 {
		return fmt.Errorf("%w: speed must be positive, got %f", ErrInvalidConfig, cfg.Speed)
	}
	if cfg.MaxSteps <= 0 {
		return fmt.Errorf("%w: max steps must be positive, got %d", ErrInvalidConfig, cfg.MaxSteps)
	}
	if cfg.GoalTolerance <= 0 {
		return fmt.Errorf("%w: goal tolerance must be positive, got %f", ErrInvalidConfig, cfg.GoalTolerance)
	}
	return nil
}

func (s *Simulator) goalDistance(p Pose) float64 {
	if g, ok := s.law.(Goaled); ok {
		return p.Point().Dist(g.Goal())
	}
	return math.NaN()
}

func (s *Simulator) reachedGoal(p Pose, cfg Config) bool {
	if gc, ok := s.law.(GoalChecker); ok {
		return gc.ReachedGoal(p)
	}
	d := s.goalDistance(p)
	return !math.IsNaN(d) && d < cfg.GoalTolerance
}
