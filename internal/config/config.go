package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/san-kum/navsim/internal/geom"
	"github.com/san-kum/navsim/internal/nav"
	"github.com/san-kum/navsim/internal/observability"
	"github.com/san-kum/navsim/internal/workspace"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt            = 0.1
	DefaultSpeed         = 1.0
	DefaultMaxSteps      = 1000
	DefaultGoalTolerance = 0.5
	DefaultHeadingDeg    = -90.0
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Law           string                  `yaml:"law"`
	Integrator    string                  `yaml:"integrator,omitempty"` // empty picks the law's default
	Dt            float64                 `yaml:"dt"`
	Speed         float64                 `yaml:"speed"`
	MaxSteps      int                     `yaml:"max_steps"`
	GoalTolerance float64                 `yaml:"goal_tolerance"`
	HeadingDeg    float64                 `yaml:"heading_deg"`
	Workspace     WorkspaceConfig         `yaml:"workspace"`
	Params        map[string]float64      `yaml:"params,omitempty"`
	Log           observability.LogConfig `yaml:"log"`
}

type WorkspaceConfig struct {
	Bounds    workspace.Bounds     `yaml:"bounds" json:"bounds"`
	Start     geom.Point           `yaml:"start" json:"start"`
	Goal      geom.Point           `yaml:"goal" json:"goal"`
	Init      *geom.Point          `yaml:"init,omitempty" json:"init,omitempty"`
	Obstacles []workspace.Obstacle `yaml:"obstacles,omitempty" json:"obstacles,omitempty"`
	Margin    float64              `yaml:"margin" json:"margin"`
}

func DefaultConfig() *Config {
	return &Config{
		Law:           "carrot",
		Dt:            DefaultDt,
		Speed:         DefaultSpeed,
		MaxSteps:      DefaultMaxSteps,
		GoalTolerance: DefaultGoalTolerance,
		HeadingDeg:    DefaultHeadingDeg,
		Workspace: WorkspaceConfig{
			Bounds: workspace.Rect(0, 51, 0, 51),
			Start:  geom.Pt(5, 5),
			Goal:   geom.Pt(45, 45),
			Init:   ptr(geom.Pt(30, 10)),
			Margin: workspace.DefaultMargin,
		},
		Params: map[string]float64{},
		Log:    observability.DefaultLogConfig(),
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the run parameters and the workspace. Law parameters are
// checked by the law constructors.
func (c *Config) Validate() error {
	if c.Law == "" {
		return fmt.Errorf("%w: law is required", ErrInvalid)
	}
	if !(c.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %v", ErrInvalid, c.Dt)
	}
	if !(c.Speed > 0) {
		return fmt.Errorf("%w: speed must be positive, got %v", ErrInvalid, c.Speed)
	}
	if c.MaxSteps <= 0 {
		return fmt.Errorf("%w: max_steps must be positive, got %d", ErrInvalid, c.MaxSteps)
	}
	if !(c.GoalTolerance > 0) {
		return fmt.Errorf("%w: goal_tolerance must be positive, got %v", ErrInvalid, c.GoalTolerance)
	}
	if math.IsNaN(c.HeadingDeg) || math.IsInf(c.HeadingDeg, 0) {
		return fmt.Errorf("%w: heading_deg must be finite", ErrInvalid)
	}
	if _, err := c.BuildWorkspace(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

func (c *Config) BuildWorkspace() (*workspace.Workspace, error) {
	return c.Workspace.Build()
}

func (w WorkspaceConfig) Build() (*workspace.Workspace, error) {
	opts := []workspace.Option{
		workspace.WithObstacles(w.Obstacles...),
		workspace.WithMargin(w.Margin),
	}
	if w.Init != nil {
		opts = append(opts, workspace.WithInit(*w.Init))
	}
	return workspace.New(w.Bounds, w.Start, w.Goal, opts...)
}

func (c *Config) SimConfig() nav.Config {
	return nav.Config{
		Dt:            c.Dt,
		Speed:         c.Speed,
		MaxSteps:      c.MaxSteps,
		GoalTolerance: c.GoalTolerance,
		ValidatePose:  true,
	}
}

// InitialPose places the robot at the workspace init point with the
// configured heading.
func (c *Config) InitialPose() nav.Pose {
	p := c.Workspace.Start
	if c.Workspace.Init != nil {
		p = *c.Workspace.Init
	}
	return nav.Pose{X: p.X, Y: p.Y, Heading: geom.Rad(c.HeadingDeg)}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	if c.Workspace.Init != nil {
		out.Workspace.Init = ptr(*c.Workspace.Init)
	}
	out.Workspace.Obstacles = append([]workspace.Obstacle(nil), c.Workspace.Obstacles...)
	out.Params = make(map[string]float64, len(c.Params))
	for k, v := range c.Params {
		out.Params[k] = v
	}
	return &out
}

func ptr[T any](v T) *T { return &v }
