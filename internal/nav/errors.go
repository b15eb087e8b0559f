package nav

import (
	"errors"
	"fmt"
)

// Domain errors for guidance and simulation operations.
var (
	// ErrNoTarget indicates the law could not place a target point for the current pose.
	ErrNoTarget = errors.New("nav: no valid target point")

	// ErrInvalidPose indicates a pose with NaN or Inf components.
	ErrInvalidPose = errors.New("nav: invalid pose (NaN or Inf detected)")

	// ErrInvalidConfig indicates a run configuration outside its valid range.
	ErrInvalidConfig = errors.New("nav: invalid configuration")

	// ErrDegenerateLine indicates a reference line whose start equals its goal.
	ErrDegenerateLine = errors.New("nav: start and goal coincide")

	// ErrParameterBounds indicates a law parameter outside its valid range.
	ErrParameterBounds = errors.New("nav: parameter out of valid bounds")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	Pose    Pose
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
