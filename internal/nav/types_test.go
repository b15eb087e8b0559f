package nav

import (
	"errors"
	"math"
	"testing"
)

func TestPose_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		pose  Pose
		valid bool
	}{
		{"zero", Pose{}, true},
		{"normal", Pose{X: 1, Y: 2, Heading: 3}, true},
		{"NaN x", Pose{X: math.NaN()}, false},
		{"+Inf y", Pose{Y: math.Inf(1)}, false},
		{"NaN heading", Pose{Heading: math.NaN()}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pose.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestOutcomeLabels(t *testing.T) {
	for o := OutcomeReached; o <= OutcomeFailed; o++ {
		got, ok := ParseOutcome(o.Label())
		if !ok || got != o {
			t.Errorf("ParseOutcome(%q) = %v, %v", o.Label(), got, ok)
		}
	}
	if _, ok := ParseOutcome("bogus"); ok {
		t.Error("expected bogus label to be rejected")
	}
	if OutcomeStepLimit.String() != "stopped: too many steps" {
		t.Errorf("unexpected step limit text %q", OutcomeStepLimit.String())
	}
	if OutcomeNoTarget.String() != "no valid target point" {
		t.Errorf("unexpected no target text %q", OutcomeNoTarget.String())
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Dt <= 0 {
		t.Error("DefaultConfig has invalid Dt")
	}
	if cfg.Speed <= 0 {
		t.Error("DefaultConfig has invalid Speed")
	}
	if cfg.MaxSteps <= 0 {
		t.Error("DefaultConfig has invalid MaxSteps")
	}
}

func TestSimulationError(t *testing.T) {
	err := &SimulationError{Time: 1.5, Step: 15, Wrapped: ErrInvalidPose}
	expected := "step 15 (t=1.5000): nav: invalid pose (NaN or Inf detected)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, ErrInvalidPose) {
		t.Error("expected SimulationError to unwrap to ErrInvalidPose")
	}
}
