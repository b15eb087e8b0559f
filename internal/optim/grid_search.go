package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/navsim/internal/experiment"
	"github.com/san-kum/navsim/internal/nav"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

var ErrNoCandidate = errors.New("optim: no run satisfied the objective")

// Range is the set of values tried for one law parameter.
type Range struct {
	Param  string
	Values []float64
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(param string, lo, hi float64, n int) Range {
	if n < 2 {
		return Range{Param: param, Values: []float64{lo}}
	}
	return Range{Param: param, Values: floats.Span(make([]float64, n), lo, hi)}
}

// ParseRange reads "name=lo:hi:n" or "name=v1,v2,...".
func ParseRange(s string) (Range, error) {
	name, spec, ok := strings.Cut(s, "=")
	if !ok || name == "" || spec == "" {
		return Range{}, fmt.Errorf("range %q: want name=lo:hi:n or name=v1,v2", s)
	}
	if parts := strings.Split(spec, ":"); len(parts) == 3 {
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err := errors.Join(err1, err2, err3); err != nil {
			return Range{}, fmt.Errorf("range %q: %w", s, err)
		}
		if n < 1 {
			return Range{}, fmt.Errorf("range %q: need at least one sample", s)
		}
		return Linspace(name, lo, hi, n), nil
	}
	var vals []float64
	for _, p := range strings.Split(spec, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Range{}, fmt.Errorf("range %q: %w", s, err)
		}
		vals = append(vals, v)
	}
	return Range{Param: name, Values: vals}, nil
}

// Trial is one evaluated parameter combination.
type Trial struct {
	Params  map[string]float64
	Score   float64
	Outcome nav.Outcome
	Steps   int
	Err     error
}

// Feasible reports whether the trial may win the search.
func (t Trial) Feasible(requireReached bool) bool {
	if t.Err != nil || math.IsNaN(t.Score) {
		return false
	}
	return !requireReached || t.Outcome == nav.OutcomeReached
}

type BuildFunc func(params map[string]float64) (*experiment.Experiment, error)

type GridSearch struct {
	ranges []Range

	// Metric is minimized. "steps" scores by step count.
	Metric string
	// RequireReached excludes runs that did not reach the goal.
	RequireReached bool
	Parallel       int
}

func NewGridSearch(metric string, ranges ...Range) *GridSearch {
	return &GridSearch{ranges: ranges, Metric: metric, RequireReached: true, Parallel: 4}
}

// Size is the number of combinations the search evaluates.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r.Values)
	}
	return n
}

// Combinations enumerates the cartesian product, last range varying fastest.
func (g *GridSearch) Combinations() []map[string]float64 {
	combos := []map[string]float64{{}}
	for _, r := range g.ranges {
		next := make([]map[string]float64, 0, len(combos)*len(r.Values))
		for _, c := range combos {
			for _, v := range r.Values {
				m := make(map[string]float64, len(c)+1)
				for k, cv := range c {
					m[k] = cv
				}
				m[r.Param] = v
				next = append(next, m)
			}
		}
		combos = next
	}
	return combos
}

// Search runs every combination and returns all trials sorted best first
// along with the winner. Build errors are kept on the trial rather than
// aborting the search.
func (g *GridSearch) Search(ctx context.Context, build BuildFunc) (Trial, []Trial, error) {
	combos := g.Combinations()
	trials := make([]Trial, len(combos))

	eg, ctx := errgroup.WithContext(ctx)
	if g.Parallel > 0 {
		eg.SetLimit(g.Parallel)
	}
	for i, params := range combos {
		i, params := i, params
		eg.Go(func() error {
			trials[i] = g.evaluate(ctx, build, params)
			return ctx.Err()
		})
	}
	if err := eg.Wait(); err != nil {
		return Trial{}, nil, err
	}

	sort.SliceStable(trials, func(a, b int) bool {
		fa, fb := trials[a].Feasible(g.RequireReached), trials[b].Feasible(g.RequireReached)
		if fa != fb {
			return fa
		}
		return trials[a].Score < trials[b].Score
	})
	if len(trials) == 0 || !trials[0].Feasible(g.RequireReached) {
		return Trial{}, trials, ErrNoCandidate
	}
	return trials[0], trials, nil
}

func (g *GridSearch) evaluate(ctx context.Context, build BuildFunc, params map[string]float64) Trial {
	t := Trial{Params: params, Score: math.NaN()}
	exp, err := build(params)
	if err != nil {
		t.Err = err
		return t
	}
	result, err := exp.Run(ctx)
	if err != nil {
		t.Err = err
		return t
	}
	t.Outcome = result.Outcome
	t.Steps = result.Steps
	if g.Metric == "steps" {
		t.Score = float64(result.Steps)
	} else if v, ok := result.Metrics[g.Metric]; ok {
		t.Score = v
	} else {
		t.Err = fmt.Errorf("unknown metric %q", g.Metric)
	}
	return t
}
