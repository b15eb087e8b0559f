package experiment

import (
	"context"

	"github.com/san-kum/navsim/internal/config"
	"github.com/san-kum/navsim/internal/nav"
)

type Variant struct {
	Name   string
	Config *config.Config
}

type Comparison struct {
	Name   string
	Law    string
	Params map[string]float64
	Result *nav.Result
}

// Compare builds every variant and runs them concurrently, at most
// parallel at a time. Results keep the order of variants.
func Compare(ctx context.Context, reg *Registry, variants []Variant, parallel int, opts ...Option) ([]Comparison, error) {
	batch := nav.NewBatch(parallel)
	out := make([]Comparison, len(variants))
	exps := make([]*Experiment, len(variants))

	for i, v := range variants {
		exp, err := New(v.Config, reg, opts...)
		if err != nil {
			return nil, err
		}
		batch.Add(nav.Job{
			Name:   v.Name,
			Sim:    exp.Simulator(),
			Start:  v.Config.InitialPose(),
			Config: v.Config.SimConfig(),
		})
		exps[i] = exp
		out[i] = Comparison{Name: v.Name, Law: v.Config.Law, Params: exp.Params()}
	}

	results, err := batch.Run(ctx)
	if err != nil {
		return nil, err
	}
	for i, r := range results {
		out[i].Result = r
		exps[i].collector.ObserveRun(r)
	}
	return out, nil
}
