package nav

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Job is one independent run of a Batch. Each job needs its own Simulator
// when metrics are attached, since metrics accumulate per run.
type Job struct {
	Name   string
	Sim    *Simulator
	Start  Pose
	Config Config
}

type Batch struct {
	jobs  []Job
	limit int
}

// NewBatch runs at most limit jobs at a time; limit <= 0 means no limit.
func NewBatch(limit int, jobs ...Job) *Batch {
	return &Batch{jobs: jobs, limit: limit}
}

func (b *Batch) Add(j Job) { b.jobs = append(b.jobs, j) }

func (b *Batch) Len() int { return len(b.jobs) }

// Run executes all jobs and returns their results in job order. The first
// failing job cancels the rest.
func (b *Batch) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, len(b.jobs))

	g, ctx := errgroup.WithContext(ctx)
	if b.limit > 0 {
		g.SetLimit(b.limit)
	}

	for i, job := range b.jobs {
		i, job := i, job
		g.Go(func() error {
			res, err := job.Sim.Run(ctx, job.Start, job.Config)
			results[i] = res
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
