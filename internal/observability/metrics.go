package observability

import (
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
	"github.com/san-kum/navsim/internal/nav"
)

// RunCollector exports per-run outcomes as Prometheus metrics.
type RunCollector struct {
	gatherer prometheus.Gatherer

	Runs       *prometheus.CounterVec
	Steps      *prometheus.HistogramVec
	PathLength *prometheus.GaugeVec
}

// NewRunCollector registers the run metrics against reg, defaulting to the
// global registry when nil.
func NewRunCollector(reg prometheus.Registerer) (*RunCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "navsim_runs_total",
		Help: "Finished simulation runs, labeled by guidance law and outcome.",
	}, []string{"law", "outcome"})
	runs, err := register(reg, runs, "navsim_runs_total")
	if err != nil {
		return nil, err
	}

	steps := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "navsim_run_steps",
		Help:    "Integration steps taken per run.",
		Buckets: prometheus.ExponentialBuckets(10, 2, 10),
	}, []string{"law"})
	steps, err = register(reg, steps, "navsim_run_steps")
	if err != nil {
		return nil, err
	}

	length := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "navsim_path_length",
		Help: "Path length of the most recent run per law.",
	}, []string{"law"})
	length, err = register(reg, length, "navsim_path_length")
	if err != nil {
		return nil, err
	}

	return &RunCollector{gatherer: gatherer, Runs: runs, Steps: steps, PathLength: length}, nil
}

func (c *RunCollector) ObserveRun(r *nav.Result) {
	if c == nil || r == nil {
		return
	}
	c.Runs.WithLabelValues(r.Law, r.Outcome.Label()).Inc()
	c.Steps.WithLabelValues(r.Law).Observe(float64(r.Steps))
	if v, ok := r.Metrics["path_length"]; ok {
		c.PathLength.WithLabelValues(r.Law).Set(v)
	}
}

// Handler exposes a /metrics handler.
func (c *RunCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// WriteText dumps every gathered family in the text exposition format.
func (c *RunCollector) WriteText(w io.Writer) error {
	families, err := c.gatherer.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// register returns the existing collector when an identical one is already
// registered.
func register[T prometheus.Collector](reg prometheus.Registerer, c T, name string) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		var zero T
		return zero, err
	}
	return c, nil
}
