package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/navsim/internal/config"
	"github.com/san-kum/navsim/internal/experiment"
	"github.com/san-kum/navsim/internal/export"
	"github.com/san-kum/navsim/internal/optim"
	"github.com/spf13/cobra"
)

var (
	parallel       int
	compareInteg   string
	compareSVG     string
	tunePreset     string
	tuneRanges     []string
	tuneMetric     string
	tuneTop        int
	allowUnreached bool
)

// Sweeps used by tune when no --range is given.
var defaultRanges = map[string][]string{
	"bug0":        {"step_size=0.05:0.2:4"},
	"carrot":      {"delta=1:4:4", "k=0.5:2:4"},
	"nlgl":        {"L=5:15:6"},
	"vectorfield": {"tau=2:8:4", "k=1:3:3"},
}

func compareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [law[/preset]] ...",
		Short: "run several scenarios side by side",
		Long:  "Runs each law/preset pair concurrently. With no arguments every law's default preset is compared.",
		RunE:  compareScenarios,
	}
	cmd.Flags().IntVar(&parallel, "parallel", 4, "concurrent runs")
	cmd.Flags().StringVar(&compareInteg, "integrator", "", "override the integrator for every scenario")
	cmd.Flags().StringVar(&compareSVG, "svg", "", "overlay the paths in an svg over the first scenario's workspace")
	return cmd
}

// compareVariants turns law[/preset] arguments into variants. With no
// arguments it takes every law's default preset, leaving out laws that
// cannot run with integ.
func compareVariants(reg *experiment.Registry, args []string, integ string) ([]experiment.Variant, error) {
	if len(args) == 0 {
		for _, law := range config.Laws() {
			if integ != "" && reg.CheckPairing(law, integ) != nil {
				continue
			}
			args = append(args, law+"/default")
		}
		if len(args) == 0 {
			return nil, fmt.Errorf("no law runs with integrator %s", integ)
		}
	}

	variants := make([]experiment.Variant, 0, len(args))
	for _, arg := range args {
		law, name, ok := strings.Cut(arg, "/")
		if !ok {
			name = "default"
		}
		cfg := config.GetPreset(law, name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown scenario %s (presets for %s: %v)", arg, law, config.ListPresets(law))
		}
		if integ != "" {
			cfg.Integrator = integ
		}
		variants = append(variants, experiment.Variant{Name: law + "/" + name, Config: cfg})
	}
	return variants, nil
}

func compareScenarios(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()
	variants, err := compareVariants(reg, args, compareInteg)
	if err != nil {
		return err
	}

	logger := newLogger(cmd, nil)
	defer logger.Sync()

	results, err := experiment.Compare(cmd.Context(), reg, variants, parallel,
		experiment.WithLogger(logger), experiment.WithCollector(collector))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENARIO\tINTEG\tOUTCOME\tSTEPS\tFINAL DIST\tPATH\tXTRACK RMS\tEFFORT")
	for i, c := range results {
		r := c.Result
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.3f\t%.2f\t%.3f\t%.3f\n",
			c.Name,
			variants[i].Config.Integrator,
			r.Outcome.Label(),
			r.Steps,
			r.FinalDist,
			r.Metrics["path_length"],
			r.Metrics["cross_track_rms"],
			r.Metrics["control_effort"],
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if compareSVG == "" {
		return nil
	}
	ws, err := variants[0].Config.BuildWorkspace()
	if err != nil {
		return err
	}
	scene := export.NewScene(ws, 600)
	for _, c := range results {
		scene.AddPath(c.Name, c.Result.Trajectory)
	}
	f, err := os.Create(compareSVG)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = scene.WriteTo(f)
	return err
}

func tuneCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tune [law]",
		Short: "grid search law parameters",
		Long: "Sweeps law parameters over a grid and ranks the runs by a metric (lower is better).\n" +
			"Ranges are name=lo:hi:n or name=v1,v2,...",
		Args: cobra.ExactArgs(1),
		RunE: tuneLaw,
	}
	cmd.Flags().StringVar(&tunePreset, "preset", "default", "scenario preset to tune on")
	cmd.Flags().StringArrayVar(&tuneRanges, "range", nil, "parameter range (repeatable)")
	cmd.Flags().StringVar(&tuneMetric, "metric", "cross_track_rms", "metric to minimize, or steps")
	cmd.Flags().IntVar(&parallel, "parallel", 4, "concurrent runs")
	cmd.Flags().IntVar(&tuneTop, "top", 10, "rows to print")
	cmd.Flags().BoolVar(&allowUnreached, "allow-unreached", false, "rank runs that did not reach the goal")
	return cmd
}

func tuneLaw(cmd *cobra.Command, args []string) error {
	law := args[0]
	base := config.GetPreset(law, tunePreset)
	if base == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", tunePreset, config.ListPresets(law))
	}

	specs := tuneRanges
	if len(specs) == 0 {
		specs = defaultRanges[law]
	}
	ranges := make([]optim.Range, 0, len(specs))
	for _, s := range specs {
		r, err := optim.ParseRange(s)
		if err != nil {
			return err
		}
		ranges = append(ranges, r)
	}
	if len(ranges) == 0 {
		return fmt.Errorf("no ranges to search for %s", law)
	}

	logger := newLogger(cmd, base)
	defer logger.Sync()

	search := optim.NewGridSearch(tuneMetric, ranges...)
	search.Parallel = parallel
	search.RequireReached = !allowUnreached

	reg := experiment.NewRegistry()
	build := func(p map[string]float64) (*experiment.Experiment, error) {
		cfg := base.Clone()
		for k, v := range p {
			cfg.Params[k] = v
		}
		return experiment.New(cfg, reg, experiment.WithLogger(logger), experiment.WithCollector(collector))
	}

	fmt.Printf("tuning %s/%s over %d combinations, minimizing %s\n\n", law, tunePreset, search.Size(), tuneMetric)
	best, trials, err := search.Search(cmd.Context(), build)
	if err != nil && trials == nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tPARAMS\tSCORE\tOUTCOME\tSTEPS")
	for i, t := range trials {
		if i >= tuneTop {
			break
		}
		outcome := t.Outcome.Label()
		if t.Err != nil {
			outcome = "error: " + t.Err.Error()
		}
		fmt.Fprintf(w, "%d\t%s\t%.4f\t%s\t%d\n", i+1, formatParams(t.Params), t.Score, outcome, t.Steps)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}

	fmt.Printf("\nbest: %s (%s = %.4f)\n", formatParams(best.Params), tuneMetric, best.Score)
	return nil
}

func formatParams(p map[string]float64) string {
	parts := make([]string, 0, len(p))
	for _, k := range sortedKeys(p) {
		parts = append(parts, fmt.Sprintf("%s=%g", k, p[k]))
	}
	return strings.Join(parts, " ")
}
