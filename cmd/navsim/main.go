package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/san-kum/navsim/internal/config"
	"github.com/san-kum/navsim/internal/experiment"
	"github.com/san-kum/navsim/internal/geom"
	"github.com/san-kum/navsim/internal/nav"
	"github.com/san-kum/navsim/internal/observability"
	"github.com/san-kum/navsim/internal/storage"
	"github.com/san-kum/navsim/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dataDir     string
	logLevel    string
	logFormat   string
	logFile     string
	dumpMetrics bool

	// scenario flags shared by run and live
	configFile string
	preset     string
	integrator string
	dt         float64
	speed      float64
	maxSteps   int
	tolerance  float64
	heading    float64
	initPoint  string
	params     []string

	noSave      bool
	showMap     bool
	speedup     int
	replaySpeed int
	theme       string
	metricsAddr string

	collector *observability.RunCollector
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "navsim",
		Short:         "2D path-following and reactive navigation simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := observability.NewRunCollector(prometheus.NewRegistry())
			if err != nil {
				return err
			}
			collector = c
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if !dumpMetrics {
				return nil
			}
			fmt.Println()
			return collector.WriteText(os.Stdout)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".navsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write json logs to this rotating file")
	rootCmd.PersistentFlags().BoolVar(&dumpMetrics, "metrics", false, "print prometheus metrics after the command")

	runCmd := &cobra.Command{
		Use:   "run [law]",
		Short: "run a scenario and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	scenarioFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().BoolVar(&showMap, "map", false, "print a map of the run")

	liveCmd := &cobra.Command{
		Use:   "live [law]",
		Short: "step a scenario in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	scenarioFlags(liveCmd)
	liveCmd.Flags().IntVar(&speedup, "speed-up", 1, "simulation steps per frame")
	liveCmd.Flags().StringVar(&theme, "theme", "cyberpunk", "color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	liveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while running")

	replayCmd := &cobra.Command{
		Use:   "replay [run_id]",
		Short: "replay a stored run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  replayRun,
	}
	replayCmd.Flags().IntVar(&replaySpeed, "speed-up", 4, "samples per frame")
	replayCmd.Flags().StringVar(&theme, "theme", "cyberpunk", "color theme")

	presetsCmd := &cobra.Command{
		Use:   "presets [law]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, liveCmd, replayCmd, presetsCmd)
	rootCmd.AddCommand(runCommands()...)
	rootCmd.AddCommand(compareCommand(), tuneCommand())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func scenarioFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	cmd.Flags().StringVar(&configFile, "config", "", "scenario file (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset scenario")
	cmd.Flags().StringVar(&integrator, "integrator", d.Integrator, "integrator (euler, arc, holonomic; default depends on the law)")
	cmd.Flags().Float64Var(&dt, "dt", d.Dt, "timestep")
	cmd.Flags().Float64Var(&speed, "speed", d.Speed, "forward speed")
	cmd.Flags().IntVar(&maxSteps, "max-steps", d.MaxSteps, "step cap")
	cmd.Flags().Float64Var(&tolerance, "tolerance", d.GoalTolerance, "goal tolerance (bug0 uses it as its goal threshold)")
	cmd.Flags().Float64Var(&heading, "heading", d.HeadingDeg, "initial heading in degrees")
	cmd.Flags().StringVar(&initPoint, "init", "", "initial position as x,y")
	cmd.Flags().StringArrayVar(&params, "param", nil, "law parameter as name=value (repeatable)")
}

// resolveScenario layers the scenario: preset (or the law's default preset),
// then the config file, then explicitly set flags.
func resolveScenario(cmd *cobra.Command, args []string) (*config.Config, error) {
	law := ""
	if len(args) > 0 {
		law = args[0]
	}

	var cfg *config.Config
	switch {
	case preset != "":
		if law == "" {
			return nil, fmt.Errorf("--preset needs a law argument")
		}
		cfg = config.GetPreset(law, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(law))
		}
	case law != "":
		cfg = config.GetPreset(law, "default")
		if cfg == nil {
			cfg = config.DefaultConfig()
			cfg.Law = law
		}
	default:
		cfg = config.DefaultConfig()
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if law != "" {
			cfg.Law = law
		}
	}

	flags := cmd.Flags()
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("speed") {
		cfg.Speed = speed
	}
	if flags.Changed("max-steps") {
		cfg.MaxSteps = maxSteps
	}
	if flags.Changed("tolerance") {
		cfg.GoalTolerance = tolerance
	}
	if flags.Changed("heading") {
		cfg.HeadingDeg = heading
	}
	if flags.Changed("init") {
		p, err := parsePoint(initPoint)
		if err != nil {
			return nil, err
		}
		cfg.Workspace.Init = &p
	}
	for _, kv := range params {
		name, val, err := parseParam(kv)
		if err != nil {
			return nil, err
		}
		if cfg.Params == nil {
			cfg.Params = map[string]float64{}
		}
		cfg.Params[name] = val
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parsePoint(s string) (geom.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return geom.Point{}, fmt.Errorf("point %q: want x,y", s)
	}
	x, err1 := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	y, err2 := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err := errors.Join(err1, err2); err != nil {
		return geom.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	return geom.Pt(x, y), nil
}

func parseParam(s string) (string, float64, error) {
	name, vs, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return "", 0, fmt.Errorf("param %q: want name=value", s)
	}
	v, err := strconv.ParseFloat(vs, 64)
	if err != nil {
		return "", 0, fmt.Errorf("param %q: %w", s, err)
	}
	return name, v, nil
}

// newLogger starts from the scenario's log section and applies the
// persistent log flags that were set.
func newLogger(cmd *cobra.Command, cfg *config.Config) *zap.Logger {
	lc := observability.DefaultLogConfig()
	if cfg != nil {
		lc = cfg.Log
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") || lc.Level == "" {
		lc.Level = logLevel
	}
	if flags.Changed("log-format") || lc.Format == "" {
		lc.Format = logFormat
	}
	if flags.Changed("log-file") {
		lc.File = logFile
	}
	return observability.NewLogger(lc)
}

func runScenario(cmd *cobra.Command, args []string) error {
	cfg, err := resolveScenario(cmd, args)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)
	defer logger.Sync()

	exp, err := experiment.New(cfg, experiment.NewRegistry(),
		experiment.WithLogger(logger), experiment.WithCollector(collector))
	if err != nil {
		return err
	}

	fmt.Printf("running %s with %s...\n", cfg.Law, cfg.Integrator)
	start := time.Now()
	result, err := exp.Run(cmd.Context())
	if err != nil && result == nil {
		return err
	}
	elapsed := time.Since(start)
	if err != nil {
		logger.Warn("run ended with error", zap.Error(err))
	}

	fmt.Printf("completed in %v\n", elapsed)
	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg, exp.Params(), result)
		if err != nil {
			return err
		}
		logger.Debug("run saved", zap.String("id", runID), zap.String("dir", dataDir))
		fmt.Printf("run id: %s\n", runID)
	}
	fmt.Printf("outcome: %s\n", result.Outcome)
	fmt.Printf("steps: %d\n", result.Steps)
	fmt.Printf("final distance: %.4f\n", result.FinalDist)
	printParams(exp.Params())
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	if showMap {
		fmt.Println()
		fmt.Print(viz.PlotScenario(exp.Workspace(), 70, 30, result.Trajectory))
	}
	return err
}

func printParams(p map[string]float64) {
	if len(p) == 0 {
		return
	}
	fmt.Println("\nparams:")
	for _, k := range sortedKeys(p) {
		fmt.Printf("  %s: %g\n", k, p[k])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveScenario(cmd, args)
	if err != nil {
		return err
	}
	// keep the console quiet while the ui owns the terminal
	cfg.Log.Level = "error"
	logger := newLogger(cmd, cfg)
	defer logger.Sync()

	exp, err := experiment.New(cfg, experiment.NewRegistry(), experiment.WithLogger(logger))
	if err != nil {
		return err
	}

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server", zap.Error(err))
			}
		}()
		defer srv.Shutdown(context.Background())
	}

	title := fmt.Sprintf("%s / %s", strings.ToUpper(cfg.Law), cfg.Integrator)
	m := viz.NewLive(exp.Workspace(), title, exp.Law(), exp.Start)
	m.SetSpeed(speedup)
	m.SetTheme(theme)

	final, err := tea.NewProgram(m, tea.WithContext(cmd.Context())).Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	if fm, ok := final.(viz.Model); ok {
		collector.ObserveRun(fm.Result())
	}
	return nil
}

func replayRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	tr, err := st.LoadTrajectory(meta.ID)
	if err != nil {
		return err
	}
	ws, err := meta.Workspace.Build()
	if err != nil {
		return err
	}

	outcome := meta.Outcome
	if o, ok := nav.ParseOutcome(meta.Outcome); ok {
		outcome = o.String()
	}
	title := fmt.Sprintf("%s / %s  %s", strings.ToUpper(meta.Law), meta.Integrator, shortID(meta.ID))
	m := viz.NewReplay(ws, title, outcome, viz.Frames(tr.Times, tr.Poses, tr.Modes))
	m.SetSpeed(replaySpeed)
	m.SetTheme(theme)

	_, err = tea.NewProgram(m, tea.WithContext(cmd.Context())).Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

func listPresets(cmd *cobra.Command, args []string) error {
	laws := config.Laws()
	if len(args) > 0 {
		laws = args
	}
	for _, law := range laws {
		presets := config.ListPresets(law)
		if len(presets) == 0 {
			fmt.Printf("no presets for law: %s\n", law)
			continue
		}
		fmt.Printf("presets for %s:\n", law)
		for _, p := range presets {
			fmt.Printf("  %s\n", p)
		}
	}
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
