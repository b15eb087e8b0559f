package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/navsim/internal/export"
	"github.com/san-kum/navsim/internal/geom"
	"github.com/san-kum/navsim/internal/storage"
	"github.com/san-kum/navsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	outFile  string
	svgWidth int
	plotMap  bool
)

func runCommands() []*cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot distance to goal, cross-track error and heading",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().BoolVar(&plotMap, "map", true, "also print a map of the run")

	svgCmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "render a run as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  svgRun,
	}
	svgCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	svgCmd.Flags().IntVar(&svgWidth, "width", 600, "image width in pixels")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	return []*cobra.Command{listCmd, plotCmd, svgCmd, exportJSONCmd, exportCSVCmd}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLAW\tINTEG\tTIME\tOUTCOME\tSTEPS\tFINAL DIST")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%.3f\n",
			shortID(run.ID),
			run.Law,
			run.Integrator,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Outcome,
			run.Steps,
			run.FinalDist,
		)
	}

	return w.Flush()
}

func loadRun(id string) (*storage.RunMetadata, *storage.Trajectory, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(id)
	if err != nil {
		return nil, nil, err
	}
	tr, err := st.LoadTrajectory(meta.ID)
	if err != nil {
		return nil, nil, err
	}
	if len(tr.Poses) == 0 {
		return nil, nil, fmt.Errorf("run %s has no samples", shortID(meta.ID))
	}
	return meta, tr, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}
	ws, err := meta.Workspace.Build()
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("law: %s (%s)\n", meta.Law, meta.Integrator)
	fmt.Printf("outcome: %s after %d steps\n", meta.Outcome, meta.Steps)
	fmt.Printf("samples: %d\n\n", len(tr.Poses))

	line := ws.Line()
	dist := make([]float64, len(tr.Poses))
	cross := make([]float64, len(tr.Poses))
	head := make([]float64, len(tr.Poses))
	for i, p := range tr.Poses {
		dist[i] = ws.DistanceToGoal(p.X, p.Y)
		cross[i] = line.CrossTrack(p.Point())
		head[i] = geom.Deg(p.Heading)
	}

	series := []struct {
		caption string
		data    []float64
	}{
		{"distance to goal", dist},
		{"cross-track error", cross},
		{"heading (deg)", head},
	}
	for _, s := range series {
		graph := asciigraph.Plot(s.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if plotMap {
		path := make([]geom.Point, len(tr.Poses))
		for i, p := range tr.Poses {
			path[i] = p.Point()
		}
		fmt.Print(viz.PlotScenario(ws, 70, 30, path))
	}
	return nil
}

func svgRun(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}
	ws, err := meta.Workspace.Build()
	if err != nil {
		return err
	}

	path := make([]geom.Point, len(tr.Poses))
	for i, p := range tr.Poses {
		path[i] = p.Point()
	}
	scene := export.NewScene(ws, svgWidth)
	scene.AddPath(meta.Law, path)

	if outFile == "" {
		_, err := scene.WriteTo(os.Stdout)
		return err
	}
	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := scene.WriteTo(f); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", outFile)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta, tr)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, tr, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportCSV(os.Stdout, tr)
}
