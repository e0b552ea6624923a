package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/heatsim/internal/config"
	"github.com/san-kum/heatsim/internal/experiment"
	"github.com/san-kum/heatsim/internal/export"
	"github.com/san-kum/heatsim/internal/storage"
	"github.com/san-kum/heatsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool
	noSave     bool
	plotWidth  int
	plotHeight int
	profiles   int
	svgKind    string
	svgCell    float64
	outFile    string
	logger     = zap.NewNop()
)

// runFlags maps viper keys to the run flags they are bound to. Every key is
// also readable from HEATSIM_<KEY> with dashes replaced by underscores.
var runFlags = []string{
	"boundary", "initial", "left", "right", "points",
	"rtol", "atol", "t0", "t1", "max-step", "integrator", "samples",
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "heatsim",
		Short:         "1-D heat equation solver (method of lines, DOP853)",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !verbose {
				return nil
			}
			l, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".heatsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log solver progress")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Solve the heat equation and save the run",
		Args:  cobra.NoArgs,
		RunE:  runSolve,
	}
	addProblemFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not persist the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run-id]",
		Short: "Plot temperature profiles, boundary values and step sizes of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotWidth, "width", 70, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 12, "plot height")
	plotCmd.Flags().IntVar(&profiles, "profiles", 3, "number of profiles to draw")

	viewCmd := &cobra.Command{
		Use:   "view [run-id]",
		Short: "Browse a run interactively",
		Args:  cobra.ExactArgs(1),
		RunE:  viewRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run-id]",
		Short: "Write the sampled field of a run as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run-id]",
		Short: "Write a run with its statistics as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run-id]",
		Short: "Render a run as an SVG heatmap or final profile",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().StringVar(&svgKind, "kind", "heatmap", "heatmap or profile")
	exportSVGCmd.Flags().Float64Var(&svgCell, "cell", 6, "heatmap cell size in pixels")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "List available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [integrators...]",
		Short: "Solve the same problem with several integrators",
		RunE:  compareIntegrators,
	}
	addProblemFlags(compareCmd)

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, viewCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, presetsCmd, compareCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addProblemFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVarP(&configFile, "config", "c", "", "YAML config file")
	f.StringVarP(&preset, "preset", "p", "", "named preset")
	f.String("boundary", def.Boundary, "boundary kind: dirichlet or neumann")
	f.String("initial", def.Initial, "initial condition u(x, 0)")
	f.String("left", def.Left, "left boundary value or flux as a function of t")
	f.String("right", def.Right, "right boundary value or flux as a function of t")
	f.Int("points", def.MeshPoints, "number of mesh points including both ends")
	f.Float64("rtol", def.RelTol, "relative tolerance")
	f.Float64("atol", def.AbsTol, "absolute tolerance")
	f.Float64("t0", def.T0, "start time")
	f.Float64("t1", def.T1, "end time")
	f.Float64("max-step", def.MaxStep, "largest allowed time step")
	f.String("integrator", def.Integrator, "integrator (dop853, rk45)")
	f.Int("samples", def.Samples, "time samples kept for plotting")
}

// resolveConfig layers the run configuration: defaults, then preset, then
// config file, then environment and explicitly set flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	v := viper.New()
	v.SetEnvPrefix("HEATSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for _, key := range runFlags {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(key)); err != nil {
			return nil, err
		}
	}

	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if v.IsSet("boundary") {
		cfg.Boundary = v.GetString("boundary")
	}
	if v.IsSet("initial") {
		cfg.Initial = v.GetString("initial")
	}
	if v.IsSet("left") {
		cfg.Left = v.GetString("left")
	}
	if v.IsSet("right") {
		cfg.Right = v.GetString("right")
	}
	if v.IsSet("points") {
		cfg.MeshPoints = v.GetInt("points")
	}
	if v.IsSet("rtol") {
		cfg.RelTol = v.GetFloat64("rtol")
	}
	if v.IsSet("atol") {
		cfg.AbsTol = v.GetFloat64("atol")
	}
	if v.IsSet("t0") {
		cfg.T0 = v.GetFloat64("t0")
	}
	if v.IsSet("t1") {
		cfg.T1 = v.GetFloat64("t1")
	}
	if v.IsSet("max-step") {
		cfg.MaxStep = v.GetFloat64("max-step")
	}
	if v.IsSet("integrator") {
		cfg.Integrator = v.GetString("integrator")
	}
	if v.IsSet("samples") {
		cfg.Samples = v.GetInt("samples")
	}

	return cfg, cfg.Validate()
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	exp := experiment.New(*cfg, experiment.NewRegistry(), logger)
	res, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Println(viz.Summary(res))

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	name := preset
	if name == "" {
		name = cfg.Boundary
	}
	runID, err := st.Save(name, res)
	if err != nil {
		return err
	}
	fmt.Printf("saved: %s\n", runID)
	return nil
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
	fmt.Fprintln(w, "ID\tTIME\tBC\tJ\tT1\tINTEG\tSTEPS\tAVG STEP\tELAPSED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%g\t%s\t%d\t%.3e\t%.2fms\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Config.Boundary,
			run.Config.MeshPoints,
			run.Config.T1,
			run.Config.Integrator,
			run.Steps,
			run.AverageStep,
			run.ElapsedMillis,
		)
	}

	return w.Flush()
}

// rerun solves a saved run again from its stored configuration. The solve is
// deterministic, so the result matches what was saved.
func rerun(ctx context.Context, runID string) (*experiment.Result, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, err
	}
	return experiment.New(meta.Config, experiment.NewRegistry(), logger).Run(ctx)
}

func plotRun(cmd *cobra.Command, args []string) error {
	res, err := rerun(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	g := res.Grid

	if len(g.U) == 0 {
		return fmt.Errorf("%s: empty grid", args[0])
	}
	lo, hi := floats.Min(g.U[0]), floats.Max(g.U[0])
	for _, row := range g.U[1:] {
		lo = min(lo, floats.Min(row))
		hi = max(hi, floats.Max(row))
	}

	n := max(1, min(profiles, len(g.T)))
	for k := 0; k < n; k++ {
		j := 0
		if n > 1 {
			j = k * (len(g.T) - 1) / (n - 1)
		}
		fmt.Println(viz.ProfilePlot(g, j, plotWidth, plotHeight, lo, hi))
		fmt.Println()
	}

	fmt.Println(viz.BoundaryPlot(res.Model.BoundarySamples(), plotWidth, plotHeight/2+1))
	fmt.Println()
	fmt.Println(viz.StepSizePlot(res.Model.StepTimes(), res.Model.StartTime(), plotWidth, plotHeight/2+1))
	return nil
}

func viewRun(cmd *cobra.Command, args []string) error {
	res, err := rerun(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return viz.Run(res)
}

// output opens the --output file, or stdout when none was given.
func output() (*os.File, func() error, error) {
	if outFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	g, err := st.LoadGrid(args[0])
	if err != nil {
		return err
	}

	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := storage.WriteGridCSV(w, g); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	res, err := rerun(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(w, res); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	g, err := st.LoadGrid(args[0])
	if err != nil {
		return err
	}

	var svg string
	switch svgKind {
	case "heatmap":
		svg = export.HeatmapSVG(g, svgCell)
	case "profile":
		svg = export.ProfileSVG(export.ProfileAt(g, len(g.T)-1), 600, 300, "#e4572e")
	default:
		return fmt.Errorf("unknown svg kind: %s (heatmap, profile)", svgKind)
	}

	w, closeFn, err := output()
	if err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, svg); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tBC\tJ\tT1\tINITIAL\tLEFT\tRIGHT")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%d\t%g\t%s\t%s\t%s\n", name, p.Boundary, p.MeshPoints, p.T1, p.Initial, p.Left, p.Right)
	}
	return w.Flush()
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	names := args
	if len(names) == 0 {
		names = registry.ListIntegrators()
	}

	fmt.Printf("comparing integrators for %s (J=%d, t1=%g, rtol=%g, atol=%g)\n\n",
		cfg.Boundary, cfg.MeshPoints, cfg.T1, cfg.RelTol, cfg.AbsTol)
	fmt.Printf("%-12s  %8s  %8s  %8s  %12s  %12s  %10s\n", "integrator", "steps", "rejected", "evals", "avg_step", "energy", "time_ms")
	fmt.Println(strings.Repeat("-", 82))

	cfgs := make([]config.Config, len(names))
	for i, name := range names {
		cfgs[i] = *cfg
		cfgs[i].Integrator = name
	}

	start := time.Now()
	results, errs := experiment.NewEnsemble(registry, logger).Run(cmd.Context(), cfgs)
	wall := time.Since(start)

	var evals []float64
	for i, name := range names {
		if errs[i] != nil {
			fmt.Printf("%-12s  error: %v\n", name, errs[i])
			continue
		}
		res := results[i]
		evals = append(evals, float64(res.Stats.Evaluations))

		fmt.Printf("%-12s  %8d  %8d  %8d  %12.4e  %12.6f  %10.2f\n",
			name,
			res.Stats.Steps,
			res.Stats.Rejected,
			res.Stats.Evaluations,
			res.Model.AverageStepSize(),
			res.Metrics["thermal_energy"],
			float64(res.Elapsed.Microseconds())/1000,
		)
	}
	fmt.Printf("\nwall time: %.2fms\n", float64(wall.Microseconds())/1000)

	if len(evals) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(evals,
			asciigraph.Height(6),
			asciigraph.Caption("derivative evaluations per integrator"),
		))
	}
	return nil
}
