package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/presdiff/internal/analysis"
	"github.com/san-kum/presdiff/internal/config"
	"github.com/san-kum/presdiff/internal/diffusion"
	"github.com/san-kum/presdiff/internal/metrics"
	"github.com/san-kum/presdiff/internal/optim"
	"github.com/san-kum/presdiff/internal/render"
	"github.com/san-kum/presdiff/internal/sim"
	"github.com/san-kum/presdiff/internal/storage"
	"github.com/san-kum/presdiff/internal/turbine"
	"github.com/san-kum/presdiff/internal/viz"
)

var (
	dataDir  string
	logLevel string

	configFile string
	preset     string
	initPreset string
	edge       string
	pngOut     string

	observeEvery int
	logEvery     int

	axis    string
	index   int
	at      float64
	output  string
	plain   bool
	width   int
	height  int
	theme   string
	perTick int

	sweepParams []string
	sweepMetric string
)

// paramFlags are the physical and numerical options settable from the
// command line. Each overrides the loaded configuration only when given.
var paramFlags = []struct {
	name  string
	usage string
	field func(*config.Config) *float64
}{
	{"alpha", "pressure diffusivity", func(c *config.Config) *float64 { return &c.Alpha }},
	{"rho", "fluid density", func(c *config.Config) *float64 { return &c.Rho }},
	{"g", "gravitational acceleration", func(c *config.Config) *float64 { return &c.G }},
	{"r-min", "inner radius", func(c *config.Config) *float64 { return &c.RMin }},
	{"r-max", "outer radius", func(c *config.Config) *float64 { return &c.RMax }},
	{"z-min", "bottom height", func(c *config.Config) *float64 { return &c.ZMin }},
	{"z-max", "top height", func(c *config.Config) *float64 { return &c.ZMax }},
	{"time", "simulated time", func(c *config.Config) *float64 { return &c.TMax }},
	{"dr", "radial spacing", func(c *config.Config) *float64 { return &c.Dr }},
	{"dz", "vertical spacing", func(c *config.Config) *float64 { return &c.Dz }},
	{"dt", "timestep", func(c *config.Config) *float64 { return &c.Dt }},
	{"initial", "initial pressure", func(c *config.Config) *float64 { return &c.InitialValue }},
	{"inner", "pressure at the inner radius", func(c *config.Config) *float64 { return &c.InnerBoundaryValue }},
	{"outer", "pressure at the outer radius", func(c *config.Config) *float64 { return &c.OuterBoundaryValue }},
}

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(18)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "presdiff",
		Short: "axisymmetric pressure diffusion solver",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".presdiff", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation and store the final field",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().StringVar(&pngOut, "png", "", "also render the final field to this image")
	runCmd.Flags().IntVar(&observeEvery, "observe-every", sim.DefaultConfig().ObserveEvery, "metric stride in steps")
	runCmd.Flags().IntVar(&logEvery, "log-every", sim.DefaultConfig().LogEvery, "progress log stride in steps")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a pressure profile of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&axis, "axis", "radial", "profile direction (radial or vertical)")
	plotCmd.Flags().IntVar(&index, "index", -1, "node index across the profile (-1 for the middle)")
	plotCmd.Flags().Float64Var(&at, "at", 0, "coordinate across the profile (overrides --index)")

	renderCmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "render the final field of a run to an image",
		Args:  cobra.ExactArgs(1),
		RunE:  renderRun,
	}
	renderCmd.Flags().StringVarP(&output, "output", "o", "pressure_field.png", "output file (png, jpg, svg or pdf)")

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "draw the final field of a run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	addViewFlags(showCmd)

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the final field to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSONStdout(args[0])
		},
	}

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "step the solver with a live terminal view",
		Args:  cobra.NoArgs,
		RunE:  watchSimulation,
	}
	addConfigFlags(watchCmd)
	addViewFlags(watchCmd)
	watchCmd.Flags().IntVar(&perTick, "steps-per-frame", 10, "solver steps per frame")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tGRID\tSTEPS\tEDGE\tSTABILITY")
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				g, err := cfg.Grid()
				if err != nil {
					return err
				}
				p, err := cfg.Params()
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%dx%d\t%d\t%s\t%.4g\n", name, g.Nr, g.Nz, p.Steps, p.Edge, diffusion.StabilityNumber(g, p))
			}
			return w.Flush()
		},
	}

	initConfigCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the default configuration as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "presdiff.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			cfg := config.DefaultConfig()
			if initPreset != "" {
				if cfg = config.GetPreset(initPreset); cfg == nil {
					return fmt.Errorf("unknown preset: %s (available: %v)", initPreset, config.ListPresets())
				}
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}
	initConfigCmd.Flags().StringVar(&initPreset, "preset", "", "start from a preset")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the stepper on several grid sizes",
		Args:  cobra.NoArgs,
		RunE:  benchStepper,
	}

	turbineCmd := &cobra.Command{
		Use:   "turbine",
		Short: "wind turbine power table",
		Args:  cobra.NoArgs,
		RunE:  turbineTable,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run the solver over a grid of option values",
		Args:  cobra.NoArgs,
		RunE:  sweepOptions,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, "option and values to sweep, e.g. dt=0.001,0.002 (repeatable)")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "residual", "metric to minimise")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, renderCmd, showCmd, exportCSVCmd, exportJSONCmd, watchCmd, presetsCmd, initConfigCmd, benchCmd, turbineCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	return nil
}

func addConfigFlags(cmd *cobra.Command) {
	defaults := config.DefaultConfig()
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml or ini)")
	cmd.Flags().StringVar(&preset, "preset", "reference", "use preset configuration")
	cmd.Flags().StringVar(&edge, "edge", defaults.EdgePolicy, "vertical edge policy ("+strings.Join(diffusion.EdgePolicyNames(), ", ")+")")
	for _, pf := range paramFlags {
		cmd.Flags().Float64(pf.name, *pf.field(defaults), pf.usage)
	}
}

func addViewFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&plain, "plain", false, "character heatmap without colour")
	cmd.Flags().IntVar(&width, "width", 60, "heatmap columns")
	cmd.Flags().IntVar(&height, "height", 20, "heatmap rows")
	cmd.Flags().StringVar(&theme, "theme", viz.CurrentTheme.Name, "colour theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
}

// loadConfig resolves preset, then config file, then flags. A config file
// replaces the preset entirely; flags override single options.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	var cfg *config.Config
	name := preset
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		base := filepath.Base(configFile)
		name = strings.TrimSuffix(base, filepath.Ext(base))
	} else {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	for _, pf := range paramFlags {
		if !cmd.Flags().Changed(pf.name) {
			continue
		}
		v, err := cmd.Flags().GetFloat64(pf.name)
		if err != nil {
			return nil, "", err
		}
		*pf.field(cfg) = v
	}
	if cmd.Flags().Changed("edge") {
		cfg.EdgePolicy = edge
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, name, nil
}

func newStepper(cfg *config.Config) (*diffusion.Stepper, error) {
	g, err := cfg.Grid()
	if err != nil {
		return nil, err
	}
	p, err := cfg.Params()
	if err != nil {
		return nil, err
	}
	return diffusion.NewStepper(g, p), nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, name, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	stepper, err := newStepper(cfg)
	if err != nil {
		return err
	}

	s := sim.New(stepper)
	for _, m := range metrics.Defaults(cfg.PressureBound()) {
		s.AddMetric(m)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	simCfg := sim.DefaultConfig()
	simCfg.ObserveEvery = observeEvery
	simCfg.LogEvery = logEvery

	result, err := s.Run(ctx, simCfg)
	if err != nil {
		return err
	}

	runID, err := st.Save(name, cfg, result)
	if err != nil {
		return err
	}
	log.WithFields(log.Fields{"run": runID, "dir": dataDir}).Info("run saved")

	if pngOut != "" {
		if err := render.SaveField(pngOut, result.Field, result.Grid); err != nil {
			return err
		}
		log.WithField("path", pngOut).Info("heatmap written")
	}

	printSummary(runID, result)
	return nil
}

func printSummary(runID string, result *sim.Result) {
	row := func(label, value string) {
		fmt.Println(labelStyle.Render(label) + valueStyle.Render(value))
	}

	fmt.Println(viz.GradientText("run "+runID, viz.CurrentTheme.Primary, viz.CurrentTheme.Accent))
	row("grid", result.Grid.String())
	row("steps", fmt.Sprintf("%d", result.Steps))
	row("simulated time", fmt.Sprintf("%.6g s", result.Time))
	row("elapsed", result.Elapsed.Round(time.Millisecond).String())
	stability := fmt.Sprintf("%.4g", result.Stability)
	if result.Stability > config.StableThreshold {
		stability = warnStyle.Render(stability + " (above " + fmt.Sprint(config.StableThreshold) + ")")
	}
	row("stability number", stability)

	sum := analysis.Summarize(result.Field)
	row("min / max", fmt.Sprintf("%.6g / %.6g", sum.Min, sum.Max))
	row("interior mean", fmt.Sprintf("%.6g ± %.4g", sum.InteriorMean, sum.InteriorStd))

	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
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
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tGRID\tSTEPS\tT\tSTABILITY")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%d\t%.4gs\t%.4g\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Nr, run.Nz,
			run.Steps,
			run.Time,
			run.Stability,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	f, g, err := st.LoadField(runID)
	if err != nil {
		return err
	}

	var (
		data    []float64
		caption string
	)
	switch axis {
	case "radial", "r":
		heights := g.Heights()
		j := pickIndex(cmd, heights)
		if data, err = analysis.RadialProfile(f, j); err != nil {
			return err
		}
		caption = fmt.Sprintf("pressure vs r at z=%.4g m", heights[j])
	case "vertical", "z":
		radii := g.Radii()
		i := pickIndex(cmd, radii)
		if data, err = analysis.VerticalProfile(f, i); err != nil {
			return err
		}
		caption = fmt.Sprintf("pressure vs z at r=%.4g m", radii[i])
	default:
		return fmt.Errorf("unknown axis: %s (radial or vertical)", axis)
	}

	fmt.Printf("run: %s\n", runID)
	fmt.Printf("grid: %s\n\n", g)

	graph := asciigraph.Plot(data,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
	fmt.Println(graph)
	return nil
}

func pickIndex(cmd *cobra.Command, coords []float64) int {
	if cmd.Flags().Changed("at") {
		return analysis.NearestIndex(coords, at)
	}
	if index < 0 || index >= len(coords) {
		return len(coords) / 2
	}
	return index
}

func renderRun(cmd *cobra.Command, args []string) error {
	f, g, err := storage.New(dataDir).LoadField(args[0])
	if err != nil {
		return err
	}
	if err := render.SaveField(output, f, g); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", output)
	return nil
}

func showRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	f, g, err := storage.New(dataDir).LoadField(runID)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(runID) + "  " + g.String())
	if plain {
		fmt.Print(viz.RenderFieldPlain(f, width, height))
	} else {
		fmt.Print(viz.RenderField(f, width, height, viz.GetTheme(theme)))
	}
	fmt.Printf("r: %.4g → %.4g m (left to right), z: %.4g → %.4g m (bottom to top)\n", g.RMin, g.RMax, g.ZMin, g.ZMax)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	f, g, err := storage.New(dataDir).LoadField(args[0])
	if err != nil {
		return err
	}
	return storage.WriteFieldCSV(os.Stdout, g, f)
}

func watchSimulation(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	stepper, err := newStepper(cfg)
	if err != nil {
		return err
	}

	viz.SetTheme(theme)
	m := viz.NewWatchModel(stepper, stepper.Params().Steps, perTick).WithPlain(plain)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func benchStepper(cmd *cobra.Command, args []string) error {
	sizes := []float64{0.1, 0.05, 0.025, 0.0125}
	const benchSteps = 200

	fmt.Printf("benchmarking %d steps on a 10 m × 5 m domain\n\n", benchSteps)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SPACING\tGRID\tSTEPS\tTIME\tSTEPS/SEC\tCELLS/SEC")

	for _, h := range sizes {
		cfg := config.GetPreset("small")
		cfg.Dr, cfg.Dz = h, h
		stepper, err := newStepper(cfg)
		if err != nil {
			return err
		}
		g := stepper.Grid()

		start := time.Now()
		stepper.Run(benchSteps)
		elapsed := time.Since(start)

		stepsPerSec := float64(benchSteps) / elapsed.Seconds()
		fmt.Fprintf(w, "%.4gm\t%dx%d\t%d\t%v\t%.0f\t%.3g\n",
			h, g.Nr, g.Nz, benchSteps, elapsed, stepsPerSec, stepsPerSec*float64(g.Interior()))
	}

	return w.Flush()
}

func turbineTable(cmd *cobra.Command, args []string) error {
	spec := turbine.DefaultSpec()
	rows := turbine.Table(spec)

	fmt.Printf("air density %.3g kg/m³, efficiency %.2g\n\n", spec.Density, spec.Efficiency)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "D, m\tV, m/s\tKE, J/kg\tm, kg/s\tW_elect, W")
	for _, r := range rows {
		fmt.Fprintf(w, "%.0f\t%.0f\t%.1f\t%d\t%.0f\n", r.Diameter, r.Velocity, r.KineticEnergy, r.MassFlow, r.Power)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	series := turbine.SeriesByDiameter(rows)
	data := make([][]float64, len(series))
	legends := make([]string, len(series))
	colors := []asciigraph.AnsiColor{asciigraph.Blue, asciigraph.Green, asciigraph.Yellow, asciigraph.Red}
	colorNames := []string{"blue", "green", "yellow", "red"}
	for k, s := range series {
		data[k] = s.Powers
		legends[k] = fmt.Sprintf("D=%.0fm %s", s.Diameter, colorNames[k%len(colorNames)])
	}

	fmt.Println()
	graph := asciigraph.PlotMany(data,
		asciigraph.Height(15),
		asciigraph.Width(60),
		asciigraph.SeriesColors(colors...),
		asciigraph.Caption("wind turbine power (W) vs velocity"),
	)
	fmt.Println(graph)
	fmt.Printf("  V = %v m/s;  %s\n", spec.Velocities, strings.Join(legends, ", "))
	return nil
}

// parseSweep turns "key=v1,v2" flags into names and value lists.
func parseSweep(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, spec := range specs {
		key, list, ok := strings.Cut(spec, "=")
		if !ok || key == "" || list == "" {
			return nil, nil, fmt.Errorf("invalid --param %q (want key=v1,v2,...)", spec)
		}
		var values []float64
		for _, field := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("invalid --param %q: %w", spec, err)
			}
			values = append(values, v)
		}
		names = append(names, key)
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}

func sweepOptions(cmd *cobra.Command, args []string) error {
	if len(sweepParams) == 0 {
		return fmt.Errorf("at least one --param is required")
	}
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	names, ranges, err := parseSweep(sweepParams)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	simCfg := sim.DefaultConfig()
	simCfg.LogEvery = 0
	gs := optim.NewGridSearch(names, ranges)
	log.WithFields(log.Fields{"trials": gs.Size(), "metric": sweepMetric}).Info("sweep started")

	best, bestVal, trials, err := gs.Search(ctx, optim.SolverEval(cfg, simCfg, log.StandardLogger()), sweepMetric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := append(append([]string{}, names...), "STABILITY", strings.ToUpper(sweepMetric), "STATUS")
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, tr := range trials {
		cells := make([]string, 0, len(header))
		for _, name := range names {
			cells = append(cells, strconv.FormatFloat(tr.Params[name], 'g', -1, 64))
		}
		if tr.Err != nil {
			cells = append(cells, "-", "-", tr.Err.Error())
		} else {
			cells = append(cells,
				fmt.Sprintf("%.4g", tr.Metrics[optim.StabilityKey]),
				fmt.Sprintf("%.6g", tr.Metrics[sweepMetric]),
				"ok")
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if best == nil {
		fmt.Println("\nno trial succeeded")
		return nil
	}
	fmt.Printf("\nbest %s = %.6g at %v\n", sweepMetric, bestVal, best)
	return nil
}
