package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/blochsim/internal/analysis"
	"github.com/san-kum/blochsim/internal/batch"
	"github.com/san-kum/blochsim/internal/bloch"
	"github.com/san-kum/blochsim/internal/compute"
	"github.com/san-kum/blochsim/internal/config"
	"github.com/san-kum/blochsim/internal/logutil"
	"github.com/san-kum/blochsim/internal/metrics"
	"github.com/san-kum/blochsim/internal/storage"
	"github.com/san-kum/blochsim/internal/viz"
)

var (
	dataDir string
	verbose bool
	logger  *slog.Logger

	configFile string
	backend    string
	mode       string
	shape      string
	samples    int
	flip       float64
	tb         float64
	spins      int
	fov        float64
	noSave     bool

	fdStep    float64
	tolerance float64
	showRows  int

	padLen       int
	workers      int
	batchBackend string
	frameRate    int
	iters        int
	csvKind      string
	svgOut       string
	svgWidth     int
	svgHeight    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "blochsim",
		Short:         "Bloch simulation and adjoint gradients for RF pulse design",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logutil.NewLogger(os.Stderr, logutil.Level(verbose))
			slog.SetDefault(logger)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".blochsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	simulateCmd := &cobra.Command{
		Use:   "simulate [preset]",
		Short: "run forward, objective and adjoint; save the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulate,
	}
	addProblemFlags(simulateCmd)
	simulateCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	gradcheckCmd := &cobra.Command{
		Use:   "gradcheck [preset]",
		Short: "compare adjoint gradient with finite differences",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runGradCheck,
	}
	addProblemFlags(gradcheckCmd)
	gradcheckCmd.Flags().Float64Var(&fdStep, "step", config.DefaultFDStep, "finite-difference step")
	gradcheckCmd.Flags().Float64Var(&tolerance, "tol", 1e-4, "maximum relative error")
	gradcheckCmd.Flags().IntVar(&showRows, "show", 10, "rows to print (0 for all)")

	spectrumCmd := &cobra.Command{
		Use:   "spectrum [preset]",
		Short: "small-tip excitation profile of the pulse via FFT",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSpectrum,
	}
	addProblemFlags(spectrumCmd)
	spectrumCmd.Flags().IntVar(&padLen, "pad", 512, "minimum transform length")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "evaluate a scenario of candidate pulses concurrently",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().IntVar(&workers, "workers", 0, "concurrent evaluations (0 = one per CPU)")
	batchCmd.Flags().StringVar(&batchBackend, "backend", "", "override every candidate's backend")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "replay the forward recurrence in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addProblemFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	benchCmd := &cobra.Command{
		Use:   "bench [preset]",
		Short: "time forward and adjoint passes on every backend",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runBench,
	}
	addProblemFlags(benchCmd)
	benchCmd.Flags().IntVar(&iters, "iters", 20, "passes per backend")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write one of a run's CSV files to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVar(&csvKind, "file", "profile", "waveform, profile or gradient")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a run's profile and waveform as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&svgOut, "output", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "width in pixels")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 300, "height in pixels")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	backendsCmd := &cobra.Command{
		Use:   "backends",
		Short: "list compute backends",
		RunE:  listBackends,
	}

	rootCmd.AddCommand(simulateCmd, gradcheckCmd, spectrumCmd, batchCmd, liveCmd, benchCmd,
		listCmd, plotCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, presetsCmd, backendsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addProblemFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&backend, "backend", "auto", "compute backend")
	cmd.Flags().StringVar(&mode, "mode", "exact", "gradient mode (exact, smalltip)")
	cmd.Flags().StringVar(&shape, "shape", config.DefaultShape, "pulse shape")
	cmd.Flags().IntVar(&samples, "samples", config.DefaultSamples, "RF samples")
	cmd.Flags().Float64Var(&flip, "flip", config.DefaultFlip, "flip angle (degrees)")
	cmd.Flags().Float64Var(&tb, "tb", config.DefaultTB, "time-bandwidth product")
	cmd.Flags().IntVar(&spins, "spins", config.DefaultCount, "spins per dimension")
	cmd.Flags().Float64Var(&fov, "fov", config.DefaultFOV, "field of view")
}

// loadConfig resolves defaults, then the preset argument, then --config,
// then any flag set on the command line.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg = config.GetPreset(args[0])
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend = backend
	}
	if flags.Changed("mode") {
		cfg.Mode = mode
	}
	if flags.Changed("shape") {
		cfg.Pulse.Shape = shape
	}
	if flags.Changed("samples") {
		cfg.Pulse.Samples = samples
	}
	if flags.Changed("flip") {
		cfg.Pulse.Flip = flip
	}
	if flags.Changed("tb") {
		cfg.Pulse.TB = tb
	}
	if flags.Changed("spins") {
		cfg.Positions.Count = spins
	}
	if flags.Changed("fov") {
		cfg.Positions.FOV = fov
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("config resolved", "name", cfg.Name, "shape", cfg.Pulse.Shape,
		"samples", cfg.Pulse.Samples, "spins", cfg.Positions.Count, "backend", cfg.Backend)
	return cfg, nil
}

func runSimulate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	p, err := cfg.Build()
	if err != nil {
		return err
	}
	s, err := cfg.Simulator()
	if err != nil {
		return err
	}
	defer s.Backend().Cleanup()

	ms := metrics.Default()
	metrics.Attach(s, ms...)

	start := time.Now()
	res, err := s.Forward(p.RF, p.X, p.G)
	if err != nil {
		return fmt.Errorf("forward: %w", err)
	}
	loss, auxA, auxB := p.Objective.Evaluate(res.A, res.B)
	drf, err := s.Adjoint(p.RF, p.X, p.G, auxA, auxB, res.RawA, res.RawB)
	if err != nil {
		return fmt.Errorf("adjoint: %w", err)
	}
	elapsed := time.Since(start)

	gradNorm := batch.Norm(drf)
	summary := analysis.Summarize(p.X, res.A, res.B, p.InBand)
	values := metrics.Collect(ms...)

	logger.Debug("simulation finished", "backend", s.Backend().Name(), "mode", s.Mode(), "elapsed", elapsed)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "pulse\t%s, %d samples, %.1f°\n", cfg.Pulse.Shape, cfg.Pulse.Samples, cfg.Pulse.Flip)
	fmt.Fprintf(w, "spins\t%d (%dD)\n", p.X.Len(), cfg.Dims())
	fmt.Fprintf(w, "backend\t%s (%s)\n", s.Backend().Name(), s.Mode())
	fmt.Fprintf(w, "objective\t%s\n", p.Objective.Name())
	fmt.Fprintf(w, "loss\t%.6g\n", loss)
	fmt.Fprintf(w, "|drf|\t%.6g\n", gradNorm)
	fmt.Fprintf(w, "in-band |Mxy|\t%.4f (ripple %.4f)\n", summary.InBandMean, summary.InBandRipple)
	fmt.Fprintf(w, "out-of-band max\t%.4f\n", summary.OutBandMax)
	fmt.Fprintf(w, "mean Mz\t%.4f\n", summary.MeanMz)
	if summary.FWHM > 0 {
		fmt.Fprintf(w, "FWHM\t%.4f\n", summary.FWHM)
	}
	for _, m := range ms {
		fmt.Fprintf(w, "%s\t%.6g\n", m.Name(), values[m.Name()])
	}
	fmt.Fprintf(w, "time\t%s\n", elapsed.Round(time.Microsecond))
	w.Flush()

	if noSave {
		return nil
	}

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}
	runID, err := store.Save(storage.RunMetadata{
		Name:      cfg.Name,
		Shape:     cfg.Pulse.Shape,
		Samples:   cfg.Pulse.Samples,
		Spins:     p.X.Len(),
		Dims:      cfg.Dims(),
		Backend:   s.Backend().Name(),
		Mode:      s.Mode().String(),
		Objective: p.Objective.Name(),
		Loss:      loss,
		GradNorm:  gradNorm,
		Metrics:   values,
	}, &storage.RunData{
		RF:       p.RF,
		G:        p.G,
		X:        p.X,
		A:        res.A,
		B:        res.B,
		Gradient: drf,
	})
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	logger.Info("run saved", "id", runID, "dir", dataDir)
	return nil
}

func runGradCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	p, err := cfg.Build()
	if err != nil {
		return err
	}
	s, err := cfg.Simulator()
	if err != nil {
		return err
	}
	defer s.Backend().Cleanup()

	step := cfg.FDStep
	if cmd.Flags().Changed("step") {
		step = fdStep
	}
	report, err := analysis.GradCheck(s, p.RF, p.X, p.G, p.Objective, step)
	if err != nil {
		return err
	}

	rows := report.Samples
	if showRows > 0 && showRows < len(rows) {
		rows = rows[:showRows]
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "T\tADJOINT\tFINITE DIFF\tREL ERR")
	for _, r := range rows {
		fmt.Fprintf(w, "%d\t%.6g\t%.6g\t%.2e\n", r.T, r.Analytic, r.Numeric, r.RelErr)
	}
	w.Flush()

	fmt.Printf("\nobjective %s, loss %.6g, max rel err %.2e at t=%d\n",
		p.Objective.Name(), report.Loss, report.MaxRelErr, report.Worst)
	if report.MaxRelErr > tolerance {
		return fmt.Errorf("gradient check failed: max rel err %.2e > %.2e", report.MaxRelErr, tolerance)
	}
	fmt.Println("gradient check passed")
	return nil
}

func runSpectrum(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	p, err := cfg.Build()
	if err != nil {
		return err
	}

	sp := analysis.ComputeSpectrum(p.RF, padLen)
	freq, peak := sp.Peak()

	caption := fmt.Sprintf("%s |RF spectrum| (%d bins, peak %.4f at %.4f cycles/sample)",
		cfg.Pulse.Shape, len(sp.Freq), peak, freq)
	graph := asciigraph.Plot(sp.Magnitude,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
	fmt.Println(graph)
	fmt.Println()
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	sc, err := batch.LoadScenario(args[0])
	if err != nil {
		return err
	}
	cfgs, err := sc.Configs()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	outcomes, err := batch.Run(ctx, cfgs, batch.Options{
		Workers: workers,
		Backend: batchBackend,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	if sc.Description != "" {
		fmt.Println(sc.Description)
		fmt.Println()
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tCANDIDATE\tLOSS\t|DRF|\tIN-BAND\tRIPPLE\tOUT-BAND\tDRIFT")
	for _, o := range outcomes {
		fmt.Fprintf(w, "%d\t%s\t%.6g\t%.4g\t%.4f\t%.4f\t%.4f\t%.1e\n",
			o.Index, o.Name, o.Loss, o.GradNorm,
			o.Summary.InBandMean, o.Summary.InBandRipple, o.Summary.OutBandMax, o.Drift)
	}
	w.Flush()

	if len(outcomes) > 0 {
		best := outcomes[0]
		for _, o := range outcomes[1:] {
			if o.Loss < best.Loss {
				best = o
			}
		}
		fmt.Printf("\nbest: %s (loss %.6g), %d candidates in %s\n",
			best.Name, best.Loss, len(outcomes), time.Since(start).Round(time.Millisecond))
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	p, err := cfg.Build()
	if err != nil {
		return err
	}
	s, err := cfg.Simulator()
	if err != nil {
		return err
	}
	defer s.Backend().Cleanup()

	rec := viz.NewRecorder(p.RF)
	s.AddObserver(rec)
	if _, err := s.Forward(p.RF, p.X, p.G); err != nil {
		return fmt.Errorf("forward: %w", err)
	}

	title := fmt.Sprintf("%s · %s %.0f° · %d spins", cfg.Name, cfg.Pulse.Shape, cfg.Pulse.Flip, p.X.Len())
	return viz.Run(viz.NewModel(title, rec, frameRate))
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	p, err := cfg.Build()
	if err != nil {
		return err
	}
	if iters <= 0 {
		return fmt.Errorf("iters must be positive, got %d", iters)
	}

	res, err := bloch.Forward(p.RF, p.X, p.G)
	if err != nil {
		return err
	}
	_, auxA, auxB := p.Objective.Evaluate(res.A, res.B)

	fmt.Printf("%s: %d samples × %d spins, %d passes each\n\n", cfg.Name, len(p.RF), p.X.Len(), iters)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BACKEND\tMODE\tFORWARD\tADJOINT\tSPIN-STEPS/SEC")

	work := float64(len(p.RF) * p.X.Len() * iters)
	for _, name := range []string{"serial", "cpu"} {
		b, err := compute.ByName(name)
		if err != nil {
			return err
		}
		for _, m := range []bloch.GradientMode{bloch.ModeExact, bloch.ModeSmallTip} {
			s := bloch.New(b)
			s.SetMode(m)

			start := time.Now()
			for i := 0; i < iters; i++ {
				if _, err := s.Forward(p.RF, p.X, p.G); err != nil {
					return err
				}
			}
			fwd := time.Since(start)

			start = time.Now()
			for i := 0; i < iters; i++ {
				if _, err := s.Adjoint(p.RF, p.X, p.G, auxA, auxB, res.RawA, res.RawB); err != nil {
					return err
				}
			}
			adj := time.Since(start)

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.3g\n", b.Name(), m,
				(fwd / time.Duration(iters)).Round(time.Microsecond),
				(adj / time.Duration(iters)).Round(time.Microsecond),
				work/(fwd+adj).Seconds())
		}
		b.Cleanup()
	}
	w.Flush()
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tSHAPE\tSAMPLES\tFLIP\tDIMS\tOBJECTIVE")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%d\t%.0f°\t%d\t%s\n",
			name, cfg.Pulse.Shape, cfg.Pulse.Samples, cfg.Pulse.Flip, cfg.Dims(), cfg.Objective.Kind)
	}
	return w.Flush()
}

func listBackends(cmd *cobra.Command, args []string) error {
	auto := compute.AutoSelectBackend()
	defer auto.Cleanup()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BACKEND\tAVAILABLE")
	for _, name := range compute.Names() {
		b, err := compute.ByName(name)
		if err != nil {
			fmt.Fprintf(w, "%s\t%v\n", name, err)
			continue
		}
		fmt.Fprintf(w, "%s\t%v\n", name, b.Available())
		b.Cleanup()
	}
	w.Flush()

	fmt.Printf("\nauto: %s, %d CPUs, features: %s\n", auto.Name(), runtime.NumCPU(), compute.Features())
	return nil
}
