package main

import (
	"fmt"
	"io"
	"math/cmplx"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/blochsim/internal/export"
	"github.com/san-kum/blochsim/internal/storage"
)

func listRuns(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	runs, err := store.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSHAPE\tTIME\tSAMPLES\tSPINS\tBACKEND\tOBJECTIVE\tLOSS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\t%.4g\n",
			run.ID,
			run.Shape,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Samples,
			run.Spins,
			run.Backend,
			run.Objective,
			run.Loss,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	store := storage.New(dataDir)

	meta, err := store.Load(runID)
	if err != nil {
		return err
	}
	prof, err := store.LoadProfile(runID)
	if err != nil {
		return err
	}
	wave, err := store.LoadWaveform(runID)
	if err != nil {
		return err
	}
	drf, err := store.LoadGradient(runID)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s (%s, %s, loss %.4g)\n\n", meta.ID, meta.Shape, meta.Objective, meta.Loss)

	series := []struct {
		caption string
		data    []float64
	}{
		{"|Mxy| across positions", magnitudes(prof.Mxy)},
		{"Mz across positions", prof.Mz},
		{"|rf| per sample", magnitudes(wave.RF)},
	}
	if drf != nil {
		series = append(series, struct {
			caption string
			data    []float64
		}{"|drf| per sample", magnitudes(drf)})
	}

	for _, s := range series {
		if len(s.data) == 0 {
			continue
		}
		graph := asciigraph.Plot(s.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	path, err := store.CSVPath(args[0], csvKind)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s csv: %w", csvKind, err)
	}
	defer f.Close()

	_, err = io.Copy(os.Stdout, f)
	return err
}

func exportJSON(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	return store.ExportJSON(os.Stdout, args[0])
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	store := storage.New(dataDir)

	meta, err := store.Load(runID)
	if err != nil {
		return err
	}
	prof, err := store.LoadProfile(runID)
	if err != nil {
		return err
	}
	wave, err := store.LoadWaveform(runID)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if svgOut != "" {
		f, err := os.Create(svgOut)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	title := fmt.Sprintf("%s: %s, %d samples, loss %.4g", meta.ID, meta.Shape, meta.Samples, meta.Loss)
	if err := export.Plot(out, title, []export.Series{
		{Label: "|Mxy|", Stroke: "#00ffff", Values: magnitudes(prof.Mxy)},
		{Label: "Mz", Stroke: "#ff00ff", Values: prof.Mz},
	}, svgWidth, svgHeight); err != nil {
		return err
	}
	if svgOut == "" {
		return nil
	}

	rfPath := strings.TrimSuffix(svgOut, ".svg") + "_rf.svg"
	f, err := os.Create(rfPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := export.Plot(f, meta.ID+": rf", []export.Series{
		{Label: "Re rf", Stroke: "#00ff00", Values: realParts(wave.RF)},
		{Label: "Im rf", Stroke: "#ffaa00", Values: imagParts(wave.RF)},
	}, svgWidth, svgHeight); err != nil {
		return err
	}
	logger.Info("svg written", "profile", svgOut, "rf", rfPath)
	return nil
}

func realParts(v []complex128) []float64 {
	out := make([]float64, len(v))
	for i, z := range v {
		out[i] = real(z)
	}
	return out
}

func imagParts(v []complex128) []float64 {
	out := make([]float64, len(v))
	for i, z := range v {
		out[i] = imag(z)
	}
	return out
}

func magnitudes(v []complex128) []float64 {
	out := make([]float64, len(v))
	for i, z := range v {
		out[i] = cmplx.Abs(z)
	}
	return out
}
