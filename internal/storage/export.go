package storage

import (
	"encoding/json"
	"io"
)

// ExportData is the JSON form of a stored run. Complex values are
// [re, im] pairs.
type ExportData struct {
	Metadata RunMetadata  `json:"metadata"`
	RF       [][2]float64 `json:"rf"`
	G        [][]float64  `json:"g"`
	X        [][]float64  `json:"x"`
	Mxy      [][2]float64 `json:"mxy"`
	Mz       []float64    `json:"mz"`
	Gradient [][2]float64 `json:"gradient,omitempty"`
}

// ExportJSON writes a stored run as a single JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	wave, err := s.LoadWaveform(runID)
	if err != nil {
		return err
	}
	prof, err := s.LoadProfile(runID)
	if err != nil {
		return err
	}
	drf, err := s.LoadGradient(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		Metadata: *meta,
		RF:       pairs(wave.RF),
		G:        wave.G,
		X:        prof.X,
		Mxy:      pairs(prof.Mxy),
		Mz:       prof.Mz,
		Gradient: pairs(drf),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func pairs(v []complex128) [][2]float64 {
	if v == nil {
		return nil
	}
	out := make([][2]float64, len(v))
	for i, z := range v {
		out[i] = [2]float64{real(z), imag(z)}
	}
	return out
}
