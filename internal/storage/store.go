package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/blochsim/internal/bloch"
)

const (
	metadataFile = "metadata.json"
	waveformFile = "waveform.csv"
	profileFile  = "profile.csv"
	gradientFile = "gradient.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Timestamp time.Time          `json:"timestamp"`
	Shape     string             `json:"shape"`
	Samples   int                `json:"samples"`
	Spins     int                `json:"spins"`
	Dims      int                `json:"dims"`
	Backend   string             `json:"backend"`
	Mode      string             `json:"mode"`
	Objective string             `json:"objective"`
	Loss      float64            `json:"loss"`
	GradNorm  float64            `json:"grad_norm"`
	Metrics   map[string]float64 `json:"metrics"`
}

// RunData is everything written next to the metadata. Gradient may be nil
// for runs that skipped the adjoint.
type RunData struct {
	RF       []complex128
	G        bloch.Encoding
	X        bloch.Encoding
	A, B     []complex128
	Gradient []complex128
}

// Save writes a new run directory and returns its ID. ID and Timestamp in
// meta are filled in.
func (s *Store) Save(meta RunMetadata, data *RunData) (string, error) {
	if len(data.RF) != data.G.Len() {
		return "", fmt.Errorf("save run: %d RF samples but %d gradient steps", len(data.RF), data.G.Len())
	}
	if len(data.A) != data.X.Len() || len(data.B) != data.X.Len() {
		return "", fmt.Errorf("save run: %d positions but %d/%d spinors", data.X.Len(), len(data.A), len(data.B))
	}

	meta.ID = fmt.Sprintf("%s_%s", meta.Name, uuid.NewString()[:8])
	meta.Timestamp = time.Now()
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, waveformFile), waveformRows(data)); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, profileFile), profileRows(data)); err != nil {
		return "", err
	}
	if data.Gradient != nil {
		if err := writeCSV(filepath.Join(runDir, gradientFile), gradientRows(data.Gradient)); err != nil {
			return "", err
		}
	}

	return meta.ID, nil
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Waveform is the RF and gradient of a stored run. G has one row per
// sample and one column per dimension.
type Waveform struct {
	RF []complex128
	G  [][]float64
}

func (s *Store) LoadWaveform(runID string) (*Waveform, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, waveformFile))
	if err != nil {
		return nil, err
	}

	w := &Waveform{}
	for i, rec := range records {
		vals, err := parseRow(rec, 3)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", waveformFile, i+1, err)
		}
		w.RF = append(w.RF, complex(vals[1], vals[2]))
		w.G = append(w.G, vals[3:])
	}
	return w, nil
}

// Profile is the final magnetization of a stored run.
type Profile struct {
	X   [][]float64
	Mxy []complex128
	Mz  []float64
}

func (s *Store) LoadProfile(runID string) (*Profile, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, profileFile))
	if err != nil {
		return nil, err
	}

	p := &Profile{}
	for i, rec := range records {
		vals, err := parseRow(rec, 4)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", profileFile, i+1, err)
		}
		n := len(vals)
		p.X = append(p.X, vals[:n-3])
		p.Mxy = append(p.Mxy, complex(vals[n-3], vals[n-2]))
		p.Mz = append(p.Mz, vals[n-1])
	}
	return p, nil
}

// LoadGradient returns nil without error when the run stored no gradient.
func (s *Store) LoadGradient(runID string) ([]complex128, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, gradientFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	drf := make([]complex128, 0, len(records))
	for i, rec := range records {
		vals, err := parseRow(rec, 3)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", gradientFile, i+1, err)
		}
		drf = append(drf, complex(vals[1], vals[2]))
	}
	return drf, nil
}

// CSVPath returns the path of one of a run's CSV files.
func (s *Store) CSVPath(runID, kind string) (string, error) {
	switch kind {
	case "waveform":
		return filepath.Join(s.baseDir, runID, waveformFile), nil
	case "profile":
		return filepath.Join(s.baseDir, runID, profileFile), nil
	case "gradient":
		return filepath.Join(s.baseDir, runID, gradientFile), nil
	default:
		return "", fmt.Errorf("unknown csv: %s", kind)
	}
}

func waveformRows(d *RunData) [][]string {
	dims := max(d.G.Dims(), 1)
	header := []string{"t", "rf_re", "rf_im"}
	for j := 0; j < dims; j++ {
		header = append(header, fmt.Sprintf("g%d", j))
	}

	rows := [][]string{header}
	for t, w := range d.RF {
		row := []string{strconv.Itoa(t), formatFloat(real(w)), formatFloat(imag(w))}
		for _, v := range d.G.Row(t) {
			row = append(row, formatFloat(v))
		}
		rows = append(rows, row)
	}
	return rows
}

func profileRows(d *RunData) [][]string {
	dims := max(d.X.Dims(), 1)
	header := make([]string, 0, dims+3)
	for j := 0; j < dims; j++ {
		header = append(header, fmt.Sprintf("x%d", j))
	}
	header = append(header, "mxy_re", "mxy_im", "mz")

	mxy, mz := bloch.Magnetization(d.A, d.B)
	rows := [][]string{header}
	for i := range mxy {
		row := make([]string, 0, dims+3)
		for _, v := range d.X.Row(i) {
			row = append(row, formatFloat(v))
		}
		row = append(row, formatFloat(real(mxy[i])), formatFloat(imag(mxy[i])), formatFloat(mz[i]))
		rows = append(rows, row)
	}
	return rows
}

func gradientRows(drf []complex128) [][]string {
	rows := [][]string{{"t", "drf_re", "drf_im"}}
	for t, v := range drf {
		rows = append(rows, []string{strconv.Itoa(t), formatFloat(real(v)), formatFloat(imag(v))})
	}
	return rows
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}

// readCSV returns the data rows without the header.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil
	}
	return records[1:], nil
}

func parseRow(rec []string, minFields int) ([]float64, error) {
	if len(rec) < minFields {
		return nil, fmt.Errorf("expected at least %d fields, got %d", minFields, len(rec))
	}
	vals := make([]float64, len(rec))
	for j, field := range rec {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}
		vals[j] = v
	}
	return vals, nil
}
