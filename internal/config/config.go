package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/blochsim/internal/bloch"
	"github.com/san-kum/blochsim/internal/compute"
	"github.com/san-kum/blochsim/internal/objective"
	"github.com/san-kum/blochsim/internal/pulse"
)

const (
	DefaultShape     = "sinc"
	DefaultSamples   = 128
	DefaultFlip      = 90.0
	DefaultTB        = 4.0
	DefaultAmplitude = 0.05
	DefaultCount     = 101
	DefaultFOV       = 20.0
	DefaultObjective = "profile"
	DefaultBand      = 4.0
	DefaultWeightOut = 1.0
	DefaultFDStep    = 1e-6
)

// Config describes one pulse-design problem. Angles are in degrees;
// gradient amplitudes are radians of phase per unit position per sample.
type Config struct {
	Name      string          `yaml:"name"`
	Pulse     PulseConfig     `yaml:"pulse"`
	Gradient  GradientConfig  `yaml:"gradient"`
	Positions PositionConfig  `yaml:"positions"`
	Objective ObjectiveConfig `yaml:"objective"`
	Backend   string          `yaml:"backend"`
	Mode      string          `yaml:"mode"`
	FDStep    float64         `yaml:"fd_step"`
}

type PulseConfig struct {
	Shape   string  `yaml:"shape"`
	Samples int     `yaml:"samples"`
	Flip    float64 `yaml:"flip"`
	TB      float64 `yaml:"tb"`
	Phase   float64 `yaml:"phase"`
}

type GradientConfig struct {
	Amplitude []float64 `yaml:"amplitude"`
}

// PositionConfig places Count spins per dimension across FOV. Dims 0 takes
// the dimensionality of the gradient.
type PositionConfig struct {
	Count int     `yaml:"count"`
	FOV   float64 `yaml:"fov"`
	Dims  int     `yaml:"dims"`
}

type ObjectiveConfig struct {
	Kind      string  `yaml:"kind"`
	Band      float64 `yaml:"band"`
	WeightOut float64 `yaml:"weight_out"`
}

func DefaultConfig() *Config {
	return &Config{
		Name: "default",
		Pulse: PulseConfig{
			Shape:   DefaultShape,
			Samples: DefaultSamples,
			Flip:    DefaultFlip,
			TB:      DefaultTB,
		},
		Gradient: GradientConfig{Amplitude: []float64{DefaultAmplitude}},
		Positions: PositionConfig{
			Count: DefaultCount,
			FOV:   DefaultFOV,
		},
		Objective: ObjectiveConfig{
			Kind:      DefaultObjective,
			Band:      DefaultBand,
			WeightOut: DefaultWeightOut,
		},
		Backend: "auto",
		Mode:    "exact",
		FDStep:  DefaultFDStep,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Gradient.Amplitude = append([]float64(nil), c.Gradient.Amplitude...)
	return &out
}

// Dims is the spatial dimensionality the problem runs in.
func (c *Config) Dims() int {
	return len(c.Gradient.Amplitude)
}

func (c *Config) Validate() error {
	var errs []error
	if c.Pulse.Samples < 0 {
		errs = append(errs, fmt.Errorf("pulse.samples must be non-negative, got %d", c.Pulse.Samples))
	}
	if len(c.Gradient.Amplitude) == 0 {
		errs = append(errs, errors.New("gradient.amplitude needs at least one dimension"))
	}
	if c.Positions.Dims != 0 && c.Positions.Dims != len(c.Gradient.Amplitude) {
		errs = append(errs, fmt.Errorf("positions.dims %d does not match %d gradient dimensions",
			c.Positions.Dims, len(c.Gradient.Amplitude)))
	}
	if c.Positions.Count < 0 {
		errs = append(errs, fmt.Errorf("positions.count must be non-negative, got %d", c.Positions.Count))
	}
	if c.FDStep <= 0 {
		errs = append(errs, fmt.Errorf("fd_step must be positive, got %g", c.FDStep))
	}
	if _, err := bloch.ParseGradientMode(c.Mode); err != nil {
		errs = append(errs, err)
	}
	if c.Backend != "" && !contains(compute.Names(), c.Backend) {
		errs = append(errs, fmt.Errorf("unknown backend: %s", c.Backend))
	}
	if !contains(pulse.Shapes(), c.Pulse.Shape) {
		errs = append(errs, fmt.Errorf("unknown pulse shape: %s", c.Pulse.Shape))
	}
	if !contains(objective.Kinds(), c.Objective.Kind) {
		errs = append(errs, fmt.Errorf("unknown objective: %s", c.Objective.Kind))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config %q: %w", c.Name, errors.Join(errs...))
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
