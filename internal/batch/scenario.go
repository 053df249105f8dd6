package batch

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/blochsim/internal/config"
)

// Scenario is a list of candidate pulses evaluated together.
//
//	name: flip-study
//	base: sinc90
//	candidates:
//	  - name: narrow
//	    set: {pulse: {tb: 8}}
//	sweep:
//	  param: flip
//	  min: 30
//	  max: 120
//	  steps: 4
type Scenario struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Base        string      `yaml:"base"`
	Candidates  []Candidate `yaml:"candidates"`
	Sweep       *Sweep      `yaml:"sweep"`
}

// Candidate overlays Set on a preset (Base of the scenario when empty).
type Candidate struct {
	Name   string    `yaml:"name"`
	Preset string    `yaml:"preset"`
	Set    yaml.Node `yaml:"set"`
}

// Sweep varies one parameter of the base configuration linearly.
type Sweep struct {
	Param string  `yaml:"param"`
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
	Steps int     `yaml:"steps"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Configs resolves every candidate and sweep point to a validated config.
func (sc *Scenario) Configs() ([]*config.Config, error) {
	base := sc.Base
	if base == "" {
		base = "sinc90"
	}

	var out []*config.Config
	for i, c := range sc.Candidates {
		preset := c.Preset
		if preset == "" {
			preset = base
		}
		cfg := config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("candidate %d: unknown preset: %s", i+1, preset)
		}
		if !c.Set.IsZero() {
			if err := c.Set.Decode(cfg); err != nil {
				return nil, fmt.Errorf("candidate %d: %w", i+1, err)
			}
		}
		if c.Name != "" {
			cfg.Name = c.Name
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i+1, err)
		}
		out = append(out, cfg)
	}

	if sc.Sweep != nil {
		cfgs, err := sc.Sweep.expand(base)
		if err != nil {
			return nil, err
		}
		out = append(out, cfgs...)
	}
	return out, nil
}

func (s *Sweep) expand(base string) ([]*config.Config, error) {
	if s.Steps < 1 {
		return nil, fmt.Errorf("sweep %s: steps must be at least 1, got %d", s.Param, s.Steps)
	}

	out := make([]*config.Config, 0, s.Steps)
	for i := 0; i < s.Steps; i++ {
		v := s.Min
		if s.Steps > 1 {
			v += float64(i) * (s.Max - s.Min) / float64(s.Steps-1)
		}

		cfg := config.GetPreset(base)
		if cfg == nil {
			return nil, fmt.Errorf("sweep: unknown preset: %s", base)
		}
		switch s.Param {
		case "flip":
			cfg.Pulse.Flip = v
		case "tb":
			cfg.Pulse.TB = v
		case "phase":
			cfg.Pulse.Phase = v
		case "samples":
			cfg.Pulse.Samples = int(v + 0.5)
		case "amplitude":
			for j := range cfg.Gradient.Amplitude {
				cfg.Gradient.Amplitude[j] = v
			}
		case "band":
			cfg.Objective.Band = v
		default:
			return nil, fmt.Errorf("unknown sweep parameter: %s", s.Param)
		}
		cfg.Name = fmt.Sprintf("%s_%s=%g", base, s.Param, v)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		out = append(out, cfg)
	}
	return out, nil
}
