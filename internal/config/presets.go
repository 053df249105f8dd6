package config

import "sort"

var Presets = map[string]*Config{
	"hard90": {
		Name:      "hard90",
		Pulse:     PulseConfig{Shape: "hard", Samples: 16, Flip: 90},
		Gradient:  GradientConfig{Amplitude: []float64{0.01}},
		Positions: PositionConfig{Count: 41, FOV: 20},
		Objective: ObjectiveConfig{Kind: "mxy", Band: 20, WeightOut: 1},
		Backend:   "auto", Mode: "exact", FDStep: DefaultFDStep,
	},
	"sinc90": {
		Name:      "sinc90",
		Pulse:     PulseConfig{Shape: "sinc", Samples: 128, Flip: 90, TB: 4},
		Gradient:  GradientConfig{Amplitude: []float64{0.05}},
		Positions: PositionConfig{Count: 101, FOV: 20},
		Objective: ObjectiveConfig{Kind: "profile", Band: 4, WeightOut: 1},
		Backend:   "auto", Mode: "exact", FDStep: DefaultFDStep,
	},
	"sinc180": {
		Name:      "sinc180",
		Pulse:     PulseConfig{Shape: "sinc", Samples: 128, Flip: 180, TB: 6},
		Gradient:  GradientConfig{Amplitude: []float64{0.05}},
		Positions: PositionConfig{Count: 101, FOV: 24},
		Objective: ObjectiveConfig{Kind: "mz", Band: 6, WeightOut: 0.5},
		Backend:   "auto", Mode: "exact", FDStep: DefaultFDStep,
	},
	"grid2d": {
		Name:      "grid2d",
		Pulse:     PulseConfig{Shape: "gaussian", Samples: 64, Flip: 30, TB: 4},
		Gradient:  GradientConfig{Amplitude: []float64{0.04, 0.02}},
		Positions: PositionConfig{Count: 21, FOV: 16, Dims: 2},
		Objective: ObjectiveConfig{Kind: "profile", Band: 6, WeightOut: 1},
		Backend:   "auto", Mode: "exact", FDStep: DefaultFDStep,
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
