package config

// Presets are ready-made network configurations for the CLI.
var Presets = map[string]*Config{
	"balanced": {
		Kernel: KernelConfig{
			Threads: 2, Processes: 1,
			Resolution: 0.1, Duration: 1000.0, Seed: DefaultSeed,
		},
		Network: []PopulationConfig{
			{Label: "noise", Model: "poisson", Count: 50, Params: map[string]float64{"rate": 100.0}},
			{Label: "excitatory", Model: "lif", Count: 400},
			{Label: "inhibitory", Model: "lif", Count: 100},
		},
		Connect: []ConnectConfig{
			{From: "noise", To: "excitatory", Probability: 0.4, Weight: 4.0, Delay: 1.0},
			{From: "noise", To: "inhibitory", Probability: 0.4, Weight: 4.0, Delay: 1.0},
			{From: "excitatory", To: "excitatory", Probability: 0.1, Weight: 0.8, Delay: 1.5},
			{From: "excitatory", To: "inhibitory", Probability: 0.1, Weight: 0.8, Delay: 1.5},
			{From: "inhibitory", To: "excitatory", Probability: 0.1, Weight: -4.0, Delay: 0.8},
		},
	},
	"driven": {
		Kernel: KernelConfig{
			Threads: 1, Processes: 1,
			Resolution: 0.1, Duration: 500.0, Seed: DefaultSeed,
		},
		Network: []PopulationConfig{
			{Label: "noise", Model: "poisson", Count: 10, Params: map[string]float64{"rate": 200.0}},
			{Label: "cells", Model: "lif", Count: 50, Params: map[string]float64{"tau_m": 15.0}},
		},
		Connect: []ConnectConfig{
			{From: "noise", To: "cells", Probability: 0.8, Weight: 5.0, Delay: 1.0},
		},
	},
	"quiet": {
		Kernel: KernelConfig{
			Threads: 1, Processes: 1,
			Resolution: 0.1, Duration: 200.0, Seed: DefaultSeed,
		},
		Network: []PopulationConfig{
			{Label: "cells", Model: "lif", Count: 20, Params: map[string]float64{"i_e": 18.0}},
		},
		Connect: []ConnectConfig{},
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
