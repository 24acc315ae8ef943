package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultResolution = 0.1
	DefaultDuration   = 1000.0
	DefaultSeed       = 143202461
	DefaultThreads    = 1
	DefaultWeight     = 0.8
	DefaultDelay      = 1.0
)

// Config describes a full kernel setup: topology, timing, and the network
// to build before simulating.
type Config struct {
	Kernel  KernelConfig       `yaml:"kernel"`
	Network []PopulationConfig `yaml:"network"`
	Connect []ConnectConfig    `yaml:"connect"`
}

// KernelConfig carries the topology and timing of a run. TotalVirtualProcs
// takes precedence over Threads when both are set, mirroring the kernel's
// status protocol.
type KernelConfig struct {
	Threads           int     `yaml:"threads"`
	TotalVirtualProcs int     `yaml:"total_virtual_procs"`
	Processes         int     `yaml:"processes"`
	Rank              int     `yaml:"rank"`
	Resolution        float64 `yaml:"resolution"`
	Duration          float64 `yaml:"duration"`
	Seed              int64   `yaml:"seed"`
}

// PopulationConfig is one homogeneous group of nodes.
type PopulationConfig struct {
	Label  string             `yaml:"label"`
	Model  string             `yaml:"model"`
	Count  int                `yaml:"count"`
	Params map[string]float64 `yaml:"params"`
}

// ConnectConfig wires one population to another with fixed pairwise
// connection probability.
type ConnectConfig struct {
	From        string  `yaml:"from"`
	To          string  `yaml:"to"`
	Probability float64 `yaml:"probability"`
	Weight      float64 `yaml:"weight"`
	Delay       float64 `yaml:"delay"`
}

// DefaultConfig returns a small two-population network driven by a Poisson
// source, sized so a default run produces visible activity.
func DefaultConfig() *Config {
	return &Config{
		Kernel: KernelConfig{
			Threads:    DefaultThreads,
			Processes:  1,
			Resolution: DefaultResolution,
			Duration:   DefaultDuration,
			Seed:       DefaultSeed,
		},
		Network: []PopulationConfig{
			{Label: "noise", Model: "poisson", Count: 20, Params: map[string]float64{"rate": 80.0}},
			{Label: "excitatory", Model: "lif", Count: 100},
		},
		Connect: []ConnectConfig{
			{From: "noise", To: "excitatory", Probability: 0.5, Weight: 4.0, Delay: DefaultDelay},
			{From: "excitatory", To: "excitatory", Probability: 0.1, Weight: DefaultWeight, Delay: DefaultDelay},
		},
	}
}

// Load reads a config file, layering it over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes a config file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects configurations the kernel would refuse anyway, with
// friendlier messages.
func (c *Config) Validate() error {
	k := c.Kernel
	if k.Resolution <= 0 {
		return fmt.Errorf("resolution must be positive, got %g", k.Resolution)
	}
	if k.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %g", k.Duration)
	}
	if k.Processes < 1 {
		return fmt.Errorf("processes must be at least 1, got %d", k.Processes)
	}
	if k.Threads < 0 || k.TotalVirtualProcs < 0 {
		return fmt.Errorf("threads and total_virtual_procs must not be negative")
	}

	labels := make(map[string]bool)
	for _, p := range c.Network {
		if p.Label == "" {
			return fmt.Errorf("population without label")
		}
		if labels[p.Label] {
			return fmt.Errorf("duplicate population label %q", p.Label)
		}
		labels[p.Label] = true
		if p.Count < 1 {
			return fmt.Errorf("population %q: count must be positive, got %d", p.Label, p.Count)
		}
	}
	for _, cc := range c.Connect {
		if !labels[cc.From] {
			return fmt.Errorf("connect: unknown population %q", cc.From)
		}
		if !labels[cc.To] {
			return fmt.Errorf("connect: unknown population %q", cc.To)
		}
		if cc.Probability < 0 || cc.Probability > 1 {
			return fmt.Errorf("connect %s->%s: probability %g outside [0, 1]", cc.From, cc.To, cc.Probability)
		}
		if cc.Delay <= 0 {
			return fmt.Errorf("connect %s->%s: delay must be positive, got %g", cc.From, cc.To, cc.Delay)
		}
	}
	return nil
}
