// Package models holds the neuron model registry and the built-in models.
//
// Model defaults are kernel state: once a user modifies the defaults of any
// model, the VP topology is frozen until the next kernel reset, because
// instances created from modified defaults are scattered across threads.
package models

import (
	"fmt"
	"math/rand"
)

// Params is a flat parameter dictionary, the unit of model configuration.
type Params map[string]float64

// Clone returns an independent copy.
func (p Params) Clone() Params {
	c := make(Params, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}

// Neuron is one simulated cell. Update advances the cell by a single
// timestep and reports whether it spiked; Receive accumulates synaptic
// input for the next step.
type Neuron interface {
	Update(rng *rand.Rand) bool
	Receive(weight float64)
}

// Manager is the model registry. It tracks whether any built-in defaults
// have been modified since construction or the last reset.
type Manager struct {
	builtins  map[string]Params
	defaults  map[string]Params
	factories map[string]func(Params) Neuron
	modified  bool
}

// NewManager returns a registry with the built-in models installed.
func NewManager() *Manager {
	m := &Manager{
		builtins:  make(map[string]Params),
		defaults:  make(map[string]Params),
		factories: make(map[string]func(Params) Neuron),
	}
	m.register("lif", lifDefaults(), func(p Params) Neuron { return NewLIF(p) })
	m.register("poisson", poissonDefaults(), func(p Params) Neuron { return NewPoisson(p) })
	return m
}

func (m *Manager) register(name string, defaults Params, factory func(Params) Neuron) {
	m.builtins[name] = defaults
	m.defaults[name] = defaults.Clone()
	m.factories[name] = factory
}

// List returns the registered model names.
func (m *Manager) List() []string {
	names := make([]string, 0, len(m.factories))
	for name := range m.factories {
		names = append(names, name)
	}
	return names
}

// Defaults returns a copy of the current defaults for a model.
func (m *Manager) Defaults(name string) (Params, error) {
	d, ok := m.defaults[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return d.Clone(), nil
}

// SetDefaults overrides default parameters for a model and marks the
// registry modified. Unknown parameter names are rejected.
func (m *Manager) SetDefaults(name string, overrides Params) error {
	d, ok := m.defaults[name]
	if !ok {
		return fmt.Errorf("unknown model: %s", name)
	}
	for k := range overrides {
		if _, ok := m.builtins[name][k]; !ok {
			return fmt.Errorf("model %s has no parameter %q", name, k)
		}
	}
	for k, v := range overrides {
		d[k] = v
	}
	m.modified = true
	return nil
}

// Modified reports whether any model defaults differ from the built-ins.
func (m *Manager) Modified() bool {
	return m.modified
}

// Create instantiates a neuron from the current defaults plus per-instance
// overrides. Creation does not mark the registry modified.
func (m *Manager) Create(name string, overrides Params) (Neuron, error) {
	factory, ok := m.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	p := m.defaults[name].Clone()
	for k, v := range overrides {
		if _, ok := m.builtins[name][k]; !ok {
			return nil, fmt.Errorf("model %s has no parameter %q", name, k)
		}
		p[k] = v
	}
	return factory(p), nil
}

// Reset restores built-in defaults and clears the modified flag.
func (m *Manager) Reset() {
	for name, builtin := range m.builtins {
		m.defaults[name] = builtin.Clone()
	}
	m.modified = false
}
