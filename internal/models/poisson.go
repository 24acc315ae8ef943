package models

import "math/rand"

// Poisson emits spikes as a Poisson point process with a fixed rate. It is
// the stock stimulus source: connect one to a population to drive it.
type Poisson struct {
	Rate float64 // spikes per second
	Dt   float64 // resolution, ms
}

func poissonDefaults() Params {
	return Params{
		"rate": 10.0,
		"dt":   0.1,
	}
}

// NewPoisson builds a generator from a parameter dictionary.
func NewPoisson(p Params) *Poisson {
	return &Poisson{Rate: p["rate"], Dt: p["dt"]}
}

// Receive is a no-op; generators ignore synaptic input.
func (g *Poisson) Receive(float64) {}

// Update draws from the generator's per-VP stream, keeping runs
// reproducible under a fixed topology.
func (g *Poisson) Update(rng *rand.Rand) bool {
	return rng.Float64() < g.Rate*g.Dt/1000.0
}
