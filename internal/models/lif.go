package models

import (
	"math"
	"math/rand"
)

// LIF is a leaky integrate-and-fire neuron with exponential membrane decay
// and an absolute refractory period. Time constants are in milliseconds,
// potentials in millivolts.
type LIF struct {
	TauM    float64 // membrane time constant
	VRest   float64 // resting potential
	VReset  float64 // post-spike reset potential
	VThresh float64 // spike threshold
	TRef    float64 // refractory period
	IE      float64 // constant input current, in membrane units
	Dt      float64 // resolution

	v        float64
	refSteps int
	input    float64
}

func lifDefaults() Params {
	return Params{
		"tau_m":    10.0,
		"v_rest":   -70.0,
		"v_reset":  -70.0,
		"v_thresh": -55.0,
		"t_ref":    2.0,
		"i_e":      0.0,
		"dt":       0.1,
	}
}

// NewLIF builds a neuron from a parameter dictionary, starting at rest.
func NewLIF(p Params) *LIF {
	n := &LIF{
		TauM:    p["tau_m"],
		VRest:   p["v_rest"],
		VReset:  p["v_reset"],
		VThresh: p["v_thresh"],
		TRef:    p["t_ref"],
		IE:      p["i_e"],
		Dt:      p["dt"],
	}
	n.v = n.VRest
	return n
}

// V returns the membrane potential.
func (n *LIF) V() float64 { return n.v }

// Receive accumulates synaptic input applied at the next Update.
func (n *LIF) Receive(weight float64) {
	n.input += weight
}

// Update advances the membrane by one step and reports a spike when the
// threshold is crossed.
func (n *LIF) Update(_ *rand.Rand) bool {
	if n.refSteps > 0 {
		n.refSteps--
		n.input = 0
		n.v = n.VReset
		return false
	}

	decay := math.Exp(-n.Dt / n.TauM)
	n.v = n.VRest + (n.v-n.VRest)*decay + n.IE*n.Dt/n.TauM + n.input
	n.input = 0

	if n.v >= n.VThresh {
		n.v = n.VReset
		n.refSteps = int(n.TRef / n.Dt)
		return true
	}
	return false
}
