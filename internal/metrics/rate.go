package metrics

// FiringRate reports the mean population firing rate in spikes per second
// per neuron.
type FiringRate struct {
	name       string
	resolution float64 // ms per step
	population int
	spikes     int
	steps      int
}

func NewFiringRate(resolution float64, population int) *FiringRate {
	return &FiringRate{
		name:       "firing_rate",
		resolution: resolution,
		population: population,
	}
}

func (f *FiringRate) Name() string { return f.name }

func (f *FiringRate) Observe(step, spikes int) {
	f.spikes += spikes
	f.steps++
}

func (f *FiringRate) Value() float64 {
	if f.steps == 0 || f.population == 0 {
		return 0
	}
	seconds := float64(f.steps) * f.resolution / 1000.0
	return float64(f.spikes) / float64(f.population) / seconds
}

func (f *FiringRate) Reset() {
	f.spikes = 0
	f.steps = 0
}
