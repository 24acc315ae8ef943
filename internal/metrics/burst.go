package metrics

// Burstiness is the ratio of the peak per-step spike count to the mean.
// Near 1 means steady asynchronous firing; large values mean the
// population fires in synchronous volleys.
type Burstiness struct {
	name   string
	peak   int
	spikes int
	steps  int
}

func NewBurstiness() *Burstiness {
	return &Burstiness{name: "burstiness"}
}

func (b *Burstiness) Name() string { return b.name }

func (b *Burstiness) Observe(step, spikes int) {
	if spikes > b.peak {
		b.peak = spikes
	}
	b.spikes += spikes
	b.steps++
}

func (b *Burstiness) Value() float64 {
	if b.steps == 0 || b.spikes == 0 {
		return 0
	}
	mean := float64(b.spikes) / float64(b.steps)
	return float64(b.peak) / mean
}

func (b *Burstiness) Reset() {
	b.peak = 0
	b.spikes = 0
	b.steps = 0
}
