// Package metrics computes summary observables over the spike trace of a
// run. Metrics observe one step at a time, so they plug directly into the
// simulation manager's observer hook.
package metrics

// Metric accumulates one observable over a run.
type Metric interface {
	Name() string
	Observe(step, spikes int)
	Value() float64
	Reset()
}

// Observe feeds one step into every metric.
func Observe(ms []Metric, step, spikes int) {
	for _, m := range ms {
		m.Observe(step, spikes)
	}
}

// Collect returns the current values keyed by metric name.
func Collect(ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
