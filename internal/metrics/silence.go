package metrics

// Silence reports the fraction of steps with no spikes at all.
type Silence struct {
	name   string
	silent int
	steps  int
}

func NewSilence() *Silence {
	return &Silence{name: "silence"}
}

func (s *Silence) Name() string { return s.name }

func (s *Silence) Observe(step, spikes int) {
	s.steps++
	if spikes == 0 {
		s.silent++
	}
}

func (s *Silence) Value() float64 {
	if s.steps == 0 {
		return 1.0
	}
	return float64(s.silent) / float64(s.steps)
}

func (s *Silence) Reset() {
	s.silent = 0
	s.steps = 0
}
