// Package random provides the per-VP random number streams. Each virtual
// process owns one stream, seeded deterministically from (base seed, VP
// index), so a run is reproducible for a fixed topology and the streams a
// process holds follow its local threads through reconfiguration.
package random

import "math/rand"

// Manager holds one stream per local thread.
type Manager struct {
	baseSeed int64
	streams  []*rand.Rand
}

// NewManager returns streams for a single-thread, single-process layout.
func NewManager(seed int64) *Manager {
	m := &Manager{baseSeed: seed}
	m.Reconfigure(1, 1, 0)
	return m
}

// Reconfigure rebuilds the local streams for a new topology. Stream i is
// seeded from the global index of the VP it serves, not from the thread
// index, so two processes never share a sequence.
func (m *Manager) Reconfigure(threads, procs, rank int) {
	m.streams = make([]*rand.Rand, threads)
	for t := 0; t < threads; t++ {
		vpIndex := int64(t*procs + rank)
		m.streams[t] = rand.New(rand.NewSource(m.baseSeed + vpIndex))
	}
}

// SetSeed replaces the base seed and reseeds the current streams.
func (m *Manager) SetSeed(seed int64, procs, rank int) {
	m.baseSeed = seed
	m.Reconfigure(len(m.streams), procs, rank)
}

// Seed returns the base seed.
func (m *Manager) Seed() int64 {
	return m.baseSeed
}

// Stream returns the generator owned by one local thread.
func (m *Manager) Stream(thread int) *rand.Rand {
	return m.streams[thread]
}

// Streams returns the number of local streams.
func (m *Manager) Streams() int {
	return len(m.streams)
}
