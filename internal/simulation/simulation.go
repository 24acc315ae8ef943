// Package simulation drives the network through time. Each step delivers
// due spike events, updates every local node on its owning lane, and
// routes fresh spikes into the delivery queues.
package simulation

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"

	"spikekernel/internal/connections"
	"spikekernel/internal/nodes"
	"spikekernel/internal/random"
	"spikekernel/internal/sched"
)

// Layout resolves a virtual process to its local thread.
type Layout interface {
	ThreadOf(vpIndex int) int
}

// Observer is notified after every completed step with the step index and
// the number of spikes emitted in it.
type Observer func(step, spikes int)

// Deps collects the subsystems the simulation loop reads.
type Deps struct {
	Pool        *sched.Pool
	Nodes       *nodes.Manager
	Connections *connections.Manager
	Random      *random.Manager
	Layout      Layout
	Log         *zap.Logger

	// Resolution is the step size in milliseconds.
	Resolution float64
}

// Manager owns the simulation clock and the has-been-simulated flag.
type Manager struct {
	pool   *sched.Pool
	nodes  *nodes.Manager
	conns  *connections.Manager
	rng    *random.Manager
	layout Layout
	log    *zap.Logger

	resolution float64
	step       int
	simulated  bool
	trace      []int
	observers  []Observer
}

// NewManager returns an idle simulation manager.
func NewManager(d Deps) *Manager {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	res := d.Resolution
	if res <= 0 {
		res = 0.1
	}
	return &Manager{
		pool:       d.Pool,
		nodes:      d.Nodes,
		conns:      d.Connections,
		rng:        d.Random,
		layout:     d.Layout,
		log:        log,
		resolution: res,
	}
}

// Resolution returns the step size in milliseconds.
func (m *Manager) Resolution() float64 {
	return m.resolution
}

// HasBeenSimulated reports whether the network has ever been stepped.
// While true, the VP topology is frozen until the next kernel reset.
func (m *Manager) HasBeenSimulated() bool {
	return m.simulated
}

// Time returns the simulated time in milliseconds.
func (m *Manager) Time() float64 {
	return float64(m.step) * m.resolution
}

// Trace returns a copy of the per-step spike counts recorded so far, so
// callers keep a stable view across further steps and resets.
func (m *Manager) Trace() []int {
	out := make([]int, len(m.trace))
	copy(out, m.trace)
	return out
}

// AddObserver registers a per-step callback, invoked from the control
// thread between parallel regions.
func (m *Manager) AddObserver(o Observer) {
	m.observers = append(m.observers, o)
}

// Run advances the network by the given number of milliseconds.
func (m *Manager) Run(ctx context.Context, ms float64) error {
	if ms <= 0 {
		return fmt.Errorf("simulation time must be positive, got %g", ms)
	}

	steps := int(math.Round(ms / m.resolution))
	m.log.Debug("simulating",
		zap.Float64("ms", ms),
		zap.Int("steps", steps),
		zap.Int("lanes", m.pool.Lanes()))

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		m.Step()
	}
	return nil
}

// Step advances the network by one resolution interval.
func (m *Manager) Step() {
	m.simulated = true

	lanes := m.pool.Lanes()
	spiked := make([][]int, lanes)

	// Delivery and update both partition state by thread, so one parallel
	// region covers the whole step.
	m.pool.Run(func(lane int) {
		m.conns.Drain(lane, m.step, func(ev connections.Event) {
			if node := m.nodes.Get(ev.Target); node != nil {
				node.Cell.Receive(ev.Weight)
			}
		})

		stream := m.rng.Stream(lane)
		for _, node := range m.nodes.Local(lane) {
			if node.Cell.Update(stream) {
				spiked[lane] = append(spiked[lane], node.ID)
			}
		}
	})

	// Routing crosses thread boundaries; it runs serialized.
	total := 0
	for _, ids := range spiked {
		total += len(ids)
		for _, id := range ids {
			m.conns.Route(id, m.step, m.resolution, m.threadOf)
		}
	}

	m.trace = append(m.trace, total)
	for _, o := range m.observers {
		o(m.step, total)
	}
	m.step++
}

func (m *Manager) threadOf(target int) int {
	node := m.nodes.Get(target)
	if node == nil {
		return -1
	}
	return m.layout.ThreadOf(node.VP)
}

// Reset rewinds the clock and forgets the trace and the simulated flag, as
// part of a kernel reset.
func (m *Manager) Reset() {
	m.step = 0
	m.simulated = false
	m.trace = nil
	m.observers = nil
}
