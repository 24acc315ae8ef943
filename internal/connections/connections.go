// Package connections owns the synapse tables and spike routing of the
// kernel. Tables are kept per target thread so delivery within a parallel
// region touches disjoint state.
package connections

import (
	"fmt"
	"math"

	"github.com/eapache/queue"
)

// Connection is one synapse. Delay is in milliseconds and is quantized to
// whole steps at routing time.
type Connection struct {
	Source int
	Target int
	Weight float64
	Delay  float64
}

// Event is a pending spike delivery.
type Event struct {
	Target int
	Weight float64
	Due    int // simulation step at which the event is delivered
}

// Manager holds this process's connection tables and per-thread delivery
// queues.
type Manager struct {
	tables   [][]Connection // by target thread
	bySource map[int][]Connection
	pending  []*queue.Queue // by target thread

	minDelay float64
	maxDelay float64
	userSet  bool
	count    int
}

// NewManager returns an empty connection store for the given thread count.
func NewManager(threads int) *Manager {
	m := &Manager{bySource: make(map[int][]Connection)}
	m.alloc(threads)
	return m
}

func (m *Manager) alloc(threads int) {
	m.tables = make([][]Connection, threads)
	m.pending = make([]*queue.Queue, threads)
	for t := range m.pending {
		m.pending[t] = queue.New()
	}
}

// Count returns the number of stored connections.
func (m *Manager) Count() int {
	return m.count
}

// SetDelayExtrema fixes the legal delay range explicitly. Once set, the VP
// topology is frozen until the next kernel reset.
func (m *Manager) SetDelayExtrema(min, max float64) error {
	if min <= 0 || max < min {
		return fmt.Errorf("invalid delay extrema [%g, %g]: need 0 < min <= max", min, max)
	}
	m.minDelay = min
	m.maxDelay = max
	m.userSet = true
	return nil
}

// DelayExtremaUserSet reports whether extrema were set explicitly.
func (m *Manager) DelayExtremaUserSet() bool {
	return m.userSet
}

// MinDelay returns the lower delay bound, or 0 when none was set.
func (m *Manager) MinDelay() float64 { return m.minDelay }

// MaxDelay returns the upper delay bound, or 0 when none was set.
func (m *Manager) MaxDelay() float64 { return m.maxDelay }

// Connect stores a synapse onto the target's thread table.
func (m *Manager) Connect(c Connection, targetThread int) error {
	if c.Delay <= 0 {
		return fmt.Errorf("connection delay must be positive, got %g", c.Delay)
	}
	if m.userSet && (c.Delay < m.minDelay || c.Delay > m.maxDelay) {
		return fmt.Errorf("connection delay %g outside extrema [%g, %g]", c.Delay, m.minDelay, m.maxDelay)
	}
	if targetThread < 0 || targetThread >= len(m.tables) {
		return fmt.Errorf("target thread %d out of range [0, %d)", targetThread, len(m.tables))
	}
	m.tables[targetThread] = append(m.tables[targetThread], c)
	m.bySource[c.Source] = append(m.bySource[c.Source], c)
	m.count++
	return nil
}

// Route enqueues deliveries for a spike emitted at the given step. thread
// maps a target node ID to its thread, so the event lands on the queue its
// owning lane will drain.
func (m *Manager) Route(source, step int, resolution float64, thread func(target int) int) {
	for _, c := range m.bySource[source] {
		delaySteps := int(math.Round(c.Delay / resolution))
		if delaySteps < 1 {
			delaySteps = 1
		}
		t := thread(c.Target)
		if t < 0 {
			continue // non-local target
		}
		m.pending[t].Add(Event{Target: c.Target, Weight: c.Weight, Due: step + delaySteps})
	}
}

// Drain pops every event on one thread's queue that is due at or before
// the given step and hands it to deliver; later events are requeued in
// arrival order.
func (m *Manager) Drain(thread, step int, deliver func(Event)) {
	q := m.pending[thread]
	for n := q.Length(); n > 0; n-- {
		ev := q.Remove().(Event)
		if ev.Due <= step {
			deliver(ev)
		} else {
			q.Add(ev)
		}
	}
}

// Pending returns the number of undelivered events across all threads.
func (m *Manager) Pending() int {
	total := 0
	for _, q := range m.pending {
		total += q.Length()
	}
	return total
}

// Resize rebuilds the per-thread tables for a new thread count. Legal only
// while no connections exist.
func (m *Manager) Resize(threads int) error {
	if m.count > 0 {
		return fmt.Errorf("cannot resize connection tables: %d connections exist", m.count)
	}
	m.alloc(threads)
	return nil
}

// Clear drops all connections, pending events, and user extrema, as part
// of a kernel reset.
func (m *Manager) Clear() {
	m.alloc(len(m.tables))
	m.bySource = make(map[int][]Connection)
	m.minDelay = 0
	m.maxDelay = 0
	m.userSet = false
	m.count = 0
}
