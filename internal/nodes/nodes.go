// Package nodes owns the node tables of the kernel. Nodes are created
// round-robin across virtual processes; each process keeps only the nodes
// of its local threads, indexed by thread so parallel regions touch
// disjoint slices.
package nodes

import (
	"fmt"

	"spikekernel/internal/models"
)

// Layout is the VP addressing the node tables are built against,
// implemented by the vp manager.
type Layout interface {
	NumThreads() int
	NumVirtualProcesses() int
	RankOf(vpIndex int) int
	ThreadOf(vpIndex int) int
	IsLocalVP(vpIndex int) bool
}

// Node is one simulated entity with a globally unique ID.
type Node struct {
	ID    int
	Model string
	VP    int
	Cell  models.Neuron
}

// Manager holds the per-thread node tables of this process.
type Manager struct {
	layout Layout
	local  [][]*Node
	byID   map[int]*Node
	size   int // global count, including non-local nodes
	nextVP int
}

// NewManager returns an empty node table for the given layout.
func NewManager(layout Layout) *Manager {
	m := &Manager{layout: layout, byID: make(map[int]*Node)}
	m.local = make([][]*Node, layout.NumThreads())
	return m
}

// Size returns the global node count across all processes.
func (m *Manager) Size() int {
	return m.size
}

// Exist reports whether any node has been created.
func (m *Manager) Exist() bool {
	return m.size > 0
}

// Local returns the node slice owned by one thread.
func (m *Manager) Local(thread int) []*Node {
	return m.local[thread]
}

// Get returns a local node by ID, or nil for non-local or unknown IDs.
func (m *Manager) Get(id int) *Node {
	return m.byID[id]
}

// Create adds n nodes of the given model, assigning consecutive IDs and
// distributing them round-robin over all virtual processes. build
// instantiates the cell for each locally stored node. Returns the assigned
// IDs, local and non-local alike.
func (m *Manager) Create(model string, n int, build func() (models.Neuron, error)) ([]int, error) {
	if n < 1 {
		return nil, fmt.Errorf("node count must be positive, got %d", n)
	}

	ids := make([]int, 0, n)
	for i := 0; i < n; i++ {
		id := m.size + 1 // IDs start at 1; 0 is reserved
		vpIndex := m.nextVP
		m.nextVP = (m.nextVP + 1) % m.layout.NumVirtualProcesses()

		if m.layout.IsLocalVP(vpIndex) {
			cell, err := build()
			if err != nil {
				return nil, err
			}
			node := &Node{ID: id, Model: model, VP: vpIndex, Cell: cell}
			thread := m.layout.ThreadOf(vpIndex)
			m.local[thread] = append(m.local[thread], node)
			m.byID[id] = node
		}

		m.size++
		ids = append(ids, id)
	}
	return ids, nil
}

// Resize rebuilds the per-thread tables for a new thread count. Legal only
// while no nodes exist; the VP manager's gate guarantees that.
func (m *Manager) Resize(threads int) error {
	if m.size > 0 {
		return fmt.Errorf("cannot resize node tables: %d nodes exist", m.size)
	}
	m.local = make([][]*Node, threads)
	return nil
}

// Clear drops all nodes, as part of a kernel reset.
func (m *Manager) Clear() {
	m.local = make([][]*Node, len(m.local))
	m.byID = make(map[int]*Node)
	m.size = 0
	m.nextVP = 0
}
