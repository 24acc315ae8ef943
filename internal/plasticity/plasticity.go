// Package plasticity tracks the structural-plasticity switch. Structural
// plasticity rewires connectivity during simulation and is mutually
// exclusive with multithreading: the rewiring pass assumes a single,
// stable connection table per process.
package plasticity

import "fmt"

// Manager holds the structural-plasticity flag.
type Manager struct {
	enabled bool
}

// NewManager returns a manager with plasticity disabled.
func NewManager() *Manager {
	return &Manager{}
}

// Enabled reports whether structural plasticity is on.
func (m *Manager) Enabled() bool {
	return m.enabled
}

// Enable turns structural plasticity on. Fails while the kernel runs more
// than one thread per process.
func (m *Manager) Enable(numThreads int) error {
	if numThreads > 1 {
		return fmt.Errorf("structural plasticity cannot be enabled with %d threads: multithreading and structural plasticity are mutually exclusive", numThreads)
	}
	m.enabled = true
	return nil
}

// Disable turns structural plasticity off.
func (m *Manager) Disable() {
	m.enabled = false
}

// Reset restores the default (disabled) state.
func (m *Manager) Reset() {
	m.enabled = false
}
