package vp

import (
	"fmt"

	"go.uber.org/zap"
)

// Status is the externally visible topology configuration.
type Status struct {
	LocalNumThreads      int `json:"local_num_threads" yaml:"local_num_threads"`
	TotalNumVirtualProcs int `json:"total_num_virtual_procs" yaml:"total_num_virtual_procs"`
}

// StatusRequest carries an update with zero, one, or two fields set. A nil
// field means "leave as is".
type StatusRequest struct {
	LocalNumThreads      *int
	TotalNumVirtualProcs *int
}

// Deps collects the collaborators a Manager is wired to.
type Deps struct {
	Topology ProcessTopology
	Lanes    Substrate
	State    KernelState
	Sink     ReconfigurationSink
	Override OverrideSource
	Log      *zap.Logger

	// SingleThreadOnly marks a build or deployment that cannot run more
	// than one thread per process. Immutable after construction.
	SingleThreadOnly bool
}

// Manager owns the authoritative threads-per-process count and the
// permission gate for changing it.
type Manager struct {
	topo     ProcessTopology
	lanes    Substrate
	state    KernelState
	sink     ReconfigurationSink
	override OverrideSource
	log      *zap.Logger

	singleThreadOnly bool
	numThreads       int
}

// NewManager returns a manager configured for one thread per process.
func NewManager(d Deps) *Manager {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	ov := d.Override
	if ov == nil {
		ov = NoOverride{}
	}
	return &Manager{
		topo:             d.Topology,
		lanes:            d.Lanes,
		state:            d.State,
		sink:             d.Sink,
		override:         ov,
		log:              log,
		singleThreadOnly: d.SingleThreadOnly,
		numThreads:       1,
	}
}

// Initialize resets the manager as part of a kernel reset. It is a no-op
// unless resetKernel is true. Resetting always returns to one thread,
// bypassing the precondition gate.
func (m *Manager) Initialize(resetKernel bool) {
	if !resetKernel {
		return
	}

	// The substrate must not change the lane count behind our back during
	// parallel regions; the thread count set here is authoritative.
	m.lanes.SetAutoScale(false)

	if m.override.Threads() > 1 {
		m.log.Info("thread-count override is set in your environment, but the kernel ignores it",
			zap.String("var", EnvVarNumThreads))
	}

	m.SetNumThreads(1)
}

// Finalize is a no-op, present for symmetry with the kernel lifecycle.
func (m *Manager) Finalize() {}

// NumThreads returns the threads-per-process count.
func (m *Manager) NumThreads() int {
	return m.numThreads
}

// NumVirtualProcesses returns threads * processes.
func (m *Manager) NumVirtualProcesses() int {
	return m.numThreads * m.topo.NumProcesses()
}

// SingleThreadOnly reports whether this deployment is capped at one thread.
func (m *Manager) SingleThreadOnly() bool {
	return m.singleThreadOnly
}

// RankOf returns the process rank owning the given VP.
func (m *Manager) RankOf(vpIndex int) int {
	return RankOfVP(vpIndex, m.topo.NumProcesses())
}

// ThreadOf returns the thread index of the given VP within its process.
func (m *Manager) ThreadOf(vpIndex int) int {
	return ThreadOfVP(vpIndex, m.topo.NumProcesses())
}

// VP returns the global VP index executing (rank, thread).
func (m *Manager) VP(rank, thread int) int {
	return VPIndex(rank, thread, m.topo.NumProcesses())
}

// IsLocalVP reports whether the given VP runs on this process.
func (m *Manager) IsLocalVP(vpIndex int) bool {
	return m.RankOf(vpIndex) == m.topo.Rank()
}

// Status returns the current topology. Pure read.
func (m *Manager) Status() Status {
	return Status{
		LocalNumThreads:      m.numThreads,
		TotalNumVirtualProcs: m.NumVirtualProcesses(),
	}
}

// SetStatus applies a topology update request.
//
// The effective thread count is derived from the request: an explicit
// thread count wins; otherwise a requested VP total divides by the process
// count. A VP total that is not an exact multiple of the process count, or
// that disagrees with an explicit thread count, fails with a
// [PropertyError]. A request whose final values match the current
// configuration is a no-op: the precondition gate is not consulted and no
// reconfiguration happens. An actual change must pass the gate, then the
// whole kernel is reconfigured through the sink in a single call.
func (m *Manager) SetStatus(req StatusRequest) error {
	procs := m.topo.NumProcesses()

	threads := m.numThreads
	totalVPs := m.NumVirtualProcesses()

	if req.LocalNumThreads != nil {
		threads = *req.LocalNumThreads
	}
	if req.TotalNumVirtualProcs != nil {
		totalVPs = *req.TotalNumVirtualProcs

		if req.LocalNumThreads == nil {
			threads = totalVPs / procs
		}
		if totalVPs%procs != 0 || totalVPs/procs != threads {
			return &PropertyError{
				Property: "total_num_virtual_procs",
				Reason: fmt.Sprintf(
					"must be an integer multiple of the number of processes (%d) and equal to local_num_threads * num_processes, got %d; value unchanged",
					procs, totalVPs),
			}
		}
	}

	if threads < 1 {
		return &PropertyError{
			Property: "local_num_threads",
			Reason:   fmt.Sprintf("must be at least 1, got %d; value unchanged", threads),
		}
	}

	if threads == m.numThreads && totalVPs == m.NumVirtualProcesses() {
		return nil
	}

	if violations := m.gate(threads); len(violations) > 0 {
		return &GateError{Violations: violations}
	}

	if ov := m.override.Threads(); ov > 0 && ov != threads {
		m.log.Warn("thread-count override is set in your environment, but the kernel ignores it",
			zap.String("var", EnvVarNumThreads),
			zap.Int("override", ov),
			zap.Int("effective", threads))
	}

	if err := m.sink.ChangeNumberOfThreads(threads); err != nil {
		return fmt.Errorf("number of threads unchanged: %w", err)
	}
	return nil
}

// gate collects every kernel-state condition forbidding a change to the
// given thread count. Empty means the change is permitted.
func (m *Manager) gate(threads int) []string {
	var violations []string
	if m.state.NodesExist() {
		violations = append(violations, "nodes exist")
	}
	if m.state.DelayExtremaUserSet() {
		violations = append(violations, "delay extrema have been set")
	}
	if m.state.HasBeenSimulated() {
		violations = append(violations, "network has been simulated")
	}
	if m.state.ModelDefaultsModified() {
		violations = append(violations, "model defaults were modified")
	}
	if m.state.StructuralPlasticityEnabled() && threads > 1 {
		violations = append(violations, "structural plasticity enabled: multithreading cannot be enabled")
	}
	if m.singleThreadOnly && threads > 1 {
		violations = append(violations, "this deployment does not support multiple threads")
	}
	return violations
}

// SetNumThreads stores the new count and resizes the execution substrate.
//
// Privileged: it bypasses the precondition gate and is reserved for
// Initialize and for the reconfiguration cascade, which have already done
// their own validation. Calling it with n > 1 while structural plasticity
// is enabled is a defect in the caller and panics.
func (m *Manager) SetNumThreads(n int) {
	if m.state.StructuralPlasticityEnabled() && n > 1 {
		panic("vp: structural plasticity enabled, cannot set more than one thread")
	}
	m.numThreads = n
	m.lanes.Resize(n)
}
