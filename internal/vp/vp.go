package vp

// ProcessTopology reports the layout of the distributed run. Implemented by
// the topology package; consumed read-only.
type ProcessTopology interface {
	NumProcesses() int
	Rank() int
}

// Substrate is the physical parallelism layer behind the VP abstraction.
// Resize requests exactly n execution lanes for subsequent parallel
// regions; SetAutoScale(false) keeps the substrate from silently altering
// the lane count on its own.
type Substrate interface {
	Resize(n int)
	Lanes() int
	SetAutoScale(enabled bool)
}

// ReconfigurationSink accepts a new thread count and propagates it to every
// thread-indexed kernel subsystem. The contract is all-or-nothing: on a nil
// return the new count is fully adopted everywhere, on error nothing has
// been applied.
type ReconfigurationSink interface {
	ChangeNumberOfThreads(n int) error
}

// KernelState exposes the precondition queries consulted before a topology
// change is permitted.
type KernelState interface {
	NodesExist() bool
	DelayExtremaUserSet() bool
	HasBeenSimulated() bool
	ModelDefaultsModified() bool
	StructuralPlasticityEnabled() bool
}

// OverrideSource reports an external thread-count override, typically an
// environment variable. Zero means not meaningfully set.
type OverrideSource interface {
	Threads() int
}

// RankOfVP returns the process rank a VP index belongs to.
func RankOfVP(vpIndex, numProcesses int) int {
	return vpIndex % numProcesses
}

// ThreadOfVP returns the thread index a VP occupies within its process.
func ThreadOfVP(vpIndex, numProcesses int) int {
	return vpIndex / numProcesses
}

// VPIndex returns the global VP index of (rank, thread). Inverse of
// RankOfVP/ThreadOfVP.
func VPIndex(rank, thread, numProcesses int) int {
	return thread*numProcesses + rank
}
