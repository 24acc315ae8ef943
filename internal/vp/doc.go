// Package vp manages the virtual-process topology of the kernel.
//
// A virtual process (VP) is one logical lane of parallel work, indexed
// uniquely across the whole distributed run. Every VP maps bijectively to a
// (process rank, thread index) pair:
//
//	rank   = vp % numProcesses
//	thread = vp / numProcesses
//
// The [Manager] owns the per-process thread count and enforces that the
// total number of VPs always equals threads * processes. Changing the
// topology invalidates every thread-indexed structure in the kernel (node
// tables, connection tables, random streams), so the change is guarded by a
// precondition gate and delegated to a [ReconfigurationSink] that performs
// the cascade atomically.
//
// # Thread Safety
//
// Manager is NOT safe for concurrent use. It is invoked only from the
// control phase, never while simulation lanes governed by the current
// thread count are running.
package vp
