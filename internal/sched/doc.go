// Package sched provides the lane pool that backs the kernel's parallel
// regions.
//
// The pool does not own persistent worker goroutines; a parallel region
// spawns one goroutine per lane and joins at a barrier. The lane count is
// exclusively owned by the VP manager, which resizes the pool through the
// reconfiguration cascade:
//
//	pool := sched.NewPool()
//	pool.Resize(4)
//	pool.Run(func(lane int) { /* per-thread work */ })
package sched
