package sched

import (
	"runtime"
	"sync"
)

// Pool is the lane pool backing the kernel's parallel regions. A lane is
// one intra-process execution thread; the VP manager sizes the pool and
// every parallel region then runs one goroutine per lane.
type Pool struct {
	mu        sync.Mutex
	lanes     int
	autoScale bool
}

// NewPool returns a single-lane pool with auto-scaling enabled.
func NewPool() *Pool {
	return &Pool{lanes: 1, autoScale: true}
}

// Resize requests exactly n lanes for subsequent parallel regions. With
// auto-scaling enabled the request is clamped to the CPU count; once the
// kernel takes ownership it disables auto-scaling so the configured count
// is honored exactly.
func (p *Pool) Resize(n int) {
	if n < 1 {
		n = 1
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.autoScale && n > runtime.NumCPU() {
		n = runtime.NumCPU()
	}
	p.lanes = n
}

// Lanes returns the current lane count.
func (p *Pool) Lanes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lanes
}

// SetAutoScale controls whether Resize may clamp to the hardware.
func (p *Pool) SetAutoScale(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.autoScale = enabled
}

// Run executes fn once per lane, concurrently, and waits for all lanes.
func (p *Pool) Run(fn func(lane int)) {
	n := p.Lanes()
	if n == 1 {
		fn(0)
		return
	}

	var wg sync.WaitGroup
	wg.Add(n)
	for lane := 0; lane < n; lane++ {
		go func(l int) {
			defer wg.Done()
			fn(l)
		}(lane)
	}
	wg.Wait()
}
