// Package topology describes the process layout of a distributed run.
//
// A process is one independent execution image taking part in the
// simulation. Single-image runs use [Single]; multi-process layouts can be
// emulated in one image with [NewFixed], which is how distributed
// addressing is exercised in tests.
package topology

// Provider reports the process count and this image's rank.
type Provider interface {
	NumProcesses() int
	Rank() int
}

// Single is the one-process topology.
type Single struct{}

func (Single) NumProcesses() int { return 1 }
func (Single) Rank() int         { return 0 }

// Fixed is a static topology with a configured size and rank. It stands in
// for an MPI-style communicator when the run is laid out across several
// images, or when one image emulates several.
type Fixed struct {
	procs int
	rank  int
}

// NewFixed returns a topology of n processes with this image at the given
// rank. n < 1 is treated as 1; rank is clamped into [0, n).
func NewFixed(n, rank int) *Fixed {
	if n < 1 {
		n = 1
	}
	if rank < 0 {
		rank = 0
	}
	if rank >= n {
		rank = n - 1
	}
	return &Fixed{procs: n, rank: rank}
}

func (f *Fixed) NumProcesses() int { return f.procs }
func (f *Fixed) Rank() int         { return f.rank }
