package vp

import "testing"

func TestVPMapping(t *testing.T) {
	tests := []struct {
		vp     int
		procs  int
		rank   int
		thread int
	}{
		{0, 4, 0, 0},
		{1, 4, 1, 0},
		{3, 4, 3, 0},
		{4, 4, 0, 1},
		{7, 4, 3, 1},
		{10, 4, 2, 2},
		{0, 1, 0, 0},
		{5, 1, 0, 5},
	}

	for _, tt := range tests {
		if got := RankOfVP(tt.vp, tt.procs); got != tt.rank {
			t.Errorf("RankOfVP(%d, %d) = %d, want %d", tt.vp, tt.procs, got, tt.rank)
		}
		if got := ThreadOfVP(tt.vp, tt.procs); got != tt.thread {
			t.Errorf("ThreadOfVP(%d, %d) = %d, want %d", tt.vp, tt.procs, got, tt.thread)
		}
		if got := VPIndex(tt.rank, tt.thread, tt.procs); got != tt.vp {
			t.Errorf("VPIndex(%d, %d, %d) = %d, want %d", tt.rank, tt.thread, tt.procs, got, tt.vp)
		}
	}
}

func TestVPMappingIsBijective(t *testing.T) {
	const procs, threads = 3, 4

	seen := make(map[int]bool)
	for rank := 0; rank < procs; rank++ {
		for thread := 0; thread < threads; thread++ {
			vp := VPIndex(rank, thread, procs)
			if seen[vp] {
				t.Fatalf("vp %d assigned twice", vp)
			}
			seen[vp] = true

			if RankOfVP(vp, procs) != rank || ThreadOfVP(vp, procs) != thread {
				t.Errorf("round trip failed for (%d, %d): vp %d -> (%d, %d)",
					rank, thread, vp, RankOfVP(vp, procs), ThreadOfVP(vp, procs))
			}
		}
	}
	if len(seen) != procs*threads {
		t.Errorf("expected %d distinct vps, got %d", procs*threads, len(seen))
	}
}

func TestManagerLocality(t *testing.T) {
	h := newHarness(4)
	h.topo.rank = 2

	if err := h.m.SetStatus(StatusRequest{LocalNumThreads: intp(2)}); err != nil {
		t.Fatalf("set_status failed: %v", err)
	}

	local := 0
	for i := 0; i < h.m.NumVirtualProcesses(); i++ {
		if h.m.IsLocalVP(i) {
			local++
			if h.m.RankOf(i) != 2 {
				t.Errorf("vp %d local but rank %d", i, h.m.RankOf(i))
			}
		}
	}
	if local != 2 {
		t.Errorf("expected 2 local vps, got %d", local)
	}
}

func TestEnvOverride(t *testing.T) {
	ov := &EnvOverride{Var: "SPIKEKERNEL_TEST_THREADS"}

	if got := ov.Threads(); got != 0 {
		t.Errorf("expected 0 for unset variable, got %d", got)
	}

	t.Setenv("SPIKEKERNEL_TEST_THREADS", "6")
	if got := ov.Threads(); got != 6 {
		t.Errorf("expected 6, got %d", got)
	}

	t.Setenv("SPIKEKERNEL_TEST_THREADS", "not-a-number")
	if got := ov.Threads(); got != 0 {
		t.Errorf("expected 0 for garbage value, got %d", got)
	}
}
