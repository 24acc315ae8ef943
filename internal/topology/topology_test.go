package topology

import "testing"

func TestSingle(t *testing.T) {
	var topo Single
	if topo.NumProcesses() != 1 {
		t.Errorf("expected 1 process, got %d", topo.NumProcesses())
	}
	if topo.Rank() != 0 {
		t.Errorf("expected rank 0, got %d", topo.Rank())
	}
}

func TestFixed(t *testing.T) {
	tests := []struct {
		name      string
		n, rank   int
		wantProcs int
		wantRank  int
	}{
		{"plain", 4, 2, 4, 2},
		{"zero processes", 0, 0, 1, 0},
		{"negative rank", 4, -1, 4, 0},
		{"rank past end", 4, 9, 4, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topo := NewFixed(tt.n, tt.rank)
			if got := topo.NumProcesses(); got != tt.wantProcs {
				t.Errorf("NumProcesses() = %d, want %d", got, tt.wantProcs)
			}
			if got := topo.Rank(); got != tt.wantRank {
				t.Errorf("Rank() = %d, want %d", got, tt.wantRank)
			}
		})
	}
}
