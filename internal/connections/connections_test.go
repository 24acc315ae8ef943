package connections

import (
	"testing"
)

func TestDelayExtrema(t *testing.T) {
	m := NewManager(1)

	if m.DelayExtremaUserSet() {
		t.Error("fresh manager claims user-set extrema")
	}

	if err := m.SetDelayExtrema(0.5, 5.0); err != nil {
		t.Fatalf("set extrema failed: %v", err)
	}
	if !m.DelayExtremaUserSet() {
		t.Error("extrema not marked user-set")
	}
	if m.MinDelay() != 0.5 || m.MaxDelay() != 5.0 {
		t.Errorf("extrema [%g, %g], want [0.5, 5]", m.MinDelay(), m.MaxDelay())
	}

	tests := []struct {
		name     string
		min, max float64
	}{
		{"zero min", 0, 1},
		{"negative min", -1, 1},
		{"max below min", 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := m.SetDelayExtrema(tt.min, tt.max); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestConnectValidation(t *testing.T) {
	m := NewManager(2)

	if err := m.Connect(Connection{Source: 1, Target: 2, Weight: 1, Delay: 1}, 0); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	if m.Count() != 1 {
		t.Errorf("expected 1 connection, got %d", m.Count())
	}

	if err := m.Connect(Connection{Source: 1, Target: 2, Weight: 1, Delay: 0}, 0); err == nil {
		t.Error("expected error for zero delay")
	}
	if err := m.Connect(Connection{Source: 1, Target: 2, Weight: 1, Delay: 1}, 5); err == nil {
		t.Error("expected error for out-of-range thread")
	}

	if err := m.SetDelayExtrema(1.0, 2.0); err != nil {
		t.Fatalf("set extrema failed: %v", err)
	}
	if err := m.Connect(Connection{Source: 1, Target: 2, Weight: 1, Delay: 3.0}, 0); err == nil {
		t.Error("expected error for delay outside extrema")
	}
}

func TestRouteAndDrain(t *testing.T) {
	m := NewManager(2)

	// Node 1 feeds node 10 on thread 0 and node 20 on thread 1.
	if err := m.Connect(Connection{Source: 1, Target: 10, Weight: 0.5, Delay: 1.0}, 0); err != nil {
		t.Fatal(err)
	}
	if err := m.Connect(Connection{Source: 1, Target: 20, Weight: -2.0, Delay: 2.0}, 1); err != nil {
		t.Fatal(err)
	}

	thread := func(target int) int {
		if target == 10 {
			return 0
		}
		return 1
	}

	// Spike at step 0, resolution 1 ms: due at steps 1 and 2.
	m.Route(1, 0, 1.0, thread)
	if m.Pending() != 2 {
		t.Fatalf("expected 2 pending events, got %d", m.Pending())
	}

	var delivered []Event
	deliver := func(ev Event) { delivered = append(delivered, ev) }

	m.Drain(0, 0, deliver)
	m.Drain(1, 0, deliver)
	if len(delivered) != 0 {
		t.Fatalf("events delivered before due: %v", delivered)
	}

	m.Drain(0, 1, deliver)
	m.Drain(1, 1, deliver)
	if len(delivered) != 1 || delivered[0].Target != 10 || delivered[0].Weight != 0.5 {
		t.Fatalf("expected delivery to 10 at step 1, got %v", delivered)
	}

	m.Drain(0, 2, deliver)
	m.Drain(1, 2, deliver)
	if len(delivered) != 2 || delivered[1].Target != 20 {
		t.Fatalf("expected delivery to 20 at step 2, got %v", delivered)
	}
	if m.Pending() != 0 {
		t.Errorf("expected empty queues, got %d pending", m.Pending())
	}
}

func TestRouteSkipsNonLocalTargets(t *testing.T) {
	m := NewManager(1)
	if err := m.Connect(Connection{Source: 1, Target: 99, Weight: 1, Delay: 1}, 0); err != nil {
		t.Fatal(err)
	}

	m.Route(1, 0, 1.0, func(int) int { return -1 })
	if m.Pending() != 0 {
		t.Errorf("non-local target enqueued: %d pending", m.Pending())
	}
}

func TestRouteQuantizesSubStepDelays(t *testing.T) {
	m := NewManager(1)
	if err := m.Connect(Connection{Source: 1, Target: 2, Weight: 1, Delay: 0.01}, 0); err != nil {
		t.Fatal(err)
	}

	// Delay below one step still lands one step later, never same-step.
	m.Route(1, 5, 0.1, func(int) int { return 0 })

	found := false
	m.Drain(0, 6, func(ev Event) {
		if ev.Due != 6 {
			t.Errorf("expected due step 6, got %d", ev.Due)
		}
		found = true
	})
	if !found {
		t.Error("quantized event not delivered at the next step")
	}
}

func TestResizeAndClear(t *testing.T) {
	m := NewManager(1)

	if err := m.Resize(4); err != nil {
		t.Fatalf("resize of empty tables failed: %v", err)
	}

	if err := m.Connect(Connection{Source: 1, Target: 2, Weight: 1, Delay: 1}, 3); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	if err := m.Resize(2); err == nil {
		t.Error("expected resize to fail while connections exist")
	}

	m.Clear()
	if m.Count() != 0 || m.DelayExtremaUserSet() {
		t.Error("clear did not reset the manager")
	}
	if err := m.Resize(2); err != nil {
		t.Errorf("resize after clear failed: %v", err)
	}
}
