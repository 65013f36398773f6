package repair

import "testing"

func TestShouldHide_UnknownIDIsHealthy(t *testing.T) {
	m := New(nil)
	if m.ShouldHide("unknown") {
		t.Fatalf("expected unknown id to not be hidden")
	}
}

func TestMarkBroken_HidesTorrent(t *testing.T) {
	m := New(nil)
	m.MarkBroken("t1")
	if !m.ShouldHide("t1") {
		t.Fatalf("expected broken torrent to be hidden")
	}
}

func TestMarkBroken_NoopOnceNotHealthy(t *testing.T) {
	m := New(nil)
	m.MarkBroken("t1")
	m.mu.Lock()
	m.health["t1"] = Health{State: Failed}
	m.mu.Unlock()

	m.MarkBroken("t1")

	m.mu.RLock()
	state := m.health["t1"].State
	m.mu.RUnlock()
	if state != Failed {
		t.Fatalf("expected MarkBroken to be a no-op once Failed, got %v", state)
	}
}

func TestClearHealthy_RemovesEntry(t *testing.T) {
	m := New(nil)
	m.MarkBroken("t1")
	m.ClearHealthy("t1")
	if m.ShouldHide("t1") {
		t.Fatalf("expected cleared torrent to no longer be hidden")
	}
}

func TestStartRepairing_OnlyFromBroken(t *testing.T) {
	m := New(nil)
	if m.startRepairing("t1") {
		t.Fatalf("expected startRepairing to fail for unknown id")
	}
	m.MarkBroken("t1")
	if !m.startRepairing("t1") {
		t.Fatalf("expected startRepairing to succeed from Broken")
	}
	if m.startRepairing("t1") {
		t.Fatalf("expected startRepairing to fail once already Repairing")
	}
}
