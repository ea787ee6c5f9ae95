package health

import (
	"testing"

	"github.com/tuantuan-o/ConnectionPool/pkg/pool"
)

func TestComponentRollup(t *testing.T) {
	m := NewMonitor()

	m.SetComponentStatus("config", StatusHealthy, "loaded")
	snap := m.GetHealth()
	if snap.Status != StatusHealthy {
		t.Errorf("Expected healthy, got %s", snap.Status)
	}

	m.SetComponentStatus("admin", StatusDegraded, "slow")
	snap = m.GetHealth()
	if snap.Status != StatusDegraded {
		t.Errorf("Expected degraded, got %s", snap.Status)
	}

	m.SetComponentStatus("pool", StatusUnhealthy, "down")
	snap = m.GetHealth()
	if snap.Status != StatusUnhealthy {
		t.Errorf("Expected unhealthy, got %s", snap.Status)
	}
	if len(snap.Components) != 3 {
		t.Errorf("Expected 3 components, got %d", len(snap.Components))
	}
}

func TestObservePool(t *testing.T) {
	m := NewMonitor()

	m.ObservePool(pool.Stats{Live: 3})
	if snap := m.GetHealth(); snap.Status != StatusHealthy {
		t.Errorf("Expected healthy pool, got %s", snap.Status)
	}

	m.ObservePool(pool.Stats{Live: 3, CreateFailStreak: DegradedFailStreak})
	if snap := m.GetHealth(); snap.Status != StatusDegraded {
		t.Errorf("Expected degraded pool on failure streak, got %s", snap.Status)
	}

	m.ObservePool(pool.Stats{Live: 0})
	if snap := m.GetHealth(); snap.Status != StatusUnhealthy {
		t.Errorf("Expected unhealthy pool with no live connections, got %s", snap.Status)
	}
}

func TestSnapshotGauges(t *testing.T) {
	m := NewMonitor()
	snap := m.GetHealth()

	if snap.Goroutines <= 0 {
		t.Error("Expected goroutine count")
	}
	if snap.Uptime < 0 {
		t.Error("Uptime should not be negative")
	}
	if snap.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}
}
