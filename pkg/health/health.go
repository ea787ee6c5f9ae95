package health

import (
	"runtime"
	"sync"
	"time"

	"github.com/tuantuan-o/ConnectionPool/pkg/pool"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// DegradedFailStreak is how many consecutive producer failures mark the
// pool degraded
const DegradedFailStreak = 3

// ComponentHealth represents the health status of a single component
type ComponentHealth struct {
	Name        string      `json:"name"`
	Status      Status      `json:"status"`
	Description string      `json:"description,omitempty"`
	LastChecked time.Time   `json:"last_checked"`
	Details     interface{} `json:"details,omitempty"`
}

// Snapshot represents overall process health
type Snapshot struct {
	Status         Status            `json:"status"`
	Uptime         int64             `json:"uptime_seconds"`
	Timestamp      time.Time         `json:"timestamp"`
	Goroutines     int               `json:"goroutines"`
	MemUsedPercent float64           `json:"mem_used_percent"`
	CPUPercent     float64           `json:"cpu_percent"`
	Components     []ComponentHealth `json:"components"`
}

// Monitor tracks component health
type Monitor struct {
	startTime  time.Time
	mu         sync.RWMutex
	components map[string]*ComponentHealth
}

// NewMonitor creates a new health monitor
func NewMonitor() *Monitor {
	return &Monitor{
		startTime:  time.Now(),
		components: make(map[string]*ComponentHealth),
	}
}

// SetComponentStatus updates the status of a component
func (m *Monitor) SetComponentStatus(name string, status Status, description string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.components[name] = &ComponentHealth{
		Name:        name,
		Status:      status,
		Description: description,
		LastChecked: time.Now(),
	}
}

// ObservePool derives the pool component's status from a stats snapshot.
// A run of producer failures marks the pool degraded; a pool with no live
// connections at all is unhealthy.
func (m *Monitor) ObservePool(stats pool.Stats) {
	status := StatusHealthy
	description := ""

	switch {
	case stats.Live == 0:
		status = StatusUnhealthy
		description = "no live connections"
	case stats.CreateFailStreak >= DegradedFailStreak:
		status = StatusDegraded
		description = "producer cannot open new connections"
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.components["pool"] = &ComponentHealth{
		Name:        "pool",
		Status:      status,
		Description: description,
		LastChecked: time.Now(),
		Details:     stats,
	}
}

// GetHealth returns the current process health
func (m *Monitor) GetHealth() *Snapshot {
	m.mu.RLock()
	components := make([]ComponentHealth, 0, len(m.components))
	overallStatus := StatusHealthy
	for _, comp := range m.components {
		components = append(components, *comp)
		if comp.Status == StatusUnhealthy {
			overallStatus = StatusUnhealthy
		} else if comp.Status == StatusDegraded && overallStatus == StatusHealthy {
			overallStatus = StatusDegraded
		}
	}
	m.mu.RUnlock()

	snap := &Snapshot{
		Status:     overallStatus,
		Uptime:     int64(time.Since(m.startTime).Seconds()),
		Timestamp:  time.Now(),
		Goroutines: runtime.NumGoroutine(),
		Components: components,
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		snap.MemUsedPercent = vm.UsedPercent
	}
	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		snap.CPUPercent = percents[0]
	}

	return snap
}
