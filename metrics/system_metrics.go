// system_metrics.go provides collection and export of runtime system metrics
// including goroutine count, memory usage, GC statistics, disk usage, and
// configurable scheduler-health callbacks (resident transaction count,
// microblock emission rate, backlog pressure) for a host process running a
// Scheduler.
package metrics

import (
	"encoding/json"
	"runtime"
	"sync"
	"time"
)

// MemStats holds key memory statistics from the Go runtime.
type MemStats struct {
	// HeapAlloc is the number of bytes of allocated heap objects.
	HeapAlloc uint64 `json:"heapAlloc"`

	// TotalAlloc is the cumulative bytes allocated for heap objects.
	TotalAlloc uint64 `json:"totalAlloc"`

	// Sys is the total bytes of memory obtained from the OS.
	Sys uint64 `json:"sys"`

	// NumGC is the number of completed GC cycles.
	NumGC uint64 `json:"numGC"`
}

// DiskStats holds disk usage information.
type DiskStats struct {
	// Total is the total capacity of the disk in bytes.
	Total uint64 `json:"total"`

	// Used is the number of bytes in use on the disk.
	Used uint64 `json:"used"`

	// Free is the number of bytes available on the disk.
	Free uint64 `json:"free"`
}

// ResidentTxnFunc is a callback that returns a scheduler's current resident
// transaction count (avail_txn_cnt).
type ResidentTxnFunc func() uint64

// MicroblockRateFunc is a callback that returns the current rate of
// transactions emitted by schedule_next_microblock per second.
type MicroblockRateFunc func() float64

// BacklogPressureFunc is a callback that returns a scheduler's backlog
// pressure as a float64 between 0.0 (empty pool) and 1.0 (pool at its
// configured pack_depth cap).
type BacklogPressureFunc func() float64

// DiskUsageFunc is a callback that returns disk usage for a given path.
type DiskUsageFunc func(path string) DiskStats

// SystemMetrics tracks key system-level metrics for the host process.
type SystemMetrics struct {
	mu        sync.RWMutex
	startTime time.Time

	// Cached snapshot from the last Collect() call.
	memStats    MemStats
	goroutines  int
	lastCollect time.Time

	// Configurable callbacks for scheduler-health metrics.
	residentTxnFn     ResidentTxnFunc
	microblockRateFn  MicroblockRateFunc
	backlogPressureFn BacklogPressureFunc
	diskUsageFn       DiskUsageFunc
}

// NewSystemMetrics creates a new SystemMetrics instance. Callbacks default
// to no-op functions returning zero values; use Set*Func methods to override.
func NewSystemMetrics() *SystemMetrics {
	return &SystemMetrics{
		startTime:         time.Now(),
		residentTxnFn:     func() uint64 { return 0 },
		microblockRateFn:  func() float64 { return 0.0 },
		backlogPressureFn: func() float64 { return 0.0 },
		diskUsageFn:       func(path string) DiskStats { return DiskStats{} },
	}
}

// SetResidentTxnFunc sets the callback for retrieving a scheduler's resident
// transaction count.
func (sm *SystemMetrics) SetResidentTxnFunc(fn ResidentTxnFunc) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if fn != nil {
		sm.residentTxnFn = fn
	}
}

// SetMicroblockRateFunc sets the callback for retrieving the current
// microblock emission rate.
func (sm *SystemMetrics) SetMicroblockRateFunc(fn MicroblockRateFunc) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if fn != nil {
		sm.microblockRateFn = fn
	}
}

// SetBacklogPressureFunc sets the callback for retrieving backlog pressure.
func (sm *SystemMetrics) SetBacklogPressureFunc(fn BacklogPressureFunc) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if fn != nil {
		sm.backlogPressureFn = fn
	}
}

// SetDiskUsageFunc sets the callback for retrieving disk usage.
func (sm *SystemMetrics) SetDiskUsageFunc(fn DiskUsageFunc) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if fn != nil {
		sm.diskUsageFn = fn
	}
}

// Collect takes a snapshot of the current system metrics from the Go runtime.
// Call this periodically (e.g. every few seconds) to update cached values.
func (sm *SystemMetrics) Collect() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.memStats = MemStats{
		HeapAlloc:  ms.HeapAlloc,
		TotalAlloc: ms.TotalAlloc,
		Sys:        ms.Sys,
		NumGC:      uint64(ms.NumGC),
	}
	sm.goroutines = runtime.NumGoroutine()
	sm.lastCollect = time.Now()
}

// GoRoutineCount returns the number of goroutines at the last Collect() call.
// If Collect() has not been called, reads the current goroutine count directly.
func (sm *SystemMetrics) GoRoutineCount() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if sm.goroutines == 0 {
		return runtime.NumGoroutine()
	}
	return sm.goroutines
}

// MemoryUsage returns the memory statistics from the last Collect() call.
// If Collect() has not been called, performs a live read.
func (sm *SystemMetrics) MemoryUsage() MemStats {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if sm.lastCollect.IsZero() {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		return MemStats{
			HeapAlloc:  ms.HeapAlloc,
			TotalAlloc: ms.TotalAlloc,
			Sys:        ms.Sys,
			NumGC:      uint64(ms.NumGC),
		}
	}
	return sm.memStats
}

// DiskUsage returns disk usage statistics for the given path by invoking
// the configured disk usage callback.
func (sm *SystemMetrics) DiskUsage(path string) DiskStats {
	sm.mu.RLock()
	fn := sm.diskUsageFn
	sm.mu.RUnlock()
	return fn(path)
}

// UptimeSeconds returns the number of seconds since the SystemMetrics
// instance was created.
func (sm *SystemMetrics) UptimeSeconds() float64 {
	return time.Since(sm.startTime).Seconds()
}

// ResidentTxnCnt returns the scheduler's resident transaction count by
// invoking the callback.
func (sm *SystemMetrics) ResidentTxnCnt() uint64 {
	sm.mu.RLock()
	fn := sm.residentTxnFn
	sm.mu.RUnlock()
	return fn()
}

// MicroblockRate returns the current microblock emission rate by invoking
// the callback.
func (sm *SystemMetrics) MicroblockRate() float64 {
	sm.mu.RLock()
	fn := sm.microblockRateFn
	sm.mu.RUnlock()
	return fn()
}

// BacklogPressure returns the scheduler's backlog pressure as a float64
// between 0.0 (empty pool) and 1.0 (pool at capacity).
func (sm *SystemMetrics) BacklogPressure() float64 {
	sm.mu.RLock()
	fn := sm.backlogPressureFn
	sm.mu.RUnlock()

	p := fn()
	// Clamp to [0.0, 1.0].
	if p < 0.0 {
		return 0.0
	}
	if p > 1.0 {
		return 1.0
	}
	return p
}

// metricsSnapshot is the internal type used for JSON serialization of all
// system metrics.
type metricsSnapshot struct {
	Goroutines      int      `json:"goroutines"`
	Memory          MemStats `json:"memory"`
	UptimeSec       float64  `json:"uptimeSeconds"`
	ResidentTxnCnt  uint64   `json:"residentTxnCnt"`
	MicroblockRate  float64  `json:"microblockRate"`
	BacklogPressure float64  `json:"backlogPressure"`
	CollectedAt     string   `json:"collectedAt"`
}

// ExportJSON serializes all current metrics as a JSON object. It performs
// a fresh Collect() before exporting to ensure up-to-date values.
func (sm *SystemMetrics) ExportJSON() ([]byte, error) {
	sm.Collect()

	sm.mu.RLock()
	memSnap := sm.memStats
	goroutineSnap := sm.goroutines
	sm.mu.RUnlock()

	snapshot := metricsSnapshot{
		Goroutines:      goroutineSnap,
		Memory:          memSnap,
		UptimeSec:       sm.UptimeSeconds(),
		ResidentTxnCnt:  sm.ResidentTxnCnt(),
		MicroblockRate:  sm.MicroblockRate(),
		BacklogPressure: sm.BacklogPressure(),
		CollectedAt:     time.Now().UTC().Format(time.RFC3339),
	}

	return json.Marshal(snapshot)
}

// LastCollectTime returns the time of the last Collect() call, or zero
// if Collect() has never been called.
func (sm *SystemMetrics) LastCollectTime() time.Time {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.lastCollect
}

// GoVersion returns the Go runtime version string.
func GoVersion() string {
	return runtime.Version()
}

// NumCPU returns the number of logical CPUs available.
func NumCPU() int {
	return runtime.NumCPU()
}

// GOARCH returns the target architecture.
func GOARCH() string {
	return runtime.GOARCH
}

// GOOS returns the target operating system.
func GOOS() string {
	return runtime.GOOS
}
