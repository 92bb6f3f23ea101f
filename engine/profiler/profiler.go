// package profiler reports loop rate and memory statistics through the structured logger.
package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-flock/common"
)

// Stats is one profiler report.
type Stats struct {
	// TPS is the number of ticks per second over the last interval.
	TPS float64

	// Entities is the visible entity count at the last tick.
	Entities int

	// HeapMB is the live heap in megabytes.
	HeapMB float64

	// AllocRateMB is the allocation rate in megabytes per second.
	AllocRateMB float64

	// GCCount is the total number of completed GC cycles.
	GCCount uint32

	// LastPauseUs and MaxPauseUs are the latest and the largest GC pauses since the previous
	// report, in microseconds.
	LastPauseUs, MaxPauseUs uint64

	// SysMB is the memory obtained from the OS in megabytes.
	SysMB float64
}

// Profiler tracks tick rate and memory statistics and logs them at a fixed interval.
type Profiler struct {
	tickCount      int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	now            func() time.Time
}

// ProfilerBuilderOption is a functional option for configuring a Profiler during construction.
type ProfilerBuilderOption func(*Profiler)

// WithInterval sets how often Tick reports. Defaults to one second.
func WithInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.updateInterval = d
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.now = now
	}
}

// NewProfiler creates a new Profiler.
//
// Parameters:
//   - options: variadic list of ProfilerBuilderOption functions
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per loop iteration. When the update interval has elapsed it
// gathers memory statistics and logs them at info level.
//
// Parameters:
//   - entities: the number of entities drawn this tick
//
// Returns:
//   - Stats: the report, zero when none was due
//   - bool: true if stats were logged this tick
func (p *Profiler) Tick(entities int) (Stats, bool) {
	p.tickCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval || elapsed <= 0 {
		return Stats{}, false
	}

	runtime.ReadMemStats(&p.memStats)
	stats := Stats{
		TPS:         float64(p.tickCount) / elapsed.Seconds(),
		Entities:    entities,
		HeapMB:      float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB: float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:     p.memStats.NumGC,
		SysMB:       float64(p.memStats.Sys) / 1024 / 1024,
	}

	// PauseNs is a circular buffer of the last 256 GC pauses.
	if gcCount := stats.GCCount; gcCount > 0 {
		stats.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			stats.MaxPauseUs = max(stats.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	common.Logger().Info("profile",
		"tps", stats.TPS,
		"entities", stats.Entities,
		"heap_mb", stats.HeapMB,
		"alloc_rate_mb", stats.AllocRateMB,
		"gc", stats.GCCount,
		"gc_last_us", stats.LastPauseUs,
		"gc_max_us", stats.MaxPauseUs,
		"sys_mb", stats.SysMB,
	)

	p.tickCount = 0
	p.lastTime = currentTime
	p.lastGCCount = stats.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return stats, true
}
