package system

import (
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/process"
)

// ProcessStats is a snapshot of this process's resource usage.
type ProcessStats struct {
	RSSBytes   uint64
	CPUSeconds float64
	NumThreads int32
	Goroutines int
	HeapAlloc  uint64
}

// CurrentProcessStats samples the running process. Fields the platform
// cannot report are left at zero.
func CurrentProcessStats() (ProcessStats, error) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	stats := ProcessStats{
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  ms.HeapAlloc,
	}

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return stats, err
	}
	if mem, err := p.MemoryInfo(); err == nil {
		stats.RSSBytes = mem.RSS
	}
	if times, err := p.Times(); err == nil {
		stats.CPUSeconds = times.User + times.System
	}
	if n, err := p.NumThreads(); err == nil {
		stats.NumThreads = n
	}
	return stats, nil
}
