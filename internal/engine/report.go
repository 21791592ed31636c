package engine

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ivlev/autocam/internal/system"
)

// Report summarises a run for the --stats output.
type Report struct {
	Build      string
	Command    string
	Recordings int
	Segments   int
	Total      time.Duration
	Process    system.ProcessStats
}

// NewReport fills the process statistics of a report. Statistics the
// platform cannot provide stay zero.
func NewReport(build, command string, recordings, segments int, total time.Duration) Report {
	stats, _ := system.CurrentProcessStats()
	return Report{
		Build:      build,
		Command:    command,
		Recordings: recordings,
		Segments:   segments,
		Total:      total,
		Process:    stats,
	}
}

// String renders the report as a block for the terminal.
func (r Report) String() string {
	var b strings.Builder
	b.WriteString("--- [PERFORMANCE REPORT] ---\n")
	fmt.Fprintf(&b, "Build: %s\n", r.Build)
	fmt.Fprintf(&b, "Command: %s\n", r.Command)
	fmt.Fprintf(&b, "Recordings: %d\n", r.Recordings)
	fmt.Fprintf(&b, "Segments: %d\n", r.Segments)
	fmt.Fprintf(&b, "Total Time: %.2fs\n", r.Total.Seconds())
	fmt.Fprintf(&b, "CPU Time: %.2fs\n", r.Process.CPUSeconds)
	fmt.Fprintf(&b, "RSS: %.1f MiB\n", float64(r.Process.RSSBytes)/(1<<20))
	fmt.Fprintf(&b, "Heap: %.1f MiB\n", float64(r.Process.HeapAlloc)/(1<<20))
	fmt.Fprintf(&b, "Threads: %d | Goroutines: %d\n", r.Process.NumThreads, r.Process.Goroutines)
	b.WriteString("----------------------------\n")
	return b.String()
}

// Line renders the report as one benchmark log line.
func (r Report) Line(now time.Time) string {
	return fmt.Sprintf("[%s] Build: %s | Command: %s | Recordings: %d | Segments: %d | Total: %.2fs | CPU: %.2fs | RSS: %d\n",
		now.Format("2006-01-02 15:04:05"), r.Build, r.Command, r.Recordings, r.Segments,
		r.Total.Seconds(), r.Process.CPUSeconds, r.Process.RSSBytes)
}

// AppendBenchmark appends the report line to a benchmark log.
func (r Report) AppendBenchmark(path string, now time.Time) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open benchmark log: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(r.Line(now)); err != nil {
		return fmt.Errorf("write benchmark log: %w", err)
	}
	return nil
}
