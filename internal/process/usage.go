package process

import (
	"fmt"

	gopsproc "github.com/shirou/gopsutil/v4/process"
)

// Usage is a resource snapshot of a running process.
type Usage struct {
	CPUPercent float64 `json:"cpu_percent"`
	RSSBytes   uint64  `json:"rss_bytes"`
	Threads    int32   `json:"threads"`
}

// MemoryMB returns RSS in megabytes.
func (u Usage) MemoryMB() float64 { return float64(u.RSSBytes) / 1024 / 1024 }

// ReadUsage samples CPU, memory and thread count for pid.
func ReadUsage(pid int) (Usage, error) {
	if pid <= 0 {
		return Usage{}, fmt.Errorf("invalid pid %d", pid)
	}
	p, err := gopsproc.NewProcess(int32(pid))
	if err != nil {
		return Usage{}, fmt.Errorf("failed to create process handle: %w", err)
	}
	mem, err := p.MemoryInfo()
	if err != nil {
		return Usage{}, fmt.Errorf("failed to get memory info: %w", err)
	}
	u := Usage{RSSBytes: mem.RSS}
	// CPU and threads are best-effort; some platforms deny them without privileges.
	if cpu, err := p.CPUPercent(); err == nil {
		u.CPUPercent = cpu
	}
	if n, err := p.NumThreads(); err == nil {
		u.Threads = n
	}
	return u, nil
}
