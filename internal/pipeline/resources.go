package pipeline

import (
	"os"

	"github.com/shirou/gopsutil/v3/process"
)

// ResourceUsage is a point-in-time sample of this process.
type ResourceUsage struct {
	RSSBytes   uint64
	CPUSeconds float64
	NumThreads int32
}

// ResourceMonitor samples process resource usage via gopsutil.
type ResourceMonitor struct {
	process *process.Process
}

// NewResourceMonitor creates a monitor for the current process. Sampling
// degrades to zero values when the platform offers no process stats.
func NewResourceMonitor() *ResourceMonitor {
	proc, _ := process.NewProcess(int32(os.Getpid()))
	return &ResourceMonitor{process: proc}
}

// Sample returns the current usage.
func (rm *ResourceMonitor) Sample() ResourceUsage {
	var usage ResourceUsage
	if rm.process == nil {
		return usage
	}

	if memInfo, err := rm.process.MemoryInfo(); err == nil {
		usage.RSSBytes = memInfo.RSS
	}
	if cpuTime, err := rm.process.Times(); err == nil {
		usage.CPUSeconds = cpuTime.User + cpuTime.System
	}
	usage.NumThreads, _ = rm.process.NumThreads()
	return usage
}
