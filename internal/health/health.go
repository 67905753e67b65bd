// Package health collects a status snapshot of the running bridge for the
// /api/status endpoint, the status command and the periodic heartbeat.
package health

import (
	"runtime"
	"time"

	"github.com/iamsorenl/Autogen-Chat-Demo/bridge"
)

// Source provides the bridge status.
type Source interface {
	Status() bridge.Status
}

// Snapshot is a point-in-time health view of the bridge process.
type Snapshot struct {
	Status        string      `json:"status"`
	State         string      `json:"state"`
	CurrentTask   string      `json:"current_task,omitempty"`
	AwaitingInput bool        `json:"awaiting_input"`
	TaskQueue     int         `json:"task_queue"`
	InputQueue    int         `json:"input_queue"`
	Connections   int         `json:"connections"`
	Completed     int64       `json:"completed"`
	Failed        int64       `json:"failed"`
	StartedAt     string      `json:"started_at"`
	Uptime        string      `json:"uptime"`
	Goroutines    int         `json:"goroutines"`
	Memory        MemoryInfo  `json:"memory"`
	Runtime       RuntimeInfo `json:"runtime"`
	Jobs          []string    `json:"jobs,omitempty"`
	Timestamp     string      `json:"timestamp"`
}

// MemoryInfo contains memory statistics in MB.
type MemoryInfo struct {
	AllocMB      float64 `json:"alloc_mb"`
	TotalAllocMB float64 `json:"total_alloc_mb"`
	SysMB        float64 `json:"sys_mb"`
	NumGC        uint32  `json:"num_gc"`
}

// RuntimeInfo contains Go runtime metadata.
type RuntimeInfo struct {
	Version string `json:"version"`
	OS      string `json:"os"`
	Arch    string `json:"arch"`
	CPUs    int    `json:"cpus"`
}

// Options controls optional snapshot details.
type Options struct {
	// Jobs lists the scheduled job names, when a scheduler is running.
	Jobs func() []string
}

// Collect builds a snapshot from src and the current process.
func Collect(src Source, opts Options) Snapshot {
	st := src.Status()
	now := time.Now()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	s := Snapshot{
		Status:        "healthy",
		State:         st.State,
		CurrentTask:   st.CurrentTask,
		AwaitingInput: st.AwaitingInput,
		TaskQueue:     st.PendingTasks,
		InputQueue:    st.PendingInputs,
		Connections:   st.Clients,
		Completed:     st.Completed,
		Failed:        st.Failed,
		StartedAt:     st.StartedAt.Format(time.RFC3339),
		Uptime:        st.Uptime,
		Goroutines:    runtime.NumGoroutine(),
		Memory: MemoryInfo{
			AllocMB:      float64(mem.Alloc) / 1024 / 1024,
			TotalAllocMB: float64(mem.TotalAlloc) / 1024 / 1024,
			SysMB:        float64(mem.Sys) / 1024 / 1024,
			NumGC:        mem.NumGC,
		},
		Runtime: RuntimeInfo{
			Version: runtime.Version(),
			OS:      runtime.GOOS,
			Arch:    runtime.GOARCH,
			CPUs:    runtime.NumCPU(),
		},
		Timestamp: now.Format(time.RFC3339),
	}
	if opts.Jobs != nil {
		s.Jobs = opts.Jobs()
	}
	return s
}

// LogFields renders the bridge part of s as logger key/value pairs.
func (s Snapshot) LogFields() []any {
	return []any{
		"state", s.State,
		"awaitingInput", s.AwaitingInput,
		"taskQueue", s.TaskQueue,
		"inputQueue", s.InputQueue,
		"connections", s.Connections,
		"completed", s.Completed,
		"failed", s.Failed,
		"uptime", s.Uptime,
	}
}
