package health

import (
	"fmt"
	"strings"
)

// FormatText formats a snapshot into a human-readable text block.
func FormatText(s Snapshot) string {
	var b strings.Builder
	b.WriteString("chatbridge Status\n")
	b.WriteString("=================\n\n")
	b.WriteString(fmt.Sprintf("Status: %s\n\n", s.Status))

	b.WriteString("Bridge:\n")
	b.WriteString(fmt.Sprintf("  State: %s\n", s.State))
	if s.CurrentTask != "" {
		b.WriteString(fmt.Sprintf("  Current Task: %s\n", s.CurrentTask))
	}
	b.WriteString(fmt.Sprintf("  Awaiting Input: %t\n", s.AwaitingInput))
	b.WriteString(fmt.Sprintf("  Task Queue: %d\n", s.TaskQueue))
	b.WriteString(fmt.Sprintf("  Input Queue: %d\n", s.InputQueue))
	b.WriteString(fmt.Sprintf("  Connections: %d\n", s.Connections))
	b.WriteString(fmt.Sprintf("  Completed: %d\n", s.Completed))
	b.WriteString(fmt.Sprintf("  Failed: %d\n", s.Failed))
	b.WriteString(fmt.Sprintf("  Started At: %s\n", s.StartedAt))
	b.WriteString(fmt.Sprintf("  Uptime: %s\n", s.Uptime))

	b.WriteString("\nMemory:\n")
	b.WriteString(fmt.Sprintf("  Allocated: %.2f MB\n", s.Memory.AllocMB))
	b.WriteString(fmt.Sprintf("  Total Allocated: %.2f MB\n", s.Memory.TotalAllocMB))
	b.WriteString(fmt.Sprintf("  System: %.2f MB\n", s.Memory.SysMB))
	b.WriteString(fmt.Sprintf("  GC Cycles: %d\n\n", s.Memory.NumGC))

	b.WriteString("Runtime:\n")
	b.WriteString(fmt.Sprintf("  Go Version: %s\n", s.Runtime.Version))
	b.WriteString(fmt.Sprintf("  OS/Arch: %s/%s\n", s.Runtime.OS, s.Runtime.Arch))
	b.WriteString(fmt.Sprintf("  CPUs: %d\n", s.Runtime.CPUs))
	b.WriteString(fmt.Sprintf("  Goroutines: %d\n", s.Goroutines))

	if len(s.Jobs) > 0 {
		b.WriteString("\nJobs:\n")
		for _, job := range s.Jobs {
			b.WriteString(fmt.Sprintf("  - %s\n", job))
		}
	}

	b.WriteString(fmt.Sprintf("\nTimestamp: %s\n", s.Timestamp))
	return b.String()
}
