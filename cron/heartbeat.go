package cron

import (
	"context"
	"time"

	"github.com/iamsorenl/Autogen-Chat-Demo/internal/runtimecfg"
	"github.com/iamsorenl/Autogen-Chat-Demo/logger"
)

// HeartbeatJobName is the job name used by ScheduleHeartbeat.
const HeartbeatJobName = "status-heartbeat"

// ScheduleHeartbeat logs the key/value pairs returned by fields every
// interval. A non-positive interval selects the default.
func ScheduleHeartbeat(s *Scheduler, interval time.Duration, fields func() []any) error {
	if interval <= 0 {
		interval = runtimecfg.StatusHeartbeatDefaultInterval
	}
	return s.Every(HeartbeatJobName, interval, func(context.Context) {
		logger.Info("status heartbeat", fields()...)
	})
}
