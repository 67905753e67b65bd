// Package cron runs named periodic jobs such as websocket keepalive pings
// and the status heartbeat.
package cron

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"

	"github.com/iamsorenl/Autogen-Chat-Demo/logger"
)

// Task is the body of a periodic job. ctx is cancelled when the scheduler stops.
type Task func(ctx context.Context)

// Scheduler owns a gocron scheduler and the jobs registered on it by name.
type Scheduler struct {
	mu      sync.Mutex
	cron    gocron.Scheduler
	ctx     context.Context
	cancel  context.CancelFunc
	cancels map[string]func()
}

// NewScheduler creates a stopped scheduler. A nil clock selects the real clock.
func NewScheduler(clock clockwork.Clock) (*Scheduler, error) {
	opts := []gocron.SchedulerOption{gocron.WithLogger(gocronLogger{})}
	if clock != nil {
		opts = append(opts, gocron.WithClock(clock))
	}
	sch, err := gocron.NewScheduler(opts...)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    sch,
		ctx:     ctx,
		cancel:  cancel,
		cancels: make(map[string]func()),
	}, nil
}

// Every registers task to run every interval under name. Registering an
// existing name replaces the previous job. Runs of the same job never overlap.
func (s *Scheduler) Every(name string, interval time.Duration, task Task) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("job name is required")
	}
	if interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive", name)
	}
	if task == nil {
		return fmt.Errorf("job %s: task is required", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cancel, ok := s.cancels[name]; ok {
		cancel()
		delete(s.cancels, name)
	}

	registered, err := s.cron.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("scheduled job panicked", "job", name, "panic", r)
				}
			}()
			task(s.ctx)
		}),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("schedule job %s: %w", name, err)
	}
	s.cancels[name] = func() { _ = s.cron.RemoveJob(registered.ID()) }
	logger.Debug("job scheduled", "job", name, "interval", interval.String())
	return nil
}

// Remove unschedules the named job. It reports whether the job existed.
func (s *Scheduler) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	cancel, ok := s.cancels[name]
	if !ok {
		return false
	}
	cancel()
	delete(s.cancels, name)
	return true
}

// Jobs returns the registered job names, sorted.
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.cancels))
	for name := range s.cancels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running tasks and shuts the scheduler down.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	clear(s.cancels)
	s.mu.Unlock()

	s.cancel()
	if err := s.cron.Shutdown(); err != nil {
		logger.Warn("scheduler shutdown error", "err", err)
	}
}

// gocronLogger routes scheduler diagnostics into the process logger.
type gocronLogger struct{}

func (gocronLogger) Debug(msg string, args ...any) { logger.Debug("gocron: "+msg, args...) }
func (gocronLogger) Info(msg string, args ...any)  { logger.Info("gocron: "+msg, args...) }
func (gocronLogger) Warn(msg string, args ...any)  { logger.Warn("gocron: "+msg, args...) }
func (gocronLogger) Error(msg string, args ...any) { logger.Error("gocron: "+msg, args...) }
