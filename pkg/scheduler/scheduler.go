// Package scheduler drives the periodic housekeeping of the guest subsystem:
// purging expired restore links, sweeping credentials of projects gone
// invalid, and flushing presence heartbeats into the session table.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/tablostudio/tablo-api/pkg/logger"
)

// MaintenanceScheduler registers named cron jobs once at startup. Jobs run in
// singleton mode, so a slow token sweep never overlaps with its next tick.
type MaintenanceScheduler interface {
	Start()
	Stop()
	AddJob(name, cronExpr string, task func()) error
	IsRunning() bool
}

type GocronScheduler struct {
	scheduler *gocron.Scheduler
	jobs      map[string]*gocron.Job
	mu        sync.Mutex
	running   bool
}

func NewMaintenanceScheduler() MaintenanceScheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	return &GocronScheduler{
		scheduler: s,
		jobs:      make(map[string]*gocron.Job),
	}
}

func (s *GocronScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		logger.SchedulerWarn("start", "Maintenance scheduler already running", nil)
		return
	}

	s.scheduler.StartAsync()
	s.running = true
	logger.Scheduler("started", "Maintenance scheduler started", map[string]interface{}{"jobs": len(s.jobs)})
}

func (s *GocronScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.scheduler.Stop()
	s.running = false
	logger.Scheduler("stopped", "Maintenance scheduler stopped", nil)
}

func (s *GocronScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// AddJob schedules a named housekeeping task. Names are unique; registering
// the same job twice is a wiring mistake and is rejected.
func (s *GocronScheduler) AddJob(name, cronExpr string, task func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("maintenance job %q already registered", name)
	}

	job, err := s.scheduler.Cron(cronExpr).Tag(name).Do(func() {
		started := time.Now()
		task()
		logger.Scheduler("job_finished", "Maintenance job finished", map[string]interface{}{
			"job":     name,
			"took_ms": time.Since(started).Milliseconds(),
		})
	})
	if err != nil {
		return fmt.Errorf("schedule maintenance job %q: %w", name, err)
	}

	s.jobs[name] = job
	logger.Scheduler("job_added", "Maintenance job registered", map[string]interface{}{
		"job":      name,
		"cron":     cronExpr,
		"next_run": job.NextRun().Format(time.RFC3339),
	})
	return nil
}
