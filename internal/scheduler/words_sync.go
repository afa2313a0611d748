// Package scheduler refreshes the word list on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// DefaultSchedule refreshes the word list every 15 minutes.
const DefaultSchedule = "*/15 * * * *"

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Syncer starts a word refresh and reports whether a request was sent.
type Syncer interface {
	SyncWords() bool
}

// SyncerFunc adapts a function to Syncer.
type SyncerFunc func() bool

// SyncWords calls f.
func (f SyncerFunc) SyncWords() bool { return f() }

// WordsSyncScheduler periodically triggers a word refresh.
type WordsSyncScheduler struct {
	syncer   Syncer
	schedule string

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.RWMutex
	isRunning bool
	isSyncing bool
	lastRun   time.Time
	lastSent  bool
}

// NewWordsSyncScheduler creates a scheduler. An empty schedule uses DefaultSchedule.
func NewWordsSyncScheduler(syncer Syncer, schedule string) *WordsSyncScheduler {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &WordsSyncScheduler{
		syncer:   syncer,
		schedule: schedule,
		cron:     cron.New(cron.WithParser(parser)),
	}
}

// Start schedules the refresh job. The scheduler stops when ctx is done.
func (s *WordsSyncScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.runSync)
	if err != nil {
		return fmt.Errorf("failed to schedule words sync: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	log.Printf("Words sync scheduler: started with schedule '%s' (%s)", s.schedule, Describe(s.schedule))

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the scheduler, waiting for a running job.
func (s *WordsSyncScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.cron.Remove(s.entryID)

	log.Printf("Words sync scheduler: stopped")
}

// RunNow triggers a refresh immediately, in the background.
func (s *WordsSyncScheduler) RunNow() {
	go s.runSync()
}

// IsRunning returns whether the scheduler is active.
func (s *WordsSyncScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// IsSyncing returns whether a refresh is being triggered right now.
func (s *WordsSyncScheduler) IsSyncing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isSyncing
}

// LastRun returns when the job last ran and whether it sent a request.
func (s *WordsSyncScheduler) LastRun() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRun, s.lastSent
}

// NextRunTime returns when the next refresh will occur, or nil when stopped.
func (s *WordsSyncScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *WordsSyncScheduler) runSync() {
	s.mu.Lock()
	if s.isSyncing {
		s.mu.Unlock()
		log.Printf("Words sync: skipped (already syncing)")
		return
	}
	s.isSyncing = true
	s.mu.Unlock()

	sent := s.syncer.SyncWords()
	if !sent {
		log.Debug("Words sync: nothing sent (no session or offline)")
	}

	s.mu.Lock()
	s.isSyncing = false
	s.lastRun = time.Now()
	s.lastSent = sent
	s.mu.Unlock()
}

// ValidateSchedule checks a five field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := parser.Parse(schedule)
	return err
}

// Describe returns a human readable form of common schedules.
func Describe(schedule string) string {
	switch schedule {
	case "*/5 * * * *":
		return "Every 5 minutes"
	case "*/15 * * * *":
		return "Every 15 minutes"
	case "*/30 * * * *":
		return "Every 30 minutes"
	case "0 * * * *":
		return "Every hour at :00"
	case "0 0 * * *":
		return "Daily at midnight"
	default:
		return "Custom schedule: " + schedule
	}
}
