package scheduler

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/gurkhatech/bundlepress/internal/scratch"
	"github.com/gurkhatech/bundlepress/internal/tasks"
)

// Sweeper periodically removes orphaned scratch directories and enqueues
// import log cleanup. Scratch dirs are normally released by the import that
// created them; the sweeper only catches leftovers from crashed processes.
type Sweeper struct {
	scratch       *scratch.Store
	taskClient    *tasks.Client
	schedule      string
	scratchMaxAge time.Duration
	logRetention  time.Duration

	cron      *cron.Cron
	entryID   cron.EntryID
	mu        sync.Mutex
	isRunning bool
}

func NewSweeper(store *scratch.Store, taskClient *tasks.Client, schedule string, scratchMaxAge, logRetention time.Duration) *Sweeper {
	return &Sweeper{
		scratch:       store,
		taskClient:    taskClient,
		schedule:      schedule,
		scratchMaxAge: scratchMaxAge,
		logRetention:  logRetention,
		cron:          cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the periodic sweep.
func (s *Sweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.runSweep)
	if err != nil {
		return fmt.Errorf("failed to schedule sweep job: %w", err)
	}
	s.entryID = entryID

	s.cron.Start()
	s.isRunning = true

	log.Printf("Scratch sweeper: started with schedule '%s'", s.schedule)
	return nil
}

// Stop gracefully stops the sweeper, waiting for a running sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false

	log.Printf("Scratch sweeper: stopped")
}

// RunNow triggers an immediate sweep.
func (s *Sweeper) RunNow() {
	go s.runSweep()
}

func (s *Sweeper) runSweep() {
	removed, err := s.scratch.Sweep(s.scratchMaxAge)
	if err != nil {
		log.Printf("Scratch sweeper: sweep failed: %v", err)
	} else if removed > 0 {
		log.Printf("Scratch sweeper: removed %d orphaned scratch dirs", removed)
	}

	if s.taskClient != nil && s.logRetention > 0 {
		if _, err := s.taskClient.Add(tasks.CleanupImportLogsTask{Retention: s.logRetention}).Save(); err != nil {
			log.Printf("Scratch sweeper: failed to enqueue import log cleanup: %v", err)
		}
	}
}
