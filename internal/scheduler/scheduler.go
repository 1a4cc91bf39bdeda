// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

const resyncTimeout = time.Minute

// Reloader re-fetches the board's project list.
type Reloader interface {
	Reload(ctx context.Context) error
}

type Scheduler struct {
	cron     *cron.Cron
	board    Reloader
	schedule string
}

func NewScheduler(board Reloader, schedule string) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		board:    board,
		schedule: schedule,
	}
}

// Start registers the jobs and starts the cron runner.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.resyncBoard); err != nil {
		return fmt.Errorf("invalid board resync schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	log.Printf("[Cron] Scheduler started (board resync %s)", s.schedule)
	return nil
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Println("[Cron] Scheduler stopped")
}

// resyncBoard covers change events the realtime feed dropped.
func (s *Scheduler) resyncBoard() {
	log.Println("[Cron] Running board resync...")

	ctx, cancel := context.WithTimeout(context.Background(), resyncTimeout)
	defer cancel()

	if err := s.board.Reload(ctx); err != nil {
		log.Printf("[Cron] Board resync failed: %v", err)
	}
}
