package cron

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Pruner deletes anonymous view events older than a cutoff.
type Pruner interface {
	DeleteAnonymousBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper runs the nightly retention sweep over anonymous view events.
type Sweeper struct {
	pruner        Pruner
	retentionDays int
	c             *cron.Cron
}

func NewSweeper(pruner Pruner, retentionDays int) *Sweeper {
	return &Sweeper{
		pruner:        pruner,
		retentionDays: retentionDays,
		c:             cron.New(),
	}
}

// Start schedules the sweep. A zero retention disables it entirely.
func (s *Sweeper) Start() error {
	if s.retentionDays <= 0 {
		log.Printf("[info] operation=view_retention message=disabled")
		return nil
	}

	_, err := s.c.AddFunc("@daily", s.sweep)
	if err != nil {
		return err
	}
	s.c.Start()
	log.Printf("[info] operation=view_retention message=scheduled days=%d", s.retentionDays)
	return nil
}

func (s *Sweeper) Stop() {
	s.c.Stop()
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	n, err := s.pruner.DeleteAnonymousBefore(ctx, cutoff)
	if err != nil {
		log.Printf("[error] operation=view_retention error=%v", err)
		return
	}
	log.Printf("[info] operation=view_retention pruned=%d cutoff=%s", n, cutoff.Format(time.RFC3339))
}
