package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"roilens/config"
)

// Refresher reloads the listing data set; satisfied by store.Store.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler re-warms the listing cache on a cron expression or fixed
// interval so the first request after the spreadsheet changes does not
// pay the reload cost.
type Scheduler struct {
	cfg    config.SchedulerConfig
	store  Refresher
	cron   *cron.Cron
	ticker *time.Ticker
	stopCh chan struct{}
}

func New(cfg config.SchedulerConfig, store Refresher) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		store:  store,
		cron:   cron.New(),
		stopCh: make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if s.cfg.Cron != "" {
		log.Printf("Starting refresh scheduler with cron: %s", s.cfg.Cron)
		_, err := s.cron.AddFunc(s.cfg.Cron, func() { s.refresh(ctx) })
		if err != nil {
			return fmt.Errorf("invalid cron expression: %w", err)
		}
		s.cron.Start()
	} else if s.cfg.Interval > 0 {
		log.Printf("Starting refresh scheduler with interval: %s", s.cfg.Interval)
		s.ticker = time.NewTicker(s.cfg.Interval)
		go func() {
			for {
				select {
				case <-s.ticker.C:
					s.refresh(ctx)
				case <-s.stopCh:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
	} else {
		log.Println("No refresh schedule configured, data reloads lazily on cache expiry")
	}

	return nil
}

func (s *Scheduler) refresh(ctx context.Context) {
	if err := s.store.Refresh(ctx); err != nil {
		log.Printf("Scheduled refresh error: %v", err)
	}
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.stopCh)
}
