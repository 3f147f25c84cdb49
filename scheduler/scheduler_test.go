package scheduler

import (
	"context"
	"testing"
	"time"

	"roilens/config"
)

type fakeRefresher struct {
	calls chan struct{}
}

func (f *fakeRefresher) Refresh(ctx context.Context) error {
	f.calls <- struct{}{}
	return nil
}

func TestIntervalTriggersRefresh(t *testing.T) {
	fake := &fakeRefresher{calls: make(chan struct{}, 4)}
	s := New(config.SchedulerConfig{Interval: 10 * time.Millisecond}, fake)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	select {
	case <-fake.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh never triggered")
	}
}

func TestBadCronExpression(t *testing.T) {
	fake := &fakeRefresher{calls: make(chan struct{}, 1)}
	s := New(config.SchedulerConfig{Cron: "not a cron"}, fake)

	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid cron expression")
	}
}
