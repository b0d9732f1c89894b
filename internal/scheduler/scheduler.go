// Package scheduler runs the periodic dispatch loop: scan the scheduled
// entries, send the ones whose fire time matches the current minute, and
// make sure a minute never fires twice even though the tick interval is
// shorter than a minute.
package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Alpharobocup/bot-all/internal/domain"
)

// Sender is the minimal outbound surface the scheduler needs.
// gateway.Gateway satisfies it.
type Sender interface {
	SendText(ctx context.Context, chat, text string) error
}

// Repo is the storage surface the scheduler needs.
type Repo interface {
	ListScheduled(ctx context.Context) ([]domain.ScheduledEntry, error)
}

// Scheduler periodically polls the store and dispatches due entries.
type Scheduler struct {
	repo     Repo
	log      *zap.Logger
	sender   Sender
	interval time.Duration
	now      func() time.Time

	// busy skips a tick that would overlap a still-running one, so a slow
	// batch cannot cause duplicate dispatch.
	busy atomic.Bool

	// fired holds entry ids already dispatched during firedMinute. The set
	// is reset on every minute rollover, so it stays bounded by the number
	// of entries due in a single minute.
	firedMinute string
	fired       map[int64]struct{}
}

// New creates a Scheduler polling at the given interval.
func New(repo Repo, log *zap.Logger, sender Sender, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Scheduler{
		repo:     repo,
		log:      log,
		sender:   sender,
		interval: interval,
		now:      time.Now,
		fired:    make(map[int64]struct{}),
	}
}

// Run starts the loop until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopping")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick performs one scheduling cycle: one clock read, one scan, dispatch.
func (s *Scheduler) tick(ctx context.Context) {
	if !s.busy.CompareAndSwap(false, true) {
		s.log.Warn("previous tick still running, skipping")
		return
	}
	defer s.busy.Store(false)

	// One clock read per tick; reading per entry could flap across a
	// minute rollover mid-scan.
	minute := s.now().Format("15:04")
	if minute != s.firedMinute {
		s.firedMinute = minute
		s.fired = make(map[int64]struct{})
	}

	entries, err := s.repo.ListScheduled(ctx)
	if err != nil {
		s.log.Error("list scheduled failed", zap.Error(err))
		return
	}

	for _, e := range entries {
		if !e.Active || e.FireTime.String() != minute {
			continue
		}
		if _, done := s.fired[e.ID]; done {
			continue
		}
		// Record before sending: one dispatch attempt per entry per minute,
		// successful or not.
		s.fired[e.ID] = struct{}{}

		if err := s.sender.SendText(ctx, e.Chat, e.Text); err != nil {
			// Partial-failure isolation: one bad chat must not block the rest.
			s.log.Error("scheduled send failed",
				zap.Int64("id", e.ID),
				zap.String("chat", e.Chat),
				zap.Error(err),
			)
			continue
		}
		s.log.Info("scheduled send",
			zap.Int64("id", e.ID),
			zap.String("chat", e.Chat),
			zap.String("at", minute),
		)
	}
}
