// Package sweeper implements the auto-expedition background loop:
// ready orders that sit on the board past a configured age are forced
// through the same expedition path as manual input, tagged as auto.
package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lfmorais/expede/internal/board"
	"github.com/lfmorais/expede/internal/domain"
	"github.com/lfmorais/expede/internal/logger"
)

// Option configures the sweeper.
type Option func(*Sweeper)

// WithTickInterval sets how often the sweeper scans the board.
func WithTickInterval(d time.Duration) Option {
	return func(s *Sweeper) {
		s.tickInterval = d
	}
}

// WithThreshold sets how old a ready order must be before it is swept.
func WithThreshold(d time.Duration) Option {
	return func(s *Sweeper) {
		s.threshold = d
	}
}

// Sweeper runs in the background and expires stale ready orders.
type Sweeper struct {
	board        *board.Board
	notifier     domain.Notifier
	log          *logger.Logger
	tickInterval time.Duration
	threshold    time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// New creates a sweeper with the given dependencies and options.
func New(b *board.Board, notifier domain.Notifier, log *logger.Logger, opts ...Option) *Sweeper {
	s := &Sweeper{
		board:        b,
		notifier:     notifier,
		log:          log,
		tickInterval: 30 * time.Second,
		threshold:    10 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins the background sweep loop. Non-blocking.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.log.Warn("sweeper already running")
		return
	}

	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	go s.loop(childCtx)
	s.log.Info("sweeper started (tick=%s, threshold=%s)", s.tickInterval, s.threshold)
}

// Stop shuts down the sweeper. The ticker goroutine is fully
// cancelled; a stopped sweeper never fires again.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	s.running = false
	s.log.Info("sweeper stopped")
}

func (s *Sweeper) loop(ctx context.Context) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep runs one cycle: expedite every ready order past the threshold.
func (s *Sweeper) sweep(ctx context.Context) {
	now := time.Now()

	for _, o := range s.board.Ready() {
		if now.Sub(o.TouchedAt) < s.threshold {
			continue
		}

		rec, err := s.board.ExpediteAuto(o.Number)
		if errors.Is(err, domain.ErrNotFound) {
			// Expedited manually between the snapshot and now — fine.
			s.log.Debug("sweep: order %s already gone", o.Number)
			continue
		}
		if err != nil {
			s.log.Error("sweep: expediting order %s: %v", o.Number, err)
			continue
		}

		s.log.Info("sweep: order %s auto-expedited after %s", rec.Number, now.Sub(o.TouchedAt).Round(time.Second))
		msg := fmt.Sprintf("Order %s auto-expedited.", rec.Number)
		if err := s.notifier.Notify(ctx, msg); err != nil {
			s.log.Error("sweep: notifying auto-expedition: %v", err)
		}
	}
}
