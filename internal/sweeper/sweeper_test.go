package sweeper

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/lfmorais/expede/internal/board"
	"github.com/lfmorais/expede/internal/domain"
	"github.com/lfmorais/expede/internal/logger"
)

// mockNotifier collects notifications for testing.
type mockNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (m *mockNotifier) Notify(_ context.Context, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockNotifier) NotifyUrgent(_ context.Context, msg string) error {
	return m.Notify(nil, msg)
}

func (m *mockNotifier) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

func readyBoard(t *testing.T, numbers ...string) *board.Board {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	b := board.New(log)
	for i, num := range numbers {
		id := string(rune('a' + i))
		b.Inject(domain.Order{ID: id, Number: num, Status: domain.StatusProduction, TouchedAt: time.Now()})
		b.Advance(id)
	}
	return b
}

func TestSweepExpiresStaleOrders(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	b := readyBoard(t, "101", "102")
	notifier := &mockNotifier{}

	// Zero threshold: everything ready is stale immediately.
	s := New(b, notifier, log, WithThreshold(0))
	s.sweep(context.Background())

	if got := len(b.Ready()); got != 0 {
		t.Fatalf("expected all ready orders swept, %d left", got)
	}
	if notifier.count() != 2 {
		t.Fatalf("expected 2 notifications, got %d", notifier.count())
	}

	recs := b.Records()
	if len(recs) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(recs))
	}
	for _, r := range recs {
		if !r.Auto {
			t.Fatalf("sweep-expedited record %s not tagged auto", r.Number)
		}
	}
}

func TestSweepSkipsFreshOrders(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	b := readyBoard(t, "101")
	notifier := &mockNotifier{}

	s := New(b, notifier, log, WithThreshold(time.Hour))
	s.sweep(context.Background())

	if got := len(b.Ready()); got != 1 {
		t.Fatalf("fresh order swept, %d ready left", got)
	}
	if notifier.count() != 0 {
		t.Fatalf("unexpected notifications: %d", notifier.count())
	}
}

func TestSweepIdempotentAgainstManualExpedition(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	b := readyBoard(t, "101")
	notifier := &mockNotifier{}
	s := New(b, notifier, log, WithThreshold(0))

	// Manual expedition lands between the snapshot and the sweep: the
	// second attempt must be a silent no-op, not an error.
	if _, err := b.Expedite("101"); err != nil {
		t.Fatalf("manual expedite: %v", err)
	}
	s.sweep(context.Background())

	if notifier.count() != 0 {
		t.Fatalf("sweep of an already-expedited order must not notify, got %d", notifier.count())
	}
	if len(b.Records()) != 1 {
		t.Fatalf("expected single log entry, got %d", len(b.Records()))
	}
}

func TestStopCancelsLoop(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	b := readyBoard(t, "101")
	notifier := &mockNotifier{}

	s := New(b, notifier, log,
		WithThreshold(0),
		WithTickInterval(20*time.Millisecond),
	)

	ctx := context.Background()
	s.Start(ctx)

	// Wait for at least one tick to fire.
	deadline := time.After(2 * time.Second)
	for notifier.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("sweeper never ticked")
		case <-time.After(5 * time.Millisecond):
		}
	}

	s.Stop()

	// Refill the board; a stopped sweeper must not touch it.
	b.Inject(domain.Order{ID: "z", Number: "999", Status: domain.StatusProduction, TouchedAt: time.Now()})
	b.Advance("z")

	time.Sleep(100 * time.Millisecond)
	if got := len(b.Ready()); got != 1 {
		t.Fatal("stopped sweeper still sweeping")
	}
}

func TestDoubleStartIsSafe(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	b := readyBoard(t)
	s := New(b, &mockNotifier{}, log, WithTickInterval(10*time.Millisecond))

	ctx := context.Background()
	s.Start(ctx)
	s.Start(ctx)
	s.Stop()
	s.Stop()
}
