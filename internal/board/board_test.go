package board

import (
	"errors"
	"testing"
	"time"

	"github.com/lfmorais/expede/internal/domain"
	"github.com/lfmorais/expede/internal/logger"
)

func setupBoard(t *testing.T, opts ...Option) *Board {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	return New(log, opts...)
}

func productionOrder(id, number string) domain.Order {
	return domain.Order{
		ID:        id,
		Number:    number,
		Module:    domain.ModuleCounter,
		Status:    domain.StatusProduction,
		TouchedAt: time.Now(),
	}
}

func TestAdvanceSetsLastReady(t *testing.T) {
	b := setupBoard(t)
	b.Inject(productionOrder("a", "101"), productionOrder("b", "102"))

	b.Advance("a")

	last, ok := b.LastReady()
	if !ok {
		t.Fatal("expected a last-ready order")
	}
	if last.Number != "101" {
		t.Fatalf("expected last-ready 101, got %s", last.Number)
	}
	if last.Status != domain.StatusReady {
		t.Fatalf("expected ready status, got %s", last.Status)
	}
	if len(b.Production()) != 1 {
		t.Fatalf("expected 1 production order left, got %d", len(b.Production()))
	}
}

func TestAdvanceDisplacesPreviousLastReady(t *testing.T) {
	b := setupBoard(t)
	b.Inject(productionOrder("a", "101"), productionOrder("b", "102"))

	b.Advance("a")
	first, _ := b.LastReady()
	b.Advance("b")

	last, ok := b.LastReady()
	if !ok || last.Number != "102" {
		t.Fatalf("expected last-ready 102, got %v", last.Number)
	}

	// 101 stays ready, keeps its original ready timestamp.
	ready := b.Ready()
	if len(ready) != 2 {
		t.Fatalf("expected 2 ready orders, got %d", len(ready))
	}
	for _, o := range ready {
		if o.Number == "101" && !o.ReadyAt.Equal(first.ReadyAt) {
			t.Fatal("displaced order must keep its original ready timestamp")
		}
	}
}

func TestAdvanceMissIsNoOp(t *testing.T) {
	b := setupBoard(t)
	b.Inject(productionOrder("a", "101"))
	b.Advance("a")

	// Unknown id, and an id already in ready: both no-ops.
	b.Advance("nope")
	b.Advance("a")

	if _, ok := b.LastReady(); !ok {
		t.Fatal("last-ready lost after no-op advances")
	}
	if b.Len() != 1 {
		t.Fatalf("expected 1 live order, got %d", b.Len())
	}
}

func TestExpediteMatching(t *testing.T) {
	tests := []struct {
		name    string
		number  string
		input   string
		wantErr bool
	}{
		{"exact match", "101", "101", false},
		{"digits-only match", "IF-123", "123", false},
		{"formatted input", "450", "#450", false},
		{"no match", "101", "999", true},
		{"non-numeric input", "101", "abc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := setupBoard(t)
			b.Inject(productionOrder("x", tt.number))
			b.Advance("x")

			rec, err := b.Expedite(tt.input)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrNotFound) {
					t.Fatalf("expected ErrNotFound, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Number != tt.number {
				t.Fatalf("log entry number = %s, want %s", rec.Number, tt.number)
			}
			if b.Len() != 0 {
				t.Fatal("expedited order still in the live collection")
			}
			if len(b.Records()) != 1 {
				t.Fatalf("expected 1 log entry, got %d", len(b.Records()))
			}
		})
	}
}

func TestExpediteOnlyMatchesReady(t *testing.T) {
	b := setupBoard(t)
	b.Inject(productionOrder("a", "101"))

	if _, err := b.Expedite("101"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("production order must not be expeditable, got %v", err)
	}
}

func TestExpeditePointerRecompute(t *testing.T) {
	// 101 ready, then 102 ready, expedite 101, then 102.
	b := setupBoard(t)
	b.Inject(productionOrder("a", "101"), productionOrder("b", "102"))

	b.Advance("a")
	b.Advance("b")

	if _, err := b.Expedite("101"); err != nil {
		t.Fatalf("expedite 101: %v", err)
	}
	last, ok := b.LastReady()
	if !ok || last.Number != "102" {
		t.Fatalf("pointer after expediting non-last = %v, want 102", last.Number)
	}

	if _, err := b.Expedite("102"); err != nil {
		t.Fatalf("expedite 102: %v", err)
	}
	if _, ok := b.LastReady(); ok {
		t.Fatal("pointer must clear when no ready orders remain")
	}
}

func TestExpediteLastPromotesNextMostRecent(t *testing.T) {
	b := setupBoard(t)
	b.Inject(productionOrder("a", "1"), productionOrder("b", "2"), productionOrder("c", "3"))

	b.Advance("a")
	b.Advance("b")
	b.Advance("c")

	if _, err := b.Expedite("3"); err != nil {
		t.Fatalf("expedite: %v", err)
	}
	last, ok := b.LastReady()
	if !ok || last.Number != "2" {
		t.Fatalf("expected promotion of 2, got %v", last.Number)
	}
}

func TestRecall(t *testing.T) {
	b := setupBoard(t)
	b.Inject(productionOrder("a", "101"))
	b.Advance("a")

	if err := b.Recall("101"); err != nil {
		t.Fatalf("recall: %v", err)
	}
	if _, ok := b.LastReady(); ok {
		t.Fatal("pointer must clear when the recalled order was last-ready")
	}
	prod := b.Production()
	if len(prod) != 1 || prod[0].Number != "101" {
		t.Fatalf("expected 101 back in production, got %v", prod)
	}

	// Recalling again is idempotent — no duplicate, no error.
	if err := b.Recall("101"); err != nil {
		t.Fatalf("second recall: %v", err)
	}
	if b.Len() != 1 {
		t.Fatalf("expected 1 live order after double recall, got %d", b.Len())
	}

	if err := b.Recall("404"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown number, got %v", err)
	}
}

func TestRecallPromotesNextReady(t *testing.T) {
	b := setupBoard(t)
	b.Inject(productionOrder("a", "101"), productionOrder("b", "102"))
	b.Advance("a")
	b.Advance("b")

	if err := b.Recall("102"); err != nil {
		t.Fatalf("recall: %v", err)
	}
	last, ok := b.LastReady()
	if !ok || last.Number != "101" {
		t.Fatalf("expected promotion of 101, got %v", last.Number)
	}
}

func TestExpeditionLogCap(t *testing.T) {
	b := setupBoard(t, WithLogCap(3))

	for i := 0; i < 5; i++ {
		id := string(rune('a' + i))
		num := string(rune('1' + i))
		b.Inject(productionOrder(id, num))
		b.Advance(id)
		if _, err := b.Expedite(num); err != nil {
			t.Fatalf("expedite %s: %v", num, err)
		}
	}

	recs := b.Records()
	if len(recs) != 3 {
		t.Fatalf("expected capped log of 3, got %d", len(recs))
	}
	// Most recent first: 5, 4, 3.
	if recs[0].Number != "5" || recs[2].Number != "3" {
		t.Fatalf("log order wrong: %v", recs)
	}
}

func TestAutoExpeditionTagged(t *testing.T) {
	b := setupBoard(t)
	b.Inject(productionOrder("a", "101"))
	b.Advance("a")

	rec, err := b.ExpediteAuto("101")
	if err != nil {
		t.Fatalf("auto expedite: %v", err)
	}
	if !rec.Auto {
		t.Fatal("expected auto flag on sweep-expedited record")
	}

	// Sweeping an order that is already gone is a no-op error, not a panic.
	if _, err := b.ExpediteAuto("101"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double sweep, got %v", err)
	}
}

func TestOnReadyHook(t *testing.T) {
	var got []string
	b := setupBoard(t, WithOnReady(func(o domain.Order) {
		got = append(got, o.Number)
	}))
	b.Inject(productionOrder("a", "101"))
	b.Advance("a")

	if len(got) != 1 || got[0] != "101" {
		t.Fatalf("hook fired with %v, want [101]", got)
	}
}

func TestClearAll(t *testing.T) {
	b := setupBoard(t)
	b.Inject(productionOrder("a", "101"), productionOrder("b", "102"))
	b.Advance("a")

	b.ClearAll()

	if b.Len() != 0 {
		t.Fatalf("expected empty board, got %d orders", b.Len())
	}
	if _, ok := b.LastReady(); ok {
		t.Fatal("pointer must clear on ClearAll")
	}
}

func TestInjectSkipsDuplicateIDs(t *testing.T) {
	b := setupBoard(t)
	o := productionOrder("a", "101")
	b.Inject(o)
	b.Inject(o)

	if b.Len() != 1 {
		t.Fatalf("expected 1 order after duplicate inject, got %d", b.Len())
	}
}
