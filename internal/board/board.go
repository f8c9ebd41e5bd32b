// Package board implements the in-memory order lifecycle manager.
// It owns the single authoritative order collection: every status
// transition goes through one of its methods, no other package writes
// the collection directly.
package board

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lfmorais/expede/internal/domain"
	"github.com/lfmorais/expede/internal/logger"
)

// Option configures the board.
type Option func(*Board)

// WithLogCap sets the capacity of the recently-expedited log.
func WithLogCap(n int) Option {
	return func(b *Board) {
		if n > 0 {
			b.logCap = n
		}
	}
}

// WithOnReady registers a hook fired after an order transitions to
// ready. The hook receives a copy and runs outside the board lock, so
// it may call back into the board.
func WithOnReady(fn func(domain.Order)) Option {
	return func(b *Board) {
		b.onReady = fn
	}
}

// Board holds the live order collection. Safe for concurrent access.
type Board struct {
	mu      sync.RWMutex
	orders  map[string]*domain.Order // id -> order
	records []domain.ExpeditionRecord
	logCap  int
	onReady func(domain.Order)
	log     *logger.Logger
}

// New creates an empty board.
func New(log *logger.Logger, opts ...Option) *Board {
	b := &Board{
		orders: make(map[string]*domain.Order),
		logCap: 8,
		log:    log,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Advance moves a production order to ready and makes it the new
// last-ready order. The previously highlighted order keeps its status
// and its original ready timestamp; it simply stops being the latest.
// A miss (unknown id, or order not in production) is a silent no-op.
func (b *Board) Advance(id string) {
	b.mu.Lock()
	o, ok := b.orders[id]
	if !ok || o.Status != domain.StatusProduction {
		b.mu.Unlock()
		b.log.Debug("advance: no production order with id %s", id)
		return
	}

	now := time.Now()
	o.Status = domain.StatusReady
	o.ReadyAt = now
	o.TouchedAt = now
	snapshot := *o
	b.mu.Unlock()

	b.log.Info("order %s ready (%s)", snapshot.Number, snapshot.Module)

	if b.onReady != nil {
		b.onReady(snapshot)
	}
}

// Expedite finalizes a ready order matched by the given free-text
// number: exact match first, then digits-only normalization. The order
// is removed from the live collection and one entry is appended to the
// expedition log. Returns domain.ErrNotFound when nothing matches.
func (b *Board) Expedite(numberText string) (domain.ExpeditionRecord, error) {
	return b.expedite(numberText, false)
}

// ExpediteAuto is the sweep variant of Expedite: same transition and
// log path, tagged as auto-expedited.
func (b *Board) ExpediteAuto(numberText string) (domain.ExpeditionRecord, error) {
	return b.expedite(numberText, true)
}

func (b *Board) expedite(numberText string, auto bool) (domain.ExpeditionRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	o := b.matchReadyLocked(numberText)
	if o == nil {
		b.log.Debug("expedite: no ready order matches %q", numberText)
		return domain.ExpeditionRecord{}, domain.ErrNotFound
	}

	o.Status = domain.StatusDelivered
	delete(b.orders, o.ID)

	rec := domain.ExpeditionRecord{
		Number:   o.Number,
		Nickname: o.Nickname,
		At:       time.Now(),
		Auto:     auto,
	}
	b.records = append([]domain.ExpeditionRecord{rec}, b.records...)
	if len(b.records) > b.logCap {
		b.records = b.records[:b.logCap]
	}

	b.log.Info("order %s expedited (auto=%v)", o.Number, auto)
	return rec, nil
}

// Recall moves a ready order back to production. Recalling an order
// that is already in production is a no-op (never a duplicate).
// Returns domain.ErrNotFound when no live order matches the number.
func (b *Board) Recall(numberText string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if o := b.matchReadyLocked(numberText); o != nil {
		o.Status = domain.StatusProduction
		o.ReadyAt = time.Time{}
		o.TouchedAt = time.Now()
		b.log.Info("order %s recalled to production", o.Number)
		return nil
	}

	// Already back in production — idempotent.
	for _, o := range b.orders {
		if o.Status == domain.StatusProduction && numbersMatch(o.Number, numberText) {
			b.log.Debug("recall: order %s already in production", o.Number)
			return nil
		}
	}

	return domain.ErrNotFound
}

// matchReadyLocked resolves free-text input to a ready order: exact
// number match first, then digits-only normalization. Ties on the
// normalized form resolve to the most recently touched order.
func (b *Board) matchReadyLocked(numberText string) *domain.Order {
	for _, o := range b.orders {
		if o.Status == domain.StatusReady && o.Number == numberText {
			return o
		}
	}

	want := digitsOnly(numberText)
	if want == "" {
		return nil
	}
	var best *domain.Order
	for _, o := range b.orders {
		if o.Status != domain.StatusReady || digitsOnly(o.Number) != want {
			continue
		}
		if best == nil || o.TouchedAt.After(best.TouchedAt) {
			best = o
		}
	}
	return best
}

func numbersMatch(stored, input string) bool {
	if stored == input {
		return true
	}
	d := digitsOnly(input)
	return d != "" && digitsOnly(stored) == d
}

// digitsOnly strips every non-digit character.
func digitsOnly(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// LastReady returns the most recently readied order among the orders
// currently ready. The pointer is derived, never stored: a reduce over
// ready orders keeping the strictly-latest ready timestamp.
func (b *Board) LastReady() (domain.Order, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var latest *domain.Order
	for _, o := range b.orders {
		if o.Status != domain.StatusReady {
			continue
		}
		if latest == nil || o.ReadyAt.After(latest.ReadyAt) {
			latest = o
		}
	}
	if latest == nil {
		return domain.Order{}, false
	}
	return *latest, true
}

// Production returns production orders, most recently touched first.
func (b *Board) Production() []domain.Order {
	return b.byStatus(domain.StatusProduction)
}

// Ready returns ready orders, most recently touched first.
func (b *Board) Ready() []domain.Order {
	return b.byStatus(domain.StatusReady)
}

func (b *Board) byStatus(status domain.Status) []domain.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []domain.Order
	for _, o := range b.orders {
		if o.Status == status {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TouchedAt.After(out[j].TouchedAt)
	})
	return out
}

// Records returns the expedition log, most recent first.
func (b *Board) Records() []domain.ExpeditionRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]domain.ExpeditionRecord, len(b.records))
	copy(out, b.records)
	return out
}

// Inject adds orders to the collection. Orders with an id already
// present are skipped so a repeated feed never duplicates.
func (b *Board) Inject(orders ...domain.Order) {
	b.mu.Lock()
	defer b.mu.Unlock()

	added := 0
	for _, o := range orders {
		if _, ok := b.orders[o.ID]; ok {
			continue
		}
		c := o
		if c.TouchedAt.IsZero() {
			c.TouchedAt = time.Now()
		}
		b.orders[c.ID] = &c
		added++
	}
	b.log.Debug("injected %d orders (total=%d)", added, len(b.orders))
}

// ClearAll empties the collection unconditionally. The expedition log
// is kept; only live orders are dropped. Intended for demo/reset use.
func (b *Board) ClearAll() {
	b.mu.Lock()
	n := len(b.orders)
	b.orders = make(map[string]*domain.Order)
	b.mu.Unlock()
	b.log.Info("board cleared (%d orders dropped)", n)
}

// Len returns the number of live orders.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.orders)
}
