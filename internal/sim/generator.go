// Package sim generates synthetic orders for demos and manual testing.
package sim

import (
	cryptorand "crypto/rand"
	"fmt"
	"math/rand"
	"time"

	"github.com/lfmorais/expede/internal/domain"
	"github.com/lfmorais/expede/internal/logger"
)

var nicknames = []string{
	"Ana", "Bruno", "Carla", "Diego", "Elisa", "Felipe", "Gabriela",
	"Heitor", "Isabel", "Joao", "Larissa", "Marcos", "Natalia",
	"Otavio", "Paula", "Rafael", "Sofia", "Thiago", "",
	"", "", "",
}

var menu = []domain.Item{
	{Name: "X-Burger", Quantity: 1, Price: 24.90},
	{Name: "X-Salada", Quantity: 1, Price: 27.50},
	{Name: "Batata Frita", Quantity: 1, Price: 14.00},
	{Name: "Pizza Margherita", Quantity: 1, Price: 49.90},
	{Name: "Pizza Calabresa", Quantity: 1, Price: 52.00},
	{Name: "Refrigerante Lata", Quantity: 1, Price: 6.50},
	{Name: "Suco Natural", Quantity: 1, Price: 9.00},
	{Name: "Acai 500ml", Quantity: 1, Price: 19.90},
	{Name: "Esfiha de Carne", Quantity: 3, Price: 15.00},
	{Name: "Porcao de Pastel", Quantity: 1, Price: 22.00},
}

var platforms = []struct {
	code string
	name string
}{
	{"IF", "iFood"},
	{"RA", "Rappi"},
	{"UB", "Uber Eats"},
	{"AF", "Aiqfome"},
}

var modules = []domain.Module{
	domain.ModuleCounter,
	domain.ModuleCounter,
	domain.ModuleTable,
	domain.ModuleDelivery,
	domain.ModuleTicket,
}

// Generator produces randomized orders with sequential numbers.
type Generator struct {
	rng  *rand.Rand
	next int
	log  *logger.Logger
}

// NewGenerator creates a generator. Numbers start at 100 so synthetic
// orders look like real counter tickets.
func NewGenerator(log *logger.Logger) *Generator {
	return &Generator{
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
		next: 100,
		log:  log,
	}
}

// NewSeededGenerator creates a deterministic generator. Used in tests.
func NewSeededGenerator(log *logger.Logger, seed int64) *Generator {
	return &Generator{
		rng:  rand.New(rand.NewSource(seed)),
		next: 100,
		log:  log,
	}
}

// Generate produces n fresh production orders.
func (g *Generator) Generate(n int) []domain.Order {
	out := make([]domain.Order, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, g.one())
	}
	g.log.Debug("generated %d synthetic orders", n)
	return out
}

func (g *Generator) one() domain.Order {
	module := modules[g.rng.Intn(len(modules))]

	number := fmt.Sprintf("%d", g.next)
	g.next++

	// Delivery orders come in with an aggregator prefix most of the time.
	platform := ""
	if module == domain.ModuleDelivery && g.rng.Intn(4) != 0 {
		p := platforms[g.rng.Intn(len(platforms))]
		number = fmt.Sprintf("%s-%s", p.code, number)
		platform = p.name
	}

	items := g.pickItems()
	total := 0.0
	for _, it := range items {
		total += it.Price * float64(it.Quantity)
	}

	now := time.Now()
	return domain.Order{
		ID:             generateID(),
		Number:         number,
		Module:         module,
		Status:         domain.StatusProduction,
		Nickname:       nicknames[g.rng.Intn(len(nicknames))],
		Platform:       platform,
		Items:          items,
		Total:          total,
		TouchedAt:      now,
		AccountingDate: time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
	}
}

func (g *Generator) pickItems() []domain.Item {
	count := 1 + g.rng.Intn(3)
	items := make([]domain.Item, 0, count)
	for i := 0; i < count; i++ {
		it := menu[g.rng.Intn(len(menu))]
		it.Quantity += g.rng.Intn(2)
		items = append(items, it)
	}
	return items
}

// generateID creates a short random hex ID for orders.
func generateID() string {
	b := make([]byte, 8)
	if _, err := cryptorand.Read(b); err != nil {
		// Fallback -- should never happen.
		return fmt.Sprintf("ord-%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("%x", b)
}
