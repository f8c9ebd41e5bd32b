// Package domain defines the core types and interfaces for the
// expedition panel. All other packages depend on domain; domain
// depends on nothing.
package domain

import "time"

// Order represents a single order moving across the panel.
type Order struct {
	ID       string // opaque unique id, distinct from Number
	Number   string // human-facing order number, may repeat over time
	Module   Module
	Status   Status
	Nickname string // customer nickname, may be empty
	Platform string // delivery platform name, empty when not platform-sourced
	Location string // delivery location, empty for counter/table orders
	Items    []Item
	Total    float64
	// TouchedAt is the last-touched/consumption time. Pointer
	// recomputation orders ready orders by this field.
	TouchedAt time.Time
	// ReadyAt is set when the order transitions to ready and is kept
	// through displacement.
	ReadyAt        time.Time
	AccountingDate time.Time
}

// Item is a single order line.
type Item struct {
	Name     string
	Quantity int
	Price    float64
}

// Module categorizes where an order came from.
type Module int

const (
	ModuleCounter Module = iota
	ModuleTable
	ModuleDelivery
	ModuleTicket
)

// String returns a human-readable module name.
func (m Module) String() string {
	switch m {
	case ModuleCounter:
		return "counter"
	case ModuleTable:
		return "table"
	case ModuleDelivery:
		return "delivery"
	case ModuleTicket:
		return "ticket"
	default:
		return "unknown"
	}
}

// Status tracks the lifecycle of an order on the panel.
type Status int

const (
	// StatusProduction — the order is being prepared.
	StatusProduction Status = iota
	// StatusReady — prepared, awaiting expedition.
	StatusReady
	// StatusDelivered — terminal; the order is purged from the live
	// collection on entering this state.
	StatusDelivered
)

// String returns a human-readable status.
func (s Status) String() string {
	switch s {
	case StatusProduction:
		return "production"
	case StatusReady:
		return "ready"
	case StatusDelivered:
		return "delivered"
	default:
		return "unknown"
	}
}

// ExpeditionRecord is one entry of the bounded recently-expedited log.
type ExpeditionRecord struct {
	Number   string
	Nickname string
	At       time.Time
	Auto     bool // true when the auto-expedition sweep fired it
}
