package domain

import (
	"fmt"
	"time"
)

// EventDateLayout is the wire format of event dates (dd/MM/yyyy).
const EventDateLayout = "02/01/2006"

// Operation is the kind of change requested on a market.
type Operation string

// Supported operations.
const (
	OperationAdd    Operation = "ADD"
	OperationUpdate Operation = "UPDATE"
	OperationDelete Operation = "DELETE"
)

// Valid reports whether o is a known operation.
func (o Operation) Valid() bool {
	switch o {
	case OperationAdd, OperationUpdate, OperationDelete:
		return true
	default:
		return false
	}
}

// Selection is one outcome that can be bet on within a market.
type Selection struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Odd  float64 `json:"odd"`
}

// EventInfo identifies the sporting event a market belongs to.
type EventInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Date string `json:"date"`
}

// ParsedDate returns the event date as a UTC time.
func (e EventInfo) ParsedDate() (time.Time, error) {
	t, err := time.Parse(EventDateLayout, e.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: event date %q must use dd/MM/yyyy", ErrValidation, e.Date)
	}
	return t, nil
}

// MarketChange is the payload clients submit to add, update or delete a market.
type MarketChange struct {
	MarketID   string      `json:"marketId"`
	MarketName string      `json:"marketName"`
	Event      EventInfo   `json:"event"`
	Selections []Selection `json:"selections"`
}

// Validate checks the change against the rules of the given operation.
// DELETE only needs the market and event identifiers; ADD and UPDATE need a
// complete market description.
func (c MarketChange) Validate(op Operation) error {
	if !op.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidOperation, op)
	}
	if c.MarketID == "" {
		return fmt.Errorf("%w: marketId is required", ErrValidation)
	}
	if c.Event.ID == "" {
		return fmt.Errorf("%w: event.id is required", ErrValidation)
	}
	if op == OperationDelete {
		return nil
	}

	if c.MarketName == "" {
		return fmt.Errorf("%w: marketName is required", ErrValidation)
	}
	if c.Event.Name == "" {
		return fmt.Errorf("%w: event.name is required", ErrValidation)
	}
	if _, err := c.Event.ParsedDate(); err != nil {
		return err
	}
	if len(c.Selections) == 0 {
		return fmt.Errorf("%w: at least one selection is required", ErrValidation)
	}

	seen := make(map[string]struct{}, len(c.Selections))
	for i, s := range c.Selections {
		if s.ID == "" || s.Name == "" {
			return fmt.Errorf("%w: selection %d needs an id and a name", ErrValidation, i)
		}
		if s.Odd <= 1 {
			return fmt.Errorf("%w: selection %s odd must be greater than 1", ErrValidation, s.ID)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("%w: duplicate selection id %s", ErrValidation, s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}

// Market returns the market described by the change.
func (c MarketChange) Market() Market {
	selections := make([]Selection, len(c.Selections))
	copy(selections, c.Selections)
	return Market{
		ID:         c.MarketID,
		Name:       c.MarketName,
		EventID:    c.Event.ID,
		Selections: selections,
	}
}

// Market is a betting market on an event.
type Market struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	EventID    string      `json:"-"`
	Selections []Selection `json:"selections"`
}

// Event is a sporting event together with its markets.
type Event struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Date    string   `json:"date"`
	Markets []Market `json:"markets"`
}
