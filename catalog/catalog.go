// Package catalog holds the immutable card and event reference data.
package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
)

//go:embed data/cards.json
var cardsJSON []byte

//go:embed data/events.json
var eventsJSON []byte

// Catalog is the process-wide card and event reference data. It is never mutated after Load.
type Catalog struct {
	Cards  []Card
	Events []Event
	byID   map[int]Card
}

// Load parses the embedded card and event data.
func Load() (*Catalog, error) {
	return Parse(cardsJSON, eventsJSON)
}

// MustLoad is Load for program start-up; it panics on invalid embedded data.
func MustLoad() *Catalog {
	c, err := Load()
	if err != nil {
		panic(fmt.Sprintf("catalog: %v", err))
	}
	return c
}

// Parse builds a Catalog from raw JSON arrays and validates it.
func Parse(cardsData, eventsData []byte) (*Catalog, error) {
	var cards []Card
	if err := json.Unmarshal(cardsData, &cards); err != nil {
		return nil, fmt.Errorf("parsing cards: %w", err)
	}
	var events []Event
	if err := json.Unmarshal(eventsData, &events); err != nil {
		return nil, fmt.Errorf("parsing events: %w", err)
	}
	return New(cards, events)
}

// New validates cards and events and indexes them.
func New(cards []Card, events []Event) (*Catalog, error) {
	if len(cards) == 0 {
		return nil, errors.New("catalog has no cards")
	}
	if len(events) == 0 {
		return nil, errors.New("catalog has no events")
	}
	byID := make(map[int]Card, len(cards))
	for _, c := range cards {
		if _, dup := byID[c.ID]; dup {
			return nil, fmt.Errorf("duplicate card id %d", c.ID)
		}
		if c.Vocal < 0 || c.Dance < 0 || c.Visual < 0 {
			return nil, fmt.Errorf("card %d has a negative stat", c.ID)
		}
		byID[c.ID] = c
	}
	for _, e := range events {
		if e.Effect == EffectNone {
			return nil, fmt.Errorf("event %q has no effect", e.Name)
		}
		if e.Effect.IsBuff() && (!e.HasTarget() || e.ScoreBonus <= 0) {
			return nil, fmt.Errorf("buff event %q needs a target and a positive bonus", e.Name)
		}
	}
	return &Catalog{Cards: cards, Events: events, byID: byID}, nil
}

// Card returns the template for id.
func (c *Catalog) Card(id int) (Card, bool) {
	card, ok := c.byID[id]
	return card, ok
}
