package heuristic

import (
	"stage-battle-server/catalog"
	"stage-battle-server/scoring"
)

// Situation is what a bot can see when it weighs a card's skill. It is built
// from the turn_start and action_phase_start payloads only.
type Situation struct {
	Card        catalog.Card
	Competition scoring.Competition
	Event       catalog.Event
	Turn        int
	Heart       int
	MaxHeart    int
	HandSize    int
	// Opponents counts the other players still standing.
	Opponents int
	// Score is the card's projected score without skill modifiers.
	Score float64
}

// WeightFunc returns how much the skill adds to a card's desirability.
type WeightFunc func(s *Situation) float64

// FavourFunc reports whether using the skill now is worth the cooldown.
type FavourFunc func(s *Situation) bool

type entry struct {
	weight     WeightFunc
	favourable FavourFunc
}

var registry = make(map[catalog.SkillID]entry)

// Register adds or overwrites the heuristic for a skill. Either func may be nil.
func Register(id catalog.SkillID, weight WeightFunc, favourable FavourFunc) {
	registry[id] = entry{weight: weight, favourable: favourable}
}

// Weight returns the situational weight of the skill, or 0 if it is not registered.
func Weight(id catalog.SkillID, s *Situation) float64 {
	e, ok := registry[id]
	if !ok || e.weight == nil {
		return 0
	}
	return e.weight(s)
}

// Favourable reports whether the bot should spend the skill. Unregistered skills are never used.
func Favourable(id catalog.SkillID, s *Situation) bool {
	e, ok := registry[id]
	if !ok || e.favourable == nil {
		return false
	}
	return e.favourable(s)
}
