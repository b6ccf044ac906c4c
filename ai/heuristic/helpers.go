package heuristic

import (
	"stage-battle-server/catalog"
	"stage-battle-server/scoring"
)

// hostileEvent reports whether the event works against the given card.
func hostileEvent(e catalog.Event, c catalog.Card) bool {
	switch e.Effect {
	case catalog.EffectStatMinus2, catalog.EffectMaxStatZero:
		return true
	}
	if e.Effect.IsBuff() && e.HasTarget() {
		return e.MatchingTargets(c) == 0
	}
	return false
}

// changeable mirrors the events that have already done their work by the
// time a skill resolves.
func changeable(e catalog.Event) bool {
	switch e.Effect {
	case catalog.EffectHeal1, catalog.EffectShrimpCurse, catalog.EffectDraw3:
		return false
	}
	return true
}

// lensMatches reports whether a stat skill on the given competition stat pays off.
func lensMatches(want, c scoring.Competition) bool {
	return c == want || c == scoring.CompetitionSpecial
}

func lowHeart(s *Situation) bool {
	return s.Heart <= 2
}
