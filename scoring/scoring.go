// Package scoring computes a played card's score for a competition and event.
// Everything here is pure; callers pass stat modifiers instead of mutating cards.
package scoring

import (
	"math"
	"math/rand"

	"stage-battle-server/catalog"
)

// Competition is the scoring lens for a turn.
type Competition int

const (
	CompetitionNone Competition = iota
	CompetitionVocal
	CompetitionDance
	CompetitionVisual
	// CompetitionSpecial scores the plain stat sum (special_battle).
	CompetitionSpecial
)

// String returns the protocol string for a Competition.
func (c Competition) String() string {
	switch c {
	case CompetitionVocal:
		return "vocal"
	case CompetitionDance:
		return "dance"
	case CompetitionVisual:
		return "visual"
	case CompetitionSpecial:
		return "special"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Competition) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Competition) UnmarshalText(b []byte) error {
	switch string(b) {
	case "vocal":
		*c = CompetitionVocal
	case "dance":
		*c = CompetitionDance
	case "visual":
		*c = CompetitionVisual
	case "special":
		*c = CompetitionSpecial
	default:
		*c = CompetitionNone
	}
	return nil
}

// Stat weights by rank.
const (
	PrimaryWeight   = 2.0
	SecondaryWeight = 1.5
	TertiaryWeight  = 1.0
)

// RollCompetition picks vocal, dance or visual uniformly.
func RollCompetition(rng *rand.Rand) Competition {
	return CompetitionVocal + Competition(rng.Intn(3))
}

// ForEvent returns the competition the event forces, if any.
func ForEvent(e catalog.Event) (Competition, bool) {
	if e.Effect == catalog.EffectSpecialBattle {
		return CompetitionSpecial, true
	}
	return CompetitionNone, false
}

// Round1 rounds to one decimal place.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// weighted returns stats ordered (primary, secondary, tertiary) for c.
func weighted(s catalog.Stats, c Competition) (float64, float64, float64) {
	switch c {
	case CompetitionDance:
		return float64(s.Dance), float64(s.Visual), float64(s.Vocal)
	case CompetitionVisual:
		return float64(s.Visual), float64(s.Vocal), float64(s.Dance)
	default:
		return float64(s.Vocal), float64(s.Dance), float64(s.Visual)
	}
}

// BaseScore is the weighted stat score for c, or the stat sum for the special competition.
func BaseScore(s catalog.Stats, c Competition) float64 {
	if c == CompetitionSpecial {
		return float64(s.Vocal + s.Dance + s.Visual)
	}
	p, sec, ter := weighted(s, c)
	return Round1(p*PrimaryWeight + sec*SecondaryWeight + ter*TertiaryWeight)
}

// TransformStats applies the event's stat transform.
func TransformStats(s catalog.Stats, e catalog.Event) catalog.Stats {
	switch e.Effect {
	case catalog.EffectStatMinus2:
		return catalog.Stats{
			Vocal:  max(s.Vocal-2, 1),
			Dance:  max(s.Dance-2, 1),
			Visual: max(s.Visual-2, 1),
		}
	case catalog.EffectMaxStatZero:
		top := max(s.Vocal, s.Dance, s.Visual)
		out := s
		if out.Vocal == top {
			out.Vocal = 0
		}
		if out.Dance == top {
			out.Dance = 0
		}
		if out.Visual == top {
			out.Visual = 0
		}
		return out
	}
	return s
}

// Bonus is the flat event bonus for the card; each matched buff target adds ScoreBonus.
func Bonus(card catalog.Card, e catalog.Event) float64 {
	if !e.Effect.IsBuff() {
		return 0
	}
	return float64(e.MatchingTargets(card)) * e.ScoreBonus
}

// Score computes the card's score: skill modifiers, then the event stat
// transform, then the base score, then flat bonuses. special_battle overrides c.
func Score(card catalog.Card, mod catalog.Stats, c Competition, e catalog.Event) float64 {
	stats := card.Stats().Add(mod)
	stats = TransformStats(stats, e)
	if forced, ok := ForEvent(e); ok {
		c = forced
	}
	return Round1(BaseScore(stats, c) + Bonus(card, e))
}
