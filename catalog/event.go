package catalog

import (
	"fmt"
	"slices"
)

// EffectKind is the closed set of event effects.
type EffectKind int

const (
	EffectNone EffectKind = iota
	EffectStatMinus2
	EffectMaxStatZero
	EffectSpecialBattle
	EffectTypeBuff
	EffectRarityBuff
	EffectGroupBuff
	EffectSapphireR
	EffectDraw3
	EffectHeal1
	EffectShrimpCurse
	EffectRevealCards

	effectCount
)

var effectNames = [...]string{
	EffectNone:          "none",
	EffectStatMinus2:    "stat_minus_2",
	EffectMaxStatZero:   "max_stat_zero",
	EffectSpecialBattle: "special_battle",
	EffectTypeBuff:      "type_buff",
	EffectRarityBuff:    "rarity_buff",
	EffectGroupBuff:     "group_buff",
	EffectSapphireR:     "sapphire_r",
	EffectDraw3:         "draw_3",
	EffectHeal1:         "heal_1",
	EffectShrimpCurse:   "shrimp_curse",
	EffectRevealCards:   "reveal_cards",
}

// String returns the protocol string for an EffectKind.
func (e EffectKind) String() string {
	if e < 0 || e >= effectCount {
		return "unknown"
	}
	return effectNames[e]
}

// MarshalText implements encoding.TextMarshaler.
func (e EffectKind) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (e *EffectKind) UnmarshalText(b []byte) error {
	for id, name := range effectNames {
		if name == string(b) {
			*e = EffectKind(id)
			return nil
		}
	}
	return fmt.Errorf("unknown event effect %q", string(b))
}

// IsBuff reports whether the effect adds a flat score bonus to matching cards.
func (e EffectKind) IsBuff() bool {
	switch e {
	case EffectTypeBuff, EffectRarityBuff, EffectGroupBuff, EffectSapphireR:
		return true
	}
	return false
}

// Event is an immutable per-turn global modifier.
// Type, Rarities, Group and Character are buff targets; only buff effects read them.
type Event struct {
	Name       string     `json:"name"`
	Effect     EffectKind `json:"effect"`
	Type       string     `json:"type,omitempty"`
	Rarities   []Rarity   `json:"rarity,omitempty"`
	Group      string     `json:"group,omitempty"`
	Character  string     `json:"character,omitempty"`
	ScoreBonus float64    `json:"scoreBonus,omitempty"`
}

// HasTarget reports whether the event names at least one buff target.
func (e Event) HasTarget() bool {
	return e.Type != "" || len(e.Rarities) > 0 || e.Group != "" || e.Character != ""
}

// MatchingTargets counts the buff targets the card satisfies.
func (e Event) MatchingTargets(c Card) int {
	n := 0
	if e.Type != "" && e.Type == c.Type {
		n++
	}
	if len(e.Rarities) > 0 && slices.Contains(e.Rarities, c.Rarity) {
		n++
	}
	if e.Group != "" && e.Group == c.Group {
		n++
	}
	if e.Character != "" && e.Character == c.Character {
		n++
	}
	return n
}
