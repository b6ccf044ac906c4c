package heuristic

import (
	"testing"

	"stage-battle-server/catalog"
	"stage-battle-server/scoring"
)

func TestEverySkillRegistered(t *testing.T) {
	for _, id := range catalog.AllSkills() {
		if _, ok := registry[id]; !ok {
			t.Errorf("no heuristic registered for %s", id)
		}
	}
}

func TestUnregisteredSkill(t *testing.T) {
	s := &Situation{Heart: 1, MaxHeart: 6, Opponents: 3}
	if got := Weight(catalog.SkillNone, s); got != 0 {
		t.Errorf("Weight(none) = %v, want 0", got)
	}
	if Favourable(catalog.SkillNone, s) {
		t.Error("Favourable(none) should be false")
	}
	if Favourable(catalog.SkillSalt, s) {
		t.Error("salt is never worth a cooldown")
	}
}

func TestBoostFollowsCompetition(t *testing.T) {
	vocal := &Situation{Competition: scoring.CompetitionVocal}
	dance := &Situation{Competition: scoring.CompetitionDance}
	special := &Situation{Competition: scoring.CompetitionSpecial}

	if !Favourable(catalog.SkillGoldenMicrophone, vocal) {
		t.Error("golden microphone should be used in a vocal competition")
	}
	if Favourable(catalog.SkillGoldenMicrophone, dance) {
		t.Error("golden microphone should be held in a dance competition")
	}
	if !Favourable(catalog.SkillFeetOfFire, special) {
		t.Error("every boost helps in a special battle")
	}
	if Weight(catalog.SkillGoldenMicrophone, vocal) <= Weight(catalog.SkillGoldenMicrophone, dance) {
		t.Error("matching boost should outweigh an off-lens boost")
	}
}

func TestDebuffNeedsOpponents(t *testing.T) {
	s := &Situation{Competition: scoring.CompetitionVisual}
	if Favourable(catalog.SkillBananaSlip, s) {
		t.Error("debuff with no opponents should not be favourable")
	}
	if got := Weight(catalog.SkillBananaSlip, s); got != 0 {
		t.Errorf("debuff weight without opponents = %v, want 0", got)
	}
	s.Opponents = 2
	if !Favourable(catalog.SkillBananaSlip, s) {
		t.Error("banana slip should fire in a visual competition with opponents")
	}
	if got := Weight(catalog.SkillBananaSlip, s); got != 3 {
		t.Errorf("banana slip weight = %v, want 3", got)
	}
}

func TestHeartThresholds(t *testing.T) {
	tests := []struct {
		name  string
		skill catalog.SkillID
		heart int
		want  bool
	}{
		{"shield at low heart", catalog.SkillLeekShield, 2, true},
		{"shield at full heart", catalog.SkillLeekShield, 6, false},
		{"heal when two down", catalog.SkillNeverGiveUp, 4, true},
		{"heal when one down", catalog.SkillNeverGiveUp, 5, false},
		{"divine at last heart", catalog.SkillDivineCard, 1, true},
		{"divine with spare heart", catalog.SkillDivineCard, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Situation{Heart: tt.heart, MaxHeart: 6, Opponents: 1}
			if got := Favourable(tt.skill, s); got != tt.want {
				t.Errorf("Favourable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFateControlOnlyAgainstHostileEvents(t *testing.T) {
	card := catalog.Card{Group: "Leo/need", Rarity: catalog.RarityNormal}
	tests := []struct {
		name  string
		event catalog.Event
		want  bool
	}{
		{"stat minus", catalog.Event{Effect: catalog.EffectStatMinus2}, true},
		{"buff for another group", catalog.Event{Effect: catalog.EffectGroupBuff, Group: "MORE MORE JUMP!"}, true},
		{"buff for our group", catalog.Event{Effect: catalog.EffectGroupBuff, Group: "Leo/need"}, false},
		{"curse already applied", catalog.Event{Effect: catalog.EffectShrimpCurse}, false},
		{"plain", catalog.Event{Effect: catalog.EffectNone}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Situation{Card: card, Event: tt.event}
			if got := Favourable(catalog.SkillFateControl, s); got != tt.want {
				t.Errorf("Favourable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGachaGodPrefersSmallHands(t *testing.T) {
	if !Favourable(catalog.SkillGachaGod, &Situation{HandSize: 1}) {
		t.Error("gacha god should fire on a near-empty hand")
	}
	if Favourable(catalog.SkillGachaGod, &Situation{HandSize: 5}) {
		t.Error("gacha god should wait on a full hand")
	}
}
