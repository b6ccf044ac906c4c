package skill

import (
	"fmt"
	"strings"

	"stage-battle-server/catalog"
	"stage-battle-server/game"
)

// stat names one of the three scoring stats.
type stat int

const (
	statVocal stat = iota
	statDance
	statVisual
)

func (s stat) String() string {
	switch s {
	case statDance:
		return "dance"
	case statVisual:
		return "visual"
	default:
		return "vocal"
	}
}

func (s stat) delta(n int) catalog.Stats {
	switch s {
	case statDance:
		return catalog.Stats{Dance: n}
	case statVisual:
		return catalog.Stats{Visual: n}
	default:
		return catalog.Stats{Vocal: n}
	}
}

// BoostSkill raises one of the caster's stats for this turn's scoring.
type BoostSkill struct {
	id   catalog.SkillID
	name string
	stat stat
}

func GoldenMicrophoneSkill() BoostSkill {
	return BoostSkill{id: catalog.SkillGoldenMicrophone, name: "Golden Microphone", stat: statVocal}
}

func FeetOfFireSkill() BoostSkill {
	return BoostSkill{id: catalog.SkillFeetOfFire, name: "Feet of Fire", stat: statDance}
}

func MakeupShopVisitSkill() BoostSkill {
	return BoostSkill{id: catalog.SkillMakeupShopVisit, name: "Makeup Shop Visit", stat: statVisual}
}

func (b BoostSkill) ID() catalog.SkillID { return b.id }
func (b BoostSkill) Name() string        { return b.name }
func (b BoostSkill) Description() string {
	return fmt.Sprintf("Your card gains %s this turn.", b.stat)
}

func (b BoostSkill) Apply(ctx *game.SkillContext) game.SkillOutcome {
	n := ctx.Rules.StatSkillAmount
	ctx.Turn.AddStats(ctx.Caster.ID, b.stat.delta(n))
	return game.SkillOutcome{Effect: fmt.Sprintf("%s +%d %s", ctx.Caster.Name, n, b.stat)}
}

// DebuffSkill lowers one stat of every other card on the table.
type DebuffSkill struct {
	id   catalog.SkillID
	name string
	stat stat
}

func MicPowerCutSkill() DebuffSkill {
	return DebuffSkill{id: catalog.SkillMicPowerCut, name: "Mic Power Cut", stat: statVocal}
}

func FreezeSpellSkill() DebuffSkill {
	return DebuffSkill{id: catalog.SkillFreezeSpell, name: "Freeze Spell", stat: statDance}
}

func BananaSlipSkill() DebuffSkill {
	return DebuffSkill{id: catalog.SkillBananaSlip, name: "Banana Slip", stat: statVisual}
}

func (d DebuffSkill) ID() catalog.SkillID { return d.id }
func (d DebuffSkill) Name() string        { return d.name }
func (d DebuffSkill) Description() string {
	return fmt.Sprintf("Every other played card loses %s this turn.", d.stat)
}

func (d DebuffSkill) Apply(ctx *game.SkillContext) game.SkillOutcome {
	if len(ctx.Targets) == 0 {
		return game.SkillOutcome{Effect: "No opponent cards to affect", NoEffect: true}
	}
	n := ctx.Rules.StatSkillAmount
	names := make([]string, 0, len(ctx.Targets))
	for _, p := range ctx.Targets {
		ctx.Turn.AddStats(p.ID, d.stat.delta(-n))
		names = append(names, p.Name)
	}
	return game.SkillOutcome{Effect: fmt.Sprintf("%s -%d %s", strings.Join(names, ", "), n, d.stat)}
}
