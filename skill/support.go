package skill

import (
	"fmt"

	"stage-battle-server/catalog"
	"stage-battle-server/game"
)

// SaltSkill does nothing.
type SaltSkill struct{}

func (SaltSkill) ID() catalog.SkillID { return catalog.SkillSalt }
func (SaltSkill) Name() string        { return "Salt" }
func (SaltSkill) Description() string { return "A pinch of salt. Nothing happens." }

func (SaltSkill) Apply(ctx *game.SkillContext) game.SkillOutcome {
	return game.SkillOutcome{Effect: "Nothing happened", NoEffect: true}
}

// LeekShieldSkill keeps the caster's heart safe this turn. Score is unaffected.
type LeekShieldSkill struct{}

func (LeekShieldSkill) ID() catalog.SkillID { return catalog.SkillLeekShield }
func (LeekShieldSkill) Name() string        { return "Leek Shield" }
func (LeekShieldSkill) Description() string { return "You lose no heart this turn." }

func (LeekShieldSkill) Apply(ctx *game.SkillContext) game.SkillOutcome {
	ctx.Turn.Protect(ctx.Caster.ID)
	return game.SkillOutcome{Effect: fmt.Sprintf("%s is protected this turn", ctx.Caster.Name)}
}

// NeverGiveUpSkill heals the caster immediately, capped at full heart.
type NeverGiveUpSkill struct{}

func (NeverGiveUpSkill) ID() catalog.SkillID { return catalog.SkillNeverGiveUp }
func (NeverGiveUpSkill) Name() string        { return "Never Give Up" }
func (NeverGiveUpSkill) Description() string { return "Recover heart." }

func (NeverGiveUpSkill) Apply(ctx *game.SkillContext) game.SkillOutcome {
	before := ctx.Caster.Heart
	ctx.Caster.Heart = min(before+ctx.Rules.HealSkillAmount, ctx.Rules.MaxHeart)
	healed := ctx.Caster.Heart - before
	if healed == 0 {
		return game.SkillOutcome{Effect: fmt.Sprintf("%s is already at full heart", ctx.Caster.Name), NoEffect: true}
	}
	return game.SkillOutcome{Effect: fmt.Sprintf("%s recovered %d heart", ctx.Caster.Name, healed)}
}

// DivineCardSkill leaves a revival for the start of the next turn. It only
// takes if the caster is at zero heart by then.
type DivineCardSkill struct{}

func (DivineCardSkill) ID() catalog.SkillID { return catalog.SkillDivineCard }
func (DivineCardSkill) Name() string        { return "Divine Card" }
func (DivineCardSkill) Description() string {
	return "If you are out of heart at the start of next turn, come back with 1 heart and a fresh hand."
}

func (DivineCardSkill) Apply(ctx *game.SkillContext) game.SkillOutcome {
	ctx.Turn.GrantRevival(ctx.Caster.ID)
	return game.SkillOutcome{Effect: fmt.Sprintf("%s is blessed until next turn", ctx.Caster.Name)}
}
