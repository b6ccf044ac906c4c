package skill

import (
	"fmt"

	"stage-battle-server/catalog"
	"stage-battle-server/game"
)

// FateControlSkill swaps the current event for another one from the cycle.
type FateControlSkill struct{}

func (FateControlSkill) ID() catalog.SkillID { return catalog.SkillFateControl }
func (FateControlSkill) Name() string        { return "Fate Control" }
func (FateControlSkill) Description() string { return "Replace this turn's event." }

func (FateControlSkill) Apply(ctx *game.SkillContext) game.SkillOutcome {
	if ctx.RerollEvent == nil {
		return game.SkillOutcome{Effect: "The event cannot change", NoEffect: true}
	}
	prev := ctx.Event
	next, ok := ctx.RerollEvent()
	if !ok {
		return game.SkillOutcome{Effect: fmt.Sprintf("%s cannot be changed", prev.Name), NoEffect: true}
	}
	return game.SkillOutcome{Effect: fmt.Sprintf("%s became %s", prev.Name, next.Name)}
}

// HiddenSkill nullifies every other player's skill this turn. The room
// resolves it before any other skill.
type HiddenSkill struct{}

func (HiddenSkill) ID() catalog.SkillID { return catalog.SkillHiddenSkill }
func (HiddenSkill) Name() string        { return "Hidden Skill" }
func (HiddenSkill) Description() string { return "Other players' skills have no effect this turn." }

func (HiddenSkill) Apply(ctx *game.SkillContext) game.SkillOutcome {
	ctx.Turn.Block(ctx.Caster.ID)
	return game.SkillOutcome{Effect: fmt.Sprintf("%s sealed every other skill", ctx.Caster.Name)}
}
