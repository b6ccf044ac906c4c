package skill

import (
	"fmt"

	"stage-battle-server/catalog"
	"stage-battle-server/game"
)

// GachaGodSkill grants extra cards, delivered after the turn result.
type GachaGodSkill struct{}

func (GachaGodSkill) ID() catalog.SkillID { return catalog.SkillGachaGod }
func (GachaGodSkill) Name() string        { return "Gacha God" }
func (GachaGodSkill) Description() string { return "Draw extra cards after this turn." }

func (GachaGodSkill) Apply(ctx *game.SkillContext) game.SkillOutcome {
	n := ctx.Rules.GachaGodDraw
	ctx.Turn.QueueDraw(ctx.Caster.ID, n, game.DrawGachaGod)
	return game.SkillOutcome{Effect: fmt.Sprintf("%s will draw %d cards", ctx.Caster.Name, n)}
}
