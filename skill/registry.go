package skill

import (
	"stage-battle-server/catalog"
	"stage-battle-server/game"
)

// Skill defines the interface that all card skills must implement.
type Skill interface {
	ID() catalog.SkillID
	Name() string
	Description() string
	Apply(ctx *game.SkillContext) game.SkillOutcome
}

// Registry holds all registered skills indexed by their ID.
type Registry struct {
	skills map[catalog.SkillID]Skill
	order  []catalog.SkillID // registration order for deterministic All()
}

// NewRegistry creates a new empty skill registry.
func NewRegistry() *Registry {
	return &Registry{
		skills: make(map[catalog.SkillID]Skill),
	}
}

// Register adds a skill to the registry.
func (r *Registry) Register(s Skill) {
	id := s.ID()
	if _, exists := r.skills[id]; !exists {
		r.order = append(r.order, id)
	}
	r.skills[id] = s
}

// Skill returns the skill definition for the game package.
// It satisfies the game.SkillProvider interface.
func (r *Registry) Skill(id catalog.SkillID) (game.SkillDef, bool) {
	s, ok := r.skills[id]
	if !ok {
		return game.SkillDef{}, false
	}
	return toDef(s), true
}

// All returns every registered skill in registration order.
func (r *Registry) All() []game.SkillDef {
	defs := make([]game.SkillDef, 0, len(r.order))
	for _, id := range r.order {
		defs = append(defs, toDef(r.skills[id]))
	}
	return defs
}

func toDef(s Skill) game.SkillDef {
	return game.SkillDef{
		ID:          s.ID(),
		Name:        s.Name(),
		Description: s.Description(),
		Apply:       s.Apply,
	}
}

// RegisterAll registers every built-in skill. Adding a skill to the catalog
// means adding it here; the registry test checks nothing is missing.
func RegisterAll(r *Registry) {
	r.Register(SaltSkill{})
	r.Register(LeekShieldSkill{})
	r.Register(NeverGiveUpSkill{})
	r.Register(GoldenMicrophoneSkill())
	r.Register(FeetOfFireSkill())
	r.Register(MakeupShopVisitSkill())
	r.Register(MicPowerCutSkill())
	r.Register(FreezeSpellSkill())
	r.Register(BananaSlipSkill())
	r.Register(FateControlSkill{})
	r.Register(HiddenSkill{})
	r.Register(GachaGodSkill{})
	r.Register(DivineCardSkill{})
}
