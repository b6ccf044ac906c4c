package skill

import (
	"strings"
	"testing"

	"stage-battle-server/catalog"
	"stage-battle-server/config"
	"stage-battle-server/game"
)

func newContext(caster *game.Player, targets ...*game.Player) *game.SkillContext {
	rules := config.Defaults().Rules
	return &game.SkillContext{
		Caster:  caster,
		Targets: targets,
		Turn:    game.NewTurnState(),
		Rules:   &rules,
		Event:   catalog.Event{Name: "Open Rehearsal", Effect: catalog.EffectRevealCards},
	}
}

func TestRegistryRegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(LeekShieldSkill{})

	def, ok := r.Skill(catalog.SkillLeekShield)
	if !ok {
		t.Fatal("expected to find leek_shield in registry")
	}
	if def.Name != "Leek Shield" {
		t.Errorf("expected Name='Leek Shield', got %q", def.Name)
	}
	if def.Apply == nil {
		t.Error("expected Apply to be set")
	}
	if _, ok := r.Skill(catalog.SkillSalt); ok {
		t.Error("unregistered skill should not be found")
	}
}

func TestRegisterAllCoversCatalog(t *testing.T) {
	r := NewRegistry()
	RegisterAll(r)
	for _, id := range catalog.AllSkills() {
		def, ok := r.Skill(id)
		if !ok {
			t.Errorf("skill %s is not registered", id)
			continue
		}
		if def.ID != id {
			t.Errorf("skill %s registered under id %s", id, def.ID)
		}
		if def.Description == "" {
			t.Errorf("skill %s has no description", id)
		}
	}
	if len(r.All()) != len(catalog.AllSkills()) {
		t.Errorf("registered %d skills, catalog has %d", len(r.All()), len(catalog.AllSkills()))
	}
	if _, ok := r.Skill(catalog.SkillNone); ok {
		t.Error("SkillNone must not resolve to a skill")
	}
}

func TestBoostSkills(t *testing.T) {
	tests := []struct {
		skill BoostSkill
		want  catalog.Stats
	}{
		{GoldenMicrophoneSkill(), catalog.Stats{Vocal: 5}},
		{FeetOfFireSkill(), catalog.Stats{Dance: 5}},
		{MakeupShopVisitSkill(), catalog.Stats{Visual: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.skill.Name(), func(t *testing.T) {
			caster := game.NewPlayer("p1", "Minori", nil)
			other := game.NewPlayer("p2", "Haruka", nil)
			ctx := newContext(caster, other)
			tt.skill.Apply(ctx)
			if got := ctx.Turn.StatMod(caster.ID); got != tt.want {
				t.Errorf("caster modifier = %+v, want %+v", got, tt.want)
			}
			if !ctx.Turn.StatMod(other.ID).IsZero() {
				t.Error("boost must not touch other players")
			}
		})
	}
}

func TestDebuffSkillsHitEveryTarget(t *testing.T) {
	caster := game.NewPlayer("p1", "Saki", nil)
	a := game.NewPlayer("p2", "Honami", nil)
	b := game.NewPlayer("p3", "Shiho", nil)
	ctx := newContext(caster, a, b)

	out := FreezeSpellSkill().Apply(ctx)
	for _, p := range []*game.Player{a, b} {
		if got := ctx.Turn.StatMod(p.ID); got != (catalog.Stats{Dance: -5}) {
			t.Errorf("%s modifier = %+v, want dance -5", p.Name, got)
		}
	}
	if !ctx.Turn.StatMod(caster.ID).IsZero() {
		t.Error("caster must not be debuffed")
	}
	if !strings.Contains(out.Effect, "Honami") || !strings.Contains(out.Effect, "Shiho") {
		t.Errorf("effect should name targets: %q", out.Effect)
	}

	lonely := newContext(caster)
	if out := BananaSlipSkill().Apply(lonely); !out.NoEffect {
		t.Error("debuff without targets should report no effect")
	}
}

func TestNeverGiveUpCapsAtMax(t *testing.T) {
	p := game.NewPlayer("p1", "Emu", nil)
	p.Heart = 5
	ctx := newContext(p)
	NeverGiveUpSkill{}.Apply(ctx)
	if p.Heart != 6 {
		t.Errorf("heart = %d, want 6", p.Heart)
	}
	if out := (NeverGiveUpSkill{}).Apply(ctx); !out.NoEffect {
		t.Error("healing at full heart should report no effect")
	}

	p.Heart = 2
	NeverGiveUpSkill{}.Apply(ctx)
	if p.Heart != 4 {
		t.Errorf("heart = %d, want 4", p.Heart)
	}
}

func TestTurnStateSkills(t *testing.T) {
	p := game.NewPlayer("p1", "Mafuyu", nil)
	ctx := newContext(p)

	LeekShieldSkill{}.Apply(ctx)
	if !ctx.Turn.IsProtected(p.ID) {
		t.Error("leek shield should protect the caster")
	}

	HiddenSkill{}.Apply(ctx)
	if _, blocked := ctx.Turn.BlockedBy(p.ID); blocked {
		t.Error("a blocker is not blocked by its own hidden skill")
	}
	if id, blocked := ctx.Turn.BlockedBy("someone-else"); !blocked || id != p.ID {
		t.Errorf("others should be blocked by %s, got %q %v", p.ID, id, blocked)
	}

	DivineCardSkill{}.Apply(ctx)
	if !ctx.Turn.HasRevival(p.ID) {
		t.Error("divine card should grant a revival")
	}

	GachaGodSkill{}.Apply(ctx)
	draws := ctx.Turn.Draws()
	if len(draws) != 1 || draws[0].Count != 2 || draws[0].Reason != game.DrawGachaGod {
		t.Errorf("gacha god draws = %+v", draws)
	}
}

func TestFateControl(t *testing.T) {
	p := game.NewPlayer("p1", "Kanade", nil)
	ctx := newContext(p)
	replacement := catalog.Event{Name: "Special Live", Effect: catalog.EffectSpecialBattle}
	ctx.RerollEvent = func() (catalog.Event, bool) { return replacement, true }

	out := FateControlSkill{}.Apply(ctx)
	if out.NoEffect || !strings.Contains(out.Effect, "Special Live") {
		t.Errorf("unexpected outcome %+v", out)
	}

	ctx.RerollEvent = func() (catalog.Event, bool) { return ctx.Event, false }
	if out := (FateControlSkill{}).Apply(ctx); !out.NoEffect {
		t.Error("an unchangeable event should report no effect")
	}
}

func TestSaltDoesNothing(t *testing.T) {
	p := game.NewPlayer("p1", "Ena", nil)
	ctx := newContext(p)
	if out := (SaltSkill{}).Apply(ctx); !out.NoEffect {
		t.Error("salt should have no effect")
	}
	if ctx.Turn.IsProtected(p.ID) || !ctx.Turn.StatMod(p.ID).IsZero() {
		t.Error("salt must not change turn state")
	}
}
