package config

import (
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Rules.StartingHand != 5 {
		t.Errorf("expected StartingHand=5, got %d", cfg.Rules.StartingHand)
	}
	if cfg.Rules.MaxHeart != 6 {
		t.Errorf("expected MaxHeart=6, got %d", cfg.Rules.MaxHeart)
	}
	if cfg.Rules.MinPlayers != 2 || cfg.Rules.MaxPlayers != 5 {
		t.Errorf("expected 2-5 players, got %d-%d", cfg.Rules.MinPlayers, cfg.Rules.MaxPlayers)
	}
	if cfg.Timing.CardPhaseSec != 30 || cfg.Timing.ActionPhaseSec != 30 {
		t.Errorf("expected 30s phase ceilings, got card=%d action=%d", cfg.Timing.CardPhaseSec, cfg.Timing.ActionPhaseSec)
	}
	if cfg.Rules.GachaPenalty != 5 {
		t.Errorf("expected GachaPenalty=5, got %d", cfg.Rules.GachaPenalty)
	}
	if cfg.Rules.CooldownPenaltyTurns != 3 {
		t.Errorf("expected CooldownPenaltyTurns=3, got %d", cfg.Rules.CooldownPenaltyTurns)
	}
	if cfg.WSPort != 8080 {
		t.Errorf("expected WSPort=8080, got %d", cfg.WSPort)
	}
	if len(cfg.BotProfiles) == 0 {
		t.Fatal("expected at least one bot profile")
	}
	p := cfg.BotProfiles[0]
	if p.CardDelayMinMS != 800 || p.CardDelayMaxMS != 2200 {
		t.Errorf("expected card delay 800-2200ms, got %d-%d", p.CardDelayMinMS, p.CardDelayMaxMS)
	}
	if p.SecondChoiceChance != 25 {
		t.Errorf("expected SecondChoiceChance=25, got %d", p.SecondChoiceChance)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("WS_PORT", "9090")
	t.Setenv("CARD_PHASE_SEC", "10")
	t.Setenv("MAX_PLAYERS", "4")
	t.Setenv("DATABASE_URL", "postgres://localhost/stage")
	t.Setenv("BOT_NAME", "Rin")

	cfg := Load()

	if cfg.WSPort != 9090 {
		t.Errorf("expected WSPort=9090 after env override, got %d", cfg.WSPort)
	}
	if cfg.Timing.CardPhaseSec != 10 {
		t.Errorf("expected CardPhaseSec=10 after env override, got %d", cfg.Timing.CardPhaseSec)
	}
	if cfg.Rules.MaxPlayers != 4 {
		t.Errorf("expected MaxPlayers=4 after env override, got %d", cfg.Rules.MaxPlayers)
	}
	if cfg.DatabaseURL != "postgres://localhost/stage" {
		t.Errorf("expected DatabaseURL from env, got %q", cfg.DatabaseURL)
	}
	if cfg.BotProfiles[0].Name != "Rin" {
		t.Errorf("expected first bot renamed to Rin, got %q", cfg.BotProfiles[0].Name)
	}
	// Non-overridden fields should remain default
	if cfg.Timing.ActionPhaseSec != 30 {
		t.Errorf("expected ActionPhaseSec=30 (default), got %d", cfg.Timing.ActionPhaseSec)
	}
}

func TestLoadWithInvalidEnv(t *testing.T) {
	t.Setenv("WS_PORT", "invalid")

	cfg := Load()

	if cfg.WSPort != 8080 {
		t.Errorf("expected WSPort=8080 (default) with invalid env, got %d", cfg.WSPort)
	}
}
