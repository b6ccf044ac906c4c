package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"strconv"
)

// BotProfile holds the parameters for one bot personality (name and pacing).
type BotProfile struct {
	Name             string `json:"name"`
	CardDelayMinMS   int    `json:"card_delay_min_ms"`
	CardDelayMaxMS   int    `json:"card_delay_max_ms"`
	ActionDelayMinMS int    `json:"action_delay_min_ms"`
	ActionDelayMaxMS int    `json:"action_delay_max_ms"`
	// SecondChoiceChance is 0-100, the probability of playing the runner-up card when it is within SecondChoiceMargin.
	SecondChoiceChance int     `json:"second_choice_chance"`
	SecondChoiceMargin float64 `json:"second_choice_margin"`
}

// RulesConfig holds the match rules.
type RulesConfig struct {
	MinPlayers           int `json:"min_players"`
	MaxPlayers           int `json:"max_players"`
	StartingHand         int `json:"starting_hand"`
	MaxHeart             int `json:"max_heart"`
	GachaPenalty         int `json:"gacha_penalty"`
	GachaDraw            int `json:"gacha_draw"`
	GachaGodDraw         int `json:"gacha_god_draw"`
	MikudayoDraw         int `json:"mikudayo_draw"`
	DivineReviveDraw     int `json:"divine_revive_draw"`
	SkillCooldownTurns   int `json:"skill_cooldown_turns"`
	CooldownPenaltyTurns int `json:"cooldown_penalty_turns"`
	StatSkillAmount      int `json:"stat_skill_amount"`
	HealSkillAmount      int `json:"heal_skill_amount"`
}

// TimingConfig holds phase deadlines and presentation delays.
type TimingConfig struct {
	CardPhaseSec        int `json:"card_phase_sec"`
	ActionPhaseSec      int `json:"action_phase_sec"`
	SlotRevealMS        int `json:"slot_reveal_ms"`
	ResultDisplayMS     int `json:"result_display_ms"`
	ReconnectTimeoutSec int `json:"reconnect_timeout_sec"`
}

// Config holds all configurable server parameters.
type Config struct {
	WSPort            int     `json:"ws_port"`
	MaxNameLength     int     `json:"max_name_length"`
	RoomCodeLength    int     `json:"room_code_length"`
	MessagesPerSecond float64 `json:"messages_per_second"`
	MessageBurst      int     `json:"message_burst"`

	// DatabaseURL enables match history persistence when set.
	DatabaseURL string `json:"-"`
	// AuthBaseURL enables JWT identities when set (JWKS at <base>/.well-known/jwks.json).
	AuthBaseURL string `json:"-"`

	Rules  RulesConfig  `json:"rules"`
	Timing TimingConfig `json:"timing"`

	// BotProfiles lists available bots; add_bot seats the first profile not already in the room.
	BotProfiles []BotProfile `json:"bot_profiles"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		WSPort:            8080,
		MaxNameLength:     16,
		RoomCodeLength:    5,
		MessagesPerSecond: 10,
		MessageBurst:      20,
		Rules: RulesConfig{
			MinPlayers:           2,
			MaxPlayers:           5,
			StartingHand:         5,
			MaxHeart:             6,
			GachaPenalty:         5,
			GachaDraw:            1,
			GachaGodDraw:         2,
			MikudayoDraw:         3,
			DivineReviveDraw:     10,
			SkillCooldownTurns:   3,
			CooldownPenaltyTurns: 3,
			StatSkillAmount:      5,
			HealSkillAmount:      2,
		},
		Timing: TimingConfig{
			CardPhaseSec:        30,
			ActionPhaseSec:      30,
			SlotRevealMS:        1500,
			ResultDisplayMS:     4000,
			ReconnectTimeoutSec: 120,
		},
		BotProfiles: []BotProfile{
			{Name: "Mikudayo", CardDelayMinMS: 800, CardDelayMaxMS: 2200, ActionDelayMinMS: 900, ActionDelayMaxMS: 2000, SecondChoiceChance: 25, SecondChoiceMargin: 3},
			{Name: "Nenerobo", CardDelayMinMS: 800, CardDelayMaxMS: 1600, ActionDelayMinMS: 900, ActionDelayMaxMS: 1500, SecondChoiceChance: 15, SecondChoiceMargin: 2},
			{Name: "Tsukasa-bot", CardDelayMinMS: 1000, CardDelayMaxMS: 2200, ActionDelayMinMS: 1000, ActionDelayMaxMS: 2000, SecondChoiceChance: 35, SecondChoiceMargin: 4},
			{Name: "Shrimp", CardDelayMinMS: 900, CardDelayMaxMS: 2000, ActionDelayMinMS: 900, ActionDelayMaxMS: 1800, SecondChoiceChance: 25, SecondChoiceMargin: 3},
		},
	}
}

// Load reads configuration from an optional config.json file,
// then applies environment variable overrides. Fields not set
// in either source retain their default values.
func Load() *Config {
	cfg := Defaults()

	if f, err := os.Open("config.json"); err == nil {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			slog.Warn("failed to parse config.json", "tag", "config", "err", err)
		}
	}

	overrideInt(&cfg.WSPort, "WS_PORT")
	overrideInt(&cfg.MaxNameLength, "MAX_NAME_LENGTH")
	overrideInt(&cfg.RoomCodeLength, "ROOM_CODE_LENGTH")
	overrideFloat(&cfg.MessagesPerSecond, "MESSAGES_PER_SECOND")
	overrideInt(&cfg.MessageBurst, "MESSAGE_BURST")
	overrideString(&cfg.DatabaseURL, "DATABASE_URL")
	overrideString(&cfg.AuthBaseURL, "AUTH_BASE_URL")

	overrideInt(&cfg.Rules.MaxPlayers, "MAX_PLAYERS")
	overrideInt(&cfg.Rules.StartingHand, "STARTING_HAND")
	overrideInt(&cfg.Rules.MaxHeart, "MAX_HEART")
	overrideInt(&cfg.Rules.SkillCooldownTurns, "SKILL_COOLDOWN_TURNS")

	overrideInt(&cfg.Timing.CardPhaseSec, "CARD_PHASE_SEC")
	overrideInt(&cfg.Timing.ActionPhaseSec, "ACTION_PHASE_SEC")
	overrideInt(&cfg.Timing.SlotRevealMS, "SLOT_REVEAL_MS")
	overrideInt(&cfg.Timing.ResultDisplayMS, "RESULT_DISPLAY_MS")
	overrideInt(&cfg.Timing.ReconnectTimeoutSec, "RECONNECT_TIMEOUT_SEC")

	if len(cfg.BotProfiles) > 0 {
		overrideString(&cfg.BotProfiles[0].Name, "BOT_NAME")
		overrideInt(&cfg.BotProfiles[0].CardDelayMinMS, "BOT_CARD_DELAY_MIN_MS")
		overrideInt(&cfg.BotProfiles[0].CardDelayMaxMS, "BOT_CARD_DELAY_MAX_MS")
		overrideInt(&cfg.BotProfiles[0].ActionDelayMinMS, "BOT_ACTION_DELAY_MIN_MS")
		overrideInt(&cfg.BotProfiles[0].ActionDelayMaxMS, "BOT_ACTION_DELAY_MAX_MS")
	}

	return cfg
}

func overrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*field = n
		} else {
			slog.Warn("invalid integer in environment", "tag", "config", "key", envKey, "value", val)
		}
	}
}

func overrideFloat(field *float64, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			*field = f
		} else {
			slog.Warn("invalid number in environment", "tag", "config", "key", envKey, "value", val)
		}
	}
}

func overrideString(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}
