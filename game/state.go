package game

import (
	"stage-battle-server/catalog"
	"stage-battle-server/scoring"
)

// PlayerSummary is the public view of a seat.
type PlayerSummary struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	IsBot        bool    `json:"isBot"`
	IsHost       bool    `json:"isHost"`
	Ready        bool    `json:"ready"`
	Disconnected bool    `json:"disconnected"`
	Heart        int     `json:"heart"`
	HandSize     int     `json:"handSize"`
	Cooldown     int     `json:"cooldown"`
	IsDead       bool    `json:"isDead"`
	HasDecided   bool    `json:"hasDecided"`
	TotalScore   float64 `json:"totalScore"`
}

// LobbyUpdateMsg lists the seats and ready flags.
type LobbyUpdateMsg struct {
	Type    string          `json:"type"`
	Code    string          `json:"code"`
	HostID  string          `json:"hostId"`
	Players []PlayerSummary `json:"players"`
}

// RoomStateMsg is the snapshot a (re)joining player receives.
type RoomStateMsg struct {
	Type        string              `json:"type"`
	Code        string              `json:"code"`
	YouID       string              `json:"youId"`
	HostID      string              `json:"hostId"`
	Phase       Phase               `json:"phase"`
	Turn        int                 `json:"turn"`
	Event       *catalog.Event      `json:"event,omitempty"`
	Competition scoring.Competition `json:"competition"`
	Hand        []catalog.Card      `json:"hand"`
	PlayedCard  *catalog.Card       `json:"playedCard,omitempty"`
	Players     []PlayerSummary     `json:"players"`
	// DeadlineUnixMs is when the current decision phase is forced; omitted when no ceiling runs.
	DeadlineUnixMs int64 `json:"deadlineUnixMs,omitempty"`
}

// GameStartedMsg announces a new match.
type GameStartedMsg struct {
	Type    string          `json:"type"`
	MatchID string          `json:"matchId"`
	Players []PlayerSummary `json:"players"`
}

// EventSlotMsg reveals the turn's event.
type EventSlotMsg struct {
	Type  string        `json:"type"`
	Turn  int           `json:"turn"`
	Event catalog.Event `json:"event"`
	// Rerolled is set when fate control replaced the event mid-turn.
	Rerolled bool `json:"rerolled,omitempty"`
}

// CompetitionSlotMsg reveals the turn's competition.
type CompetitionSlotMsg struct {
	Type        string              `json:"type"`
	Turn        int                 `json:"turn"`
	Competition scoring.Competition `json:"competition"`
	Forced      bool                `json:"forced"`
}

// CardDrawMsg tells a player which cards they received and why.
type CardDrawMsg struct {
	Type     string         `json:"type"`
	PlayerID string         `json:"playerId"`
	Reason   DrawReason     `json:"reason"`
	Cards    []catalog.Card `json:"cards,omitempty"`
	Count    int            `json:"count"`
}

// TurnStartMsg opens the play_card phase for one player.
type TurnStartMsg struct {
	Type           string              `json:"type"`
	Turn           int                 `json:"turn"`
	Event          catalog.Event       `json:"event"`
	Competition    scoring.Competition `json:"competition"`
	Hand           []catalog.Card      `json:"hand"`
	Heart          int                 `json:"heart"`
	Cooldown       int                 `json:"cooldown"`
	CanPlay        bool                `json:"canPlay"`
	Players        []PlayerSummary     `json:"players"`
	DeadlineUnixMs int64               `json:"deadlineUnixMs,omitempty"`
}

// PlayerDecidedMsg reports progress without revealing the choice.
type PlayerDecidedMsg struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
	Phase    Phase  `json:"phase"`
}

// PlayedSlot is one seat's entry in all_cards_played.
type PlayedSlot struct {
	PlayerID string `json:"playerId"`
	Played   bool   `json:"played"`
	// SkipPenalty is set when the player skipped while someone else was the sole contestant.
	SkipPenalty bool `json:"skipPenalty,omitempty"`
}

// AllCardsPlayedMsg closes the play_card phase. FaceUp announces that the
// reveal step will show the cards before scoring.
type AllCardsPlayedMsg struct {
	Type    string       `json:"type"`
	Turn    int          `json:"turn"`
	FaceUp  bool         `json:"faceUp"`
	Entries []PlayedSlot `json:"entries"`
}

// ActionPhaseStartMsg opens the action phase for one player.
type ActionPhaseStartMsg struct {
	Type           string        `json:"type"`
	Turn           int           `json:"turn"`
	MustAct        bool          `json:"mustAct"`
	PlayedCard     *catalog.Card `json:"playedCard,omitempty"`
	Cooldown       int           `json:"cooldown"`
	Heart          int           `json:"heart"`
	HandSize       int           `json:"handSize"`
	Contestants    int           `json:"contestants"`
	DeadlineUnixMs int64         `json:"deadlineUnixMs,omitempty"`
}

// SkillReport describes one Skill action after resolution.
type SkillReport struct {
	PlayerID   string          `json:"playerId"`
	Skill      catalog.SkillID `json:"skill"`
	Name       string          `json:"name,omitempty"`
	Effect     string          `json:"effect"`
	Blocked    bool            `json:"blocked,omitempty"`
	NoEffect   bool            `json:"noEffect,omitempty"`
	OnCooldown bool            `json:"onCooldown,omitempty"`
}

// RevealedCard is a face-up card in reveal_cards. Flee cards are never listed.
type RevealedCard struct {
	PlayerID string       `json:"playerId"`
	Card     catalog.Card `json:"card"`
	Action   Action       `json:"action"`
}

// RevealCardsMsg shows played cards and skill effects before scoring.
type RevealCardsMsg struct {
	Type   string         `json:"type"`
	Turn   int            `json:"turn"`
	FaceUp bool           `json:"faceUp"`
	Cards  []RevealedCard `json:"cards"`
	Skills []SkillReport  `json:"skills"`
}

// ScoreLine is one contestant's result.
type ScoreLine struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	// Card is left out for Flee, whose card went back to the hand unseen.
	Card      *catalog.Card `json:"card,omitempty"`
	Action    Action        `json:"action"`
	Score     float64       `json:"score"`
	HeartLost int           `json:"heartLost"`
	Heart     int           `json:"heart"`
	Shielded  bool          `json:"shielded,omitempty"`
}

// TurnResultMsg is the full outcome of a turn.
type TurnResultMsg struct {
	Type        string              `json:"type"`
	Turn        int                 `json:"turn"`
	Event       catalog.Event       `json:"event"`
	Competition scoring.Competition `json:"competition"`
	Scores      []ScoreLine         `json:"scores"`
	MaxScore    float64             `json:"maxScore"`
	Tie         bool                `json:"tie"`
	// TurnWinnerID is the top scorer of this turn; empty on a tie or when nobody competed.
	TurnWinnerID  string          `json:"turnWinnerId,omitempty"`
	GameOver      bool            `json:"gameOver"`
	Draw          bool            `json:"draw"`
	WinnerID      string          `json:"winnerId,omitempty"`
	DrawPlayerIDs []string        `json:"drawPlayerIds,omitempty"`
	Players       []PlayerSummary `json:"players"`
}

// GameOverMsg ends the match; the room is back in the lobby after it.
type GameOverMsg struct {
	Type          string          `json:"type"`
	Turn          int             `json:"turn"`
	Draw          bool            `json:"draw"`
	WinnerID      string          `json:"winnerId,omitempty"`
	WinnerName    string          `json:"winnerName,omitempty"`
	DrawPlayerIDs []string        `json:"drawPlayerIds,omitempty"`
	Reason        string          `json:"reason"`
	Players       []PlayerSummary `json:"players"`
}

// PlayerLeftMsg announces a departure.
type PlayerLeftMsg struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Reason   string `json:"reason"`
}

// KickedMsg is sent to a player removed by the host.
type KickedMsg struct {
	Type string `json:"type"`
	Code string `json:"code"`
}

// ErrorMsg rejects the sender's last command.
type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (r *Room) summaries() []PlayerSummary {
	out := make([]PlayerSummary, 0, len(r.Players))
	for _, p := range r.Players {
		out = append(out, r.summary(p))
	}
	return out
}

func (r *Room) summary(p *Player) PlayerSummary {
	return PlayerSummary{
		ID:           p.ID,
		Name:         p.Name,
		IsBot:        p.IsBot,
		IsHost:       p.ID == r.HostID,
		Ready:        p.Ready,
		Disconnected: p.Disconnected,
		Heart:        p.Heart,
		HandSize:     len(p.Hand),
		Cooldown:     p.Cooldown,
		IsDead:       p.IsDead,
		HasDecided:   p.HasDecided,
		TotalScore:   p.TotalScore,
	}
}

// BuildStateForPlayer returns the snapshot for the given player.
func (r *Room) BuildStateForPlayer(p *Player) RoomStateMsg {
	hand := p.Hand
	if hand == nil {
		hand = []catalog.Card{}
	}
	msg := RoomStateMsg{
		Type:        "room_state",
		Code:        r.Code,
		YouID:       p.ID,
		HostID:      r.HostID,
		Phase:       r.Phase,
		Turn:        r.Turn,
		Competition: r.Competition,
		Hand:        hand,
		PlayedCard:  p.PlayedCard,
		Players:     r.summaries(),
	}
	if r.Phase != PhaseLobby {
		ev := r.Event
		msg.Event = &ev
	}
	if r.deadline.decision() && !r.deadline.endsAt.IsZero() {
		msg.DeadlineUnixMs = r.deadline.endsAt.UnixMilli()
	}
	return msg
}
