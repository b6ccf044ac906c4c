package game

import (
	"time"

	"github.com/google/uuid"
)

// MatchPlayer is one seat in a finished match.
type MatchPlayer struct {
	PlayerID   string
	UserID     string
	Name       string
	IsBot      bool
	Heart      int
	TotalScore float64
	Winner     bool
	Draw       bool
	Forfeited  bool
}

// MatchResult is handed to OnGameEnd when a match finishes.
type MatchResult struct {
	MatchID   string
	RoomCode  string
	StartedAt time.Time
	EndedAt   time.Time
	Turns     int
	Draw      bool
	WinnerID  string
	Reason    string
	Players   []MatchPlayer
}

func newID() string {
	return uuid.NewString()
}

func (r *Room) buildResult(winner *Player, draw []*Player, reason string) MatchResult {
	res := MatchResult{
		MatchID:   r.MatchID,
		RoomCode:  r.Code,
		StartedAt: r.StartedAt,
		EndedAt:   time.Now(),
		Turns:     r.Turn,
		Draw:      winner == nil,
		Reason:    reason,
	}
	if winner != nil {
		res.WinnerID = winner.ID
	}
	inDraw := make(map[string]bool, len(draw))
	for _, p := range draw {
		inDraw[p.ID] = true
	}
	for _, p := range r.Players {
		res.Players = append(res.Players, MatchPlayer{
			PlayerID:   p.ID,
			UserID:     p.UserID,
			Name:       p.Name,
			IsBot:      p.IsBot,
			Heart:      p.Heart,
			TotalScore: p.TotalScore,
			Winner:     winner != nil && p == winner,
			Draw:       inDraw[p.ID],
			Forfeited:  p.Left,
		})
	}
	return res
}
