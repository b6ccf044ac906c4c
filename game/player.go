package game

import "stage-battle-server/catalog"

// Player represents a seat in a room. Only the room goroutine mutates it.
type Player struct {
	ID     string // stable across reconnects
	UserID string // auth subject, empty for guests and bots
	Name   string
	Send   chan []byte // reference to the client's send channel; owned by the room for bots

	IsBot        bool
	Ready        bool
	Disconnected bool
	// Left is set when the player forfeits mid-match; the seat is dropped at the next reset.
	Left bool

	Heart      int
	Hand       []catalog.Card
	PlayedCard *catalog.Card
	Action     Action
	Cooldown   int
	HasDecided bool
	IsDead     bool

	TotalScore float64
	LastScore  float64
}

// NewPlayer creates a new Player with the given id, name and send channel.
func NewPlayer(id, name string, send chan []byte) *Player {
	return &Player{
		ID:   id,
		Name: name,
		Send: send,
	}
}

// CanAct reports whether the player may submit cards this turn.
func (p *Player) CanAct() bool {
	return !p.IsDead && p.Heart > 0 && len(p.Hand) > 0
}

// takeCard removes the first card with the given id from the hand.
func (p *Player) takeCard(cardID int) (catalog.Card, bool) {
	for i, c := range p.Hand {
		if c.ID == cardID {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return c, true
		}
	}
	return catalog.Card{}, false
}

func (p *Player) loseHeart(n int) {
	p.Heart = max(p.Heart-n, 0)
}

func (p *Player) heal(n, maxHeart int) {
	p.Heart = min(p.Heart+n, maxHeart)
}

// resetForLobby clears everything a finished match left behind.
func (p *Player) resetForLobby(maxHeart int) {
	p.Heart = maxHeart
	p.Hand = nil
	p.PlayedCard = nil
	p.Action = ActionNone
	p.Cooldown = 0
	p.HasDecided = false
	p.IsDead = false
	p.TotalScore = 0
	p.LastScore = 0
	p.Ready = p.IsBot
}
