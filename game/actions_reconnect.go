package game

import (
	"time"

	"stage-battle-server/roomerrors"
)

// rejoin binds a new connection to an existing seat and sends a snapshot.
func (r *Room) rejoin(p *Player, send chan []byte) error {
	if p.IsBot {
		return roomerrors.ErrNameTaken
	}
	if !p.Disconnected {
		return roomerrors.ErrAlreadyConnected
	}
	p.Send = send
	p.Disconnected = false
	r.cancelAbandonTimer()
	r.ensureHost()
	r.log.Info("player reconnected", "player", p.Name)
	r.send(p, r.BuildStateForPlayer(p))
	if r.Phase == PhaseLobby {
		r.broadcastLobby()
	} else {
		r.broadcast(PlayerDecidedMsg{Type: "player_reconnected", PlayerID: p.ID, Phase: r.Phase})
	}
	return nil
}

// handleDisconnect never removes a seat mid-match: the player is defaulted
// (skip in play_card, Compete in action) until they come back.
func (r *Room) handleDisconnect(playerID string) {
	p := r.player(playerID)
	if p == nil || p.Disconnected {
		return
	}
	if r.Phase == PhaseLobby {
		p.Disconnected = true
		r.removePlayer(p, "disconnected")
		r.afterDeparture()
		return
	}
	p.Disconnected = true
	p.Send = nil
	r.log.Info("player disconnected", "player", p.Name, "phase", r.Phase.String())
	r.broadcast(PlayerLeftMsg{Type: "player_disconnected", PlayerID: p.ID, Name: p.Name, Reason: "disconnected"})
	r.defaultDecision(p)
	r.afterDeparture()
}

// defaultDecision substitutes the timeout choice for a player who cannot answer.
func (r *Room) defaultDecision(p *Player) {
	if p.HasDecided {
		return
	}
	switch r.Phase {
	case PhasePlayCard:
		p.HasDecided = true
		if r.allDecided() {
			r.endCardPhase()
		}
	case PhaseAction:
		p.Action = ActionCompete
		p.HasDecided = true
		if r.allDecided() {
			r.resolve()
		}
	}
}

// forfeit takes a player out of a running match for good.
func (r *Room) forfeit(p *Player) {
	prevAlive := r.aliveIDs()
	p.Left = true
	p.Disconnected = true
	if p.PlayedCard != nil {
		r.pile.Return(*p.PlayedCard)
		p.PlayedCard = nil
	}
	r.pile.Return(p.Hand...)
	p.Hand = nil
	p.Heart = 0
	p.IsDead = true
	p.HasDecided = true
	delete(r.pendingDivine, p.ID)
	if p.IsBot && p.Send != nil {
		close(p.Send)
	}
	p.Send = nil
	r.log.Info("player forfeited", "player", p.Name)
	r.broadcast(PlayerLeftMsg{Type: "player_left", PlayerID: p.ID, Name: p.Name, Reason: "forfeit"})

	if r.Phase == PhaseResolve {
		return
	}
	if r.checkGameOver(prevAlive, "forfeit") {
		return
	}
	switch r.Phase {
	case PhasePlayCard:
		if r.allDecided() {
			r.endCardPhase()
		}
	case PhaseAction:
		if r.allDecided() {
			r.resolve()
		}
	}
}

func (r *Room) startAbandonTimer() {
	if r.abandonCancel != nil {
		return
	}
	timeoutSec := r.Config.Timing.ReconnectTimeoutSec
	if timeoutSec <= 0 {
		timeoutSec = 120
	}
	r.abandonCancel = make(chan struct{})
	cancel := r.abandonCancel
	r.log.Info("no players connected, waiting", "timeout_sec", timeoutSec)
	go func() {
		select {
		case <-time.After(time.Duration(timeoutSec) * time.Second):
			select {
			case r.Commands <- Command{Type: cmdAbandon}:
			case <-r.Done:
			}
		case <-cancel:
		}
	}()
}

func (r *Room) cancelAbandonTimer() {
	if r.abandonCancel != nil {
		close(r.abandonCancel)
		r.abandonCancel = nil
	}
}

func (r *Room) handleAbandon() {
	if r.abandonCancel == nil {
		return
	}
	r.abandonCancel = nil
	if r.connectedHumans() > 0 {
		return
	}
	r.close("abandoned")
}
