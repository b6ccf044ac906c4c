package game

import (
	"strings"
	"time"

	"stage-battle-server/deck"
	"stage-battle-server/roomerrors"
)

func (r *Room) handleJoin(playerID, userID, name string, send chan []byte) (string, error) {
	if playerID != "" {
		if p := r.player(playerID); p != nil && !p.Left {
			return p.ID, r.rejoin(p, send)
		}
	}
	if userID != "" {
		for _, p := range r.Players {
			if p.UserID == userID && !p.Left {
				return p.ID, r.rejoin(p, send)
			}
		}
	}
	if r.Phase != PhaseLobby {
		return "", roomerrors.ErrGameInProgress
	}
	p, err := r.seat(playerID, name, send)
	if err != nil {
		return "", err
	}
	p.UserID = userID
	if r.HostID == "" {
		r.HostID = p.ID
	}
	r.log.Info("player joined", "player", p.Name, "players", len(r.Players))
	r.send(p, r.BuildStateForPlayer(p))
	r.broadcastLobby()
	return p.ID, nil
}

func (r *Room) handleAddBot(hostID, name string, send chan []byte) (string, error) {
	if hostID != r.HostID {
		return "", roomerrors.ErrNotHost
	}
	if r.Phase != PhaseLobby {
		return "", roomerrors.ErrGameInProgress
	}
	p, err := r.seat("", name, send)
	if err != nil {
		return "", err
	}
	p.IsBot = true
	p.Ready = true
	r.log.Info("bot added", "player", p.Name)
	r.send(p, r.BuildStateForPlayer(p))
	r.broadcastLobby()
	return p.ID, nil
}

func (r *Room) seat(id, name string, send chan []byte) (*Player, error) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > r.Config.MaxNameLength {
		return nil, roomerrors.ErrInvalidName
	}
	if len(r.Players) >= r.Config.Rules.MaxPlayers {
		return nil, roomerrors.ErrRoomFull
	}
	for _, p := range r.Players {
		if strings.EqualFold(p.Name, name) {
			return nil, roomerrors.ErrNameTaken
		}
	}
	if id == "" {
		id = r.NewID()
	}
	p := NewPlayer(id, name, send)
	p.Heart = r.Config.Rules.MaxHeart
	r.Players = append(r.Players, p)
	return p, nil
}

func (r *Room) handleLeave(playerID string) error {
	p := r.player(playerID)
	if p == nil || p.Left {
		return roomerrors.ErrNotInRoom
	}
	if r.Phase == PhaseLobby {
		r.removePlayer(p, "left")
		r.afterDeparture()
		return nil
	}
	r.forfeit(p)
	r.afterDeparture()
	return nil
}

// afterDeparture closes an empty room or passes the host seat on.
func (r *Room) afterDeparture() {
	if r.closed {
		return
	}
	if r.connectedHumans() == 0 {
		if r.Phase == PhaseLobby {
			r.close("no players left")
			return
		}
		r.startAbandonTimer()
	}
	r.ensureHost()
}

func (r *Room) ensureHost() {
	if h := r.player(r.HostID); h != nil && !h.IsBot && !h.Disconnected && !h.Left {
		return
	}
	for _, p := range r.Players {
		if !p.IsBot && !p.Disconnected && !p.Left {
			if p.ID != r.HostID {
				r.HostID = p.ID
				r.log.Info("host handed over", "player", p.Name)
				if r.Phase == PhaseLobby {
					r.broadcastLobby()
				}
			}
			return
		}
	}
}

// removePlayer drops the seat entirely. Lobby only.
func (r *Room) removePlayer(p *Player, reason string) {
	for i, q := range r.Players {
		if q == p {
			r.Players = append(r.Players[:i], r.Players[i+1:]...)
			break
		}
	}
	if p.IsBot && p.Send != nil {
		close(p.Send)
		p.Send = nil
	}
	r.log.Info("player removed", "player", p.Name, "reason", reason)
	r.broadcast(PlayerLeftMsg{Type: "player_left", PlayerID: p.ID, Name: p.Name, Reason: reason})
	r.broadcastLobby()
}

func (r *Room) handleToggleReady(playerID string) error {
	p := r.player(playerID)
	if p == nil {
		return roomerrors.ErrNotInRoom
	}
	if r.Phase != PhaseLobby {
		return roomerrors.ErrGameInProgress
	}
	p.Ready = !p.Ready
	r.broadcastLobby()
	return nil
}

func (r *Room) handleKick(hostID, targetID string) error {
	if r.player(hostID) == nil {
		return roomerrors.ErrNotInRoom
	}
	if hostID != r.HostID {
		return roomerrors.ErrNotHost
	}
	if r.Phase != PhaseLobby {
		return roomerrors.ErrGameInProgress
	}
	if targetID == hostID {
		return roomerrors.ErrCannotKickSelf
	}
	target := r.player(targetID)
	if target == nil {
		return roomerrors.ErrPlayerNotFound
	}
	r.send(target, KickedMsg{Type: "kicked", Code: r.Code})
	r.removePlayer(target, "kicked")
	return nil
}

func (r *Room) handleStart(playerID string) error {
	if r.player(playerID) == nil {
		return roomerrors.ErrNotInRoom
	}
	if playerID != r.HostID {
		return roomerrors.ErrNotHost
	}
	if r.Phase != PhaseLobby {
		return roomerrors.ErrGameInProgress
	}
	if len(r.Players) < r.Config.Rules.MinPlayers {
		return roomerrors.ErrNotEnoughPlayers
	}
	for _, p := range r.Players {
		if !p.Ready && !p.IsBot && p.ID != r.HostID {
			return roomerrors.ErrNotAllReady
		}
	}
	r.startGame()
	return nil
}

func (r *Room) startGame() {
	rules := r.Config.Rules
	r.pile = deck.NewDrawPile(r.Catalog.Cards, r.rng)
	r.events = deck.NewCycle(r.Catalog.Events, r.rng)
	r.MatchID = r.NewID()
	r.StartedAt = time.Now()
	r.Turn = 0
	r.pendingDivine = make(map[string]bool)
	r.pendingDraws = nil
	r.Phase = PhaseDrawCards

	for _, p := range r.Players {
		p.resetForLobby(rules.MaxHeart)
		p.Ready = true
		p.Hand = r.pile.Draw(rules.StartingHand)
	}
	r.log.Info("game started", "match", r.MatchID, "players", len(r.Players))
	r.broadcast(GameStartedMsg{Type: "game_started", MatchID: r.MatchID, Players: r.summaries()})
	for _, p := range r.Players {
		r.send(p, CardDrawMsg{Type: "card_draw", PlayerID: p.ID, Reason: DrawStartingHand, Cards: p.Hand, Count: len(p.Hand)})
	}
	r.beginTurn()
}
