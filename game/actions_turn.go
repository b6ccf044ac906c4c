package game

import (
	"stage-battle-server/catalog"
	"stage-battle-server/roomerrors"
	"stage-battle-server/scoring"
)

// beginTurn stages a new turn: event, cooldowns, turn-start effects, pending
// revivals and an elimination check, then hands over to the competition slot.
func (r *Room) beginTurn() {
	rules := r.Config.Rules
	r.Turn++
	r.turn = NewTurnState()
	for _, p := range r.Players {
		p.PlayedCard = nil
		p.Action = ActionNone
		p.HasDecided = false
		p.LastScore = 0
		if p.Cooldown > 0 {
			p.Cooldown--
		}
	}
	prevAlive := r.aliveIDs()

	r.Phase = PhaseEventSlot
	r.Event = r.events.Next()
	switch r.Event.Effect {
	case catalog.EffectHeal1:
		for _, p := range r.Players {
			if p.CanAct() {
				p.heal(1, rules.MaxHeart)
			}
		}
	case catalog.EffectShrimpCurse:
		for _, p := range r.Players {
			if !p.IsDead {
				p.loseHeart(1)
			}
		}
	}
	r.broadcast(EventSlotMsg{Type: "event_slot_result", Turn: r.Turn, Event: r.Event})
	r.consumeRevivals()

	if r.checkGameOver(prevAlive, "eliminated") {
		return
	}
	r.after(r.Config.Timing.SlotRevealMS, deadlineEventReveal)
}

// consumeRevivals applies divine card grants from the previous turn: a
// player still at zero heart comes back, anyone else just loses the flag.
func (r *Room) consumeRevivals() {
	rules := r.Config.Rules
	for id := range r.pendingDivine {
		p := r.player(id)
		if p == nil || p.Left {
			continue
		}
		if p.Heart != 0 {
			r.log.Debug("divine card expired", "player", p.Name)
			continue
		}
		p.Heart = 1
		p.IsDead = false
		drawn := r.pile.Draw(min(rules.DivineReviveDraw, r.pile.Size()))
		p.Hand = append(p.Hand, drawn...)
		r.log.Info("divine card revival", "player", p.Name, "drawn", len(drawn))
		r.notifyDraw(p, DrawDivineRevival, drawn)
	}
	clear(r.pendingDivine)
}

func (r *Room) revealCompetition() {
	r.Phase = PhaseCompetitionSlot
	forced := false
	if c, ok := scoring.ForEvent(r.Event); ok {
		r.Competition = c
		forced = true
	} else {
		r.Competition = scoring.RollCompetition(r.rng)
	}
	r.broadcast(CompetitionSlotMsg{Type: "competition_slot_result", Turn: r.Turn, Competition: r.Competition, Forced: forced})
	r.after(r.Config.Timing.SlotRevealMS, deadlineCompetitionReveal)
}

func (r *Room) afterCompetition() {
	if r.Event.Effect != catalog.EffectDraw3 {
		r.startCardPhase()
		return
	}
	r.Phase = PhaseMikudayoDraw
	for _, p := range r.Players {
		if !p.CanAct() {
			continue
		}
		drawn := r.pile.Draw(r.Config.Rules.MikudayoDraw)
		p.Hand = append(p.Hand, drawn...)
		r.notifyDraw(p, DrawMikudayo, drawn)
	}
	r.after(r.Config.Timing.SlotRevealMS, deadlineMikudayo)
}

func (r *Room) startCardPhase() {
	r.Phase = PhasePlayCard
	for _, p := range r.Players {
		p.HasDecided = !p.CanAct()
		if !p.HasDecided && p.Disconnected {
			p.HasDecided = true
		}
	}
	r.armCeiling(r.Config.Timing.CardPhaseSec, deadlineCardPhase)
	summaries := r.summaries()
	for _, p := range r.Players {
		msg := TurnStartMsg{
			Type:        "turn_start",
			Turn:        r.Turn,
			Event:       r.Event,
			Competition: r.Competition,
			Hand:        p.Hand,
			Heart:       p.Heart,
			Cooldown:    p.Cooldown,
			CanPlay:     !p.HasDecided,
			Players:     summaries,
		}
		if msg.Hand == nil {
			msg.Hand = []catalog.Card{}
		}
		if !r.deadline.endsAt.IsZero() {
			msg.DeadlineUnixMs = r.deadline.endsAt.UnixMilli()
		}
		r.send(p, msg)
	}
	if r.allDecided() {
		r.endCardPhase()
	}
}

func (r *Room) handlePlayCard(playerID string, cardID int, skip bool) error {
	p := r.player(playerID)
	if p == nil || p.Left {
		return roomerrors.ErrNotInRoom
	}
	if r.Phase != PhasePlayCard {
		return roomerrors.ErrWrongPhase
	}
	if !p.CanAct() {
		return roomerrors.ErrEliminated
	}
	if p.HasDecided {
		return roomerrors.ErrAlreadyDecided
	}
	if !skip {
		card, ok := p.takeCard(cardID)
		if !ok {
			return roomerrors.ErrCardNotInHand
		}
		p.PlayedCard = &card
	}
	p.HasDecided = true
	r.broadcast(PlayerDecidedMsg{Type: "player_decided", PlayerID: p.ID, Phase: r.Phase})
	if r.allDecided() {
		r.endCardPhase()
	}
	return nil
}

// endCardPhase force-skips the undecided, applies the sole-contestant and
// empty-stage penalties, and moves on to the action phase.
func (r *Room) endCardPhase() {
	if r.Phase != PhasePlayCard {
		return
	}
	r.disarm()
	prevAlive := r.aliveIDs()

	var contestants, skippers []*Player
	for _, p := range r.Players {
		if p.IsDead || p.Left {
			continue
		}
		p.HasDecided = true
		if p.PlayedCard != nil {
			contestants = append(contestants, p)
		} else if p.CanAct() {
			skippers = append(skippers, p)
		}
	}

	penalised := make(map[string]bool)
	// A sole contestant makes every skip cost a heart.
	if len(contestants) == 1 {
		for _, p := range skippers {
			p.loseHeart(1)
			penalised[p.ID] = true
		}
	}

	// Cards stay face-down here; a card may still flee, and fled cards are
	// never shown. reveal_cards lists the rest.
	entries := make([]PlayedSlot, 0, len(r.Players))
	for _, p := range r.Players {
		if p.Left {
			continue
		}
		entries = append(entries, PlayedSlot{PlayerID: p.ID, Played: p.PlayedCard != nil, SkipPenalty: penalised[p.ID]})
	}
	r.broadcast(AllCardsPlayedMsg{Type: "all_cards_played", Turn: r.Turn, FaceUp: r.Event.Effect == catalog.EffectRevealCards, Entries: entries})

	if len(contestants) == 0 {
		r.resolve()
		return
	}
	if len(penalised) > 0 && r.checkGameOver(prevAlive, "eliminated") {
		return
	}
	r.startActionPhase(contestants)
}

func (r *Room) startActionPhase(contestants []*Player) {
	r.Phase = PhaseAction
	for _, p := range r.Players {
		p.HasDecided = p.PlayedCard == nil
		if !p.HasDecided && p.Disconnected {
			p.Action = ActionCompete
			p.HasDecided = true
		}
	}
	r.armCeiling(r.Config.Timing.ActionPhaseSec, deadlineActionPhase)
	for _, p := range r.Players {
		msg := ActionPhaseStartMsg{
			Type:        "action_phase_start",
			Turn:        r.Turn,
			MustAct:     !p.HasDecided,
			PlayedCard:  p.PlayedCard,
			Cooldown:    p.Cooldown,
			Heart:       p.Heart,
			HandSize:    len(p.Hand),
			Contestants: len(contestants),
		}
		if !r.deadline.endsAt.IsZero() {
			msg.DeadlineUnixMs = r.deadline.endsAt.UnixMilli()
		}
		r.send(p, msg)
	}
	if r.allDecided() {
		r.resolve()
	}
}

func (r *Room) handleChooseAction(playerID string, action Action) error {
	p := r.player(playerID)
	if p == nil || p.Left {
		return roomerrors.ErrNotInRoom
	}
	if r.Phase != PhaseAction {
		return roomerrors.ErrWrongPhase
	}
	if p.PlayedCard == nil {
		return roomerrors.ErrNoPlayedCard
	}
	if p.HasDecided {
		return roomerrors.ErrAlreadyDecided
	}
	if action < ActionGacha || action > ActionFlee {
		return roomerrors.ErrInvalidAction
	}
	if action == ActionSkill && !p.PlayedCard.HasSkill() {
		return roomerrors.ErrNoSkill
	}
	p.Action = action
	p.HasDecided = true
	r.broadcast(PlayerDecidedMsg{Type: "player_decided", PlayerID: p.ID, Phase: r.Phase})
	if r.allDecided() {
		r.resolve()
	}
	return nil
}

// handleActionTimeout is the client telling us its countdown ran out; the
// player gets the same default the room ceiling would give.
func (r *Room) handleActionTimeout(playerID string) error {
	p := r.player(playerID)
	if p == nil || p.Left {
		return roomerrors.ErrNotInRoom
	}
	if r.Phase != PhaseAction || p.PlayedCard == nil || p.HasDecided {
		return nil
	}
	return r.handleChooseAction(playerID, ActionCompete)
}

func (r *Room) allDecided() bool {
	for _, p := range r.Players {
		if !p.HasDecided && !p.Left {
			return false
		}
	}
	return true
}

func (r *Room) notifyDraw(p *Player, reason DrawReason, cards []catalog.Card) {
	r.send(p, CardDrawMsg{Type: "card_draw", PlayerID: p.ID, Reason: reason, Cards: cards, Count: len(cards)})
	pub := CardDrawMsg{Type: "card_draw", PlayerID: p.ID, Reason: reason, Count: len(cards)}
	for _, q := range r.Players {
		if q != p {
			r.send(q, pub)
		}
	}
}
