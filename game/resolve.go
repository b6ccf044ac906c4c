package game

import (
	"fmt"

	"stage-battle-server/catalog"
	"stage-battle-server/scoring"
)

// unchangeableEvents have already done their work at turn start; fate control leaves them alone.
var unchangeableEvents = map[catalog.EffectKind]bool{
	catalog.EffectHeal1:       true,
	catalog.EffectShrimpCurse: true,
	catalog.EffectDraw3:       true,
}

// resolve runs the turn pipeline: skills, scores, heart loss, recycling,
// deferred draws, revival grants and the termination check.
func (r *Room) resolve() {
	if r.Phase != PhaseAction && r.Phase != PhasePlayCard {
		return
	}
	r.disarm()
	r.Phase = PhaseResolve
	rules := r.Config.Rules
	ts := r.turn
	prevAlive := r.aliveIDs()

	var contestants []*Player
	for _, p := range r.Players {
		if p.PlayedCard == nil || p.Left {
			continue
		}
		if !p.HasDecided || p.Action == ActionNone {
			p.Action = ActionCompete
			p.HasDecided = true
		}
		contestants = append(contestants, p)
	}

	// 1. skills
	reports := r.applySkills(contestants)

	// 2. scores
	lines := make([]ScoreLine, 0, len(contestants))
	byID := make(map[string]int, len(contestants))
	for _, p := range contestants {
		card := *p.PlayedCard
		score := scoring.Score(card, ts.StatMod(p.ID), r.Competition, r.Event)
		line := ScoreLine{PlayerID: p.ID, Name: p.Name, Action: p.Action}
		if p.Action != ActionFlee {
			line.Card = &card
		}
		switch p.Action {
		case ActionGacha:
			score = max(scoring.Round1(score-float64(rules.GachaPenalty)), 0)
			ts.QueueDraw(p.ID, rules.GachaDraw, DrawGacha)
		case ActionFlee:
			score = 0
			p.Hand = append(p.Hand, card)
			p.loseHeart(1)
			line.HeartLost = 1
		}
		p.LastScore = score
		p.TotalScore = scoring.Round1(p.TotalScore + score)
		line.Score = score
		byID[p.ID] = len(lines)
		lines = append(lines, line)
	}

	// 3. heart loss below the max; flee players sit out of the comparison
	var competing []*Player
	for _, p := range contestants {
		if p.Action != ActionFlee {
			competing = append(competing, p)
		}
	}
	maxScore, tie := 0.0, true
	for i, p := range competing {
		if i == 0 || p.LastScore > maxScore {
			maxScore = p.LastScore
		}
	}
	for _, p := range competing {
		if p.LastScore != maxScore {
			tie = false
		}
	}
	turnWinner := ""
	if !tie {
		for _, p := range competing {
			if p.LastScore == maxScore {
				if turnWinner == "" {
					turnWinner = p.ID
				} else {
					turnWinner = "" // shared top spot
					break
				}
			}
		}
		for _, p := range competing {
			if p.LastScore >= maxScore {
				continue
			}
			i := byID[p.ID]
			if ts.IsProtected(p.ID) {
				lines[i].Shielded = true
				continue
			}
			p.loseHeart(1)
			lines[i].HeartLost = 1
		}
	} else if len(competing) == 1 {
		turnWinner = competing[0].ID
	}

	// 4. recycle, queue deferred draws
	for _, p := range competing {
		r.pile.Return(*p.PlayedCard)
	}
	r.pendingDraws = append(r.pendingDraws, ts.draws...)

	// 6. revival grants stay pending into the next turn start
	for id := range ts.revivals {
		r.pendingDivine[id] = true
	}

	for i := range lines {
		lines[i].Heart = r.player(lines[i].PlayerID).Heart
	}

	revealed := make([]RevealedCard, 0, len(competing))
	for _, p := range competing {
		revealed = append(revealed, RevealedCard{PlayerID: p.ID, Card: *p.PlayedCard, Action: p.Action})
	}
	r.broadcast(RevealCardsMsg{Type: "reveal_cards", Turn: r.Turn, FaceUp: r.Event.Effect == catalog.EffectRevealCards, Cards: revealed, Skills: reports})

	// 7. the turn state ends here
	r.turn = nil

	// 8. termination
	over, winner, draw := r.evaluate(prevAlive)
	result := TurnResultMsg{
		Type:         "turn_result",
		Turn:         r.Turn,
		Event:        r.Event,
		Competition:  r.Competition,
		Scores:       lines,
		MaxScore:     maxScore,
		Tie:          tie && len(competing) > 1,
		TurnWinnerID: turnWinner,
		GameOver:     over,
		Draw:         over && winner == nil,
		Players:      r.summaries(),
	}
	if winner != nil {
		result.WinnerID = winner.ID
	}
	for _, p := range draw {
		result.DrawPlayerIDs = append(result.DrawPlayerIDs, p.ID)
	}
	r.broadcast(result)
	r.log.Debug("turn resolved", "turn", r.Turn, "contestants", len(contestants), "max", maxScore, "tie", result.Tie)

	if over {
		r.endGame(winner, draw, "completed")
		return
	}
	r.after(r.Config.Timing.ResultDisplayMS, deadlineResultDisplay)
}

// applySkills resolves every Skill action. Hidden skills all land first, so
// every block is in place before any other skill is checked against them;
// two blockers nullify each other while both blocks stand.
func (r *Room) applySkills(contestants []*Player) []SkillReport {
	rules := r.Config.Rules
	ts := r.turn
	var users []*Player
	for _, p := range contestants {
		if p.Action == ActionSkill {
			users = append(users, p)
		}
	}

	apply := func(p *Player, def SkillDef) SkillOutcome {
		var targets []*Player
		for _, q := range contestants {
			if q != p && q.Action != ActionFlee {
				targets = append(targets, q)
			}
		}
		return def.Apply(&SkillContext{
			Caster:      p,
			Targets:     targets,
			Turn:        ts,
			Rules:       &r.Config.Rules,
			Event:       r.Event,
			RerollEvent: r.rerollEvent,
		})
	}

	hidden := make(map[string]SkillOutcome)
	for _, p := range users {
		if p.PlayedCard.Skill != catalog.SkillHiddenSkill {
			continue
		}
		if def, ok := r.Skills.Skill(catalog.SkillHiddenSkill); ok {
			hidden[p.ID] = apply(p, def)
		}
	}

	reports := make([]SkillReport, 0, len(users))
	for _, p := range users {
		rep := SkillReport{PlayerID: p.ID, Skill: p.PlayedCard.Skill}
		def, ok := r.Skills.Skill(p.PlayedCard.Skill)
		if !ok || !p.PlayedCard.HasSkill() {
			rep.Effect = "This card has no skill"
			rep.NoEffect = true
			reports = append(reports, rep)
			continue
		}

		rep.OnCooldown = p.Cooldown > 0
		if rep.OnCooldown {
			p.Cooldown += rules.CooldownPenaltyTurns
		} else {
			p.Cooldown = rules.SkillCooldownTurns
		}
		rep.Name = def.Name
		if blocker, blocked := ts.BlockedBy(p.ID); blocked {
			rep.Blocked = true
			rep.NoEffect = true
			if b := r.player(blocker); b != nil {
				rep.Effect = fmt.Sprintf("Blocked by %s's hidden skill", b.Name)
			}
			reports = append(reports, rep)
			continue
		}

		out, done := hidden[p.ID]
		if !done {
			out = apply(p, def)
		}
		rep.Effect = out.Effect
		rep.NoEffect = out.NoEffect
		r.log.Debug("skill used", "player", p.Name, "skill", p.PlayedCard.Skill.String(), "effect", out.Effect)
		reports = append(reports, rep)
	}
	return reports
}

// rerollEvent replaces the current event with the next one in the cycle.
// Events whose turn-start effect already happened cannot be replaced, and
// are never drawn as a replacement either.
func (r *Room) rerollEvent() (catalog.Event, bool) {
	if unchangeableEvents[r.Event.Effect] {
		return r.Event, false
	}
	for i := 0; i < 2*r.events.Len(); i++ {
		next := r.events.Next()
		if unchangeableEvents[next.Effect] || next.Name == r.Event.Name {
			continue
		}
		wasSpecial := r.Competition == scoring.CompetitionSpecial
		r.Event = next
		if c, ok := scoring.ForEvent(next); ok {
			r.Competition = c
		} else if wasSpecial {
			r.Competition = scoring.RollCompetition(r.rng)
		}
		r.broadcast(EventSlotMsg{Type: "event_slot_result", Turn: r.Turn, Event: next, Rerolled: true})
		if wasSpecial || r.Competition == scoring.CompetitionSpecial {
			r.broadcast(CompetitionSlotMsg{Type: "competition_slot_result", Turn: r.Turn, Competition: r.Competition, Forced: r.Competition == scoring.CompetitionSpecial})
		}
		return next, true
	}
	return r.Event, false
}

// finishTurn delivers deferred draws once the result has been shown, then starts the next turn.
func (r *Room) finishTurn() {
	for _, d := range r.pendingDraws {
		p := r.player(d.PlayerID)
		if p == nil || p.Left {
			continue
		}
		drawn := r.pile.Draw(d.Count)
		p.Hand = append(p.Hand, drawn...)
		if len(drawn) > 0 && p.Heart > 0 {
			p.IsDead = false
		}
		r.notifyDraw(p, d.Reason, drawn)
	}
	r.pendingDraws = nil
	r.beginTurn()
}

func (r *Room) aliveIDs() map[string]bool {
	alive := make(map[string]bool)
	for _, p := range r.Players {
		if !p.IsDead && !p.Left {
			alive[p.ID] = true
		}
	}
	return alive
}

func (r *Room) owedDraws(playerID string) bool {
	for _, d := range r.pendingDraws {
		if d.PlayerID == playerID {
			return true
		}
	}
	return r.turn != nil && r.turn.hasDraws(playerID)
}

// holdsCards reports whether the player still has a card to play with: in
// hand, owed, or on the table while the card and action phases are open.
func (r *Room) holdsCards(p *Player) bool {
	if len(p.Hand) > 0 || r.owedDraws(p.ID) {
		return true
	}
	return p.PlayedCard != nil && (r.Phase == PhasePlayCard || r.Phase == PhaseAction)
}

// evaluate marks eliminations and decides whether the match is over.
// A player survives with heart > 0 and cards, or with a pending divine
// revival. A draw is shared by the players knocked out in this evaluation,
// or by everyone when nobody was standing before it.
func (r *Room) evaluate(prevAlive map[string]bool) (over bool, winner *Player, draw []*Player) {
	var alive []*Player
	for _, p := range r.Players {
		if p.Left {
			p.IsDead = true
			continue
		}
		if r.pendingDivine[p.ID] {
			p.IsDead = false
			alive = append(alive, p)
			continue
		}
		if p.Heart == 0 || !r.holdsCards(p) {
			p.IsDead = true
			continue
		}
		alive = append(alive, p)
	}
	switch len(alive) {
	case 0:
		for _, p := range r.Players {
			if prevAlive[p.ID] && !p.Left {
				draw = append(draw, p)
			}
		}
		if len(draw) == 0 {
			for _, p := range r.Players {
				if !p.Left {
					draw = append(draw, p)
				}
			}
		}
		return true, nil, draw
	case 1:
		return true, alive[0], nil
	}
	return false, nil, nil
}

// checkGameOver evaluates termination outside resolve and ends the match if needed.
func (r *Room) checkGameOver(prevAlive map[string]bool, reason string) bool {
	over, winner, draw := r.evaluate(prevAlive)
	if !over {
		return false
	}
	r.endGame(winner, draw, reason)
	return true
}

// endGame reports the match, resets the room to the lobby and keeps everyone seated.
func (r *Room) endGame(winner *Player, draw []*Player, reason string) {
	r.disarm()
	msg := GameOverMsg{Type: "game_over", Turn: r.Turn, Draw: winner == nil, Reason: reason, Players: r.summaries()}
	if winner != nil {
		msg.WinnerID = winner.ID
		msg.WinnerName = winner.Name
	}
	for _, p := range draw {
		msg.DrawPlayerIDs = append(msg.DrawPlayerIDs, p.ID)
	}
	r.broadcast(msg)
	r.log.Info("game over", "match", r.MatchID, "turns", r.Turn, "winner", msg.WinnerName, "draw", msg.Draw, "reason", reason)

	if r.OnGameEnd != nil {
		r.OnGameEnd(r.buildResult(winner, draw, reason))
	}
	r.resetToLobby()
}

func (r *Room) resetToLobby() {
	r.Phase = PhaseLobby
	r.Turn = 0
	r.turn = nil
	r.Event = catalog.Event{}
	r.Competition = scoring.CompetitionNone
	r.pendingDraws = nil
	clear(r.pendingDivine)
	kept := r.Players[:0]
	for _, p := range r.Players {
		if p.Left {
			continue
		}
		p.resetForLobby(r.Config.Rules.MaxHeart)
		kept = append(kept, p)
	}
	r.Players = kept
	r.ensureHost()
	r.broadcastLobby()
	if r.connectedHumans() == 0 {
		r.close("no players left")
	}
}
