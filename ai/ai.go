// Package ai drives bot seats. A bot sees exactly what a human client sees:
// Run reads the payloads the room sends to the bot's channel and answers
// through the room's public API after a human-like delay.
package ai

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/tidwall/gjson"

	"stage-battle-server/ai/heuristic"
	"stage-battle-server/catalog"
	"stage-battle-server/config"
	"stage-battle-server/game"
	"stage-battle-server/scoring"
)

// Seat is the part of a room a bot acts through.
type Seat interface {
	PlayCard(playerID string, cardID int, skip bool) error
	ChooseAction(playerID string, action game.Action) error
}

// View is the bot's picture of the current turn.
type View struct {
	Turn        int
	Competition scoring.Competition
	Event       catalog.Event
	Hand        []catalog.Card
	Heart       int
	MaxHeart    int
	Cooldown    int
	HandSize    int
	Opponents   int
	// Contestants is the number of players who put a card down, set in the action phase.
	Contestants int
}

// Thresholds for the action ladder.
const (
	fleeScore      = 20.0
	fleeOpponents  = 2
	gachaHandSize  = 1
	weakScoreBase  = 15.0
	weakScoreStep  = 1.5
	weakScoreLimit = 30.0
)

func rarityWeight(r catalog.Rarity) float64 {
	switch r {
	case catalog.RarityLimited:
		return 2
	case catalog.RarityFestival:
		return 4
	default:
		return 0
	}
}

// Estimate projects a card's score for the turn without skill modifiers.
func Estimate(v *View, c catalog.Card) float64 {
	return scoring.Score(c, catalog.Stats{}, v.Competition, v.Event)
}

func (v *View) situation(c catalog.Card) *heuristic.Situation {
	return &heuristic.Situation{
		Card:        c,
		Competition: v.Competition,
		Event:       v.Event,
		Turn:        v.Turn,
		Heart:       v.Heart,
		MaxHeart:    v.MaxHeart,
		HandSize:    v.HandSize,
		Opponents:   v.Opponents,
		Score:       Estimate(v, c),
	}
}

type candidate struct {
	card   catalog.Card
	weight float64
}

// CardWeight scores a hand card for selection.
func CardWeight(v *View, c catalog.Card) float64 {
	s := v.situation(c)
	return s.Score + heuristic.Weight(c.Skill, s) + rarityWeight(c.Rarity)
}

// ChooseCard picks the card to play. With SecondChoiceChance percent it takes
// the runner-up when that card is within SecondChoiceMargin of the best.
// It returns false on an empty hand.
func ChooseCard(v *View, profile *config.BotProfile, rng *rand.Rand) (catalog.Card, bool) {
	if len(v.Hand) == 0 {
		return catalog.Card{}, false
	}
	cands := make([]candidate, 0, len(v.Hand))
	for _, c := range v.Hand {
		cands = append(cands, candidate{card: c, weight: CardWeight(v, c)})
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].weight > cands[j].weight })

	if len(cands) > 1 && cands[0].weight-cands[1].weight <= profile.SecondChoiceMargin &&
		rng.Intn(100) < profile.SecondChoiceChance {
		return cands[1].card, true
	}
	return cands[0].card, true
}

// weakScore is the projected score below which a bot would rather gamble on a
// draw. The bar rises as the match goes on.
func weakScore(turn int) float64 {
	return min(weakScoreBase+weakScoreStep*float64(turn), weakScoreLimit)
}

// ChooseAction walks the ladder Skill, Flee, Gacha, Compete for the played card.
func ChooseAction(v *View, played catalog.Card) game.Action {
	s := v.situation(played)
	if played.HasSkill() && v.Cooldown == 0 && heuristic.Favourable(played.Skill, s) {
		return game.ActionSkill
	}
	opponents := v.Contestants - 1
	if s.Score < fleeScore && opponents >= fleeOpponents && v.Heart > 1 {
		return game.ActionFlee
	}
	if v.HandSize <= gachaHandSize || s.Score < weakScore(v.Turn) {
		return game.ActionGacha
	}
	return game.ActionCompete
}

func delay(rng *rand.Rand, minMS, maxMS int) time.Duration {
	ms := minMS
	if maxMS > minMS {
		ms = minMS + rng.Intn(maxMS-minMS)
	}
	return time.Duration(ms) * time.Millisecond
}

// Run reads the bot's outbound messages and submits its decisions to seat.
// It returns when the channel is closed, which the room does when the seat
// is removed or the room shuts down.
func Run(send <-chan []byte, seat Seat, playerID string, profile *config.BotProfile, rules *config.RulesConfig) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	view := &View{MaxHeart: rules.MaxHeart}
	log := slog.Default().With("tag", "ai", "name", profile.Name)

	for data := range send {
		switch gjson.GetBytes(data, "type").String() {
		case "turn_start":
			var msg game.TurnStartMsg
			if err := json.Unmarshal(data, &msg); err != nil {
				log.Warn("bad turn_start", "err", err)
				continue
			}
			view.update(&msg, playerID)
			if !msg.CanPlay {
				continue
			}
			card, ok := ChooseCard(view, profile, rng)
			time.Sleep(delay(rng, profile.CardDelayMinMS, profile.CardDelayMaxMS))
			if !ok {
				if err := seat.PlayCard(playerID, 0, true); err != nil {
					log.Debug("skip rejected", "err", err)
				}
				continue
			}
			log.Debug("playing card", "turn", msg.Turn, "card", card.Name, "weight", CardWeight(view, card))
			if err := seat.PlayCard(playerID, card.ID, false); err != nil {
				log.Debug("play rejected", "err", err)
			}

		case "action_phase_start":
			var msg game.ActionPhaseStartMsg
			if err := json.Unmarshal(data, &msg); err != nil {
				log.Warn("bad action_phase_start", "err", err)
				continue
			}
			if !msg.MustAct || msg.PlayedCard == nil {
				continue
			}
			view.Cooldown = msg.Cooldown
			view.Heart = msg.Heart
			view.HandSize = msg.HandSize
			view.Contestants = msg.Contestants
			action := ChooseAction(view, *msg.PlayedCard)
			time.Sleep(delay(rng, profile.ActionDelayMinMS, profile.ActionDelayMaxMS))
			log.Debug("choosing action", "turn", msg.Turn, "action", action)
			if err := seat.ChooseAction(playerID, action); err != nil {
				log.Debug("action rejected", "err", err)
			}

		case "event_slot_result":
			if gjson.GetBytes(data, "rerolled").Bool() {
				var msg game.EventSlotMsg
				if err := json.Unmarshal(data, &msg); err == nil {
					view.Event = msg.Event
				}
			}
		}
	}
}

func (v *View) update(msg *game.TurnStartMsg, playerID string) {
	v.Turn = msg.Turn
	v.Competition = msg.Competition
	v.Event = msg.Event
	v.Hand = msg.Hand
	v.Heart = msg.Heart
	v.Cooldown = msg.Cooldown
	v.HandSize = len(msg.Hand)
	v.Contestants = 0
	v.Opponents = 0
	for _, p := range msg.Players {
		if p.ID != playerID && !p.IsDead && p.Heart > 0 {
			v.Opponents++
		}
	}
}
