package game

import "fmt"

// Phase is the room's position in the turn cycle.
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseDrawCards
	PhaseEventSlot
	PhaseCompetitionSlot
	PhaseMikudayoDraw
	PhasePlayCard
	PhaseAction
	PhaseResolve
)

// String returns the protocol string for a Phase.
func (p Phase) String() string {
	switch p {
	case PhaseLobby:
		return "lobby"
	case PhaseDrawCards:
		return "draw_cards"
	case PhaseEventSlot:
		return "event_slot"
	case PhaseCompetitionSlot:
		return "competition_slot"
	case PhaseMikudayoDraw:
		return "mikudayo_draw"
	case PhasePlayCard:
		return "play_card"
	case PhaseAction:
		return "action"
	case PhaseResolve:
		return "resolve"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Action is the post-card choice. The numeric values are the wire codes 1-4.
type Action int

const (
	ActionNone Action = iota
	ActionGacha
	ActionSkill
	ActionCompete
	ActionFlee
)

// ParseAction converts a wire code into an Action.
func ParseAction(code int) (Action, error) {
	a := Action(code)
	if a < ActionGacha || a > ActionFlee {
		return ActionNone, fmt.Errorf("action code %d out of range", code)
	}
	return a, nil
}

// String returns the protocol string for an Action.
func (a Action) String() string {
	switch a {
	case ActionGacha:
		return "gacha"
	case ActionSkill:
		return "skill"
	case ActionCompete:
		return "compete"
	case ActionFlee:
		return "flee"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// DrawReason tags a card_draw notification.
type DrawReason int

const (
	DrawStartingHand DrawReason = iota
	DrawMikudayo
	DrawGacha
	DrawGachaGod
	DrawDivineRevival
)

// String returns the protocol string for a DrawReason.
func (d DrawReason) String() string {
	switch d {
	case DrawStartingHand:
		return "starting_hand"
	case DrawMikudayo:
		return "mikudayo"
	case DrawGacha:
		return "gacha"
	case DrawGachaGod:
		return "gacha_god"
	case DrawDivineRevival:
		return "divine_revival"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d DrawReason) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
