package game

import "stage-battle-server/catalog"

// DeferredDraw is a draw owed to a player, delivered after the result display.
type DeferredDraw struct {
	PlayerID string
	Count    int
	Reason   DrawReason
}

// TurnState holds the effects that live for exactly one resolution. The room
// builds a fresh one when a turn starts and drops it once the result is out;
// only revival grants and deferred draws are carried over, by the room.
type TurnState struct {
	protected map[string]bool
	blockers  map[string]bool
	statMods  map[string]catalog.Stats
	revivals  map[string]bool
	draws     []DeferredDraw
}

// NewTurnState returns an empty per-turn state.
func NewTurnState() *TurnState {
	return &TurnState{
		protected: make(map[string]bool),
		blockers:  make(map[string]bool),
		statMods:  make(map[string]catalog.Stats),
		revivals:  make(map[string]bool),
	}
}

// Protect exempts the player from heart loss this turn.
func (ts *TurnState) Protect(playerID string) { ts.protected[playerID] = true }

// IsProtected reports whether the player is shielded this turn.
func (ts *TurnState) IsProtected(playerID string) bool { return ts.protected[playerID] }

// Block marks the player as holding an active skill block.
func (ts *TurnState) Block(playerID string) { ts.blockers[playerID] = true }

// BlockedBy returns the id of a blocker other than playerID, if any.
func (ts *TurnState) BlockedBy(playerID string) (string, bool) {
	for id := range ts.blockers {
		if id != playerID {
			return id, true
		}
	}
	return "", false
}

// AddStats accumulates a scoring-time stat modifier for the player.
func (ts *TurnState) AddStats(playerID string, delta catalog.Stats) {
	cur := ts.statMods[playerID]
	ts.statMods[playerID] = catalog.Stats{
		Vocal:  cur.Vocal + delta.Vocal,
		Dance:  cur.Dance + delta.Dance,
		Visual: cur.Visual + delta.Visual,
	}
}

// StatMod returns the accumulated modifier for the player.
func (ts *TurnState) StatMod(playerID string) catalog.Stats { return ts.statMods[playerID] }

// QueueDraw defers a draw until after the result display.
func (ts *TurnState) QueueDraw(playerID string, n int, reason DrawReason) {
	if n <= 0 {
		return
	}
	ts.draws = append(ts.draws, DeferredDraw{PlayerID: playerID, Count: n, Reason: reason})
}

// GrantRevival sets a pending revival consumed at the start of the next turn.
func (ts *TurnState) GrantRevival(playerID string) { ts.revivals[playerID] = true }

// HasRevival reports whether the player was granted a revival this turn.
func (ts *TurnState) HasRevival(playerID string) bool { return ts.revivals[playerID] }

// Draws returns the draws queued this turn.
func (ts *TurnState) Draws() []DeferredDraw { return ts.draws }

func (ts *TurnState) hasDraws(playerID string) bool {
	for _, d := range ts.draws {
		if d.PlayerID == playerID {
			return true
		}
	}
	return false
}
