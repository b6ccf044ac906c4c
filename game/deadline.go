package game

import "time"

type deadlineKind int

const (
	deadlineNone deadlineKind = iota
	deadlineEventReveal
	deadlineCompetitionReveal
	deadlineMikudayo
	deadlineCardPhase
	deadlineActionPhase
	deadlineResultDisplay
)

// phaseDeadline is the single pending transition timer of a room. Every arm
// bumps seq; a fired timer whose seq no longer matches is stale and ignored,
// so a phase completed by its last decision cannot be completed again by its
// timer (and vice versa).
type phaseDeadline struct {
	seq    uint64
	kind   deadlineKind
	endsAt time.Time
	cancel chan struct{}
}

// decision reports whether the pending deadline ceilings a player decision phase.
func (d *phaseDeadline) decision() bool {
	return d.kind == deadlineCardPhase || d.kind == deadlineActionPhase
}

// arm replaces any pending deadline with one firing after d.
func (r *Room) arm(d time.Duration, kind deadlineKind) {
	r.disarm()
	r.deadline.kind = kind
	r.deadline.endsAt = time.Now().Add(d)
	r.deadline.cancel = make(chan struct{})
	seq := r.deadline.seq
	cancel := r.deadline.cancel
	go func() {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
			select {
			case r.Commands <- Command{Type: cmdDeadline, Deadline: kind, Seq: seq}:
			case <-r.Done:
			}
		case <-cancel:
		}
	}()
}

// armCeiling arms a decision ceiling; sec <= 0 disables the timer and leaves
// the phase waiting on decisions (or an explicit expire).
func (r *Room) armCeiling(sec int, kind deadlineKind) {
	if sec <= 0 {
		r.disarm()
		r.deadline.kind = kind
		return
	}
	r.arm(time.Duration(sec)*time.Second, kind)
}

// after schedules a presentation step; a non-positive delay runs it inline.
func (r *Room) after(ms int, kind deadlineKind) {
	if ms <= 0 {
		r.disarm()
		r.onDeadline(kind)
		return
	}
	r.arm(time.Duration(ms)*time.Millisecond, kind)
}

// disarm invalidates the pending deadline. Safe when nothing is armed.
func (r *Room) disarm() {
	if r.deadline.cancel != nil {
		close(r.deadline.cancel)
		r.deadline.cancel = nil
	}
	r.deadline.seq++
	r.deadline.kind = deadlineNone
	r.deadline.endsAt = time.Time{}
}

func (r *Room) handleDeadline(kind deadlineKind, seq uint64) {
	if seq != r.deadline.seq || kind != r.deadline.kind {
		return
	}
	r.deadline.cancel = nil
	r.disarm()
	r.onDeadline(kind)
}

// expire fires the pending deadline now, exactly as its timer would.
func (r *Room) expire() {
	r.handleDeadline(r.deadline.kind, r.deadline.seq)
}

func (r *Room) onDeadline(kind deadlineKind) {
	switch kind {
	case deadlineEventReveal:
		r.revealCompetition()
	case deadlineCompetitionReveal:
		r.afterCompetition()
	case deadlineMikudayo:
		r.startCardPhase()
	case deadlineCardPhase:
		r.endCardPhase()
	case deadlineActionPhase:
		r.resolve()
	case deadlineResultDisplay:
		r.finishTurn()
	}
}
