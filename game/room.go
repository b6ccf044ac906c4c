package game

import (
	"log/slog"
	"math/rand"
	"time"

	"stage-battle-server/catalog"
	"stage-battle-server/config"
	"stage-battle-server/deck"
	"stage-battle-server/roomerrors"
	"stage-battle-server/scoring"
	"stage-battle-server/wsutil"
)

// CommandType enumerates the kinds of commands a room can process.
type CommandType int

const (
	CmdJoin CommandType = iota
	CmdAddBot
	CmdLeave
	CmdDisconnect
	CmdToggleReady
	CmdStart
	CmdKick
	CmdPlayCard
	CmdChooseAction
	CmdActionTimeout
	CmdClose
	cmdDeadline // internal: phase deadline fired
	cmdAbandon  // internal: no human reconnected in time
)

// Command is a request sent into the room's command channel.
type Command struct {
	Type     CommandType
	PlayerID string
	UserID   string
	Name     string
	Send     chan []byte // for CmdJoin / CmdAddBot
	TargetID string      // for CmdKick
	CardID   int
	Skip     bool
	Action   Action

	Deadline deadlineKind
	Seq      uint64

	Reply chan Result
}

// Result is the reply to a command. PlayerID is set by joins.
type Result struct {
	PlayerID string
	Err      error
}

// SkillProvider abstracts the skill registry so the game package
// does not import the skill package directly (avoids circular deps).
type SkillProvider interface {
	Skill(id catalog.SkillID) (SkillDef, bool)
}

// SkillContext is what a skill may read and touch while resolving.
type SkillContext struct {
	Caster *Player
	// Targets are the other players with a non-Flee card on the table.
	Targets []*Player
	Turn    *TurnState
	Rules   *config.RulesConfig
	Event   catalog.Event
	// RerollEvent replaces the current event; ok is false when the event cannot change.
	RerollEvent func() (catalog.Event, bool)
}

// SkillOutcome is the effect description reported in reveal_cards.
type SkillOutcome struct {
	Effect   string
	NoEffect bool
}

// SkillDef holds the definition of a skill as seen by the game package.
type SkillDef struct {
	ID          catalog.SkillID
	Name        string
	Description string
	Apply       func(ctx *SkillContext) SkillOutcome
}

// Room is one isolated match table. All state is owned by the Run goroutine;
// other goroutines talk to it through Commands.
type Room struct {
	Code    string
	Config  *config.Config
	Catalog *catalog.Catalog
	Skills  SkillProvider

	Phase       Phase
	Turn        int
	Players     []*Player
	HostID      string
	Event       catalog.Event
	Competition scoring.Competition

	MatchID   string
	StartedAt time.Time

	pile   *deck.DrawPile
	events *deck.Cycle[catalog.Event]
	rng    *rand.Rand

	turn          *TurnState
	pendingDivine map[string]bool
	pendingDraws  []DeferredDraw

	deadline      phaseDeadline
	abandonCancel chan struct{}
	closed        bool

	log *slog.Logger

	Commands chan Command
	Done     chan struct{}

	// OnGameEnd is called once per finished match.
	OnGameEnd func(MatchResult)
	// OnClose is called after the room stops; the store uses it to forget the code.
	OnClose func(code string)
	// NewID generates stable player and match ids.
	NewID func() string
}

// NewRoom creates an empty room in the lobby. rng may be nil.
func NewRoom(code string, cfg *config.Config, cat *catalog.Catalog, skills SkillProvider, rng *rand.Rand) *Room {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Room{
		Code:          code,
		Config:        cfg,
		Catalog:       cat,
		Skills:        skills,
		Phase:         PhaseLobby,
		rng:           rng,
		pendingDivine: make(map[string]bool),
		log:           slog.Default().With("tag", "room", "room", code),
		Commands:      make(chan Command, 64),
		Done:          make(chan struct{}),
		NewID:         newID,
	}
}

// Run is the room loop. It processes commands sequentially until the room closes.
// It should be run as a goroutine.
func (r *Room) Run() {
	defer r.shutdown()
	for {
		cmd, ok := <-r.Commands
		if !ok {
			return
		}
		res := r.handle(cmd)
		if cmd.Reply != nil {
			cmd.Reply <- res
		}
		if r.closed {
			return
		}
	}
}

func (r *Room) handle(cmd Command) Result {
	var err error
	switch cmd.Type {
	case CmdJoin:
		var id string
		id, err = r.handleJoin(cmd.PlayerID, cmd.UserID, cmd.Name, cmd.Send)
		return Result{PlayerID: id, Err: err}
	case CmdAddBot:
		var id string
		id, err = r.handleAddBot(cmd.PlayerID, cmd.Name, cmd.Send)
		return Result{PlayerID: id, Err: err}
	case CmdLeave:
		err = r.handleLeave(cmd.PlayerID)
	case CmdDisconnect:
		r.handleDisconnect(cmd.PlayerID)
	case CmdToggleReady:
		err = r.handleToggleReady(cmd.PlayerID)
	case CmdStart:
		err = r.handleStart(cmd.PlayerID)
	case CmdKick:
		err = r.handleKick(cmd.PlayerID, cmd.TargetID)
	case CmdPlayCard:
		err = r.handlePlayCard(cmd.PlayerID, cmd.CardID, cmd.Skip)
	case CmdChooseAction:
		err = r.handleChooseAction(cmd.PlayerID, cmd.Action)
	case CmdActionTimeout:
		err = r.handleActionTimeout(cmd.PlayerID)
	case CmdClose:
		r.close("shutdown")
	case cmdDeadline:
		r.handleDeadline(cmd.Deadline, cmd.Seq)
	case cmdAbandon:
		r.handleAbandon()
	}
	return Result{PlayerID: cmd.PlayerID, Err: err}
}

// do enqueues cmd and waits for its reply.
func (r *Room) do(cmd Command) Result {
	cmd.Reply = make(chan Result, 1)
	select {
	case r.Commands <- cmd:
	case <-r.Done:
		return Result{Err: roomerrors.ErrRoomClosed}
	}
	select {
	case res := <-cmd.Reply:
		return res
	case <-r.Done:
		select {
		case res := <-cmd.Reply:
			return res
		default:
			return Result{Err: roomerrors.ErrRoomClosed}
		}
	}
}

// Join seats a new player, or rebinds a disconnected one when playerID matches a seat.
func (r *Room) Join(playerID, userID, name string, send chan []byte) (string, error) {
	res := r.do(Command{Type: CmdJoin, PlayerID: playerID, UserID: userID, Name: name, Send: send})
	return res.PlayerID, res.Err
}

// AddBot seats a bot on behalf of the host. The room owns and eventually closes send.
func (r *Room) AddBot(hostID, name string, send chan []byte) (string, error) {
	res := r.do(Command{Type: CmdAddBot, PlayerID: hostID, Name: name, Send: send})
	return res.PlayerID, res.Err
}

// Leave removes the player (forfeiting a running match).
func (r *Room) Leave(playerID string) error {
	return r.do(Command{Type: CmdLeave, PlayerID: playerID}).Err
}

// Disconnect marks the player's connection as lost without waiting for the room.
func (r *Room) Disconnect(playerID string) {
	select {
	case r.Commands <- Command{Type: CmdDisconnect, PlayerID: playerID}:
	case <-r.Done:
	}
}

// ToggleReady flips the player's ready flag in the lobby.
func (r *Room) ToggleReady(playerID string) error {
	return r.do(Command{Type: CmdToggleReady, PlayerID: playerID}).Err
}

// Start begins a match. Host only.
func (r *Room) Start(playerID string) error {
	return r.do(Command{Type: CmdStart, PlayerID: playerID}).Err
}

// Kick removes another player from the lobby. Host only.
func (r *Room) Kick(hostID, targetID string) error {
	return r.do(Command{Type: CmdKick, PlayerID: hostID, TargetID: targetID}).Err
}

// PlayCard submits a card from hand, or a skip.
func (r *Room) PlayCard(playerID string, cardID int, skip bool) error {
	return r.do(Command{Type: CmdPlayCard, PlayerID: playerID, CardID: cardID, Skip: skip}).Err
}

// ChooseAction submits the action for the played card.
func (r *Room) ChooseAction(playerID string, action Action) error {
	return r.do(Command{Type: CmdChooseAction, PlayerID: playerID, Action: action}).Err
}

// ActionTimeout reports that the player's client ran out of time in the action phase.
func (r *Room) ActionTimeout(playerID string) error {
	return r.do(Command{Type: CmdActionTimeout, PlayerID: playerID}).Err
}

// Close stops the room.
func (r *Room) Close() {
	select {
	case r.Commands <- Command{Type: CmdClose}:
	case <-r.Done:
	}
}

func (r *Room) player(id string) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) send(p *Player, v any) {
	if p == nil || p.Send == nil || p.Disconnected {
		return
	}
	wsutil.SendJSON(p.Send, v)
}

func (r *Room) broadcast(v any) {
	for _, p := range r.Players {
		r.send(p, v)
	}
}

func (r *Room) broadcastLobby() {
	r.broadcast(LobbyUpdateMsg{Type: "lobby_update", Code: r.Code, HostID: r.HostID, Players: r.summaries()})
}

func (r *Room) connectedHumans() int {
	n := 0
	for _, p := range r.Players {
		if !p.IsBot && !p.Disconnected && !p.Left {
			n++
		}
	}
	return n
}

func (r *Room) close(reason string) {
	if r.closed {
		return
	}
	r.closed = true
	r.disarm()
	r.cancelAbandonTimer()
	r.log.Info("room closed", "reason", reason)
}

// shutdown runs when the loop exits: bot channels belong to the room and are closed here.
func (r *Room) shutdown() {
	r.closed = true
	r.disarm()
	r.cancelAbandonTimer()
	for _, p := range r.Players {
		if p.IsBot && p.Send != nil {
			close(p.Send)
			p.Send = nil
		}
	}
	close(r.Done)
	if r.OnClose != nil {
		r.OnClose(r.Code)
	}
}
