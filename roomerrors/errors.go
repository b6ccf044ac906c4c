package roomerrors

import "errors"

// Room sentinel errors. Used by the game, lobby and ws packages
// to avoid circular imports. Their text is shown to players as-is.
var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomFull         = errors.New("room is full")
	ErrRoomClosed       = errors.New("room is closed")
	ErrGameInProgress   = errors.New("a game is already in progress")
	ErrNotInRoom        = errors.New("you are not in this room")
	ErrNotHost          = errors.New("only the host can do that")
	ErrNotEnoughPlayers = errors.New("not enough players to start")
	ErrNotAllReady      = errors.New("not every player is ready")
	ErrInvalidName      = errors.New("invalid name")
	ErrNameTaken        = errors.New("that name is already taken in this room")
	ErrWrongPhase       = errors.New("that is not allowed in the current phase")
	ErrEliminated       = errors.New("you have been eliminated")
	ErrAlreadyDecided   = errors.New("you have already decided this phase")
	ErrCardNotInHand    = errors.New("that card is not in your hand")
	ErrInvalidAction    = errors.New("unknown action")
	ErrNoPlayedCard     = errors.New("you did not play a card this turn")
	ErrNoSkill          = errors.New("this card has no skill")
	ErrNoBotAvailable   = errors.New("no bot profile available")
	ErrCannotKickSelf   = errors.New("you cannot kick yourself")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrAlreadyConnected = errors.New("that player is already connected")
)
