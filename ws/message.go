package ws

import (
	"errors"

	"github.com/tidwall/gjson"
)

var errBadEnvelope = errors.New("invalid message format")

// InboundEnvelope is the generic envelope for all client-to-server messages.
// The Type field is used for routing; Raw holds the full JSON payload.
type InboundEnvelope struct {
	Type string
	Raw  []byte
}

// ParseEnvelope validates the JSON and reads its type.
func ParseEnvelope(data []byte) (InboundEnvelope, error) {
	if !gjson.ValidBytes(data) {
		return InboundEnvelope{}, errBadEnvelope
	}
	t := gjson.GetBytes(data, "type")
	if t.Type != gjson.String || t.Str == "" {
		return InboundEnvelope{}, errBadEnvelope
	}
	return InboundEnvelope{Type: t.Str, Raw: data}, nil
}

// --- Client-to-Server message payloads ---

// CreateRoomMsg opens a new room with the sender as host.
type CreateRoomMsg struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// JoinRoomMsg joins a room by code. PlayerID is set when rejoining a seat.
type JoinRoomMsg struct {
	Type     string `json:"type"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	PlayerID string `json:"playerId,omitempty"`
}

// PlayCardMsg submits a card, or a skip.
type PlayCardMsg struct {
	Type   string `json:"type"`
	CardID int    `json:"cardId"`
	Skip   bool   `json:"skip,omitempty"`
}

// ChooseActionMsg submits an action code 1-4.
type ChooseActionMsg struct {
	Type   string `json:"type"`
	Action int    `json:"action"`
}

// KickPlayerMsg asks the host's room to remove a player.
type KickPlayerMsg struct {
	Type     string `json:"type"`
	PlayerID string `json:"playerId"`
}

// --- Server-to-Client messages ---

// ErrorMsg is sent when a client action is invalid.
type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// RoomJoinedMsg tells the client its seat. Clients keep PlayerID to rejoin.
type RoomJoinedMsg struct {
	Type     string `json:"type"`
	Code     string `json:"code"`
	PlayerID string `json:"playerId"`
}

// LeftRoomMsg confirms leave_room.
type LeftRoomMsg struct {
	Type string `json:"type"`
	Code string `json:"code"`
}
