package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"stage-battle-server/game"
	"stage-battle-server/roomerrors"
	"stage-battle-server/wsutil"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

var errNoRoom = errors.New("you are not in a room")

// Client is a middleman between the websocket connection and a room.
type Client struct {
	Hub    *Hub
	Conn   *websocket.Conn
	Send   chan []byte
	UserID string // empty for guests
	Name   string // from the token; guests name themselves per room

	limiter *rate.Limiter

	mu       sync.Mutex
	room     *game.Room
	playerID string
}

func (c *Client) seat() (*game.Room, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room, c.playerID
}

func (c *Client) setSeat(room *game.Room, playerID string) {
	c.mu.Lock()
	c.room, c.playerID = room, playerID
	c.mu.Unlock()
}

// ReadPump pumps messages from the websocket connection to the room.
// It runs in its own goroutine per connection.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.Hub.Unregister <- c:
		case <-c.Hub.quit:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read", "tag", "ws", "err", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// WritePump pumps messages from the send channel to the websocket connection.
// It runs in its own goroutine per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(data []byte) {
	if c.limiter != nil && !c.limiter.Allow() {
		c.sendError("Too many messages, slow down.")
		return
	}
	envelope, err := ParseEnvelope(data)
	if err != nil {
		c.sendError("Invalid message format.")
		return
	}

	switch envelope.Type {
	case "create_room":
		err = c.handleCreateRoom(envelope.Raw)
	case "join_room":
		err = c.handleJoinRoom(envelope.Raw)
	case "leave_room":
		err = c.handleLeaveRoom()
	case "toggle_ready":
		err = c.inRoom(func(r *game.Room, id string) error { return r.ToggleReady(id) })
	case "start_game":
		err = c.inRoom(func(r *game.Room, id string) error { return r.Start(id) })
	case "add_bot":
		err = c.inRoom(func(r *game.Room, id string) error {
			_, err := c.Hub.Rooms.AddBot(r, id)
			return err
		})
	case "kick_player":
		var msg KickPlayerMsg
		if json.Unmarshal(envelope.Raw, &msg) != nil {
			c.sendError("Invalid kick_player message.")
			return
		}
		err = c.inRoom(func(r *game.Room, id string) error { return r.Kick(id, msg.PlayerID) })
	case "play_card":
		var msg PlayCardMsg
		if json.Unmarshal(envelope.Raw, &msg) != nil {
			c.sendError("Invalid play_card message.")
			return
		}
		err = c.inRoom(func(r *game.Room, id string) error { return r.PlayCard(id, msg.CardID, msg.Skip) })
	case "choose_action":
		var msg ChooseActionMsg
		if json.Unmarshal(envelope.Raw, &msg) != nil {
			c.sendError("Invalid choose_action message.")
			return
		}
		action, perr := game.ParseAction(msg.Action)
		if perr != nil {
			err = roomerrors.ErrInvalidAction
			break
		}
		err = c.inRoom(func(r *game.Room, id string) error { return r.ChooseAction(id, action) })
	case "action_timeout":
		err = c.inRoom(func(r *game.Room, id string) error { return r.ActionTimeout(id) })
	default:
		c.sendError("Unknown message type: " + envelope.Type)
		return
	}
	if err != nil {
		c.sendError(errorText(err))
	}
}

// inRoom runs fn against the client's current seat.
func (c *Client) inRoom(fn func(r *game.Room, playerID string) error) error {
	room, id := c.seat()
	if room == nil {
		return errNoRoom
	}
	return fn(room, id)
}

func (c *Client) displayName(requested string) string {
	if name := strings.TrimSpace(requested); name != "" {
		return name
	}
	return c.Name
}

func (c *Client) handleCreateRoom(raw []byte) error {
	var msg CreateRoomMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return errBadEnvelope
	}
	c.leaveCurrent()

	room, err := c.Hub.Rooms.Create()
	if err != nil {
		slog.Error("creating room", "tag", "ws", "err", err)
		return err
	}
	id, err := room.Join("", c.UserID, c.displayName(msg.Name), c.Send)
	if err != nil {
		// Nobody is seated; do not leave an empty room behind.
		room.Close()
		return err
	}
	c.setSeat(room, id)
	wsutil.SendJSON(c.Send, RoomJoinedMsg{Type: "room_joined", Code: room.Code, PlayerID: id})
	return nil
}

func (c *Client) handleJoinRoom(raw []byte) error {
	var msg JoinRoomMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		return errBadEnvelope
	}
	room, err := c.Hub.Rooms.Get(msg.Code)
	if err != nil {
		return err
	}
	if cur, curID := c.seat(); cur == room && curID != "" && curID == msg.PlayerID {
		return roomerrors.ErrAlreadyConnected
	}
	c.leaveCurrent()

	id, err := room.Join(msg.PlayerID, c.UserID, c.displayName(msg.Name), c.Send)
	if err != nil {
		return err
	}
	c.setSeat(room, id)
	wsutil.SendJSON(c.Send, RoomJoinedMsg{Type: "room_joined", Code: room.Code, PlayerID: id})
	return nil
}

func (c *Client) handleLeaveRoom() error {
	room, id := c.seat()
	if room == nil {
		return errNoRoom
	}
	c.setSeat(nil, "")
	if err := room.Leave(id); err != nil && !errors.Is(err, roomerrors.ErrRoomClosed) {
		return err
	}
	wsutil.SendJSON(c.Send, LeftRoomMsg{Type: "left_room", Code: room.Code})
	return nil
}

// leaveCurrent gives up the current seat before taking another one.
func (c *Client) leaveCurrent() {
	room, id := c.seat()
	if room == nil {
		return
	}
	c.setSeat(nil, "")
	if err := room.Leave(id); err != nil {
		slog.Debug("leaving previous room", "tag", "ws", "room", room.Code, "err", err)
	}
}

// errorText turns room errors into the message shown to the player.
func errorText(err error) string {
	msg := err.Error()
	if msg == "" {
		return "Request rejected."
	}
	return strings.ToUpper(msg[:1]) + msg[1:] + "."
}

func (c *Client) sendError(message string) {
	wsutil.SendJSON(c.Send, ErrorMsg{Type: "error", Message: message})
}
