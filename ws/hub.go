package ws

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"stage-battle-server/auth"
	"stage-battle-server/config"
	"stage-battle-server/game"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for development; restrict in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RoomStore defines what the Hub needs from the lobby.
type RoomStore interface {
	Create() (*game.Room, error)
	Get(code string) (*game.Room, error)
	AddBot(room *game.Room, hostID string) (string, error)
}

// Hub maintains the set of active clients and routes messages.
type Hub struct {
	Clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	Rooms      RoomStore
	Config     *config.Config
	Auth       *auth.Validator

	quit chan struct{}
}

// NewHub creates a new Hub. validator may be nil, in which case every
// connection is a guest.
func NewHub(cfg *config.Config, rooms RoomStore, validator *auth.Validator) *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Rooms:      rooms,
		Config:     cfg,
		Auth:       validator,
		quit:       make(chan struct{}),
	}
}

// Run starts the hub's main loop. Should be run as a goroutine.
// When ctx is cancelled (e.g. on server shutdown), Run closes every client and returns.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.quit)
	for {
		select {
		case <-ctx.Done():
			slog.Info("shutdown signal received, stopping", "tag", "ws", "clients", len(h.Clients))
			for client := range h.Clients {
				h.drop(client)
			}
			return
		case client := <-h.Register:
			h.Clients[client] = true
			slog.Info("client connected", "tag", "ws", "clients", len(h.Clients), "user", client.UserID)

		case client := <-h.Unregister:
			if _, ok := h.Clients[client]; ok {
				h.drop(client)
				slog.Info("client disconnected", "tag", "ws", "clients", len(h.Clients))
			}
		}
	}
}

// drop forgets the client and, if it holds a seat, tells the room the
// connection is gone. The seat survives for a rejoin.
func (h *Hub) drop(client *Client) {
	delete(h.Clients, client)
	close(client.Send)
	if room, playerID := client.seat(); room != nil {
		room.Disconnect(playerID)
	}
}

// ServeWS handles WebSocket upgrade requests and creates a new Client.
// A token that fails validation is refused before the upgrade.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	identity, err := h.Auth.FromRequest(r)
	if err != nil {
		slog.Warn("rejected token", "tag", "ws", "err", err)
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade", "tag", "ws", "err", err)
		return
	}

	client := &Client{
		Hub:     h,
		Conn:    conn,
		Send:    make(chan []byte, 256),
		UserID:  identity.UserID,
		Name:    identity.Name,
		limiter: rate.NewLimiter(rate.Limit(h.Config.MessagesPerSecond), h.Config.MessageBurst),
	}

	select {
	case h.Register <- client:
	case <-h.quit:
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}
