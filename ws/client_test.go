package ws

import (
	"testing"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"stage-battle-server/catalog"
	"stage-battle-server/config"
	"stage-battle-server/lobby"
	"stage-battle-server/skill"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	cfg := config.Defaults()
	reg := skill.NewRegistry()
	skill.RegisterAll(reg)
	store := lobby.NewStore(cfg, catalog.MustLoad(), reg, nil)
	t.Cleanup(store.CloseAll)
	return NewHub(cfg, store, nil)
}

func newTestClient(h *Hub) *Client {
	return &Client{
		Hub:     h,
		Send:    make(chan []byte, 256),
		limiter: rate.NewLimiter(rate.Limit(h.Config.MessagesPerSecond), h.Config.MessageBurst),
	}
}

// drain returns every message queued for the client.
func drain(c *Client) []string {
	var out []string
	for {
		select {
		case m := <-c.Send:
			out = append(out, string(m))
		default:
			return out
		}
	}
}

func lastOfType(msgs []string, typ string) (gjson.Result, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if gjson.Get(msgs[i], "type").String() == typ {
			return gjson.Parse(msgs[i]), true
		}
	}
	return gjson.Result{}, false
}

func mustError(t *testing.T, c *Client, want string) {
	t.Helper()
	msg, ok := lastOfType(drain(c), "error")
	if !ok {
		t.Fatalf("expected error %q, got none", want)
	}
	if got := msg.Get("message").String(); got != want {
		t.Errorf("error = %q, want %q", got, want)
	}
}

func TestParseEnvelope(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{`{"type":"play_card","cardId":3}`, "play_card", true},
		{`{"type":""}`, "", false},
		{`{"type":7}`, "", false},
		{`{"cardId":3}`, "", false},
		{`not json`, "", false},
	}
	for _, tt := range tests {
		env, err := ParseEnvelope([]byte(tt.in))
		if (err == nil) != tt.ok {
			t.Errorf("ParseEnvelope(%s) err = %v, want ok=%v", tt.in, err, tt.ok)
			continue
		}
		if env.Type != tt.want {
			t.Errorf("ParseEnvelope(%s) type = %q, want %q", tt.in, env.Type, tt.want)
		}
	}
}

func TestCreateAndJoinRoom(t *testing.T) {
	h := newTestHub(t)
	host := newTestClient(h)
	guest := newTestClient(h)

	host.handleMessage([]byte(`{"type":"create_room","name":"Ichika"}`))
	joined, ok := lastOfType(drain(host), "room_joined")
	if !ok {
		t.Fatal("host got no room_joined")
	}
	code := joined.Get("code").String()
	if len(code) != 5 || joined.Get("playerId").String() == "" {
		t.Fatalf("bad room_joined: %s", joined.Raw)
	}

	guest.handleMessage([]byte(`{"type":"join_room","code":"` + code + `","name":"Saki"}`))
	msgs := drain(guest)
	if _, ok := lastOfType(msgs, "room_joined"); !ok {
		t.Fatalf("guest got no room_joined: %v", msgs)
	}

	lobbyMsg, ok := lastOfType(drain(host), "lobby_update")
	if !ok {
		t.Fatal("host got no lobby_update after the guest joined")
	}
	if n := lobbyMsg.Get("players.#").Int(); n != 2 {
		t.Errorf("lobby has %d players, want 2", n)
	}
}

func TestJoinUnknownRoom(t *testing.T) {
	h := newTestHub(t)
	c := newTestClient(h)
	c.handleMessage([]byte(`{"type":"join_room","code":"QQQQQ","name":"Saki"}`))
	mustError(t, c, "Room not found.")
}

func TestCreateRoomInvalidNameLeavesNoRoom(t *testing.T) {
	h := newTestHub(t)
	c := newTestClient(h)
	c.handleMessage([]byte(`{"type":"create_room","name":"   "}`))
	mustError(t, c, "Invalid name.")
	if room, _ := c.seat(); room != nil {
		t.Error("client should not hold a seat")
	}
}

func TestRejectsBadMessages(t *testing.T) {
	h := newTestHub(t)
	c := newTestClient(h)

	c.handleMessage([]byte(`{{{`))
	mustError(t, c, "Invalid message format.")

	c.handleMessage([]byte(`{"type":"dance"}`))
	mustError(t, c, "Unknown message type: dance")

	c.handleMessage([]byte(`{"type":"toggle_ready"}`))
	mustError(t, c, "You are not in a room.")
}

func TestRoomErrorsReachTheSender(t *testing.T) {
	h := newTestHub(t)
	c := newTestClient(h)
	c.handleMessage([]byte(`{"type":"create_room","name":"Kanade"}`))
	drain(c)

	c.handleMessage([]byte(`{"type":"play_card","cardId":1}`))
	mustError(t, c, "That is not allowed in the current phase.")

	c.handleMessage([]byte(`{"type":"choose_action","action":9}`))
	mustError(t, c, "Unknown action.")

	c.handleMessage([]byte(`{"type":"start_game"}`))
	mustError(t, c, "Not enough players to start.")
}

func TestAddBotAndLeave(t *testing.T) {
	h := newTestHub(t)
	c := newTestClient(h)
	c.handleMessage([]byte(`{"type":"create_room","name":"Emu"}`))
	drain(c)

	c.handleMessage([]byte(`{"type":"add_bot"}`))
	lobbyMsg, ok := lastOfType(drain(c), "lobby_update")
	if !ok {
		t.Fatal("no lobby_update after add_bot")
	}
	if !lobbyMsg.Get("players.1.isBot").Bool() {
		t.Errorf("second seat should be a bot: %s", lobbyMsg.Raw)
	}

	c.handleMessage([]byte(`{"type":"leave_room"}`))
	if _, ok := lastOfType(drain(c), "left_room"); !ok {
		t.Error("no left_room confirmation")
	}
	if room, _ := c.seat(); room != nil {
		t.Error("seat should be cleared after leave_room")
	}
}

func TestRateLimit(t *testing.T) {
	h := newTestHub(t)
	c := newTestClient(h)
	c.limiter = rate.NewLimiter(0, 1)

	c.handleMessage([]byte(`{"type":"toggle_ready"}`))
	mustError(t, c, "You are not in a room.")
	c.handleMessage([]byte(`{"type":"toggle_ready"}`))
	mustError(t, c, "Too many messages, slow down.")
}
