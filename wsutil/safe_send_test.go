package wsutil

import (
	"encoding/json"
	"testing"
)

func TestSafeSendClosedChannel(t *testing.T) {
	ch := make(chan []byte, 1)
	close(ch)
	if SafeSend(ch, []byte("x")) {
		t.Error("expected send on a closed channel to report false")
	}
}

func TestSafeSendFullChannel(t *testing.T) {
	ch := make(chan []byte, 1)
	if !SafeSend(ch, []byte("a")) {
		t.Fatal("expected first send to succeed")
	}
	if SafeSend(ch, []byte("b")) {
		t.Error("expected send on a full channel to report false")
	}
}

func TestSendJSON(t *testing.T) {
	ch := make(chan []byte, 1)
	if !SendJSON(ch, map[string]string{"type": "ping"}) {
		t.Fatal("expected SendJSON to succeed")
	}
	var msg map[string]string
	if err := json.Unmarshal(<-ch, &msg); err != nil {
		t.Fatal(err)
	}
	if msg["type"] != "ping" {
		t.Errorf("expected type=ping, got %q", msg["type"])
	}
}
