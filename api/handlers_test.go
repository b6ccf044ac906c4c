package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tidwall/gjson"

	"stage-battle-server/auth"
	"stage-battle-server/catalog"
	"stage-battle-server/game"
	"stage-battle-server/skill"
	"stage-battle-server/storage"
)

var secret = []byte("api-test-secret")

type fakeHistory struct {
	matches     []storage.MatchRecord
	board       []storage.LeaderboardEntry
	me          *storage.LeaderboardEntry
	err         error
	historyUser string
}

func (f *fakeHistory) ListByUserID(ctx context.Context, userID string, limit int) ([]storage.MatchRecord, error) {
	f.historyUser = userID
	return f.matches, f.err
}

func (f *fakeHistory) ListLeaderboard(ctx context.Context, limit, offset int) ([]storage.LeaderboardEntry, error) {
	return f.board, f.err
}

func (f *fakeHistory) GetLeaderboardEntryByUserID(ctx context.Context, userID string) (*storage.LeaderboardEntry, error) {
	return f.me, nil
}

func (f *fakeHistory) RecordMatch(ctx context.Context, res game.MatchResult) error { return nil }
func (f *fakeHistory) Close()                                                      {}

type fixedRooms int

func (n fixedRooms) Len() int { return int(n) }

func newHandler(h storage.HistoryStore) *Handler {
	v := auth.NewValidatorWithKeyfunc("https://auth.example", func(*jwt.Token) (any, error) { return secret, nil }, "HS256")
	reg := skill.NewRegistry()
	skill.RegisterAll(reg)
	return NewHandler(h, v, catalog.MustLoad(), reg, fixedRooms(3))
}

func bearer(t *testing.T, sub string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"iss": "https://auth.example", "sub": sub}).SignedString(secret)
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + s
}

func serve(h *Handler, r *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	h.Register(mux)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	return w
}

func TestHistoryRequiresAuth(t *testing.T) {
	h := newHandler(&fakeHistory{})
	w := serve(h, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestHistory(t *testing.T) {
	fake := &fakeHistory{matches: []storage.MatchRecord{{ID: "m1", RoomCode: "ABCDE", Turns: 7}}}
	h := newHandler(fake)
	r := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	r.Header.Set("Authorization", bearer(t, "user-1"))
	w := serve(h, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if fake.historyUser != "user-1" {
		t.Errorf("queried history for %q", fake.historyUser)
	}
	if got := gjson.Get(w.Body.String(), "0.room_code").String(); got != "ABCDE" {
		t.Errorf("room_code = %q", got)
	}
}

func TestHistoryStoreError(t *testing.T) {
	h := newHandler(&fakeHistory{err: errors.New("db down")})
	r := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	r.Header.Set("Authorization", bearer(t, "user-1"))
	if w := serve(h, r); w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestLeaderboardMarksCurrentUser(t *testing.T) {
	fake := &fakeHistory{board: []storage.LeaderboardEntry{
		{UserID: "user-1", Elo: 1100},
		{UserID: "bot:Nenerobo", Elo: 1050, IsBot: true},
	}}
	h := newHandler(fake)

	r := httptest.NewRequest(http.MethodGet, "/api/leaderboard?limit=10", nil)
	r.Header.Set("Authorization", bearer(t, "user-1"))
	w := serve(h, r)

	var resp LeaderboardResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Entries) != 2 || !resp.Entries[0].IsCurrentUser {
		t.Errorf("entries = %+v", resp.Entries)
	}
	if resp.CurrentUserEntry != nil {
		t.Error("current user is in the page; no separate entry expected")
	}
	if fake.board[0].IsCurrentUser {
		t.Error("the shared result must not be modified")
	}
}

func TestLeaderboardOutsidePage(t *testing.T) {
	fake := &fakeHistory{
		board: []storage.LeaderboardEntry{{UserID: "user-1", Elo: 1100}},
		me:    &storage.LeaderboardEntry{UserID: "user-9", Elo: 900},
	}
	h := newHandler(fake)
	r := httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil)
	r.Header.Set("Authorization", bearer(t, "user-9"))
	w := serve(h, r)

	if got := gjson.Get(w.Body.String(), "current_user_entry.user_id").String(); got != "user-9" {
		t.Errorf("current_user_entry.user_id = %q", got)
	}
	if !gjson.Get(w.Body.String(), "current_user_entry.is_current_user").Bool() {
		t.Error("current user entry should be flagged")
	}
}

func TestLeaderboardWithoutStore(t *testing.T) {
	h := newHandler(nil)
	w := serve(h, httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := gjson.Get(w.Body.String(), "entries.#").Int(); got != 0 {
		t.Errorf("entries = %d, want 0", got)
	}
}

func TestCatalog(t *testing.T) {
	h := newHandler(nil)
	w := serve(h, httptest.NewRequest(http.MethodGet, "/api/catalog", nil))
	body := w.Body.String()
	if n := gjson.Get(body, "cards.#").Int(); n != int64(len(h.Catalog.Cards)) {
		t.Errorf("cards = %d, want %d", n, len(h.Catalog.Cards))
	}
	if n := gjson.Get(body, "skills.#").Int(); n != int64(len(catalog.AllSkills())) {
		t.Errorf("skills = %d, want %d", n, len(catalog.AllSkills()))
	}
	if got := gjson.Get(body, `skills.#(id=="leek_shield").name`).String(); got != "Leek Shield" {
		t.Errorf("leek_shield name = %q", got)
	}
}

func TestHealthAndMethods(t *testing.T) {
	h := newHandler(nil)
	w := serve(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if gjson.Get(w.Body.String(), "rooms").Int() != 3 {
		t.Errorf("healthz body = %s", w.Body.String())
	}

	w = serve(h, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d, want 405", w.Code)
	}
	w = serve(h, httptest.NewRequest(http.MethodOptions, "/api/catalog", nil))
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("preflight: %d %v", w.Code, w.Header())
	}
}
