package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/sync/singleflight"

	"stage-battle-server/auth"
	"stage-battle-server/catalog"
	"stage-battle-server/game"
	"stage-battle-server/storage"
)

// SkillLister lists the skill definitions for the catalog endpoint.
type SkillLister interface {
	All() []game.SkillDef
}

// RoomCounter reports how many rooms are live.
type RoomCounter interface {
	Len() int
}

// Handler holds dependencies for API handlers.
type Handler struct {
	HistoryStore storage.HistoryStore
	Auth         *auth.Validator
	Catalog      *catalog.Catalog
	Skills       SkillLister
	Rooms        RoomCounter

	leaderboard singleflight.Group
}

// NewHandler creates a new API handler with the given dependencies. history
// and validator may be nil.
func NewHandler(history storage.HistoryStore, validator *auth.Validator, cat *catalog.Catalog, skills SkillLister, rooms RoomCounter) *Handler {
	return &Handler{
		HistoryStore: history,
		Auth:         validator,
		Catalog:      cat,
		Skills:       skills,
		Rooms:        rooms,
	}
}

// Register mounts the endpoints on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/history", h.History)
	mux.HandleFunc("/api/leaderboard", h.Leaderboard)
	mux.HandleFunc("/api/catalog", h.CatalogInfo)
	mux.HandleFunc("/healthz", h.Health)
}

// CORS sets CORS headers on the response. Call before writing body.
func CORS(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return true
	}
	return false
}

// preflight handles CORS and rejects anything but GET. It reports whether the handler should stop.
func preflight(w http.ResponseWriter, r *http.Request) bool {
	if CORS(w, r) {
		return true
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encoding response", "tag", "api", "err", err)
	}
}

// userID returns the authenticated user, or "" for guests and bad tokens.
func (h *Handler) userID(r *http.Request) string {
	if h.Auth == nil {
		return ""
	}
	id, err := h.Auth.FromRequest(r)
	if err != nil {
		slog.Debug("rejected token", "tag", "api", "err", err)
		return ""
	}
	return id.UserID
}

// History returns the match history for the authenticated user.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}

	userID := h.userID(r)
	if userID == "" {
		http.Error(w, "authorization required", http.StatusUnauthorized)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list := []storage.MatchRecord{}
	if h.HistoryStore != nil {
		var err error
		list, err = h.HistoryStore.ListByUserID(r.Context(), userID, limit)
		if err != nil {
			slog.Error("ListByUserID", "tag", "api", "err", err)
			http.Error(w, "failed to load history", http.StatusInternalServerError)
			return
		}
	}
	writeJSON(w, list)
}

// LeaderboardResponse is the JSON structure for /api/leaderboard.
type LeaderboardResponse struct {
	Entries          []storage.LeaderboardEntry `json:"entries"`
	CurrentUserEntry *storage.LeaderboardEntry  `json:"current_user_entry"`
}

// Leaderboard returns the global leaderboard with optional current user entry.
// Concurrent requests for the same page share one query.
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 20
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	shared := []storage.LeaderboardEntry{}
	if h.HistoryStore != nil {
		key := fmt.Sprintf("%d:%d", limit, offset)
		v, err, _ := h.leaderboard.Do(key, func() (any, error) {
			return h.HistoryStore.ListLeaderboard(r.Context(), limit, offset)
		})
		if err != nil {
			slog.Error("ListLeaderboard", "tag", "api", "err", err)
			http.Error(w, "failed to load leaderboard", http.StatusInternalServerError)
			return
		}
		shared = v.([]storage.LeaderboardEntry)
	}
	// The slice is shared with other callers; mark the current user on a copy.
	entries := make([]storage.LeaderboardEntry, len(shared))
	copy(entries, shared)

	var currentUserEntry *storage.LeaderboardEntry
	authUserID := h.userID(r)
	if authUserID != "" && h.HistoryStore != nil {
		inTop := false
		for i := range entries {
			if entries[i].UserID == authUserID {
				entries[i].IsCurrentUser = true
				inTop = true
				break
			}
		}
		if !inTop {
			cur, err := h.HistoryStore.GetLeaderboardEntryByUserID(r.Context(), authUserID)
			if err != nil {
				slog.Error("GetLeaderboardEntryByUserID", "tag", "api", "err", err)
			} else if cur != nil {
				cur.IsCurrentUser = true
				currentUserEntry = cur
			}
		}
	}

	writeJSON(w, LeaderboardResponse{Entries: entries, CurrentUserEntry: currentUserEntry})
}

// SkillInfo describes one skill for clients.
type SkillInfo struct {
	ID          catalog.SkillID `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
}

// CatalogResponse is the JSON structure for /api/catalog.
type CatalogResponse struct {
	Cards  []catalog.Card  `json:"cards"`
	Events []catalog.Event `json:"events"`
	Skills []SkillInfo     `json:"skills"`
}

// CatalogInfo returns the card, event and skill catalog.
func (h *Handler) CatalogInfo(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	resp := CatalogResponse{Cards: h.Catalog.Cards, Events: h.Catalog.Events, Skills: []SkillInfo{}}
	if h.Skills != nil {
		for _, def := range h.Skills.All() {
			resp.Skills = append(resp.Skills, SkillInfo{ID: def.ID, Name: def.Name, Description: def.Description})
		}
	}
	writeJSON(w, resp)
}

// Health reports liveness and the number of live rooms.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	rooms := 0
	if h.Rooms != nil {
		rooms = h.Rooms.Len()
	}
	writeJSON(w, map[string]any{"status": "ok", "rooms": rooms})
}
