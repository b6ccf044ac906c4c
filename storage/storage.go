package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stage-battle-server/game"
)

const (
	EloK            = 32
	InitialElo      = 1000
	botUserIDPrefix = "bot:"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS match_history (
	id          UUID PRIMARY KEY,
	played_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	started_at  TIMESTAMPTZ NOT NULL,
	room_code   TEXT NOT NULL,
	turns       INT NOT NULL,
	draw        BOOLEAN NOT NULL DEFAULT false,
	winner_id   TEXT,
	end_reason  TEXT
);
CREATE TABLE IF NOT EXISTS match_players (
	match_id     UUID NOT NULL REFERENCES match_history(id),
	player_id    TEXT NOT NULL,
	user_id      TEXT,
	name         TEXT NOT NULL,
	is_bot       BOOLEAN NOT NULL DEFAULT false,
	heart        INT NOT NULL,
	total_score  DOUBLE PRECISION NOT NULL,
	placement    INT NOT NULL,
	winner       BOOLEAN NOT NULL DEFAULT false,
	draw         BOOLEAN NOT NULL DEFAULT false,
	forfeited    BOOLEAN NOT NULL DEFAULT false,
	elo_before   INT,
	elo_after    INT,
	PRIMARY KEY (match_id, player_id)
);
CREATE INDEX IF NOT EXISTS idx_match_players_user_id ON match_players(user_id);
CREATE TABLE IF NOT EXISTS player_ratings (
	user_id      TEXT PRIMARY KEY,
	display_name TEXT NOT NULL DEFAULT '',
	elo          INT  NOT NULL DEFAULT 1000,
	wins         INT  NOT NULL DEFAULT 0,
	losses       INT  NOT NULL DEFAULT 0,
	draws        INT  NOT NULL DEFAULT 0,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_player_ratings_elo ON player_ratings(elo DESC);
`

// Store persists and retrieves match history.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to Postgres and ensures the tables exist.
// If databaseURL is empty, NewStore returns (nil, nil) and no persistence occurs.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, err
	}
	slog.Info("connected to Postgres", "tag", "storage")
	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// ratingID is the player_ratings key for a seat, or "" for unrated guests.
func ratingID(p game.MatchPlayer) string {
	if p.IsBot {
		return botUserIDPrefix + p.Name
	}
	return p.UserID
}

// placements ranks the seats: the winner or the drawn players share first
// place, the rest follow by heart then total score, forfeits last. Equal
// records share a place.
func placements(players []game.MatchPlayer) []int {
	type standing struct {
		tier  int
		heart int
		score float64
	}
	ranks := make([]standing, len(players))
	for i, p := range players {
		st := standing{tier: 1, heart: p.Heart, score: p.TotalScore}
		switch {
		case p.Winner || p.Draw:
			st.tier = 0
		case p.Forfeited:
			st.tier = 2
		}
		ranks[i] = st
	}
	ahead := func(a, b standing) bool {
		if a.tier != b.tier {
			return a.tier < b.tier
		}
		if a.tier == 0 {
			return false
		}
		if a.heart != b.heart {
			return a.heart > b.heart
		}
		return a.score > b.score
	}
	out := make([]int, len(players))
	for i := range ranks {
		out[i] = 1
		for j := range ranks {
			if i != j && ahead(ranks[j], ranks[i]) {
				out[i]++
			}
		}
	}
	return out
}

// computeEloUpdates returns new ratings after a multi-player match. Each pair
// of seats is scored as a head-to-head game (the better placement wins, equal
// placements draw) and the K factor is split across the opponents.
func computeEloUpdates(ratings, places []int) []int {
	n := len(ratings)
	out := make([]int, n)
	copy(out, ratings)
	if n < 2 {
		return out
	}
	k := float64(EloK) / float64(n-1)
	for i := range ratings {
		delta := 0.0
		for j := range ratings {
			if i == j {
				continue
			}
			var score float64
			switch {
			case places[i] < places[j]:
				score = 1
			case places[i] == places[j]:
				score = 0.5
			}
			expected := 1 / (1 + math.Pow(10, float64(ratings[j]-ratings[i])/400))
			delta += k * (score - expected)
		}
		out[i] = max(ratings[i]+int(math.Round(delta)), 0)
	}
	return out
}

// RecordMatch stores a finished match and updates the ratings of every
// identified seat in one transaction. Guests without a user id are stored
// but not rated.
func (s *Store) RecordMatch(ctx context.Context, res game.MatchResult) error {
	if s == nil || s.pool == nil {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var winner *string
	if res.WinnerID != "" {
		winner = &res.WinnerID
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO match_history (id, played_at, started_at, room_code, turns, draw, winner_id, end_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		res.MatchID, res.EndedAt, res.StartedAt, res.RoomCode, res.Turns, res.Draw, winner, res.Reason)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}

	places := placements(res.Players)

	// Rated seats, in seat order.
	var rated []int
	for i, p := range res.Players {
		if ratingID(p) != "" {
			rated = append(rated, i)
		}
	}
	before := make([]int, len(rated))
	for k, i := range rated {
		id := ratingID(res.Players[i])
		_, err = tx.Exec(ctx, `INSERT INTO player_ratings (user_id, display_name) VALUES ($1, $2) ON CONFLICT (user_id) DO NOTHING`, id, res.Players[i].Name)
		if err != nil {
			return fmt.Errorf("ensure rating %s: %w", id, err)
		}
		if err = tx.QueryRow(ctx, `SELECT elo FROM player_ratings WHERE user_id = $1 FOR UPDATE`, id).Scan(&before[k]); err != nil {
			return fmt.Errorf("read rating %s: %w", id, err)
		}
	}
	ratedPlaces := make([]int, len(rated))
	for k, i := range rated {
		ratedPlaces[k] = places[i]
	}
	after := computeEloUpdates(before, ratedPlaces)

	eloBefore := make(map[int]*int, len(rated))
	eloAfter := make(map[int]*int, len(rated))
	for k, i := range rated {
		p := res.Players[i]
		win, loss, draw := 0, 0, 0
		switch {
		case p.Winner:
			win = 1
		case p.Draw:
			draw = 1
		default:
			loss = 1
		}
		_, err = tx.Exec(ctx, `
			UPDATE player_ratings
			SET display_name = $1, elo = $2, wins = wins + $3, losses = losses + $4, draws = draws + $5, updated_at = now()
			WHERE user_id = $6`,
			p.Name, after[k], win, loss, draw, ratingID(p))
		if err != nil {
			return fmt.Errorf("update rating %s: %w", ratingID(p), err)
		}
		eloBefore[i] = &before[k]
		eloAfter[i] = &after[k]
	}

	for i, p := range res.Players {
		var userID *string
		if id := ratingID(p); id != "" {
			userID = &id
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO match_players (match_id, player_id, user_id, name, is_bot, heart, total_score, placement, winner, draw, forfeited, elo_before, elo_after)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			res.MatchID, p.PlayerID, userID, p.Name, p.IsBot, p.Heart, p.TotalScore, places[i], p.Winner, p.Draw, p.Forfeited, eloBefore[i], eloAfter[i])
		if err != nil {
			return fmt.Errorf("insert player %s: %w", p.PlayerID, err)
		}
	}
	return tx.Commit(ctx)
}

// PlayerRecord is one seat of a stored match.
type PlayerRecord struct {
	PlayerID   string  `json:"player_id"`
	UserID     string  `json:"user_id,omitempty"`
	Name       string  `json:"name"`
	IsBot      bool    `json:"is_bot"`
	Heart      int     `json:"heart"`
	TotalScore float64 `json:"total_score"`
	Placement  int     `json:"placement"`
	Winner     bool    `json:"winner"`
	Draw       bool    `json:"draw"`
	Forfeited  bool    `json:"forfeited"`
	EloBefore  *int    `json:"elo_before,omitempty"`
	EloAfter   *int    `json:"elo_after,omitempty"`
	IsYou      bool    `json:"is_you,omitempty"`
}

// MatchRecord is a single match returned for the history API.
type MatchRecord struct {
	ID        string         `json:"id"`
	PlayedAt  string         `json:"played_at"` // ISO8601
	RoomCode  string         `json:"room_code"`
	Turns     int            `json:"turns"`
	Draw      bool           `json:"draw"`
	WinnerID  *string        `json:"winner_id"`
	EndReason string         `json:"end_reason"`
	Players   []PlayerRecord `json:"players"`
}

// ListByUserID returns the user's most recent matches, newest first, with every seat of each match.
func (s *Store) ListByUserID(ctx context.Context, userID string, limit int) ([]MatchRecord, error) {
	if s == nil || s.pool == nil || userID == "" {
		return []MatchRecord{}, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT h.id, h.played_at, h.room_code, h.turns, h.draw, h.winner_id, COALESCE(h.end_reason, '')
		FROM match_history h
		WHERE h.id IN (SELECT match_id FROM match_players WHERE user_id = $1)
		ORDER BY h.played_at DESC
		LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (MatchRecord, error) {
		var r MatchRecord
		var playedAt time.Time
		if err := row.Scan(&r.ID, &playedAt, &r.RoomCode, &r.Turns, &r.Draw, &r.WinnerID, &r.EndReason); err != nil {
			return r, err
		}
		r.PlayedAt = playedAt.UTC().Format(time.RFC3339)
		return r, nil
	})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return []MatchRecord{}, nil
	}

	ids := make([]string, len(out))
	index := make(map[string]int, len(out))
	for i, r := range out {
		ids[i] = r.ID
		index[r.ID] = i
	}
	prow, err := s.pool.Query(ctx, `
		SELECT match_id::text, player_id, COALESCE(user_id, ''), name, is_bot, heart, total_score, placement, winner, draw, forfeited, elo_before, elo_after
		FROM match_players
		WHERE match_id::text = ANY($1)
		ORDER BY placement, name`,
		ids)
	if err != nil {
		return nil, err
	}
	defer prow.Close()
	for prow.Next() {
		var matchID string
		var p PlayerRecord
		if err := prow.Scan(&matchID, &p.PlayerID, &p.UserID, &p.Name, &p.IsBot, &p.Heart, &p.TotalScore, &p.Placement, &p.Winner, &p.Draw, &p.Forfeited, &p.EloBefore, &p.EloAfter); err != nil {
			return nil, err
		}
		p.IsYou = p.UserID == userID
		if i, ok := index[matchID]; ok {
			out[i].Players = append(out[i].Players, p)
		}
	}
	return out, prow.Err()
}

// LeaderboardEntry is a single row for the leaderboard API.
type LeaderboardEntry struct {
	UserID        string `json:"user_id"`
	DisplayName   string `json:"display_name"`
	Elo           int    `json:"elo"`
	Wins          int    `json:"wins"`
	Losses        int    `json:"losses"`
	Draws         int    `json:"draws"`
	IsBot         bool   `json:"is_bot"`
	IsCurrentUser bool   `json:"is_current_user,omitempty"`
}

// ListLeaderboard returns entries ordered by elo DESC, with optional limit and offset.
func (s *Store) ListLeaderboard(ctx context.Context, limit, offset int) ([]LeaderboardEntry, error) {
	if s == nil || s.pool == nil {
		return []LeaderboardEntry{}, nil
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.pool.Query(ctx, `
		SELECT user_id, display_name, elo, wins, losses, draws
		FROM player_ratings
		ORDER BY elo DESC, user_id
		LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []LeaderboardEntry{}
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.DisplayName, &e.Elo, &e.Wins, &e.Losses, &e.Draws); err != nil {
			return nil, err
		}
		e.IsBot = strings.HasPrefix(e.UserID, botUserIDPrefix)
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetLeaderboardEntryByUserID returns one player's leaderboard entry by user_id, or (nil, nil) if not found.
func (s *Store) GetLeaderboardEntryByUserID(ctx context.Context, userID string) (*LeaderboardEntry, error) {
	if s == nil || s.pool == nil || userID == "" {
		return nil, nil
	}
	var e LeaderboardEntry
	err := s.pool.QueryRow(ctx, `
		SELECT user_id, display_name, elo, wins, losses, draws
		FROM player_ratings
		WHERE user_id = $1`,
		userID).Scan(&e.UserID, &e.DisplayName, &e.Elo, &e.Wins, &e.Losses, &e.Draws)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	e.IsBot = strings.HasPrefix(e.UserID, botUserIDPrefix)
	return &e, nil
}
