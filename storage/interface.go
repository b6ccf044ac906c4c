package storage

import (
	"context"

	"stage-battle-server/game"
)

// HistoryStore abstracts persistence for match history and the leaderboard.
// Implementations can be swapped for testing (mocks) or different backends (e.g. read replicas).
type HistoryStore interface {
	// Read
	ListByUserID(ctx context.Context, userID string, limit int) ([]MatchRecord, error)
	ListLeaderboard(ctx context.Context, limit, offset int) ([]LeaderboardEntry, error)
	GetLeaderboardEntryByUserID(ctx context.Context, userID string) (*LeaderboardEntry, error)

	// Write
	RecordMatch(ctx context.Context, res game.MatchResult) error

	// Lifecycle
	Close()
}

// Ensure *Store implements HistoryStore at compile time.
var _ HistoryStore = (*Store)(nil)
