package storage

import (
	"testing"

	"stage-battle-server/game"
)

func TestComputeEloUpdates_WinLoss(t *testing.T) {
	// Same rating, player 0 places first: player 0 gains, player 1 loses
	got := computeEloUpdates([]int{1000, 1000}, []int{1, 2})
	if got[0] <= 1000 {
		t.Errorf("winner (0) should gain: got R0=%d", got[0])
	}
	if got[1] >= 1000 {
		t.Errorf("loser (1) should lose: got R1=%d", got[1])
	}
	if got[0]-1000 != 1000-got[1] {
		t.Errorf("two-player update should be zero-sum: %v", got)
	}
}

func TestComputeEloUpdates_Draw(t *testing.T) {
	got := computeEloUpdates([]int{1000, 1000, 1000}, []int{1, 1, 1})
	for i, r := range got {
		if r != 1000 {
			t.Errorf("draw at same rating: R%d should stay 1000, got %d", i, r)
		}
	}
}

func TestComputeEloUpdates_WeakerPlayerDrawsWithStronger(t *testing.T) {
	got := computeEloUpdates([]int{800, 1200}, []int{1, 1})
	if got[0] <= 800 {
		t.Errorf("weaker player should gain on draw: got %d", got[0])
	}
	if got[1] >= 1200 {
		t.Errorf("stronger player should lose on draw: got %d", got[1])
	}
}

func TestComputeEloUpdates_FourPlayers(t *testing.T) {
	got := computeEloUpdates([]int{1000, 1000, 1000, 1000}, []int{1, 2, 3, 4})
	for i := 1; i < len(got); i++ {
		if got[i] >= got[i-1] {
			t.Errorf("place %d should end below place %d: %v", i+1, i, got)
		}
	}
	// 32/3 per head-to-head, half of it expected: +16, +5, -5, -16
	if got[0] != 1016 || got[3] != 984 {
		t.Errorf("first/last = %d/%d, want 1016/984", got[0], got[3])
	}
}

func TestComputeEloUpdates_SinglePlayer(t *testing.T) {
	if got := computeEloUpdates([]int{1000}, []int{1}); got[0] != 1000 {
		t.Errorf("a lone seat has nobody to be rated against, got %d", got[0])
	}
}

func TestPlacements(t *testing.T) {
	players := []game.MatchPlayer{
		{PlayerID: "a", Heart: 0, TotalScore: 80},
		{PlayerID: "b", Heart: 3, Winner: true},
		{PlayerID: "c", Heart: 0, TotalScore: 95},
		{PlayerID: "d", Heart: 2, Forfeited: true},
		{PlayerID: "e", Heart: 0, TotalScore: 80},
	}
	want := []int{3, 1, 2, 5, 3}
	got := placements(players)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("placement of %s = %d, want %d", players[i].PlayerID, got[i], want[i])
		}
	}
}

func TestPlacementsDrawSharesFirst(t *testing.T) {
	players := []game.MatchPlayer{
		{PlayerID: "a", Draw: true, TotalScore: 10},
		{PlayerID: "b", Draw: true, TotalScore: 90},
		{PlayerID: "c"},
	}
	got := placements(players)
	if got[0] != 1 || got[1] != 1 || got[2] != 3 {
		t.Errorf("placements = %v, want [1 1 3]", got)
	}
}

func TestRatingID(t *testing.T) {
	if id := ratingID(game.MatchPlayer{Name: "Nenerobo", IsBot: true}); id != "bot:Nenerobo" {
		t.Errorf("bot rating id = %q", id)
	}
	if id := ratingID(game.MatchPlayer{Name: "guest"}); id != "" {
		t.Errorf("guest should be unrated, got %q", id)
	}
	if id := ratingID(game.MatchPlayer{Name: "Kohane", UserID: "user-7"}); id != "user-7" {
		t.Errorf("user rating id = %q", id)
	}
}

func TestNilStoreIsInert(t *testing.T) {
	var s *Store
	if err := s.RecordMatch(t.Context(), game.MatchResult{}); err != nil {
		t.Errorf("RecordMatch on nil store: %v", err)
	}
	recs, err := s.ListByUserID(t.Context(), "u", 10)
	if err != nil || len(recs) != 0 {
		t.Errorf("ListByUserID on nil store = %v, %v", recs, err)
	}
	s.Close()
}
