// Package lobby owns the set of live rooms. It creates rooms under fresh
// codes, seats bots, forwards finished matches to the history sink and
// forgets rooms once they close.
package lobby

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"
	"time"

	"stage-battle-server/ai"
	"stage-battle-server/catalog"
	"stage-battle-server/config"
	"stage-battle-server/game"
	"stage-battle-server/roomerrors"
)

// codeAlphabet leaves out characters that are easy to misread (0/O, 1/I).
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	maxCodeAttempts = 32
	recordTimeout   = 10 * time.Second
	botSendBuffer   = 64
)

// ResultSink receives finished matches.
type ResultSink interface {
	RecordMatch(ctx context.Context, res game.MatchResult) error
}

// Store maps room codes to running rooms.
type Store struct {
	mu    sync.Mutex
	rooms map[string]*game.Room
	rng   *rand.Rand

	cfg     *config.Config
	catalog *catalog.Catalog
	skills  game.SkillProvider
	sink    ResultSink

	// runBot starts the bot runner for a seated bot; tests replace it.
	runBot func(send <-chan []byte, room *game.Room, playerID string, profile *config.BotProfile)
}

// NewStore creates an empty store. sink may be nil, in which case finished
// matches are only logged.
func NewStore(cfg *config.Config, cat *catalog.Catalog, skills game.SkillProvider, sink ResultSink) *Store {
	s := &Store{
		rooms:   make(map[string]*game.Room),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		cfg:     cfg,
		catalog: cat,
		skills:  skills,
		sink:    sink,
	}
	s.runBot = func(send <-chan []byte, room *game.Room, playerID string, profile *config.BotProfile) {
		go ai.Run(send, room, playerID, profile, &cfg.Rules)
	}
	return s
}

// Create opens a new room and starts its loop.
func (s *Store) Create() (*game.Room, error) {
	s.mu.Lock()
	code, err := s.newCode()
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	room := game.NewRoom(code, s.cfg, s.catalog, s.skills, nil)
	room.OnGameEnd = s.record
	room.OnClose = s.Delete
	s.rooms[code] = room
	n := len(s.rooms)
	s.mu.Unlock()

	go room.Run()
	slog.Info("room created", "tag", "lobby", "room", code, "rooms", n)
	return room, nil
}

// newCode returns an unused room code. Caller holds mu.
func (s *Store) newCode() (string, error) {
	n := s.cfg.RoomCodeLength
	if n <= 0 {
		n = 5
	}
	buf := make([]byte, n)
	for range maxCodeAttempts {
		for i := range buf {
			buf[i] = codeAlphabet[s.rng.Intn(len(codeAlphabet))]
		}
		code := string(buf)
		if _, taken := s.rooms[code]; !taken {
			return code, nil
		}
	}
	return "", errors.New("could not allocate a room code")
}

// Get looks up a room by code. Codes are case-insensitive.
func (s *Store) Get(code string) (*game.Room, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[code]
	if !ok {
		return nil, roomerrors.ErrRoomNotFound
	}
	return room, nil
}

// Delete forgets a room. The room calls it once its loop has stopped.
func (s *Store) Delete(code string) {
	s.mu.Lock()
	_, ok := s.rooms[code]
	delete(s.rooms, code)
	n := len(s.rooms)
	s.mu.Unlock()
	if ok {
		slog.Info("room removed", "tag", "lobby", "room", code, "rooms", n)
	}
}

// Len returns the number of live rooms.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

// CloseAll stops every room. Rooms remove themselves as they shut down.
func (s *Store) CloseAll() {
	s.mu.Lock()
	rooms := make([]*game.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	s.mu.Unlock()

	for _, r := range rooms {
		r.Close()
	}
}

// AddBot seats the first configured bot profile whose name is free in the room
// and starts its runner.
func (s *Store) AddBot(room *game.Room, hostID string) (string, error) {
	for i := range s.cfg.BotProfiles {
		profile := &s.cfg.BotProfiles[i]
		send := make(chan []byte, botSendBuffer)
		id, err := room.AddBot(hostID, profile.Name, send)
		if errors.Is(err, roomerrors.ErrNameTaken) {
			continue
		}
		if err != nil {
			return "", err
		}
		s.runBot(send, room, id, profile)
		return id, nil
	}
	return "", roomerrors.ErrNoBotAvailable
}

// record runs on the room goroutine, so the write happens in the background.
func (s *Store) record(res game.MatchResult) {
	log := slog.Default().With("tag", "lobby", "room", res.RoomCode, "match", res.MatchID)
	log.Info("match finished", "turns", res.Turns, "winner", res.WinnerID, "draw", res.Draw, "reason", res.Reason)
	if s.sink == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := s.sink.RecordMatch(ctx, res); err != nil {
			log.Error("recording match", "err", fmt.Errorf("lobby: %w", err))
		}
	}()
}
