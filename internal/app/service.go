package app

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/jaminalder/hasami-shogi/internal/config"
	"github.com/jaminalder/hasami-shogi/internal/domain"
)

// Errors exposed by the service layer.
var (
	ErrNotFound     = errors.New("game not found")
	ErrNotYourTurn  = errors.New("not your turn")
	ErrNotAPlayer   = errors.New("not a player")
	ErrTooManyGames = errors.New("too many games")
)

// GameState is the in-memory state tracked per game. Black moves first and
// takes the first free seat.
type GameState struct {
	ID      string
	Game    domain.Game
	Black   string
	Red     string
	Created time.Time
	Updated time.Time
}

// Seat returns the color held by playerID.
func (gs *GameState) Seat(playerID string) (domain.Color, bool) {
	switch {
	case playerID == "":
		return 0, false
	case gs.Black == playerID:
		return domain.Black, true
	case gs.Red == playerID:
		return domain.Red, true
	default:
		return 0, false
	}
}

type subscriber struct {
	ch        chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func (s *subscriber) close() {
	s.closeOnce.Do(func() {
		close(s.ch)
		close(s.done)
	})
}

// Service manages games and subscribers. Every engine is only touched under
// mu; callers always receive copies.
type Service struct {
	mu     sync.Mutex
	games  map[string]*GameState
	subs   map[string]map[*subscriber]struct{}
	render func(GameState) []byte
	cfg    config.Config
	log    zerolog.Logger
}

// NewService creates a service with default settings, a renderer that encodes
// nothing and logging disabled.
func NewService() *Service {
	return New(config.Default(), zerolog.Nop(), nil)
}

// NewServiceWithRenderer allows injecting a renderer for broadcast payloads.
func NewServiceWithRenderer(renderer func(GameState) []byte) *Service {
	return New(config.Default(), zerolog.Nop(), renderer)
}

// NewFromConfig builds a service whose logger writes JSON to w.
func NewFromConfig(cfg config.Config, w io.Writer, renderer func(GameState) []byte) *Service {
	return New(cfg, cfg.Logger(w), renderer)
}

// New creates a service from explicit settings.
func New(cfg config.Config, log zerolog.Logger, renderer func(GameState) []byte) *Service {
	if renderer == nil {
		renderer = func(gs GameState) []byte { return nil }
	}
	return &Service{
		games:  make(map[string]*GameState),
		subs:   make(map[string]map[*subscriber]struct{}),
		render: renderer,
		cfg:    cfg,
		log:    log,
	}
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(GameState) []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if renderer == nil {
		s.render = func(gs GameState) []byte { return nil }
		return
	}
	s.render = renderer
}

// CreateGame creates and registers a new game.
func (s *Service) CreateGame() (*GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg.MaxGames > 0 && len(s.games) >= s.cfg.MaxGames {
		s.log.Warn().Int("max_games", s.cfg.MaxGames).Msg("refusing new game")
		return nil, ErrTooManyGames
	}
	id := uuid.NewString()
	now := time.Now()
	gs := &GameState{ID: id, Game: domain.New(), Created: now, Updated: now}
	s.games[id] = gs
	s.log.Info().Str("game", id).Msg("game created")
	cp := *gs
	return &cp, nil
}

// Get returns a copy of the game state if present.
func (s *Service) Get(id string) (*GameState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return nil, false
	}
	cp := *gs
	return &cp, true
}

// Remove forgets a game and closes its subscribers.
func (s *Service) Remove(id string) error {
	s.mu.Lock()
	if _, ok := s.games[id]; !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	delete(s.games, id)
	for sub := range s.subs[id] {
		sub.close()
	}
	delete(s.subs, id)
	s.mu.Unlock()
	s.log.Info().Str("game", id).Msg("game removed")
	return nil
}

// Join assigns a seat to the player if available; ok is false for spectators.
func (s *Service) Join(id, playerID string) (domain.Color, bool, *GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs, ok := s.games[id]
	if !ok {
		return 0, false, nil, ErrNotFound
	}
	side, seated := gs.Seat(playerID)
	if !seated && playerID != "" {
		switch {
		case gs.Black == "":
			gs.Black = playerID
			side, seated = domain.Black, true
		case gs.Red == "":
			gs.Red = playerID
			side, seated = domain.Red, true
		}
		if seated {
			s.log.Info().Str("game", id).Str("player", playerID).Stringer("color", side).Msg("seat claimed")
		}
	}
	gs.Updated = time.Now()
	cp := *gs
	return side, seated, &cp, nil
}

// Play validates seat and turn, applies a move, updates timestamps, and broadcasts.
func (s *Service) Play(id, playerID, src, dst string) (*GameState, domain.MoveResult, error) {
	s.mu.Lock()
	gs, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, domain.MoveResult{}, ErrNotFound
	}
	seat, seated := gs.Seat(playerID)
	if !seated {
		s.mu.Unlock()
		return nil, domain.MoveResult{}, ErrNotAPlayer
	}
	if gs.Game.State() == domain.Unfinished && seat != gs.Game.ActivePlayer() {
		s.mu.Unlock()
		return nil, domain.MoveResult{}, ErrNotYourTurn
	}
	res, err := gs.Game.Play(src, dst)
	if err != nil {
		s.mu.Unlock()
		s.log.Debug().Str("game", id).Str("from", src).Str("to", dst).Err(err).Msg("move rejected")
		return nil, domain.MoveResult{}, err
	}
	gs.Updated = time.Now()

	cp := *gs
	dropped := s.broadcastLocked(id, s.render(cp))
	s.mu.Unlock()

	ev := s.log.Info().Str("game", id).Stringer("color", res.Mover).Str("from", res.From.String()).Str("to", res.To.String())
	if len(res.Captured) > 0 {
		ev = ev.Strs("captured", lo.Map(res.Captured, func(p domain.Position, _ int) string { return p.String() }))
	}
	ev.Msg("move played")
	if res.Outcome != domain.Unfinished {
		s.log.Info().Str("game", id).Stringer("outcome", res.Outcome).Msg("game over")
	}
	if dropped > 0 {
		s.log.Warn().Str("game", id).Int("dropped", dropped).Msg("dropped slow subscribers")
	}
	return &cp, res, nil
}

// broadcastLocked fans out payload without blocking; subscribers whose buffer
// is full are closed and forgotten. Sends and closes only happen under mu.
func (s *Service) broadcastLocked(id string, payload []byte) int {
	set := s.subs[id]
	dropped := 0
	for _, sub := range lo.Keys(set) {
		select {
		case sub.ch <- payload:
		default:
			sub.close()
			delete(set, sub)
			dropped++
		}
	}
	return dropped
}

// Subscribe registers a subscriber for a game. Returns a channel and an
// unsubscribe func; the channel is closed on unsubscribe, on ctx cancellation
// or when the game is removed.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		return nil, nil, ErrNotFound
	}
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan []byte, s.cfg.SubscriberBuffer), done: make(chan struct{})}
	set[sub] = struct{}{}

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
			}
			sub.close()
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			unsub()
		case <-sub.done:
		}
	}()
	return sub.ch, unsub, nil
}

// BoardRenderer encodes the grid as text, one row per line.
func BoardRenderer(gs GameState) []byte {
	b := gs.Game.Board()
	return []byte(b.String())
}
