package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jaminalder/tictactoe-history/internal/domain"
	"go.uber.org/zap"
)

// Errors exposed by the service layer.
var (
	ErrNotFound = errors.New("game not found")
)

// Session is the in-memory state tracked per game.
type Session struct {
	ID      string
	Game    domain.Game
	Created time.Time
	Updated time.Time
}

// Renderer encodes a session for broadcast to subscribers.
type Renderer func(Session) []byte

// Options tune a Service. Zero values select defaults.
type Options struct {
	SessionTTL       time.Duration
	SubscriberBuffer int
	Renderer         Renderer
	Now              func() time.Time
}

type subscriber struct {
	ch        chan []byte
	closeOnce sync.Once
}

func (s *subscriber) close() { s.closeOnce.Do(func() { close(s.ch) }) }

// Service manages game sessions and their subscribers. Each command replaces
// the session's game wholesale with the engine's result.
type Service struct {
	mu       sync.Mutex
	sessions map[string]*Session
	subs     map[string]map[*subscriber]struct{}
	render   Renderer
	ttl      time.Duration
	buffer   int
	now      func() time.Time
	log      *zap.Logger
}

func nopRenderer(Session) []byte { return nil }

// NewService creates a service. A nil logger disables logging.
func NewService(logger *zap.Logger, opts Options) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Renderer == nil {
		opts.Renderer = nopRenderer
	}
	if opts.SubscriberBuffer < 1 {
		opts.SubscriberBuffer = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		sessions: make(map[string]*Session),
		subs:     make(map[string]map[*subscriber]struct{}),
		render:   opts.Renderer,
		ttl:      opts.SessionTTL,
		buffer:   opts.SubscriberBuffer,
		now:      opts.Now,
		log:      logger.With(zap.String("component", "sessions")),
	}
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer Renderer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if renderer == nil {
		renderer = nopRenderer
	}
	s.render = renderer
}

// CreateGame creates and registers a new session.
func (s *Service) CreateGame() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	sess := &Session{ID: newID(), Game: domain.New(), Created: now, Updated: now}
	s.sessions[sess.ID] = sess
	s.log.Info("session created", zap.String("game_id", sess.ID))
	cp := *sess
	return &cp, nil
}

// Get returns a copy of the session if present.
func (s *Service) Get(id string) (*Session, bool) {
	if !validID(id) {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	cp := *sess
	return &cp, true
}

// Play places the next mark at cell index.
func (s *Service) Play(id string, index int) (*Session, error) {
	return s.apply(id, "play", func(g domain.Game) (domain.Game, error) {
		return g.Play(index)
	}, zap.Int("cell", index))
}

// JumpTo views an earlier (or later) history step.
func (s *Service) JumpTo(id string, step int) (*Session, error) {
	return s.apply(id, "jump", func(g domain.Game) (domain.Game, error) {
		return g.JumpTo(step)
	}, zap.Int("step", step))
}

// ToggleSort flips the move list order.
func (s *Service) ToggleSort(id string) (*Session, error) {
	return s.apply(id, "sort", func(g domain.Game) (domain.Game, error) {
		return g.ToggleSort(), nil
	})
}

// apply runs a transition and broadcasts the result. A rejected transition
// returns the unchanged session together with the engine error.
func (s *Service) apply(id, op string, fn func(domain.Game) (domain.Game, error), fields ...zap.Field) (*Session, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}

	s.mu.Lock()
	sess, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	next, err := fn(sess.Game)
	if err != nil {
		cp := *sess
		s.mu.Unlock()
		s.log.Debug("command rejected", append(fields,
			zap.String("game_id", id), zap.String("op", op), zap.Error(err))...)
		return &cp, err
	}
	sess.Game = next
	sess.Updated = s.now()

	cp := *sess
	dropped := s.broadcastLocked(id, s.render(cp))
	s.mu.Unlock()

	if dropped > 0 {
		s.log.Warn("dropped slow subscribers", zap.String("game_id", id), zap.Int("count", dropped))
	}
	return &cp, nil
}

// broadcastLocked fans payload out without blocking; slow subscribers are
// closed and removed. s.mu must be held.
func (s *Service) broadcastLocked(id string, payload []byte) int {
	set := s.subs[id]
	dropped := 0
	for sub := range set {
		select {
		case sub.ch <- payload:
		default:
			delete(set, sub)
			sub.close()
			dropped++
		}
	}
	return dropped
}

// Subscribe registers a subscriber for a session. The channel is closed when
// ctx ends, the unsubscribe func is called, the subscriber falls behind, or
// the session expires.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func(), error) {
	if !validID(id) {
		return nil, nil, ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return nil, nil, ErrNotFound
	}
	set := s.subs[id]
	if set == nil {
		set = make(map[*subscriber]struct{})
		s.subs[id] = set
	}
	sub := &subscriber{ch: make(chan []byte, s.buffer)}
	set[sub] = struct{}{}

	unsubOnce := &sync.Once{}
	unsub := func() {
		unsubOnce.Do(func() {
			s.mu.Lock()
			if set, ok := s.subs[id]; ok {
				delete(set, sub)
				if len(set) == 0 {
					delete(s.subs, id)
				}
			}
			s.mu.Unlock()
			sub.close()
		})
	}
	go func() {
		<-ctx.Done()
		unsub()
	}()
	return sub.ch, unsub, nil
}

// Sweep removes sessions idle since before now minus the session TTL and
// returns how many were removed. A zero TTL keeps sessions forever.
func (s *Service) Sweep(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-s.ttl)

	s.mu.Lock()
	var expired []string
	var closing []*subscriber
	for id, sess := range s.sessions {
		if sess.Updated.Before(cutoff) {
			expired = append(expired, id)
			delete(s.sessions, id)
			for sub := range s.subs[id] {
				closing = append(closing, sub)
			}
			delete(s.subs, id)
		}
	}
	s.mu.Unlock()

	for _, sub := range closing {
		sub.close()
	}
	for _, id := range expired {
		s.log.Info("session expired", zap.String("game_id", id))
	}
	return len(expired)
}

// Run sweeps expired sessions every interval until ctx ends.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(s.now())
		}
	}
}
