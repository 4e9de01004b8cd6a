package assistant

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

var ErrSessionNotFound = errors.New("assistant: session not found")

// Store keeps chat sessions in memory; idle sessions expire and the least
// recently used are evicted past the size cap.
type Store struct {
	advisor      Advisor
	replyTimeout time.Duration
	log          *zap.Logger
	sessions     *expirable.LRU[string, *Session]
}

type StoreOptions struct {
	MaxSessions  int
	TTL          time.Duration
	ReplyTimeout time.Duration
	Logger       *zap.Logger
}

func NewStore(advisor Advisor, opts StoreOptions) *Store {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	maxSessions := opts.MaxSessions
	if maxSessions <= 0 {
		maxSessions = 1024
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{
		advisor:      advisor,
		replyTimeout: opts.ReplyTimeout,
		log:          log,
		sessions:     expirable.NewLRU[string, *Session](maxSessions, nil, ttl),
	}
}

func (s *Store) Create() *Session {
	id := uuid.NewString()
	sess := NewSession(id, s.advisor, Options{
		ReplyTimeout: s.replyTimeout,
		Logger:       s.log.With(zap.String("session", id)),
	})
	s.sessions.Add(id, sess)
	return sess
}

func (s *Store) Get(id string) (*Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrSessionNotFound
	}
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// GetOrCreate returns the session for id, or a fresh one when id is blank
// or unknown.
func (s *Store) GetOrCreate(id string) *Session {
	if sess, err := s.Get(id); err == nil {
		return sess
	}
	return s.Create()
}

func (s *Store) Len() int { return s.sessions.Len() }
