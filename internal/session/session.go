// Package session keeps the single current-session record and the guards
// built on it.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"StoreFront/internal/kv"
)

const Key = "session"

var ErrEmailRequired = errors.New("email required")

type Session struct {
	Email     string    `json:"email"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

// Target names where a denied caller should be sent.
type Target string

const (
	RedirectLogin Target = "login"
	RedirectHome  Target = "home"
)

// Access is the outcome of a guard. Redirect is set only when denied.
type Access struct {
	Allowed  bool
	Redirect Target
}

type Store struct {
	kv  kv.Storage
	log *zap.Logger
	w   *kv.Writer
	now func() time.Time
}

type Option func(*Store)

// WithWriter shares w with other stores over the same storage.
func WithWriter(w *kv.Writer) Option {
	return func(s *Store) {
		if w != nil {
			s.w = w
		}
	}
}

func NewStore(storage kv.Storage, log *zap.Logger, opts ...Option) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{
		kv:  storage,
		log: log,
		w:   kv.NewWriter(),
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithClock overrides the creation timestamp source.
func (s *Store) WithClock(now func() time.Time) *Store {
	if now != nil {
		s.now = now
	}
	return s
}

// Set replaces any existing session.
func (s *Store) Set(ctx context.Context, email string, isAdmin bool) (Session, error) {
	sess := Session{
		Email:     normalizeEmail(email),
		IsAdmin:   isAdmin,
		CreatedAt: s.now(),
	}
	if sess.Email == "" {
		return Session{}, ErrEmailRequired
	}
	err := s.w.Do(ctx, func(ctx context.Context) error {
		return kv.SetJSON(ctx, s.kv, Key, sess)
	})
	if err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Get returns the stored session. Missing, malformed or email-less records
// all read as no session.
func (s *Store) Get(ctx context.Context) (Session, bool, error) {
	raw, ok, err := s.kv.Get(ctx, Key)
	if err != nil {
		return Session{}, false, err
	}
	if !ok {
		return Session{}, false, nil
	}

	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		s.log.Warn("corrupt session, treating as logged out", zap.Error(err))
		return Session{}, false, nil
	}
	if strings.TrimSpace(sess.Email) == "" {
		return Session{}, false, nil
	}
	return sess, true, nil
}

func (s *Store) Clear(ctx context.Context) error {
	return s.w.Do(ctx, func(ctx context.Context) error {
		return s.kv.Remove(ctx, Key)
	})
}

func (s *Store) RequireAuth(ctx context.Context) (Session, Access, error) {
	sess, ok, err := s.Get(ctx)
	if err != nil {
		return Session{}, Access{}, err
	}
	if !ok {
		return Session{}, Access{Redirect: RedirectLogin}, nil
	}
	return sess, Access{Allowed: true}, nil
}

func (s *Store) RequireAdmin(ctx context.Context) (Session, Access, error) {
	sess, access, err := s.RequireAuth(ctx)
	if err != nil || !access.Allowed {
		return Session{}, access, err
	}
	if !sess.IsAdmin {
		return Session{}, Access{Redirect: RedirectHome}, nil
	}
	return sess, access, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
