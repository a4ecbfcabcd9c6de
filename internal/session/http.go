package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"StoreFront/pkg/kit"
)

const maxBodyBytes = 1 << 20

type ctxKey string

const sessionKey ctxKey = "session"

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey).(Session)
	return s, ok
}

type Server struct {
	Store *Store
	Auth  *Authenticator
	JWT   *TokenMaker
	TTL   time.Duration
	Log   *zap.Logger

	// LoginLimit wraps the login route, typically a per-IP rate limiter.
	LoginLimit func(http.Handler) http.Handler
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResp struct {
	AccessToken string    `json:"access_token"`
	Email       string    `json:"email"`
	IsAdmin     bool      `json:"is_admin"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
}

// Register adds the routes to r.
func (s *Server) Register(r chi.Router) {
	r.Route("/session", func(rr chi.Router) {
		login := http.Handler(http.HandlerFunc(s.handleLogin))
		if s.LoginLimit != nil {
			login = s.LoginLimit(login)
		}
		rr.Method(http.MethodPost, "/login", login)
		rr.Post("/logout", s.handleLogout)
		rr.With(s.RequireAuth).Get("/", s.handleWhoAmI)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req loginReq
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	email, isAdmin, err := s.Auth.Verify(req.Email, req.Password)
	switch {
	case errors.Is(err, ErrEmailRequired):
		kit.WriteError(w, r, http.StatusBadRequest, "email required", nil)
		return
	case err != nil:
		kit.WriteError(w, r, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}

	sess, err := s.Store.Set(r.Context(), email, isAdmin)
	if err != nil {
		s.Log.Error("session set failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	tok, err := s.JWT.New(sess, s.TTL)
	if err != nil {
		s.Log.Error("token issue", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, loginResp{
		AccessToken: tok,
		Email:       sess.Email,
		IsAdmin:     sess.IsAdmin,
		CreatedAt:   sess.CreatedAt,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Clear(r.Context()); err != nil {
		s.Log.Error("session clear failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	sess, _ := FromContext(r.Context())
	kit.WriteJSON(w, http.StatusOK, map[string]any{
		"email":      sess.Email,
		"is_admin":   sess.IsAdmin,
		"created_at": sess.CreatedAt,
	})
}

func (s *Server) RequireAuth(next http.Handler) http.Handler {
	return s.guard(s.Store.RequireAuth, next)
}

func (s *Server) RequireAdmin(next http.Handler) http.Handler {
	return s.guard(s.Store.RequireAdmin, next)
}

// Identify attaches the stored session when the request carries a token
// issued for it. It never rejects a request.
func (s *Server) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		if !strings.HasPrefix(authz, "Bearer ") {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := s.JWT.Parse(strings.TrimPrefix(authz, "Bearer "))
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		sess, ok, err := s.Store.Get(r.Context())
		if err != nil || !ok || sess.Email != claims.Email {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type check func(ctx context.Context) (Session, Access, error)

// guard admits a request when its bearer token was issued for the session
// currently stored and the check allows that session.
func (s *Server) guard(fn check, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		if !strings.HasPrefix(authz, "Bearer ") {
			deny(w, r, RedirectLogin)
			return
		}
		claims, err := s.JWT.Parse(strings.TrimPrefix(authz, "Bearer "))
		if err != nil {
			deny(w, r, RedirectLogin)
			return
		}

		sess, access, err := fn(r.Context())
		if err != nil {
			s.Log.Error("session lookup failed", zap.Error(err))
			kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
			return
		}
		if !access.Allowed {
			deny(w, r, access.Redirect)
			return
		}
		if sess.Email != claims.Email {
			deny(w, r, RedirectLogin)
			return
		}

		ctx := context.WithValue(r.Context(), sessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func deny(w http.ResponseWriter, r *http.Request, to Target) {
	status, msg := http.StatusUnauthorized, "login required"
	if to == RedirectHome {
		status, msg = http.StatusForbidden, "admin only"
	}
	kit.WriteError(w, r, status, msg, map[string]any{"redirect": to})
}
