package order

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"StoreFront/internal/session"
	"StoreFront/pkg/kit"
)

type Server struct {
	Checkout *Checkout
	Orders   *Store
	Log      *zap.Logger

	// Identify attaches the caller's session when one is presented.
	Identify func(http.Handler) http.Handler
	// RequireAuth guards the order history.
	RequireAuth func(http.Handler) http.Handler
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
}

// Register adds the routes to r.
func (s *Server) Register(r chi.Router) {
	r.With(optional(s.Identify)).Post("/checkout", s.checkout)

	r.Group(func(pr chi.Router) {
		pr.Use(optional(s.RequireAuth))
		pr.Get("/orders", s.list)
		pr.Get("/orders/{id}", s.get)
	})
}

func (s *Server) checkout(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	res, err := s.Checkout.Run(r.Context(), sess.Email)
	if errors.Is(err, ErrEmptyCart) {
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if err != nil {
		if s.Log != nil {
			s.Log.Error("checkout failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	if !res.OK {
		kit.WriteError(w, r, http.StatusConflict, "insufficient stock", res)
		return
	}

	kit.WriteJSON(w, http.StatusCreated, res.Order)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	orders, err := s.Orders.List(r.Context())
	if err != nil {
		if s.Log != nil {
			s.Log.Error("list orders failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		if visibleTo(o, sess) {
			out = append(out, o)
		}
	}
	kit.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	sess, _ := session.FromContext(r.Context())

	id := chi.URLParam(r, "id")
	o, found, err := s.Orders.Get(r.Context(), id)
	if err != nil {
		if s.Log != nil {
			s.Log.Error("store get order failed", zap.Error(err), zap.String("order_id", id))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}
	if !found {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	if !visibleTo(o, sess) {
		kit.WriteError(w, r, http.StatusForbidden, "forbidden", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, o)
}

func visibleTo(o Order, sess session.Session) bool {
	return sess.IsAdmin || (sess.Email != "" && o.Email == sess.Email)
}

func optional(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if mw == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return mw
}
