package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"StoreFront/pkg/kit"
)

const maxBodyBytes = 1 << 10

// ProductLookup resolves the name and price stored with a new cart line.
type ProductLookup func(ctx context.Context, id string) (ProductRef, bool, error)

type Server struct {
	Store  *Store
	Lookup ProductLookup
	Log    *zap.Logger
}

type view struct {
	Items []Item  `json:"items"`
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

type addReq struct {
	ProductID string `json:"product_id"`
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
}

// Register adds the routes to r.
func (s *Server) Register(r chi.Router) {
	r.Get("/cart", s.get)
	r.Get("/cart/count", s.count)
	r.Post("/cart/items", s.add)
	r.Delete("/cart/items/{id}", s.remove)
	r.Delete("/cart", s.clear)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	items, err := s.Store.List(r.Context())
	if err != nil {
		s.serverError(w, r, "list cart failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, newView(items))
}

func (s *Server) count(w http.ResponseWriter, r *http.Request) {
	n, err := s.Store.Count(r.Context())
	if err != nil {
		s.serverError(w, r, "count cart failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, map[string]int{"count": n})
}

func (s *Server) add(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req addReq
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	id := strings.TrimSpace(req.ProductID)
	if id == "" {
		kit.WriteError(w, r, http.StatusBadRequest, "product_id required", nil)
		return
	}

	ref, ok, err := s.Lookup(r.Context(), id)
	if err != nil {
		s.serverError(w, r, "lookup product failed", err)
		return
	}
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "product not found", map[string]any{"id": id})
		return
	}

	items, err := s.Store.Add(r.Context(), ref)
	if err != nil {
		s.serverError(w, r, "add to cart failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, newView(items))
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	items, err := s.Store.Remove(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.serverError(w, r, "remove from cart failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, newView(items))
}

func (s *Server) clear(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Clear(r.Context()); err != nil {
		s.serverError(w, r, "clear cart failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if s.Log != nil {
		s.Log.Error(msg, zap.Error(err))
	}
	kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
}

func newView(items []Item) view {
	n := 0
	for _, it := range items {
		n += it.Qty
	}
	return view{Items: items, Count: n, Total: Total(items)}
}
