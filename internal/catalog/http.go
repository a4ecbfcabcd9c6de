package catalog

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"StoreFront/pkg/kit"
)

const maxBodyBytes = 1 << 20

type Server struct {
	Store *Store
	Log   *zap.Logger

	// RequireAdmin guards the admin routes. Nil leaves them unmounted.
	RequireAdmin func(http.Handler) http.Handler
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	s.Register(r)
	return r
}

// Register adds the routes to r.
func (s *Server) Register(r chi.Router) {
	r.Get("/products", s.list)
	r.Get("/products/{id}", s.get)

	if s.RequireAdmin != nil {
		r.Route("/admin/products", func(ar chi.Router) {
			ar.Use(s.RequireAdmin)
			ar.Get("/", s.list)
			ar.Post("/", s.create)
			ar.Put("/{id}", s.update)
			ar.Delete("/{id}", s.delete)
		})
	}
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	products, err := s.Store.ListByCategory(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		s.serverError(w, r, "list products failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, products)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, ok, err := s.Store.FindByID(r.Context(), id)
	if err != nil {
		s.serverError(w, r, "get product failed", err)
		return
	}
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	p, ok := s.decodeProduct(w, r)
	if !ok {
		return
	}

	created, err := s.Store.Add(r.Context(), p)
	if errors.Is(err, ErrDuplicateID) {
		kit.WriteError(w, r, http.StatusConflict, err.Error(), map[string]any{"id": p.ID})
		return
	}
	if err != nil {
		s.serverError(w, r, "add product failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusCreated, created)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p, ok := s.decodeProduct(w, r)
	if !ok {
		return
	}

	updated, err := s.Store.Update(r.Context(), id, PatchFrom(p))
	if errors.Is(err, ErrNotFound) {
		kit.WriteError(w, r, http.StatusNotFound, err.Error(), map[string]any{"id": id})
		return
	}
	if err != nil {
		s.serverError(w, r, "update product failed", err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, updated)
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.Store.Delete(r.Context(), id); err != nil {
		s.serverError(w, r, "delete product failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeProduct reads and validates an admin form. On PUT the id comes from
// the path, so the body may omit it.
func (s *Server) decodeProduct(w http.ResponseWriter, r *http.Request) (Product, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var in Input
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return Product{}, false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": "extra data after json object"})
		return Product{}, false
	}

	if id := chi.URLParam(r, "id"); id != "" {
		in.ID = id
	}

	p, err := NormalizeInput(in)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			kit.WriteError(w, r, http.StatusBadRequest, "invalid product", map[string]any{"field": ve.Field, "reason": ve.Msg})
			return Product{}, false
		}
		kit.WriteError(w, r, http.StatusBadRequest, err.Error(), nil)
		return Product{}, false
	}
	return p, true
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if s.Log != nil {
		s.Log.Error(msg, zap.Error(err))
	}
	kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
}
