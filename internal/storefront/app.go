// Package storefront assembles the stores and their HTTP routes into one handler.
package storefront

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"StoreFront/internal/cart"
	"StoreFront/internal/catalog"
	"StoreFront/internal/kv"
	"StoreFront/internal/order"
	"StoreFront/internal/session"
	"StoreFront/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
}

type Deps struct {
	Storage kv.Storage

	JWTSecret         string
	SessionTTL        time.Duration
	AdminEmail        string
	AdminPasswordHash string
}

const (
	readyTimeout       = 2 * time.Second
	loginLimitPerMin   = 5
	limitWindowSeconds = 60
	defaultSessionTTL  = time.Hour
)

type App struct {
	Catalog  *catalog.Store
	Cart     *cart.Store
	Sessions *session.Store
	Orders   *order.Store
	Checkout *order.Checkout

	Handler http.Handler
}

func New(deps Deps, httpDeps HTTPDeps) *App {
	log := httpDeps.Log
	if log == nil {
		log = zap.NewNop()
		httpDeps.Log = log
	}

	var om *order.Metrics
	var catalogOpts []catalog.Option
	if httpDeps.Registry != nil {
		om = order.NewMetrics(httpDeps.Registry)
		catalogOpts = append(catalogOpts, catalog.WithPruneCounter(om.Pruned))
	}

	// One writer for every store: checkout spans catalog, cart and orders.
	w := kv.NewWriter()
	catalogOpts = append(catalogOpts, catalog.WithWriter(w))

	a := &App{
		Catalog:  catalog.NewStore(deps.Storage, log, catalogOpts...),
		Cart:     cart.NewStore(deps.Storage, log, cart.WithWriter(w)),
		Sessions: session.NewStore(deps.Storage, log, session.WithWriter(w)),
		Orders:   order.NewStore(deps.Storage, log, order.WithWriter(w)),
	}
	a.Checkout = &order.Checkout{
		Catalog: a.Catalog,
		Cart:    a.Cart,
		Orders:  a.Orders,
		Log:     log,
		Metrics: om,
		Writer:  w,
	}

	ttl := deps.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	sessions := &session.Server{
		Store:      a.Sessions,
		Auth:       session.NewAuthenticator(deps.AdminEmail, deps.AdminPasswordHash),
		JWT:        session.NewTokenMaker(deps.JWTSecret),
		TTL:        ttl,
		Log:        log,
		LoginLimit: kit.NewIPRateLimiter(loginLimitPerMin, limitWindowSeconds).Middleware,
	}
	products := &catalog.Server{
		Store:        a.Catalog,
		Log:          log,
		RequireAdmin: sessions.RequireAdmin,
	}
	carts := &cart.Server{
		Store:  a.Cart,
		Lookup: a.lookupProduct,
		Log:    log,
	}
	orders := &order.Server{
		Checkout:    a.Checkout,
		Orders:      a.Orders,
		Log:         log,
		Identify:    sessions.Identify,
		RequireAuth: sessions.RequireAuth,
	}

	r := chi.NewRouter()
	setupMiddleware(r, httpDeps)
	setupMetrics(r, httpDeps)

	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(deps.Storage, log))

	sessions.Register(r)
	products.Register(r)
	carts.Register(r)
	orders.Register(r)

	a.Handler = r
	return a
}

func (a *App) lookupProduct(ctx context.Context, id string) (cart.ProductRef, bool, error) {
	p, ok, err := a.Catalog.FindByID(ctx, id)
	if err != nil || !ok {
		return cart.ProductRef{}, ok, err
	}
	return cart.ProductRef{ID: p.ID, Name: p.Name, Price: p.Price}, true, nil
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func readyz(storage kv.Storage, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := storage.Ping(ctx); err != nil {
			log.Warn("readyz failed: storage", zap.Error(err))
			kit.WriteError(w, r, http.StatusServiceUnavailable, "storage not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
