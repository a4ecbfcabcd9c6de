package main

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"StoreFront/internal/catalog"
	"StoreFront/internal/config"
	"StoreFront/internal/kv"
	"StoreFront/internal/storefront"
	"StoreFront/pkg/kit"
)

func main() {
	service := "storefront"
	cfg := config.Load()

	log := kit.NewLogger(service, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	storage, closeStorage, err := openStorage(cfg)
	if err != nil {
		log.Fatal("open storage failed", zap.String("backend", cfg.StorageBackend), zap.Error(err))
	}
	defer closeStorage()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app := storefront.New(
		storefront.Deps{
			Storage:           storage,
			JWTSecret:         cfg.JWTSecret,
			SessionTTL:        cfg.SessionTTL,
			AdminEmail:        cfg.AdminEmail,
			AdminPasswordHash: cfg.AdminPasswordHash,
		},
		storefront.HTTPDeps{
			Log:            log,
			Service:        service,
			Registry:       reg,
			MetricsEnabled: cfg.MetricsEnabled,
			MetricsToken:   cfg.MetricsToken,
		},
	)

	seed := catalog.SeedFromLocation(cfg.SeedSource, cfg.SeedTimeout)
	if err := app.Catalog.SeedIfAbsent(context.Background(), seed); err != nil {
		log.Fatal("catalog seed failed", zap.String("source", seed.Name()), zap.Error(err))
	}

	if err := kit.RunHTTPServer(cfg.HTTPAddr, app.Handler, log, cfg.ShutdownTimeout); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func openStorage(cfg config.Config) (kv.Storage, func(), error) {
	if cfg.StorageBackend != config.BackendPostgres {
		return kv.NewMemStorage(), func() {}, nil
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() { _ = db.Close() }

	pg := kv.NewPostgresStorage(db)
	ctx := context.Background()
	if err := pg.Ping(ctx); err != nil {
		closeDB()
		return nil, nil, err
	}
	if err := pg.Migrate(ctx); err != nil {
		closeDB()
		return nil, nil, err
	}
	return pg, closeDB, nil
}
