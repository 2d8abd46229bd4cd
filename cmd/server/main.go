package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"transport-ops-service/internal/adapters/cache"
	"transport-ops-service/internal/adapters/distance"
	"transport-ops-service/internal/adapters/events"
	"transport-ops-service/internal/adapters/geocode"
	"transport-ops-service/internal/adapters/repositories"
	"transport-ops-service/internal/api"
	"transport-ops-service/internal/config"
	"transport-ops-service/internal/platform/db"
	"transport-ops-service/internal/platform/logger"
	"transport-ops-service/internal/ports"
	"transport-ops-service/internal/services"

	"github.com/redis/go-redis/v9"
)

// stores groups the storage ports, all backed by one driver.
type stores struct {
	drivers ports.DriverRepository
	entries ports.DayEntryStore
	payroll ports.PayrollStore
	jobs    ports.CompletedJobSource
	routes  ports.RouteRepository
	db      *sql.DB
}

// main is the application composition root.
// It wires concrete adapters (Postgres, postcodes.io, ORS, Kafka) behind ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := logger.Init(logger.Config{Debug: cfg.LogDebug, JSON: cfg.LogJSON, Dir: cfg.LogDir}); err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", "err", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Fatal("server stopped", "err", err)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	if st.db != nil {
		defer st.db.Close()
	}

	geocodeCache, closeCache, err := openGeocodeCache(ctx, cfg, st.db)
	if err != nil {
		return err
	}
	defer closeCache()

	var geocoder ports.Geocoder = geocode.NewPostcodesIOGeocoder(cfg.PostcodesBaseURL, cfg.HTTPTimeout)
	if geocodeCache != nil {
		geocoder = geocode.NewCachedGeocoder(geocoder, geocodeCache)
	}

	router, err := distance.NewORSRouteProvider(cfg.ORSAPIKey, distance.ORSOptions{
		BaseURL: cfg.ORSBaseURL,
		Profile: cfg.ORSProfile,
		Timeout: cfg.HTTPTimeout,
	})
	if err != nil {
		return err
	}

	publisher, err := openPublisher(cfg)
	if err != nil {
		return err
	}
	defer publisher.Close()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	handler := api.NewRouter(api.Deps{
		Routes: &services.RouteService{
			Assembler: services.NewRouteAssembler(geocoder, router, loc),
			Routes:    st.routes,
			Events:    publisher,
		},
		Payroll: &services.PayrollService{
			Drivers: st.drivers,
			Entries: st.entries,
			Payroll: st.payroll,
			Events:  publisher,
		},
		Sync: &services.SyncService{
			Entries: st.entries,
			Jobs:    st.jobs,
			Events:  publisher,
		},
		JWTSecret: cfg.JWTSecret,
	})

	// Write timeout leaves room for a cold geocode plus a routing call.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "storage", cfg.StorageDriver, "geocode_cache", cfg.GeocodeCache)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.StorageDriver {
	case "memory":
		mem := repositories.NewMemoryStore()
		if err := repositories.SeedMemoryFromJSON(mem, cfg.SeedPath); err != nil {
			logger.Warn("memory store not seeded", "path", cfg.SeedPath, "err", err)
		}
		return &stores{drivers: mem, entries: mem, payroll: mem, jobs: mem, routes: mem}, nil
	default:
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := repositories.InitSchema(ctx, conn); err != nil {
			conn.Close()
			return nil, err
		}
		jobs := repositories.NewPostgresJobRepository(conn)
		return &stores{
			drivers: repositories.NewPostgresDriverRepository(conn),
			entries: repositories.NewPostgresDayEntryStore(conn),
			payroll: repositories.NewPostgresPayrollStore(conn),
			jobs:    jobs,
			routes:  jobs,
			db:      conn,
		}, nil
	}
}

// openGeocodeCache returns nil when caching is disabled.
func openGeocodeCache(ctx context.Context, cfg *config.Config, pg *sql.DB) (ports.GeocodeCache, func(), error) {
	noop := func() {}

	switch cfg.GeocodeCache {
	case "postgres":
		return cache.NewSQLGeocodeCache(pg), noop, nil
	case "sqlite":
		conn, err := db.OpenSqlite(cfg.GeocodeCachePath)
		if err != nil {
			return nil, noop, err
		}
		c := cache.NewSqliteGeocodeCache(conn)
		if err := c.EnsureSchema(ctx); err != nil {
			conn.Close()
			return nil, noop, err
		}
		return c, func() { _ = conn.Close() }, nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, geocode cache will fall through", "addr", cfg.RedisAddr, "err", err)
		}
		return cache.NewRedisGeocodeCache(client, cfg.GeocodeCacheTTL), func() { _ = client.Close() }, nil
	default:
		return nil, noop, nil
	}
}

func openPublisher(cfg *config.Config) (ports.EventPublisher, error) {
	brokers := cfg.Brokers()
	if len(brokers) == 0 {
		logger.Info("KAFKA_BROKERS not set, events disabled")
		return events.NoopPublisher{}, nil
	}
	return events.NewSaramaPublisher(brokers, cfg.KafkaTopic)
}
