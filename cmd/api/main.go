package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "directboost/internal/adapters/http_server"
	"directboost/internal/adapters/observability"
	redisad "directboost/internal/adapters/redis"
	"directboost/internal/adapters/rulesapi"
	"directboost/internal/app"
	"directboost/internal/domain"
	"directboost/internal/shared"
	mysqlrepo "directboost/internal/storage/mysql"
)

func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)

	var remote domain.SegmentStore
	if cfg.RulesAPI.BaseURL != "" {
		cl, err := rulesapi.New(cfg.RulesAPI.BaseURL, cfg.RulesAPI.APIKey, cfg.RulesAPI.RPS)
		if err != nil {
			log.Fatal().Err(err).Msg("rules API client init failed")
		}
		remote = cl
		log.Info().Str("base", cfg.RulesAPI.BaseURL).Msg("segment configs from rules API")
	}
	segments := app.NewSegmentSource(repo, remote, cache, cfg.SegmentCacheTTL())

	svc := app.NewOfferService(app.Stores{
		Users:     repo,
		Bookings:  repo,
		Forecasts: repo,
		Segments:  segments,
		Offers:    repo,
	}, cache, app.Options{
		FilterCritical:       cfg.Pipeline.FilterCritical,
		CriticalGapThreshold: cfg.Pipeline.CriticalGapThreshold,
	})
	runner := app.NewRunner(svc, cfg.Pipeline.Workers)
	q := app.NewOfferQueryService(repo, repo, cache, cfg.CacheTTL())

	srv := server.New(cfg.RequestsPerSecond)
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Runner: runner, Q: q})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdown); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Int("workers", cfg.Pipeline.Workers).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	<-drained
	_ = cache.Close()
	_ = db.Close()
	log.Info().Msg("API stopped")
}
