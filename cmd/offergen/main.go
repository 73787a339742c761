package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/semaphore"

	"directboost/internal/adapters/observability"
	redisad "directboost/internal/adapters/redis"
	"directboost/internal/adapters/rulesapi"
	"directboost/internal/app"
	"directboost/internal/domain"
	"directboost/internal/shared"
	mysqlrepo "directboost/internal/storage/mysql"
)

func main() {
	emails := flag.String("emails", "", "comma separated account emails to generate offers for")
	quiet := flag.Bool("quiet", false, "disable the progress bar")
	flag.Parse()

	list := splitEmails(*emails)
	if len(list) == 0 {
		fmt.Fprintln(os.Stderr, "usage: offergen -emails a@x.io,b@y.io")
		os.Exit(2)
	}

	ctx := context.Background()
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)
	metricsSrv := observability.Serve(cfg.MetricsAddr)

	log.Info().
		Int("accounts", len(list)).
		Int("workers", cfg.Pipeline.Workers).
		Bool("filter_critical", cfg.Pipeline.FilterCritical).
		Msg("offergen starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

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
		Users: repo, Bookings: repo, Forecasts: repo, Segments: segments, Offers: repo,
	}, cache, app.Options{
		FilterCritical:       cfg.Pipeline.FilterCritical,
		CriticalGapThreshold: cfg.Pipeline.CriticalGapThreshold,
	})

	var bar *progressbar.ProgressBar
	if !*quiet {
		bar = progressbar.Default(int64(len(list)), "generating offers")
	}

	sem := semaphore.NewWeighted(int64(cfg.Pipeline.Workers))
	var wg sync.WaitGroup
	var mu sync.Mutex
	counts := map[app.Status]int{}

	for _, email := range list {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}
		wg.Add(1)
		go func(email string) {
			defer wg.Done()
			defer sem.Release(1)

			res := svc.GenerateOffers(ctx, email)
			mu.Lock()
			counts[res.Status]++
			mu.Unlock()
			if res.Status == app.StatusFailed {
				log.Warn().Str("email", email).Str("run_id", res.RunID).Err(res.Err).Msg("generation failed")
			}
			if bar != nil {
				_ = bar.Add(1)
			}
		}(email)
	}
	wg.Wait()
	if metricsSrv != nil {
		_ = metricsSrv.Close()
	}
	_ = cache.Close()
	_ = db.Close()

	log.Info().
		Int("generated", counts[app.StatusGenerated]).
		Int("no_offers", counts[app.StatusNoOffers]).
		Int("failed", counts[app.StatusFailed]).
		Msg("offergen completed")
	if counts[app.StatusFailed] > 0 {
		os.Exit(1)
	}
}

func splitEmails(s string) []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range strings.Split(s, ",") {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" && !seen[e] {
			seen[e] = true
			out = append(out, e)
		}
	}
	return out
}
