// Package main runs the crowd-estate read-path API:
// - HTTP server: property listings, portfolios, platform stats, write relays
// - Ledger watcher: invalidates caches when the program emits logs
// - Stats scheduler: periodic platform snapshots into ClickHouse
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/marcelofeitoza/crowd-estate/internal/api"
	"github.com/marcelofeitoza/crowd-estate/internal/cache"
	memcache "github.com/marcelofeitoza/crowd-estate/internal/cache/memory"
	rediscache "github.com/marcelofeitoza/crowd-estate/internal/cache/redis"
	"github.com/marcelofeitoza/crowd-estate/internal/config"
	"github.com/marcelofeitoza/crowd-estate/internal/market"
	"github.com/marcelofeitoza/crowd-estate/internal/observability"
	"github.com/marcelofeitoza/crowd-estate/internal/program"
	"github.com/marcelofeitoza/crowd-estate/internal/solana"
	"github.com/marcelofeitoza/crowd-estate/internal/storage"
	chstore "github.com/marcelofeitoza/crowd-estate/internal/storage/clickhouse"
	"github.com/marcelofeitoza/crowd-estate/internal/storage/migrations"
	pgstore "github.com/marcelofeitoza/crowd-estate/internal/storage/postgres"
)

func main() {
	cfg := config.Load()

	log := logrus.New()
	log.SetLevel(cfg.ParseLogLevel())
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Cache: Redis when configured, otherwise process-local memory.
	var store cache.Cache
	if cfg.RedisURL != "" {
		rc, err := rediscache.New(cfg.RedisURL)
		if err != nil {
			log.WithError(err).Fatal("connect to redis")
		}
		if err := rc.Ping(ctx); err != nil {
			log.WithError(err).Fatal("ping redis")
		}
		defer rc.Close()
		store = rc
		log.Info("using redis cache")
	} else {
		mc := memcache.New()
		defer mc.Close()
		store = mc
		log.Info("using in-memory cache")
	}

	rpc := solana.NewHTTPClient(cfg.RPCEndpoint)
	ledger := program.NewClient(rpc, cfg.ProgramID)

	svc := market.NewService(ledger, store, log,
		market.WithListTTL(cfg.ListTTL),
		market.WithSingletonTTL(cfg.SingletonTTL),
	)

	// Off-chain index is optional: without Postgres the API still serves
	// everything straight from the ledger and cache.
	var (
		propertyIndex   storage.PropertyIndexStore
		investmentIndex storage.InvestmentIndexStore
	)
	if cfg.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			log.WithError(err).Fatal("connect to postgres")
		}
		defer pool.Close()
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			log.WithError(err).Fatal("run postgres migrations")
		}
		propertyIndex = pgstore.NewPropertyStore(pool)
		investmentIndex = pgstore.NewInvestmentStore(pool)
		log.Info("off-chain index enabled")
	}

	// Stats history is optional as well.
	var history storage.StatsHistoryStore
	if cfg.ClickhouseDSN != "" {
		conn, err := chstore.NewConn(ctx, cfg.ClickhouseDSN)
		if err != nil {
			log.WithError(err).Fatal("connect to clickhouse")
		}
		defer conn.Close()
		if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
			log.WithError(err).Fatal("run clickhouse migrations")
		}
		history = chstore.NewStatsHistoryStore(conn)
		log.Info("stats history enabled")
	}

	submitter := program.NewSubmitter(rpc, log)
	writer := market.NewWriter(submitter, ledger, svc, propertyIndex, investmentIndex, log)

	// Ledger watcher: any program activity invalidates the listing cache.
	ws, err := solana.NewWSClient(ctx, cfg.WSEndpoint, nil, log)
	if err != nil {
		log.WithError(err).Warn("websocket unavailable, cache invalidation falls back to TTL expiry")
	} else {
		defer ws.Close()
		watcher := market.NewWatcher(ws, ledger.ProgramID(), svc, log)
		go func() {
			if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
				log.WithError(err).Error("watcher stopped")
			}
		}()
	}

	if history != nil {
		go runStatsScheduler(ctx, svc, history, cfg.StatsInterval, log)
	}

	// Prometheus metrics on a separate listener.
	metricsServer := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: observability.Handler(),
	}
	go func() {
		log.WithField("port", cfg.MetricsPort).Info("metrics listening")
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("metrics server stopped")
		}
	}()

	server := api.NewServer(svc, writer, history, log)
	go func() {
		log.WithField("port", cfg.ServerPort).Info("api listening")
		if err := server.Listen(":" + cfg.ServerPort); err != nil {
			log.WithError(err).Error("api server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(); err != nil {
		log.WithError(err).Error("api shutdown")
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("metrics shutdown")
	}
	log.Info("stopped")
	os.Exit(0)
}

// runStatsScheduler writes a platform snapshot immediately and then on
// every tick until the context is cancelled.
func runStatsScheduler(ctx context.Context, svc *market.Service, history storage.StatsHistoryStore, interval time.Duration, log *logrus.Logger) {
	slog := log.WithField("component", "stats-scheduler")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	snapshot := func() {
		snapCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		stats, err := svc.PlatformStats(snapCtx)
		if err != nil {
			slog.WithError(err).Warn("collect platform stats")
			return
		}
		if err := history.Insert(snapCtx, stats); err != nil {
			slog.WithError(err).Warn("store platform stats")
			return
		}
		observability.RecordStatsSnapshot()
		slog.WithFields(logrus.Fields{
			"properties": stats.Properties,
			"investors":  stats.Investors,
		}).Debug("snapshot written")
	}

	snapshot()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snapshot()
		}
	}
}
