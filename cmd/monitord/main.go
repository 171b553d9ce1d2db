package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimewatch/internal/config"
	"github.com/hamed0406/uptimewatch/internal/httpapi"
	apimw "github.com/hamed0406/uptimewatch/internal/httpapi/middleware"
	"github.com/hamed0406/uptimewatch/internal/logging"
	"github.com/hamed0406/uptimewatch/internal/monitor"
	"github.com/hamed0406/uptimewatch/internal/notify"
	"github.com/hamed0406/uptimewatch/internal/probe"
	"github.com/hamed0406/uptimewatch/internal/repo"
	"github.com/hamed0406/uptimewatch/internal/repo/memory"
	"github.com/hamed0406/uptimewatch/internal/repo/postgres"
	"github.com/hamed0406/uptimewatch/internal/repo/sqlite"
	"github.com/hamed0406/uptimewatch/internal/scheduler"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store_open_failed", zap.Error(err))
	}
	defer store.Close()

	if cfg.EndpointsFile != "" {
		if err := seedEndpoints(ctx, logger, store, cfg.EndpointsFile); err != nil {
			logger.Fatal("seed_failed", zap.String("file", cfg.EndpointsFile), zap.Error(err))
		}
	}

	var checker probe.Checker = probe.NewHTTPChecker(cfg.HTTPTimeout, cfg.ProbeUserAgent)
	if cfg.ProbeDNSDiagnostics {
		checker = probe.NewDNSDiagnoser(checker)
	}

	eng := monitor.New(logger, store, store, checker, buildNotifier(cfg, logger), monitor.Options{
		ProbeTimeout:  cfg.HTTPTimeout,
		NotifyEnabled: cfg.NotifyEnabled,
		NotifyTimeout: cfg.NotifyTimeout,
	})
	sched := scheduler.New(logger, store, eng, scheduler.Options{
		Interval:    cfg.CheckInterval,
		Concurrency: cfg.MaxConcurrentChecks,
	})

	api := httpapi.NewServer(logger, store, store, eng, sched)
	keys := apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}
	if len(keys.Public) == 0 && len(keys.Admin) == 0 {
		logger.Warn("api_auth_disabled")
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(keys, cfg.AllowedOrigins, cfg.PublicRPM, cfg.PublicBurst, cfg.AdminRPM, cfg.AdminBurst),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sched.Run(ctx)
	}()

	go func() {
		logger.Info("api_listen", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api_serve_error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown_started")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("api_shutdown_error", zap.Error(err))
	}
	wg.Wait()
	eng.Wait()
	logger.Info("shutdown_complete")
}

// openStore prefers Postgres, then SQLite, then the in-memory store.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (repo.Store, error) {
	switch {
	case cfg.DatabaseURL != "":
		pg, err := postgres.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		logger.Info("store_selected", zap.String("kind", "postgres"))
		return pg, nil
	case cfg.SQLitePath != "":
		lite, err := sqlite.Open(ctx, cfg.SQLitePath, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("store_selected", zap.String("kind", "sqlite"))
		return lite, nil
	default:
		logger.Warn("store_selected", zap.String("kind", "memory"))
		return memory.New(), nil
	}
}

func buildNotifier(cfg config.Config, logger *zap.Logger) notify.Notifier {
	var m notify.Multi
	if s := notify.NewSlack(cfg.SlackWebhookURL); s != nil {
		m = append(m, s)
	}
	if r := notify.NewResend(cfg.ResendAPIKey, cfg.NotifyFrom); r != nil {
		m = append(m, r)
	}
	if len(m) == 0 {
		if cfg.NotifyEnabled {
			logger.Warn("notify_no_channels")
		}
		return notify.Nop{}
	}
	logger.Info("notify_channels", zap.Int("count", len(m)), zap.Bool("enabled", cfg.NotifyEnabled))
	return m
}
