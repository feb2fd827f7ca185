package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/Entinus-oss/howmuchtime/internal/adapters/http/api"
	"github.com/Entinus-oss/howmuchtime/internal/adapters/session"
	"github.com/Entinus-oss/howmuchtime/internal/adapters/steam"
	app "github.com/Entinus-oss/howmuchtime/internal/app"
	"github.com/Entinus-oss/howmuchtime/internal/config"
	"github.com/Entinus-oss/howmuchtime/pkg/logger"
	"github.com/Entinus-oss/howmuchtime/pkg/metrics"
	"github.com/Entinus-oss/howmuchtime/pkg/pacer"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 30 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	redisDialTimeout      = 5 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics.
	// We collect our own custom system metrics instead.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input).
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Session store: Redis when configured, in-process otherwise.
	var sessions session.Store
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, redisDialTimeout)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			os.Stderr.WriteString("failed to reach redis: " + err.Error() + "\n")
			return
		}
		defer func() { _ = rdb.Close() }()
		sessions = session.NewRedisStore(rdb, cfg.SessionTTL())
		log.Info(ctx, "using redis session store", logger.String("addr", cfg.RedisAddr))
	} else {
		sessions = session.NewMemoryStore(cfg.SessionTTL())
		log.Info(ctx, "using in-process session store")
	}

	client := steam.New(cfg.SteamAPIKey,
		steam.WithAPIBase(cfg.SteamAPIBase),
		steam.WithStoreBase(cfg.SteamStoreBase),
		steam.WithCommunityBase(cfg.SteamCommunityBase),
		steam.WithHTTPClient(&http.Client{Timeout: cfg.UpstreamTimeout()}),
		steam.WithLogger(log.Named("steam")),
	)

	svc := app.New(client,
		app.WithLogger(log.Named("app")),
		app.WithProbePacer(pacer.NewFixed(cfg.ProbeInterval())),
		app.WithDetailPacer(pacer.NewFixed(cfg.DetailInterval())),
		app.WithMaxSuggestions(cfg.MaxSuggestions),
		app.WithAchievementCap(cfg.AchievementBatch),
		app.WithDetailCap(cfg.DetailBatch),
		app.WithSummaryBatch(cfg.SummaryBatch),
		app.WithFriendConcurrency(cfg.FriendConcurrency),
		app.WithPrivateShare(cfg.PrivateThreshold),
	)

	apiServer := api.NewServer(svc, sessions,
		api.WithCookieName(cfg.SessionCookie),
		api.WithSessionTTL(cfg.SessionTTL()),
		api.WithPublicBaseURL(cfg.PublicBaseURL),
		api.WithServerLogger(log.Named("api")),
	)

	go startSystemMetricsUpdater(ctx, sessions)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           apiServer.Router(),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// sessionCounter is implemented by stores that can cheaply report the
// number of live sessions.
type sessionCounter interface {
	Count() int
}

// startSystemMetricsUpdater periodically refreshes system-level gauges.
func startSystemMetricsUpdater(ctx context.Context, sessions session.Store) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics(sessions)
		}
	}
}

func updateSystemMetrics(sessions session.Store) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if counter, ok := sessions.(sessionCounter); ok {
		metrics.UpdateActiveSessions(counter.Count())
	}
}
