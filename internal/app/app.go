package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pinsync/pinsync/internal/auth"
	"github.com/pinsync/pinsync/internal/config"
	"github.com/pinsync/pinsync/internal/httpserver"
	"github.com/pinsync/pinsync/internal/httpserver/deps"
	"github.com/pinsync/pinsync/internal/logger"
	"github.com/pinsync/pinsync/internal/realtime"
	"github.com/pinsync/pinsync/internal/redis"
	"github.com/pinsync/pinsync/internal/scheduler"
	"github.com/pinsync/pinsync/internal/store/sqlite"
	"github.com/pinsync/pinsync/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	repo        *sqlite.Repository
	janitor     *scheduler.Janitor
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Redis initialized successfully")

	// Open SQLite and run migrations
	repo, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		loggerClient.Errorf("Failed to open database: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("database opened",
		logger.String("path", cfg.DatabasePath))

	publisher := realtime.NewPublisher(redisClient)
	sessions := auth.NewSessions([]byte(cfg.JWTSecret), cfg.SessionTTL, cfg.SecureCookies)
	google := auth.NewGoogle(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.BaseURL+"/auth/callback",
		cfg.SecureCookies,
	)

	// Manual purge trigger channel
	purgeTrigger := make(chan struct{}, 1)

	janitor := scheduler.NewJanitor(
		repo,
		loggerClient,
		cfg.JanitorInterval,
		cfg.PurgeThreshold,
		purgeTrigger,
	)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		TimeNow:       time.Now,
		BaseURL:       cfg.BaseURL,
		Repo:          repo,
		RedisClient:   redisClient,
		Publisher:     publisher,
		Sessions:      sessions,
		Google:        google,
		AllowedEmails: cfg.AllowedEmails,
		PurgeTrigger:  purgeTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		repo:        repo,
		janitor:     janitor,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting pinsync v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("pinsync %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start janitor (purges soft-deleted bookmarks past the threshold)
	if err := a.janitor.Start(ctx); err != nil {
		return fmt.Errorf("failed to start janitor: %w", err)
	}
	a.logger.Info("janitor started",
		logger.Duration("interval", a.cfg.JanitorInterval),
		logger.Duration("threshold", a.cfg.PurgeThreshold))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.janitor.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	if err := a.repo.Close(); err != nil {
		a.logger.Warnf("failed to close database: %v", err)
	}

	a.logger.Info("✅ pinsync stopped cleanly")
	return nil
}
