package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/portfolio-builder/portfolio-backend/config"
	httpapi "github.com/portfolio-builder/portfolio-backend/internal/api/http"
	"github.com/portfolio-builder/portfolio-backend/internal/audit"
	"github.com/portfolio-builder/portfolio-backend/internal/bootstrap"
	"github.com/portfolio-builder/portfolio-backend/internal/editor"
	"github.com/portfolio-builder/portfolio-backend/internal/identity"
	"github.com/portfolio-builder/portfolio-backend/internal/logging"
	"github.com/portfolio-builder/portfolio-backend/internal/profiles/repository"
	"github.com/portfolio-builder/portfolio-backend/internal/profiles/service"
	"github.com/portfolio-builder/portfolio-backend/internal/ratelimit"
	"github.com/portfolio-builder/portfolio-backend/internal/web"
)

const serviceName = "portfolio-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.OpenFirebase(ctx, cfg)
	if err != nil {
		logger.Fatal("firebase init failed", zap.Error(err))
	}

	provider, err := bootstrap.OpenProvider(ctx, cfg, app, logger)
	if err != nil {
		logger.Fatal("identity provider init failed", zap.Error(err))
	}

	docs, err := bootstrap.OpenDocuments(ctx, cfg, app, logger)
	if err != nil {
		logger.Fatal("document store init failed", zap.Error(err))
	}
	defer docs.Close()

	rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal("redis init failed", zap.Error(err))
	}
	defer rdb.Close()

	repo := repository.NewProfileRepository(docs.Store, cfg.Store.Collection)
	profiles := service.NewProfileService(repo, provider)
	drafts := editor.NewService(profiles, editor.NewRedisSessionStore(rdb, cfg.Redis.DraftTTL))
	binder := identity.NewBinder(provider, identity.BinderOptions{
		CookieName: cfg.Session.CookieName,
		SessionTTL: cfg.Session.TTL,
		Secure:     cfg.Session.Secure,
	})
	limiter := ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)

	router, err := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:        serviceName,
		Version:            cfg.App.Version,
		Logger:             logger,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		SecureCookies:      cfg.Session.Secure,
		Client: web.ClientConfig{
			APIKey:     cfg.Firebase.WebAPIKey,
			AuthDomain: cfg.Firebase.AuthDomain,
			ProjectID:  cfg.Firebase.ProjectID,
		},
		Profiles:  profiles,
		Editor:    drafts,
		Binder:    binder,
		AuthLimit: limiter,
		Health: map[string]httpapi.Pinger{
			"store": docs.Pinger,
			"redis": httpapi.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		},
	})
	if err != nil {
		logger.Fatal("router init failed", zap.Error(err))
	}

	scheduler := audit.NewScheduler(repo, logger)
	if err := scheduler.Start(cfg.App.AuditSchedule); err != nil {
		logger.Fatal("audit scheduler init failed", zap.Error(err))
	}

	go sweepLimiter(ctx, limiter)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening",
			zap.String("port", cfg.Server.Port),
			zap.String("auth_driver", cfg.Firebase.AuthDriver),
			zap.String("store_driver", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	scheduler.Stop(shutdownCtx)
}

func sweepLimiter(ctx context.Context, limiter *ratelimit.Limiter) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Sweep()
		}
	}
}
