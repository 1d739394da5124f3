package main

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Vikas210-dev/cyber-new/internal/audit"
	"github.com/Vikas210-dev/cyber-new/internal/auth"
	"github.com/Vikas210-dev/cyber-new/internal/bootstrap"
	"github.com/Vikas210-dev/cyber-new/internal/config"
	httptransport "github.com/Vikas210-dev/cyber-new/internal/http"
	"github.com/Vikas210-dev/cyber-new/internal/http/handler"
	httpmiddleware "github.com/Vikas210-dev/cyber-new/internal/http/middleware"
	apimiddleware "github.com/Vikas210-dev/cyber-new/internal/middleware"
	"github.com/Vikas210-dev/cyber-new/internal/server"
	"github.com/Vikas210-dev/cyber-new/internal/session"
	"github.com/Vikas210-dev/cyber-new/internal/telemetry"
	"github.com/Vikas210-dev/cyber-new/internal/upstream"
)

func main() {
	app := fx.New(
		fx.Provide(
			newConfig,
			newLogger,
			newTelemetry,
			newSnowflake,
			newSessionStore,
			newAuditRecorder,
			newUpstreamClient,
			newAuthService,
			newAuthHandler,
			newConsoleHandler,
			newSessions,
			newGuard,
			newRateLimiter,
			httptransport.NewRouter,
			server.NewHTTPServer,
		),
		fx.Invoke(useTelemetry, bootstrap.CheckUpstream, startHTTPServer),
	)

	app.Run()
}

func newConfig() (config.Config, error) {
	return config.Load()
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Environment == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func newTelemetry(lc fx.Lifecycle, cfg config.Config, logger *zap.Logger) (*telemetry.Provider, error) {
	provider, err := telemetry.New(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("telemetry init: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return provider.Shutdown(stopCtx)
		},
	})

	return provider, nil
}

func newSnowflake() (*snowflake.Node, error) {
	node, err := snowflake.NewNode(1)
	return node, err
}

func newSessionStore(lc fx.Lifecycle, cfg config.Config) (session.Store, error) {
	if cfg.SessionBackend != "redis" {
		return session.NewMemoryStore(cfg.SessionTTL), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return session.NewRedisStore(client, cfg.SessionTTL), nil
}

func newAuditRecorder(lc fx.Lifecycle, cfg config.Config, node *snowflake.Node, logger *zap.Logger) (audit.Recorder, error) {
	if cfg.DatabaseURL == "" {
		return audit.NewLogRecorder(logger), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			pool.Close()
			return nil
		},
	})
	return audit.NewPostgresRecorder(pool, node, logger), nil
}

func newUpstreamClient(cfg config.Config, logger *zap.Logger) *upstream.Client {
	return upstream.New(cfg, logger)
}

func newAuthService(client *upstream.Client, recorder audit.Recorder, logger *zap.Logger) *auth.Service {
	return auth.NewService(client, recorder, logger)
}

func newAuthHandler(authService *auth.Service, logger *zap.Logger) *handler.AuthHandler {
	return handler.NewAuthHandler(authService, logger)
}

func newConsoleHandler(client *upstream.Client, logger *zap.Logger) *handler.ConsoleHandler {
	return handler.NewConsoleHandler(client, logger)
}

func newSessions(store session.Store, cfg config.Config) *httpmiddleware.Sessions {
	return httpmiddleware.NewSessions(store, cfg.SessionTTL, cfg.CookieSecure)
}

func newGuard(authService *auth.Service) *httpmiddleware.Guard {
	return &httpmiddleware.Guard{Auth: authService}
}

func newRateLimiter(cfg config.Config) *apimiddleware.RateLimiter {
	return apimiddleware.NewRateLimiter(cfg.RateLimitRPM)
}

func startHTTPServer(lc fx.Lifecycle, srv *server.HTTPServer, cfg config.Config, logger *zap.Logger) {
	addr := ":" + cfg.HTTPPort
	var (
		cancel context.CancelFunc
		done   chan struct{}
	)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			runCtx, stop := context.WithCancel(context.Background())
			cancel = stop
			done = make(chan struct{})

			go func() {
				if err := srv.Run(runCtx, addr); err != nil {
					logger.Error("http server stopped", zap.Error(err))
				}
				close(done)
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			if done == nil {
				return nil
			}
			select {
			case <-done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}

func useTelemetry(*telemetry.Provider) {}
