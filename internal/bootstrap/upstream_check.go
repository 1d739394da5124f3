package bootstrap

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Vikas210-dev/cyber-new/internal/session"
	"github.com/Vikas210-dev/cyber-new/internal/upstream"
)

// CheckUpstream acquires a throwaway client token at startup to verify
// the configured credential pair against the identity endpoint. A
// failure is logged, not fatal: per-session acquisition retries on the
// first page load anyway, and the gateway should come up even when the
// upstream is briefly down.
func CheckUpstream(lc fx.Lifecycle, client *upstream.Client, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			checkCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			defer cancel()

			store := session.NewMemoryStore(time.Minute)
			probe := session.NewManager(store, "bootstrap-"+uuid.NewString())
			if err := client.AcquireClientToken(checkCtx, probe); err != nil {
				logger.Warn("upstream credential check failed", zap.Error(err))
				return nil
			}
			logger.Info("upstream credential check ok")
			return nil
		},
	})
}
