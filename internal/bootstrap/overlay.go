package bootstrap

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/eleven-am/live-coach/internal/analysis"
	"github.com/eleven-am/live-coach/internal/overlay"
	"github.com/eleven-am/live-coach/internal/prediction"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

func ProvideOverlayHandler(history *prediction.History, loop *analysis.Loop, cfg *Config, logger *slog.Logger) *overlay.Handler {
	return overlay.NewHandler(history, loop, cfg.StreamInterval, logger.With("handler", "coach"))
}

// runInBackground ties a polling reader to the fx lifecycle.
func runInBackground(lc fx.Lifecycle, run func(context.Context)) {
	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			wg.Add(1)
			go func() {
				defer wg.Done()
				run(ctx)
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			wg.Wait()
			return nil
		},
	})
}

func StartPublisher(lc fx.Lifecycle, client *redis.Client, history *prediction.History, cfg *Config, logger *slog.Logger) {
	if client == nil {
		logger.Info("redis publisher disabled")
		return
	}

	// Hooks stop in reverse order, so the client closes after the publisher exits.
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	publisher := overlay.NewPublisher(client, history, cfg.RedisChannel, overlay.DefaultPublishInterval, logger)
	runInBackground(lc, publisher.Run)
}

func StartConsoleOverlay(lc fx.Lifecycle, history *prediction.History, cfg *Config, logger *slog.Logger) {
	if !cfg.OverlayConsole {
		return
	}

	loop := overlay.NewRenderLoop(history, overlay.NewTextRenderer(os.Stderr), cfg.OverlayFPS, logger)
	runInBackground(lc, loop.Run)
}

var OverlayModule = fx.Options(
	fx.Provide(ProvideOverlayHandler),
	fx.Invoke(StartPublisher),
	fx.Invoke(StartConsoleOverlay),
)
