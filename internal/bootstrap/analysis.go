package bootstrap

import (
	"context"
	"errors"
	"log/slog"

	"github.com/eleven-am/live-coach/internal/analysis"
	"github.com/eleven-am/live-coach/internal/inference"
	"github.com/eleven-am/live-coach/internal/prediction"
	"github.com/eleven-am/live-coach/internal/shared"
	"github.com/eleven-am/live-coach/internal/telemetry"
	"go.uber.org/fx"
)

func ProvideHistory(cfg *Config) *prediction.History {
	return prediction.NewHistory(cfg.HistorySize)
}

type LoopParams struct {
	fx.In

	Config      *Config
	Source      telemetry.Source
	Synthesizer analysis.FrameSynthesizer
	Engine      inference.Engine
	History     *prediction.History
	Logger      *slog.Logger
}

func ProvideLoop(p LoopParams) *analysis.Loop {
	return analysis.NewLoop(analysis.Config{
		Source:         p.Source,
		Synthesizer:    p.Synthesizer,
		Engine:         p.Engine,
		History:        p.History,
		SequenceLength: p.Config.SequenceLength,
		Period:         p.Config.AnalysisPeriod,
		Cooldown:       p.Config.AnalysisCooldown,
		Logger:         p.Logger,
	})
}

// StartLoop attaches in the background so the HTTP surface comes up while the
// game is still loading.
func StartLoop(lc fx.Lifecycle, loop *analysis.Loop, cfg *Config, logger *slog.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	attached := make(chan struct{})

	backoff := shared.BackoffConfig{
		Initial:  cfg.AttachRetryInitial,
		MaxDelay: cfg.AttachRetryMax,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(attached)
				if err := loop.AttachWithRetry(ctx, backoff); err != nil {
					if !errors.Is(err, context.Canceled) {
						logger.Error("telemetry attach failed", "error", err)
					}
					return
				}
				if err := loop.Start(); err != nil {
					logger.Error("analysis loop start failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			<-attached
			return loop.Stop(stopCtx)
		},
	})
}

var AnalysisModule = fx.Options(
	fx.Provide(
		ProvideHistory,
		ProvideLoop,
	),
	fx.Invoke(StartLoop),
)
