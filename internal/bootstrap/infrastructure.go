package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/eleven-am/live-coach/internal/analysis"
	"github.com/eleven-am/live-coach/internal/health"
	"github.com/eleven-am/live-coach/internal/inference"
	"github.com/eleven-am/live-coach/internal/minimap"
	"github.com/eleven-am/live-coach/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// ProvideRedisClient returns nil when REDIS_ADDR is unset; the publisher and
// its health check are skipped in that case.
func ProvideRedisClient(cfg *Config) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func ProvideTelemetrySource(cfg *Config, logger *slog.Logger) (telemetry.Source, error) {
	switch cfg.TelemetryMode {
	case TelemetrySynthetic:
		return telemetry.NewSyntheticSource(cfg.TelemetrySeed), nil
	case TelemetryReplay:
		if cfg.TelemetryReplayPath == "" {
			return nil, fmt.Errorf("TELEMETRY_REPLAY_PATH is required in replay mode")
		}
		return telemetry.NewReplaySource(cfg.TelemetryReplayPath, logger), nil
	default:
		return nil, fmt.Errorf("unknown telemetry mode %q", cfg.TelemetryMode)
	}
}

func ProvideCapturer(cfg *Config) (minimap.Capturer, error) {
	if cfg.CaptureDir == "" {
		return minimap.BlankCapturer{}, nil
	}
	capturer, err := minimap.NewDirCapturer(cfg.CaptureDir)
	if err != nil {
		return nil, err
	}
	return capturer, nil
}

func ProvideSynthesizer(capturer minimap.Capturer, logger *slog.Logger) analysis.FrameSynthesizer {
	return minimap.NewSynthesizer(capturer, logger)
}

type InferenceResult struct {
	fx.Out

	Engine inference.Engine
	Remote health.RemoteEngine
}

// ProvideInference uses the gRPC sidecar when INFERENCE_ADDRESS is set and
// the in-process heuristic engine otherwise.
func ProvideInference(lc fx.Lifecycle, cfg *Config, logger *slog.Logger) (InferenceResult, error) {
	if cfg.InferenceAddress == "" {
		logger.Info("using heuristic inference engine")
		return InferenceResult{Engine: inference.NewHeuristicEngine(cfg.SequenceLength)}, nil
	}

	client, err := inference.NewSidecarClient(inference.SidecarConfig{
		Address:        cfg.InferenceAddress,
		Token:          cfg.InferenceToken,
		Timeout:        cfg.InferenceTimeout,
		SequenceLength: cfg.SequenceLength,
		IncludeImages:  cfg.InferenceIncludeImages,
	})
	if err != nil {
		return InferenceResult{}, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	logger.Info("using inference sidecar", "addr", cfg.InferenceAddress, "include_images", cfg.InferenceIncludeImages)
	return InferenceResult{Engine: client, Remote: client}, nil
}

var InfrastructureModule = fx.Options(
	fx.Provide(
		ProvideLogger,
		ProvideRedisClient,
		ProvideTelemetrySource,
		ProvideCapturer,
		ProvideSynthesizer,
		ProvideInference,
	),
)
