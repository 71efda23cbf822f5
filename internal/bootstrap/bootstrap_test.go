package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/eleven-am/live-coach/internal/inference"
	"github.com/eleven-am/live-coach/internal/minimap"
	"github.com/eleven-am/live-coach/internal/prediction"
	"github.com/eleven-am/live-coach/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.ServerAddr != ":8080" {
		t.Errorf("expected :8080, got %s", cfg.ServerAddr)
	}
	if cfg.TelemetryMode != TelemetrySynthetic {
		t.Errorf("expected synthetic telemetry, got %s", cfg.TelemetryMode)
	}
	if cfg.AnalysisPeriod != 60*time.Millisecond {
		t.Errorf("expected 60ms period, got %v", cfg.AnalysisPeriod)
	}
	if cfg.AnalysisCooldown != time.Second {
		t.Errorf("expected 1s cooldown, got %v", cfg.AnalysisCooldown)
	}
	if cfg.SequenceLength != 16 || cfg.HistorySize != 60 {
		t.Errorf("expected 16/60, got %d/%d", cfg.SequenceLength, cfg.HistorySize)
	}
	if cfg.RedisAddr != "" || cfg.InferenceAddress != "" {
		t.Error("redis and sidecar should be disabled by default")
	}
	if cfg.OverlayFPS != 60 {
		t.Errorf("expected 60 fps, got %d", cfg.OverlayFPS)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("TELEMETRY_MODE", "REPLAY")
	t.Setenv("TELEMETRY_REPLAY_PATH", "/tmp/match.jsonl")
	t.Setenv("INFERENCE_TIMEOUT", "750ms")
	t.Setenv("INFERENCE_INCLUDE_IMAGES", "true")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("OVERLAY_CONSOLE", "1")
	t.Setenv("ANALYSIS_PERIOD", "not-a-duration")

	cfg := LoadConfig()

	if cfg.TelemetryMode != TelemetryReplay {
		t.Errorf("expected replay mode, got %s", cfg.TelemetryMode)
	}
	if cfg.InferenceTimeout != 750*time.Millisecond {
		t.Errorf("expected 750ms, got %v", cfg.InferenceTimeout)
	}
	if !cfg.InferenceIncludeImages || !cfg.OverlayConsole {
		t.Error("expected boolean overrides to apply")
	}
	if cfg.RedisDB != 3 {
		t.Errorf("expected redis db 3, got %d", cfg.RedisDB)
	}
	if cfg.AnalysisPeriod != 60*time.Millisecond {
		t.Errorf("invalid duration should keep default, got %v", cfg.AnalysisPeriod)
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"info":  slog.LevelInfo,
		"":      slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestProvideTelemetrySource(t *testing.T) {
	src, err := ProvideTelemetrySource(&Config{TelemetryMode: TelemetrySynthetic}, testLogger())
	if err != nil {
		t.Fatalf("synthetic: %v", err)
	}
	if _, ok := src.(*telemetry.SyntheticSource); !ok {
		t.Errorf("expected synthetic source, got %T", src)
	}

	src, err = ProvideTelemetrySource(&Config{TelemetryMode: TelemetryReplay, TelemetryReplayPath: "match.jsonl"}, testLogger())
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if _, ok := src.(*telemetry.ReplaySource); !ok {
		t.Errorf("expected replay source, got %T", src)
	}

	if _, err := ProvideTelemetrySource(&Config{TelemetryMode: TelemetryReplay}, testLogger()); err == nil {
		t.Error("replay without a path should fail")
	}
	if _, err := ProvideTelemetrySource(&Config{TelemetryMode: "memory"}, testLogger()); err == nil {
		t.Error("unknown mode should fail")
	}
}

func TestProvideCapturer(t *testing.T) {
	c, err := ProvideCapturer(&Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := c.(minimap.BlankCapturer); !ok {
		t.Errorf("expected blank capturer, got %T", c)
	}

	if _, err := ProvideCapturer(&Config{CaptureDir: filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Error("missing capture dir should fail")
	}
}

func TestProvideInference(t *testing.T) {
	lc := fxtest.NewLifecycle(t)

	res, err := ProvideInference(lc, &Config{SequenceLength: 16}, testLogger())
	if err != nil {
		t.Fatalf("heuristic: %v", err)
	}
	if _, ok := res.Engine.(*inference.HeuristicEngine); !ok {
		t.Errorf("expected heuristic engine, got %T", res.Engine)
	}
	if res.Remote != nil {
		t.Error("heuristic engine should not report a remote")
	}

	res, err = ProvideInference(lc, &Config{InferenceAddress: "localhost:50061", SequenceLength: 16}, testLogger())
	if err != nil {
		t.Fatalf("sidecar: %v", err)
	}
	if res.Remote == nil || res.Remote.Address() != "localhost:50061" {
		t.Errorf("expected sidecar remote, got %+v", res.Remote)
	}

	lc.RequireStart()
	lc.RequireStop()
}

func TestProvideRedisClient_Disabled(t *testing.T) {
	if ProvideRedisClient(&Config{}) != nil {
		t.Error("empty REDIS_ADDR should disable the client")
	}
	client := ProvideRedisClient(&Config{RedisAddr: "localhost:6379"})
	if client == nil {
		t.Fatal("expected client")
	}
	client.Close()
}

type hookRecorder struct {
	hooks []fx.Hook
}

func (r *hookRecorder) Append(h fx.Hook) {
	r.hooks = append(r.hooks, h)
}

func TestStartPublisher_ClosesClientAfterPublisherStops(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	lc := &hookRecorder{}
	ctx := context.Background()

	StartPublisher(lc, client, prediction.NewHistory(4), &Config{RedisChannel: "coach:test"}, testLogger())
	if len(lc.hooks) != 2 {
		t.Fatalf("expected 2 hooks, got %d", len(lc.hooks))
	}
	for _, h := range lc.hooks {
		if h.OnStart != nil {
			if err := h.OnStart(ctx); err != nil {
				t.Fatal(err)
			}
		}
	}

	last := len(lc.hooks) - 1
	if err := lc.hooks[last].OnStop(ctx); err != nil {
		t.Fatal(err)
	}
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("client should stay open until the publisher has stopped: %v", err)
	}
	for i := last - 1; i >= 0; i-- {
		if err := lc.hooks[i].OnStop(ctx); err != nil {
			t.Fatal(err)
		}
	}
	if err := client.Ping(ctx).Err(); err == nil {
		t.Fatal("client should be closed after shutdown")
	}
}

func TestApplicationGraph(t *testing.T) {
	err := fx.ValidateApp(
		fx.Provide(LoadConfig),
		InfrastructureModule,
		AnalysisModule,
		OverlayModule,
		ServerModule,
		HealthModule,
		HandlersModule,
	)
	if err != nil {
		t.Fatalf("server graph: %v", err)
	}

	err = fx.ValidateApp(
		fx.Provide(LoadConfig),
		GRPCModule,
	)
	if err != nil {
		t.Fatalf("sidecar graph: %v", err)
	}
}

func TestMain(m *testing.M) {
	for _, key := range []string{"TELEMETRY_MODE", "REDIS_ADDR", "INFERENCE_ADDRESS", "SERVER_ADDR"} {
		os.Unsetenv(key)
	}
	os.Exit(m.Run())
}
