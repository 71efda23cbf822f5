package bootstrap

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	TelemetrySynthetic = "synthetic"
	TelemetryReplay    = "replay"
)

type Config struct {
	ServerAddr string
	GRPCAddr   string
	LogLevel   string

	TelemetryMode       string
	TelemetryReplayPath string
	TelemetrySeed       int64
	CaptureDir          string

	InferenceAddress       string
	InferenceToken         string
	InferenceTimeout       time.Duration
	InferenceIncludeImages bool
	SequenceLength         int

	AnalysisPeriod     time.Duration
	AnalysisCooldown   time.Duration
	AttachRetryInitial time.Duration
	AttachRetryMax     time.Duration
	HistorySize        int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisChannel  string

	OverlayConsole bool
	OverlayFPS     int
	StreamInterval time.Duration
}

func LoadConfig() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		GRPCAddr:   getEnv("GRPC_ADDR", ":50061"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		TelemetryMode:       strings.ToLower(getEnv("TELEMETRY_MODE", TelemetrySynthetic)),
		TelemetryReplayPath: getEnv("TELEMETRY_REPLAY_PATH", ""),
		TelemetrySeed:       int64(getEnvInt("TELEMETRY_SEED", 1)),
		CaptureDir:          getEnv("CAPTURE_DIR", ""),

		InferenceAddress:       getEnv("INFERENCE_ADDRESS", ""),
		InferenceToken:         getEnv("INFERENCE_TOKEN", ""),
		InferenceTimeout:       getEnvDuration("INFERENCE_TIMEOUT", 2*time.Second),
		InferenceIncludeImages: getEnvBool("INFERENCE_INCLUDE_IMAGES", false),
		SequenceLength:         getEnvInt("SEQUENCE_LENGTH", 16),

		AnalysisPeriod:     getEnvDuration("ANALYSIS_PERIOD", 60*time.Millisecond),
		AnalysisCooldown:   getEnvDuration("ANALYSIS_COOLDOWN", time.Second),
		AttachRetryInitial: getEnvDuration("ATTACH_RETRY_INITIAL", 500*time.Millisecond),
		AttachRetryMax:     getEnvDuration("ATTACH_RETRY_MAX", 10*time.Second),
		HistorySize:        getEnvInt("HISTORY_SIZE", 60),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisChannel:  getEnv("REDIS_CHANNEL", "coach:predictions"),

		OverlayConsole: getEnvBool("OVERLAY_CONSOLE", false),
		OverlayFPS:     getEnvInt("OVERLAY_FPS", 60),
		StreamInterval: getEnvDuration("STREAM_INTERVAL", 100*time.Millisecond),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
