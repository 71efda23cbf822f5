package bootstrap

import (
	"log/slog"
	"os"

	"github.com/eleven-am/live-coach/internal/overlay"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/fx"
)

type HandlerParams struct {
	fx.In

	CoachHandler *overlay.Handler
}

func RegisterRoutes(e *echo.Echo, params HandlerParams) {
	api := e.Group("/v1")

	params.CoachHandler.RegisterRoutes(api.Group("/coach"))

	e.GET("/swagger/*", echoSwagger.EchoWrapHandlerV3())
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ProvideLogger(cfg *Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
}

var HandlersModule = fx.Options(
	fx.Invoke(RegisterRoutes),
)
