package bootstrap

import (
	"github.com/eleven-am/live-coach/internal/analysis"
	"github.com/eleven-am/live-coach/internal/health"
	"github.com/eleven-am/live-coach/internal/prediction"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

const version = "1.0.0"

type HealthParams struct {
	fx.In

	Redis   *redis.Client
	Loop    *analysis.Loop
	History *prediction.History
	Remote  health.RemoteEngine `optional:"true"`
}

func ProvideHealthHandler(p HealthParams) *health.Handler {
	return health.NewHandler(p.Redis, p.Loop, p.History, p.Remote, version)
}

func metricsMiddleware(h *health.Handler) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h.IncrementRequests()
			h.IncrementConnections()
			defer h.DecrementConnections()
			return next(c)
		}
	}
}

func RegisterHealthRoutes(e *echo.Echo, h *health.Handler) {
	e.Use(metricsMiddleware(h))
	h.RegisterRoutes(e)
}

var HealthModule = fx.Options(
	fx.Provide(ProvideHealthHandler),
	fx.Invoke(RegisterHealthRoutes),
)
