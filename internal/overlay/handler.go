package overlay

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/eleven-am/live-coach/internal/analysis"
	"github.com/eleven-am/live-coach/internal/dto"
	"github.com/eleven-am/live-coach/internal/prediction"
	"github.com/eleven-am/live-coach/internal/shared"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	DefaultStreamInterval = 100 * time.Millisecond

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMessage = 512
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type StatsProvider interface {
	Stats() analysis.Stats
}

type Handler struct {
	history  *prediction.History
	stats    StatsProvider
	interval time.Duration
	logger   *slog.Logger
}

func NewHandler(history *prediction.History, stats StatsProvider, interval time.Duration, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = DefaultStreamInterval
	}
	return &Handler{
		history:  history,
		stats:    stats,
		interval: interval,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/latest", h.Latest)
	g.GET("/history", h.History)
	g.GET("/status", h.Status)
	g.GET("/stream", h.Stream)
}

// Latest godoc
// @Summary      Latest coach call
// @Description  Returns the most recent prediction and its coach call
// @Tags         coach
// @Produce      json
// @Success      200  {object}  dto.PredictionResponse
// @Failure      404  {object}  shared.APIError
// @Router       /coach/latest [get]
func (h *Handler) Latest(c echo.Context) error {
	p, ok := h.history.Latest()
	if !ok {
		return shared.NotFound("no_prediction", "no prediction available yet")
	}
	return c.JSON(http.StatusOK, predictionToResponse(p))
}

// History godoc
// @Summary      Recent predictions
// @Description  Returns up to limit recent predictions, oldest first
// @Tags         coach
// @Produce      json
// @Param        limit  query     int  false  "Maximum number of predictions"
// @Success      200    {object}  dto.HistoryResponse
// @Failure      400    {object}  shared.APIError
// @Router       /coach/history [get]
func (h *Handler) History(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return shared.BadRequest("invalid_limit", "limit must be a non-negative integer")
		}
		limit = n
	}

	records := h.history.Recent(limit)
	resp := dto.HistoryResponse{
		Count:       len(records),
		Predictions: make([]dto.PredictionResponse, len(records)),
	}
	for i, p := range records {
		resp.Predictions[i] = predictionToResponse(p)
	}
	return c.JSON(http.StatusOK, resp)
}

// Status godoc
// @Summary      Analysis loop status
// @Description  Returns loop state, cycle counters and failure counts by kind
// @Tags         coach
// @Produce      json
// @Success      200  {object}  dto.LoopStatusResponse
// @Failure      503  {object}  shared.APIError
// @Router       /coach/status [get]
func (h *Handler) Status(c echo.Context) error {
	if h.stats == nil {
		return shared.ServiceUnavailable("loop_unavailable", "analysis loop not configured")
	}
	return c.JSON(http.StatusOK, statsToResponse(h.stats.Stats(), h.history))
}

// Stream godoc
// @Summary      Live coach call stream
// @Description  Upgrades to a WebSocket and pushes a CoachEvent for every new prediction
// @Tags         coach
// @Success      101  {object}  dto.CoachEvent
// @Router       /coach/stream [get]
func (h *Handler) Stream(c echo.Context) error {
	ws, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return err
	}
	defer ws.Close()

	closed := make(chan struct{})
	go h.readPump(ws, closed)

	h.logger.Debug("stream client connected", "remote", c.RealIP())
	h.writePump(c, ws, closed)
	h.logger.Debug("stream client disconnected", "remote", c.RealIP())
	return nil
}

// readPump discards client frames and keeps the pong deadline fresh.
func (h *Handler) readPump(ws *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	ws.SetReadLimit(maxMessage)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		_ = ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket read error", "error", err)
			}
			return
		}
	}
}

func (h *Handler) writePump(c echo.Context, ws *websocket.Conn, closed <-chan struct{}) {
	ctx := c.Request().Context()
	poll := time.NewTicker(h.interval)
	ping := time.NewTicker(pingPeriod)
	defer poll.Stop()
	defer ping.Stop()

	var lastSeq uint64
	send := func() bool {
		p, ok := h.history.Latest()
		if !ok || p.Seq == lastSeq {
			return true
		}
		_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := ws.WriteJSON(predictionEvent(p)); err != nil {
			h.logger.Debug("websocket write error", "error", err)
			return false
		}
		lastSeq = p.Seq
		return true
	}

	if !send() {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-closed:
			return
		case <-poll.C:
			if !send() {
				return
			}
		case <-ping.C:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
