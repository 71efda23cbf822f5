package overlay

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/eleven-am/live-coach/internal/prediction"
)

const (
	DefaultFPS = 60
	MaxFPS     = 240
)

type Renderer interface {
	Render(p prediction.Prediction) error
}

// TextRenderer writes one status line per visible change.
type TextRenderer struct {
	w    io.Writer
	mu   sync.Mutex
	last string
}

func NewTextRenderer(w io.Writer) *TextRenderer {
	return &TextRenderer{w: w}
}

func (r *TextRenderer) Render(p prediction.Prediction) error {
	line := FormatLine(p)

	r.mu.Lock()
	defer r.mu.Unlock()
	if line == r.last {
		return nil
	}
	r.last = line
	_, err := fmt.Fprintln(r.w, line)
	return err
}

func FormatLine(p prediction.Prediction) string {
	return fmt.Sprintf("GANK %3d%% | ROTATE %3d%% | %s",
		percent(p.GankProbability), percent(p.RotateProbability), p.Recommendation)
}

func percent(v float64) int {
	return int(math.Round(v * 100))
}

type RenderLoop struct {
	history  *prediction.History
	renderer Renderer
	interval time.Duration
	logger   *slog.Logger
}

func NewRenderLoop(history *prediction.History, renderer Renderer, fps int, logger *slog.Logger) *RenderLoop {
	if logger == nil {
		logger = slog.Default()
	}
	if fps <= 0 {
		fps = DefaultFPS
	}
	fps = min(fps, MaxFPS)
	return &RenderLoop{
		history:  history,
		renderer: renderer,
		interval: time.Second / time.Duration(fps),
		logger:   logger.With("component", "render-loop"),
	}
}

// Run polls the latest prediction once per frame until ctx is done. Frames
// without a new sequence number are skipped.
func (r *RenderLoop) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	var lastSeq uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		p, ok := r.history.Latest()
		if !ok || p.Seq == lastSeq {
			continue
		}
		lastSeq = p.Seq

		if err := r.renderer.Render(p); err != nil {
			r.logger.Warn("render failed", "error", err)
		}
	}
}
