package inference

import (
	"context"
	"math"

	"github.com/eleven-am/live-coach/internal/minimap"
	"github.com/eleven-am/live-coach/internal/sequence"
)

const (
	earlyGameEnd = 900.0
	lateGameFrom = 1800.0
)

var midLane = minimap.Point{X: 0.5, Y: 0.5}

// HeuristicEngine scores a window from enemy movement alone: closeness to the
// river, approach speed, and how tightly the enemy team is grouped. It is
// deterministic and keeps no state between calls.
type HeuristicEngine struct {
	length int
}

func NewHeuristicEngine(length int) *HeuristicEngine {
	if length <= 0 {
		length = sequence.DefaultLength
	}
	return &HeuristicEngine{length: length}
}

func (e *HeuristicEngine) Predict(ctx context.Context, window []minimap.Frame) (Probabilities, error) {
	if err := checkWindow(window, e.length); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, unavailable("%v", err)
	}

	probs, err := Softmax(Logits(window))
	if err != nil {
		return nil, unavailable("%v", err)
	}
	return FromVector(probs), nil
}

// Logits computes the raw scores in Layout order.
func Logits(window []minimap.Frame) []float64 {
	first, last := window[0], window[len(window)-1]

	riverNow := meanRiverDistance(last.Enemies)
	riverThen := meanRiverDistance(first.Enemies)
	approach := riverThen - riverNow

	grouping := spread(last.Enemies)
	midNow := distance(centroid(last.Enemies, midLane), midLane)
	midThen := distance(centroid(first.Enemies, midLane), midLane)

	gank := 0.0
	if len(last.Enemies) > 0 {
		gank = 3*(0.25-riverNow) + 20*approach
	}
	rotate := 0.0
	if len(last.Enemies) >= 3 {
		rotate = 4*(0.3-grouping) + 10*(midThen-midNow)
	}

	snowball, scaler := 0.5, 0.5
	switch {
	case last.GameTime < earlyGameEnd:
		snowball, scaler = 1.0, 0.0
	case last.GameTime >= lateGameFrom:
		snowball, scaler = 0.0, 1.0
	}

	return []float64{1.0, gank, 0.5, rotate, snowball, scaler}
}

// The river runs corner to corner along y = x in minimap coordinates.
func riverDistance(p minimap.Point) float64 {
	return math.Abs(p.X-p.Y) / math.Sqrt2
}

func meanRiverDistance(ps []minimap.Point) float64 {
	if len(ps) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range ps {
		sum += riverDistance(p)
	}
	return sum / float64(len(ps))
}

func centroid(ps []minimap.Point, fallback minimap.Point) minimap.Point {
	if len(ps) == 0 {
		return fallback
	}
	var c minimap.Point
	for _, p := range ps {
		c.X += p.X
		c.Y += p.Y
	}
	c.X /= float64(len(ps))
	c.Y /= float64(len(ps))
	return c
}

func spread(ps []minimap.Point) float64 {
	if len(ps) == 0 {
		return 0
	}
	c := centroid(ps, midLane)
	sum := 0.0
	for _, p := range ps {
		sum += distance(p, c)
	}
	return sum / float64(len(ps))
}

func distance(a, b minimap.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
