package prediction

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/eleven-am/live-coach/internal/inference"
	"github.com/eleven-am/live-coach/internal/minimap"
	"github.com/google/uuid"
)

const (
	dragonFirstSpawn = 300.0
	dragonRespawn    = 300.0
	baronFirstSpawn  = 1200.0
	baronRespawn     = 360.0

	defaultPlaystyle = 0.5
)

var centerOfMap = minimap.Point{X: 0.5, Y: 0.5}

var ErrMalformedOutput = errors.New("engine output missing gank or rotate")

// Builder turns engine output into a Prediction. It never fails: missing or
// unusable input yields one of the documented fallback records.
type Builder struct {
	now   func() time.Time
	newID func() string
}

func NewBuilder() *Builder {
	return &Builder{
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Underfull is published while the window is still filling.
func (b *Builder) Underfull() Prediction {
	return Prediction{
		ID:                  b.newID(),
		CreatedAt:           b.now(),
		Origin:              OriginUnderfull,
		EnemyJunglePosition: centerOfMap,
		GankProbability:     0.0,
		RotateProbability:   0.0,
		ObjectiveTimers:     map[string]float64{ObjectiveDragon: 0, ObjectiveBaron: 0},
		PlaystyleConfidence: map[string]float64{},
	}
}

// Unavailable is published when inference failed or its output was too short.
func (b *Builder) Unavailable() Prediction {
	return Prediction{
		ID:                  b.newID(),
		CreatedAt:           b.now(),
		Origin:              OriginUnavailable,
		EnemyJunglePosition: centerOfMap,
		GankProbability:     0.1,
		RotateProbability:   0.1,
		ObjectiveTimers:     map[string]float64{ObjectiveDragon: 60, ObjectiveBaron: 180},
		PlaystyleConfidence: map[string]float64{},
	}
}

// Build maps probabilities onto a Prediction. latest is the newest frame of
// the window the probabilities were computed from.
func (b *Builder) Build(probs inference.Probabilities, err error, latest minimap.Frame) Prediction {
	if err == nil {
		err = CheckOutput(probs)
	}
	if err != nil {
		return b.Unavailable()
	}
	gank := probs[inference.LabelGank]
	rotate := probs[inference.LabelRotate]

	return Prediction{
		ID:                  b.newID(),
		CreatedAt:           b.now(),
		Origin:              OriginModel,
		EnemyJunglePosition: junglePosition(latest.Enemies),
		GankProbability:     unit(gank),
		RotateProbability:   unit(rotate),
		ObjectiveTimers:     ObjectiveTimers(latest.GameTime),
		PlaystyleConfidence: map[string]float64{
			PlaystyleSnowball: labelOr(probs, inference.LabelSnowball, defaultPlaystyle),
			PlaystyleScaler:   labelOr(probs, inference.LabelScaler, defaultPlaystyle),
		},
	}
}

// CheckOutput reports engine output that cannot be built into a model
// record. The error wraps inference.ErrUnavailable.
func CheckOutput(probs inference.Probabilities) error {
	_, okGank := probs[inference.LabelGank]
	_, okRotate := probs[inference.LabelRotate]
	if !okGank || !okRotate {
		return fmt.Errorf("%w: %w (%d labels)", inference.ErrUnavailable, ErrMalformedOutput, len(probs))
	}
	return nil
}

// ObjectiveTimers returns seconds until each objective (re)spawns, assuming
// it is taken the moment it spawns.
func ObjectiveTimers(gameTime float64) map[string]float64 {
	return map[string]float64{
		ObjectiveDragon: countdown(gameTime, dragonFirstSpawn, dragonRespawn),
		ObjectiveBaron:  countdown(gameTime, baronFirstSpawn, baronRespawn),
	}
}

func countdown(t, first, period float64) float64 {
	if t < first {
		return first - t
	}
	elapsed := math.Mod(t-first, period)
	if elapsed == 0 {
		return 0
	}
	return period - elapsed
}

func junglePosition(enemies []minimap.Point) minimap.Point {
	if len(enemies) == 0 {
		return centerOfMap
	}
	var c minimap.Point
	for _, p := range enemies {
		c.X += p.X
		c.Y += p.Y
	}
	c.X /= float64(len(enemies))
	c.Y /= float64(len(enemies))
	return c
}

func labelOr(p inference.Probabilities, label string, def float64) float64 {
	if v, ok := p[label]; ok {
		return unit(v)
	}
	return def
}

func unit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}
