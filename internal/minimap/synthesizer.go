package minimap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/eleven-am/live-coach/internal/telemetry"
)

var ErrInvalidCoordinate = errors.New("invalid coordinate")

type Synthesizer struct {
	capturer Capturer
	logger   *slog.Logger
}

func NewSynthesizer(capturer Capturer, logger *slog.Logger) *Synthesizer {
	if capturer == nil {
		capturer = BlankCapturer{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{
		capturer: capturer,
		logger:   logger.With("component", "frame-synthesizer"),
	}
}

// Synthesize turns one telemetry snapshot into a Frame. Capture failures fall
// back to a blank image; only unusable coordinates are reported as errors.
func (s *Synthesizer) Synthesize(ctx context.Context, snap telemetry.Snapshot) (Frame, error) {
	allies := make([]Point, 0, MaxPerSide)
	enemies := make([]Point, 0, MaxPerSide)

	for _, e := range snap.Entities {
		if !finite(e.X) || !finite(e.Y) {
			return Frame{}, fmt.Errorf("%w: champion %d at (%v, %v)", ErrInvalidCoordinate, e.ChampionID, e.X, e.Y)
		}
		p := Point{X: Normalize(e.X), Y: Normalize(e.Y)}
		if e.Team == TeamAlly {
			if len(allies) < MaxPerSide {
				allies = append(allies, p)
			}
			continue
		}
		if len(enemies) < MaxPerSide {
			enemies = append(enemies, p)
		}
	}

	img, err := s.capturer.Capture(ctx)
	if err != nil || img == nil {
		s.logger.Debug("minimap capture failed", "error", err)
		img = Blank()
	}

	return Frame{
		Timestamp:  snap.Timestamp,
		GameTime:   snap.GameTime,
		Allies:     allies,
		Enemies:    enemies,
		Objectives: ObjectiveLocations(),
		Vision:     FullVision(),
		Image:      img,
	}, nil
}

// Normalize maps a raw map coordinate onto [0,1], clamping outside the map.
func Normalize(v float64) float64 {
	if v <= MapMin {
		return 0
	}
	if v >= MapMax {
		return 1
	}
	return (v - MapMin) / (MapMax - MapMin)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
