package telemetry

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"
)

const (
	syntheticPlayers = 10
	syntheticStep    = 350.0
	tickGameSeconds  = 0.06
)

// SyntheticSource simulates a ten-player match as a seeded random walk so the
// pipeline can run without a game client.
type SyntheticSource struct {
	mu       sync.Mutex
	rng      *rand.Rand
	seed     int64
	attached bool
	gameTime float64
	entities []Entity
}

func NewSyntheticSource(seed int64) *SyntheticSource {
	return &SyntheticSource{seed: seed}
}

func (s *SyntheticSource) Attach(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rng = rand.New(rand.NewSource(s.seed))
	s.gameTime = 0
	s.entities = make([]Entity, syntheticPlayers)
	for i := range s.entities {
		team, x, y := 100, 500.0, 14000.0
		if i >= syntheticPlayers/2 {
			team, x, y = 200, 14000.0, 500.0
		}
		s.entities[i] = Entity{
			Team:       team,
			X:          x + s.rng.Float64()*500,
			Y:          y - s.rng.Float64()*500,
			ChampionID: 1 + s.rng.Intn(160),
		}
	}
	s.attached = true
	return nil
}

func (s *SyntheticSource) ReadSnapshot(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.attached {
		return Empty(), ErrNotAttached
	}
	if err := ctx.Err(); err != nil {
		return Empty(), err
	}

	s.gameTime += tickGameSeconds
	for i := range s.entities {
		e := &s.entities[i]
		angle := s.rng.Float64() * 2 * math.Pi
		e.X = clampCoord(e.X + math.Cos(angle)*syntheticStep)
		e.Y = clampCoord(e.Y + math.Sin(angle)*syntheticStep)
	}

	entities := make([]Entity, len(s.entities))
	copy(entities, s.entities)
	return Snapshot{
		Entities:  entities,
		GameTime:  s.gameTime,
		Timestamp: time.Now(),
	}, nil
}

func (s *SyntheticSource) Close() error {
	s.mu.Lock()
	s.attached = false
	s.mu.Unlock()
	return nil
}

func clampCoord(v float64) float64 {
	return math.Max(0, math.Min(14500, v))
}
