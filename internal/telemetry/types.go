// Package telemetry reads positional game state from a live or recorded match.
package telemetry

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotAttached = errors.New("telemetry source not attached")
	ErrReadFailed  = errors.New("telemetry read failed")
)

type Entity struct {
	Team       int     `json:"team"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	ChampionID int     `json:"champion_id"`
}

type Snapshot struct {
	Entities  []Entity  `json:"entities"`
	GameTime  float64   `json:"game_time"`
	Timestamp time.Time `json:"timestamp"`
}

// Empty returns the snapshot substituted when a read fails.
func Empty() Snapshot {
	return Snapshot{Timestamp: time.Now()}
}

// Source supplies one snapshot per call. ReadSnapshot always returns a usable
// snapshot; a non-nil error only reports that it is the empty substitute.
type Source interface {
	Attach(ctx context.Context) error
	ReadSnapshot(ctx context.Context) (Snapshot, error)
	Close() error
}
