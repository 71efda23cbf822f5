package prediction

import (
	"maps"
	"time"

	"github.com/eleven-am/live-coach/internal/minimap"
)

type Origin string

const (
	OriginModel       Origin = "model"
	OriginUnderfull   Origin = "fallback_underfull"
	OriginUnavailable Origin = "fallback_unavailable"
)

const (
	ObjectiveDragon = "dragon"
	ObjectiveBaron  = "baron"

	PlaystyleSnowball = "snowball"
	PlaystyleScaler   = "scaler"
)

type Prediction struct {
	ID                  string             `json:"id"`
	Seq                 uint64             `json:"seq"`
	CreatedAt           time.Time          `json:"created_at"`
	Origin              Origin             `json:"origin"`
	EnemyJunglePosition minimap.Point      `json:"enemy_jungle_position"`
	GankProbability     float64            `json:"gank_probability"`
	RotateProbability   float64            `json:"rotate_probability"`
	ObjectiveTimers     map[string]float64 `json:"objective_timers"`
	PlaystyleConfidence map[string]float64 `json:"playstyle_confidence"`
	Recommendation      string             `json:"recommendation"`
}

// Clone returns a deep copy so readers never share maps with the writer.
func (p Prediction) Clone() Prediction {
	p.ObjectiveTimers = maps.Clone(p.ObjectiveTimers)
	p.PlaystyleConfidence = maps.Clone(p.PlaystyleConfidence)
	return p
}

func (p Prediction) IsFallback() bool {
	return p.Origin != OriginModel
}
