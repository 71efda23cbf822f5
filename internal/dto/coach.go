package dto

type PointResponse struct {
	X float64 `json:"x" example:"0.42"`
	Y float64 `json:"y" example:"0.61"`
}

type PredictionResponse struct {
	ID                  string             `json:"id" example:"5f0c6f7e-3f7b-4c56-9d0b-1b1f0c9b8a11"`
	Seq                 uint64             `json:"seq" example:"128"`
	CreatedAt           string             `json:"created_at" example:"2024-01-15T10:30:00Z"`
	Origin              string             `json:"origin" example:"model" enums:"model,fallback_underfull,fallback_unavailable"`
	EnemyJunglePosition PointResponse      `json:"enemy_jungle_position"`
	GankProbability     float64            `json:"gank_probability" example:"0.81"`
	RotateProbability   float64            `json:"rotate_probability" example:"0.12"`
	ObjectiveTimers     map[string]float64 `json:"objective_timers" swaggertype:"object,number"`
	PlaystyleConfidence map[string]float64 `json:"playstyle_confidence" swaggertype:"object,number"`
	Recommendation      string             `json:"recommendation" example:"WARD RIVER → FREEZE"`
}

type HistoryResponse struct {
	Count       int                  `json:"count" example:"60"`
	Predictions []PredictionResponse `json:"predictions"`
}

type FailureResponse struct {
	Kind  string `json:"kind" example:"inference_unavailable"`
	Error string `json:"error" example:"inference unavailable: sidecar call failed"`
	At    string `json:"at" example:"2024-01-15T10:30:00Z"`
}

type LoopStatusResponse struct {
	State           string            `json:"state" example:"running" enums:"not_attached,attached,running,stopped"`
	Cycles          uint64            `json:"cycles" example:"5120"`
	AbandonedCycles uint64            `json:"abandoned_cycles" example:"2"`
	Failures        map[string]uint64 `json:"failures" swaggertype:"object,integer"`
	LastFailure     *FailureResponse  `json:"last_failure,omitempty"`
	LastCycleMs     float64           `json:"last_cycle_ms" example:"4.2"`
	WindowLength    int               `json:"window_length" example:"16"`
	WindowCapacity  int               `json:"window_capacity" example:"16"`
	HistoryLength   int               `json:"history_length" example:"60"`
	LatestSeq       uint64            `json:"latest_seq" example:"5120"`
}

// CoachEvent is the payload pushed over the stream and the Redis channel.
type CoachEvent struct {
	Type       string             `json:"type" example:"prediction"`
	Prediction PredictionResponse `json:"prediction"`
}
