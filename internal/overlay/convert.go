package overlay

import (
	"time"

	"github.com/eleven-am/live-coach/internal/analysis"
	"github.com/eleven-am/live-coach/internal/dto"
	"github.com/eleven-am/live-coach/internal/prediction"
)

const EventPrediction = "prediction"

func predictionToResponse(p prediction.Prediction) dto.PredictionResponse {
	timers := p.ObjectiveTimers
	if timers == nil {
		timers = map[string]float64{}
	}
	confidence := p.PlaystyleConfidence
	if confidence == nil {
		confidence = map[string]float64{}
	}
	return dto.PredictionResponse{
		ID:        p.ID,
		Seq:       p.Seq,
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339Nano),
		Origin:    string(p.Origin),
		EnemyJunglePosition: dto.PointResponse{
			X: p.EnemyJunglePosition.X,
			Y: p.EnemyJunglePosition.Y,
		},
		GankProbability:     p.GankProbability,
		RotateProbability:   p.RotateProbability,
		ObjectiveTimers:     timers,
		PlaystyleConfidence: confidence,
		Recommendation:      p.Recommendation,
	}
}

func predictionEvent(p prediction.Prediction) dto.CoachEvent {
	return dto.CoachEvent{Type: EventPrediction, Prediction: predictionToResponse(p)}
}

func statsToResponse(s analysis.Stats, history *prediction.History) dto.LoopStatusResponse {
	failures := make(map[string]uint64, len(s.Failures))
	for k, v := range s.Failures {
		failures[string(k)] = v
	}

	resp := dto.LoopStatusResponse{
		State:           s.State,
		Cycles:          s.Cycles,
		AbandonedCycles: s.AbandonedCycles,
		Failures:        failures,
		LastCycleMs:     float64(s.LastCycleDuration.Microseconds()) / 1000,
		WindowLength:    s.WindowLength,
		WindowCapacity:  s.WindowCapacity,
		HistoryLength:   history.Len(),
		LatestSeq:       history.Seq(),
	}
	if s.LastFailure != nil {
		resp.LastFailure = &dto.FailureResponse{
			Kind:  string(s.LastFailure.Kind),
			Error: s.LastFailure.Error,
			At:    s.LastFailure.At.UTC().Format(time.RFC3339),
		}
	}
	return resp
}
