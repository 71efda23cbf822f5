package inference

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/eleven-am/live-coach/internal/minimap"
	"gonum.org/v1/gonum/floats"
)

var (
	ErrUnavailable = errors.New("inference unavailable")
	ErrWindowSize  = errors.New("window size mismatch")
)

const (
	LabelIdle     = "idle"
	LabelGank     = "gank"
	LabelHold     = "hold"
	LabelRotate   = "rotate"
	LabelSnowball = "snowball"
	LabelScaler   = "scaler"
)

// Layout is the model's output order. Only this package knows it; everything
// downstream addresses probabilities by label.
var Layout = []string{
	LabelIdle,
	LabelGank,
	LabelHold,
	LabelRotate,
	LabelSnowball,
	LabelScaler,
}

type Probabilities map[string]float64

// Engine runs one forward pass over a full window. Every failure is reported
// as an error wrapping ErrUnavailable.
type Engine interface {
	Predict(ctx context.Context, window []minimap.Frame) (Probabilities, error)
}

// FromVector labels a probability vector using Layout. Positions past the end
// of a short vector are simply absent.
func FromVector(vec []float64) Probabilities {
	out := make(Probabilities, len(Layout))
	for i, label := range Layout {
		if i >= len(vec) {
			break
		}
		out[label] = vec[i]
	}
	return out
}

// Softmax normalizes logits into a probability vector.
func Softmax(logits []float64) ([]float64, error) {
	if len(logits) == 0 {
		return nil, errors.New("empty logits")
	}
	for _, v := range logits {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("non-finite logit %v", v)
		}
	}

	out := make([]float64, len(logits))
	copy(out, logits)
	floats.AddConst(-floats.Max(out), out)
	for i, v := range out {
		out[i] = math.Exp(v)
	}
	floats.Scale(1/floats.Sum(out), out)
	return out, nil
}

func unavailable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnavailable, fmt.Sprintf(format, args...))
}

func checkWindow(window []minimap.Frame, want int) error {
	if len(window) != want {
		return fmt.Errorf("%w: %w: got %d frames, want %d", ErrUnavailable, ErrWindowSize, len(window), want)
	}
	return nil
}
