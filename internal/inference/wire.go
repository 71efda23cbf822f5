package inference

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image/jpeg"
	"time"

	"github.com/eleven-am/live-coach/internal/minimap"
	"google.golang.org/protobuf/types/known/structpb"
)

const jpegQuality = 80

var errMalformedResponse = errors.New("malformed response")

func encodeWindow(window []minimap.Frame, includeImages bool) (*structpb.Struct, error) {
	frames := make([]any, 0, len(window))
	for _, f := range window {
		frame := map[string]any{
			"timestamp_ms": float64(f.Timestamp.UnixMilli()),
			"game_time":    f.GameTime,
			"allies":       encodePoints(f.Allies),
			"enemies":      encodePoints(f.Enemies),
		}
		if includeImages && f.Image != nil {
			var buf bytes.Buffer
			if err := jpeg.Encode(&buf, f.Image, &jpeg.Options{Quality: jpegQuality}); err != nil {
				return nil, fmt.Errorf("encode frame image: %w", err)
			}
			frame["image_jpeg"] = base64.StdEncoding.EncodeToString(buf.Bytes())
		}
		frames = append(frames, frame)
	}

	return structpb.NewStruct(map[string]any{
		"sequence_length": float64(len(window)),
		"frames":          frames,
	})
}

func encodePoints(ps []minimap.Point) []any {
	out := make([]any, 0, len(ps))
	for _, p := range ps {
		out = append(out, []any{p.X, p.Y})
	}
	return out
}

// decodeWindow rebuilds positional frames from a request. Images are not
// decoded.
func decodeWindow(req *structpb.Struct) ([]minimap.Frame, error) {
	list := req.GetFields()["frames"].GetListValue()
	if list == nil {
		return nil, errors.New("missing frames")
	}

	frames := make([]minimap.Frame, 0, len(list.GetValues()))
	for i, v := range list.GetValues() {
		fields := v.GetStructValue().GetFields()
		if fields == nil {
			return nil, fmt.Errorf("frame %d: not an object", i)
		}
		allies, err := decodePoints(fields["allies"])
		if err != nil {
			return nil, fmt.Errorf("frame %d allies: %w", i, err)
		}
		enemies, err := decodePoints(fields["enemies"])
		if err != nil {
			return nil, fmt.Errorf("frame %d enemies: %w", i, err)
		}
		frames = append(frames, minimap.Frame{
			Timestamp:  time.UnixMilli(int64(fields["timestamp_ms"].GetNumberValue())),
			GameTime:   fields["game_time"].GetNumberValue(),
			Allies:     allies,
			Enemies:    enemies,
			Objectives: minimap.ObjectiveLocations(),
			Vision:     minimap.FullVision(),
		})
	}
	return frames, nil
}

func decodePoints(v *structpb.Value) ([]minimap.Point, error) {
	list := v.GetListValue()
	if list == nil {
		return nil, nil
	}
	out := make([]minimap.Point, 0, len(list.GetValues()))
	for _, pv := range list.GetValues() {
		xy := pv.GetListValue().GetValues()
		if len(xy) != 2 {
			return nil, fmt.Errorf("point with %d coordinates", len(xy))
		}
		out = append(out, minimap.Point{X: xy[0].GetNumberValue(), Y: xy[1].GetNumberValue()})
	}
	return out, nil
}

// decodeProbabilities accepts either raw "logits" (softmaxed here) or
// already-normalized "probabilities", both in Layout order.
func decodeProbabilities(resp *structpb.Struct) (Probabilities, error) {
	fields := resp.GetFields()

	if list := fields["probabilities"].GetListValue(); list != nil {
		vec, err := numbers(list)
		if err != nil {
			return nil, err
		}
		if len(vec) == 0 {
			return nil, fmt.Errorf("%w: empty probabilities", errMalformedResponse)
		}
		return FromVector(vec), nil
	}

	if list := fields["logits"].GetListValue(); list != nil {
		vec, err := numbers(list)
		if err != nil {
			return nil, err
		}
		probs, err := Softmax(vec)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errMalformedResponse, err)
		}
		return FromVector(probs), nil
	}

	return nil, fmt.Errorf("%w: no logits or probabilities", errMalformedResponse)
}

func numbers(list *structpb.ListValue) ([]float64, error) {
	out := make([]float64, 0, len(list.GetValues()))
	for i, v := range list.GetValues() {
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return nil, fmt.Errorf("%w: element %d is not a number", errMalformedResponse, i)
		}
		out = append(out, n.NumberValue)
	}
	return out, nil
}

func encodeProbabilities(p Probabilities) (*structpb.Struct, error) {
	vec := make([]any, 0, len(Layout))
	for _, label := range Layout {
		vec = append(vec, p[label])
	}
	return structpb.NewStruct(map[string]any{"probabilities": vec})
}
