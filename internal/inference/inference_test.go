package inference

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"math"
	"net"
	"testing"
	"time"

	"github.com/eleven-am/live-coach/internal/minimap"
	"github.com/eleven-am/live-coach/internal/sequence"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func window(n int, enemies func(i int) []minimap.Point) []minimap.Frame {
	frames := make([]minimap.Frame, n)
	for i := range frames {
		frames[i] = minimap.Frame{
			Timestamp: time.UnixMilli(int64(1000 * i)),
			GameTime:  600 + float64(i)*0.06,
			Enemies:   enemies(i),
			Image:     image.NewRGBA(image.Rect(0, 0, 8, 8)),
		}
	}
	return frames
}

func nearRiver(i int) []minimap.Point {
	d := 0.3 - 0.02*float64(i)
	return []minimap.Point{{X: 0.5 - d/2, Y: 0.5 + d/2}}
}

func farAway(int) []minimap.Point {
	return []minimap.Point{{X: 0.95, Y: 0.05}}
}

func sum(p Probabilities) float64 {
	total := 0.0
	for _, v := range p {
		total += v
	}
	return total
}

func TestSoftmax(t *testing.T) {
	out, err := Softmax([]float64{1, 1, 1, 1})
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range out {
		if math.Abs(v-0.25) > 1e-9 {
			t.Errorf("expected uniform 0.25, got %v", v)
		}
	}

	out, err = Softmax([]float64{1000, 0})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(out[0]-1) > 1e-9 {
		t.Errorf("large logit should dominate without overflow, got %v", out)
	}

	if _, err := Softmax(nil); err == nil {
		t.Error("expected error for empty logits")
	}
	if _, err := Softmax([]float64{math.NaN()}); err == nil {
		t.Error("expected error for NaN logit")
	}
}

func TestFromVector_ShortVector(t *testing.T) {
	p := FromVector([]float64{0.1, 0.2, 0.3})
	if _, ok := p[LabelRotate]; ok {
		t.Error("rotate should be absent from a 3-element vector")
	}
	if p[LabelGank] != 0.2 {
		t.Errorf("expected gank 0.2, got %v", p[LabelGank])
	}
}

func TestHeuristicEngine_RequiresFullWindow(t *testing.T) {
	e := NewHeuristicEngine(sequence.DefaultLength)
	_, err := e.Predict(context.Background(), window(sequence.DefaultLength-1, farAway))
	if !errors.Is(err, ErrUnavailable) || !errors.Is(err, ErrWindowSize) {
		t.Fatalf("expected unavailable window size error, got %v", err)
	}
}

func TestHeuristicEngine_GankRisesWhenEnemyApproachesRiver(t *testing.T) {
	e := NewHeuristicEngine(0)
	ctx := context.Background()

	calm, err := e.Predict(ctx, window(sequence.DefaultLength, farAway))
	if err != nil {
		t.Fatal(err)
	}
	threat, err := e.Predict(ctx, window(sequence.DefaultLength, nearRiver))
	if err != nil {
		t.Fatal(err)
	}

	if threat[LabelGank] <= calm[LabelGank] {
		t.Errorf("expected higher gank probability near river: calm=%v threat=%v", calm[LabelGank], threat[LabelGank])
	}
	for _, p := range []Probabilities{calm, threat} {
		if math.Abs(sum(p)-1) > 1e-9 {
			t.Errorf("probabilities should sum to 1, got %v", sum(p))
		}
		if len(p) != len(Layout) {
			t.Errorf("expected %d labels, got %d", len(Layout), len(p))
		}
	}
}

func TestHeuristicEngine_Deterministic(t *testing.T) {
	e := NewHeuristicEngine(0)
	w := window(sequence.DefaultLength, nearRiver)
	a, _ := e.Predict(context.Background(), w)
	b, _ := e.Predict(context.Background(), w)
	for k, v := range a {
		if b[k] != v {
			t.Errorf("label %s differs between calls: %v vs %v", k, v, b[k])
		}
	}
}

type stubPredictServer struct {
	resp *structpb.Struct
	err  error
}

func (s *stubPredictServer) Predict(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return s.resp, s.err
}

func startSidecar(t *testing.T, srv PredictServer, cfg SidecarConfig) *SidecarClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	server := grpc.NewServer()
	RegisterPredictServer(server, srv)
	go server.Serve(lis)
	t.Cleanup(server.Stop)

	cfg.Address = "passthrough:///bufnet"
	cfg.DialOptions = append(cfg.DialOptions, grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	client, err := NewSidecarClient(cfg)
	if err != nil {
		t.Fatalf("NewSidecarClient failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestSidecarClient_RoundTripWithHeuristicServer(t *testing.T) {
	engine := NewHeuristicEngine(0)
	client := startSidecar(t, NewServer(engine, "secret", testLogger()), SidecarConfig{
		Token:         "secret",
		IncludeImages: true,
	})

	w := window(sequence.DefaultLength, nearRiver)
	got, err := client.Predict(context.Background(), w)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	want, _ := engine.Predict(context.Background(), w)
	for _, label := range Layout {
		if math.Abs(got[label]-want[label]) > 1e-9 {
			t.Errorf("%s: remote %v, local %v", label, got[label], want[label])
		}
	}
}

func TestSidecarClient_BadTokenIsUnavailable(t *testing.T) {
	client := startSidecar(t, NewServer(NewHeuristicEngine(0), "secret", testLogger()), SidecarConfig{Token: "wrong"})

	_, err := client.Predict(context.Background(), window(sequence.DefaultLength, farAway))
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestServer_Authorize(t *testing.T) {
	srv := NewServer(NewHeuristicEngine(0), "secret", testLogger())

	tests := []struct {
		name   string
		header []string
		ok     bool
	}{
		{"bearer", []string{"Bearer secret"}, true},
		{"bare token", []string{"secret"}, true},
		{"prefix of token", []string{"Bearer secre"}, false},
		{"longer token", []string{"Bearer secret2"}, false},
		{"missing", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.header != nil {
				ctx = metadata.NewIncomingContext(ctx, metadata.MD{"authorization": tt.header})
			}
			err := srv.authorize(ctx)
			if tt.ok && err != nil {
				t.Fatalf("expected authorized, got %v", err)
			}
			if !tt.ok && status.Code(err) != codes.Unauthenticated {
				t.Fatalf("expected Unauthenticated, got %v", err)
			}
		})
	}
}

func TestSidecarClient_LogitsResponse(t *testing.T) {
	resp, _ := structpb.NewStruct(map[string]any{
		"logits": []any{0.0, 5.0, 0.0, 0.0},
	})
	client := startSidecar(t, &stubPredictServer{resp: resp}, SidecarConfig{})

	got, err := client.Predict(context.Background(), window(sequence.DefaultLength, farAway))
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if got[LabelGank] < 0.9 {
		t.Errorf("expected dominant gank probability, got %v", got[LabelGank])
	}
	if _, ok := got[LabelSnowball]; ok {
		t.Error("short vector should not produce snowball")
	}
}

func TestSidecarClient_MalformedResponse(t *testing.T) {
	resp, _ := structpb.NewStruct(map[string]any{"logits": []any{"a", "b"}})
	client := startSidecar(t, &stubPredictServer{resp: resp}, SidecarConfig{})

	_, err := client.Predict(context.Background(), window(sequence.DefaultLength, farAway))
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestSidecarClient_WindowSize(t *testing.T) {
	client := startSidecar(t, &stubPredictServer{}, SidecarConfig{})
	_, err := client.Predict(context.Background(), window(3, farAway))
	if !errors.Is(err, ErrWindowSize) {
		t.Fatalf("expected ErrWindowSize, got %v", err)
	}
}

func TestSidecarClient_Close(t *testing.T) {
	client := startSidecar(t, &stubPredictServer{}, SidecarConfig{})
	if err := client.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if client.IsConnected() {
		t.Error("closed client should not report connected")
	}
	_, err := client.Predict(context.Background(), window(sequence.DefaultLength, farAway))
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable after close, got %v", err)
	}
}
