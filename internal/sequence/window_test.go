package sequence

import (
	"testing"

	"github.com/eleven-am/live-coach/internal/minimap"
	"github.com/google/go-cmp/cmp"
)

func frameAt(gameTime float64) minimap.Frame {
	return minimap.Frame{GameTime: gameTime}
}

func gameTimes(frames []minimap.Frame) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = f.GameTime
	}
	return out
}

func TestNewWindow_DefaultCapacity(t *testing.T) {
	w := NewWindow(0)
	if w.Cap() != DefaultLength {
		t.Errorf("expected capacity %d, got %d", DefaultLength, w.Cap())
	}
	if w.Len() != 0 || w.Full() {
		t.Error("new window should be empty")
	}
	if _, ok := w.Latest(); ok {
		t.Error("empty window should have no latest frame")
	}
}

func TestWindow_NeverExceedsCapacity(t *testing.T) {
	w := NewWindow(DefaultLength)
	for i := 0; i < 100; i++ {
		w.Push(frameAt(float64(i)))
		if w.Len() > DefaultLength {
			t.Fatalf("length %d exceeds %d after %d pushes", w.Len(), DefaultLength, i+1)
		}
	}
	if !w.Full() {
		t.Error("window should be full")
	}
}

func TestWindow_SnapshotKeepsMostRecentOldestFirst(t *testing.T) {
	w := NewWindow(DefaultLength)
	for i := 0; i < 21; i++ {
		w.Push(frameAt(float64(i)))
	}

	var want []float64
	for i := 5; i < 21; i++ {
		want = append(want, float64(i))
	}
	if diff := cmp.Diff(want, gameTimes(w.Snapshot())); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}

	latest, ok := w.Latest()
	if !ok || latest.GameTime != 20 {
		t.Errorf("expected latest 20, got %v (%v)", latest.GameTime, ok)
	}
}

func TestWindow_SnapshotDoesNotMutate(t *testing.T) {
	w := NewWindow(4)
	w.Push(frameAt(1))
	w.Push(frameAt(2))

	snap := w.Snapshot()
	snap[0] = frameAt(99)

	if diff := cmp.Diff([]float64{1, 2}, gameTimes(w.Snapshot())); diff != "" {
		t.Errorf("window changed through snapshot (-want +got):\n%s", diff)
	}
}

func TestWindow_Underfull(t *testing.T) {
	w := NewWindow(DefaultLength)
	for i := 0; i < DefaultLength-1; i++ {
		w.Push(frameAt(float64(i)))
	}
	if w.Full() {
		t.Error("window with 15 frames should not be full")
	}
	w.Push(frameAt(15))
	if !w.Full() {
		t.Error("window with 16 frames should be full")
	}
}

func TestWindow_Reset(t *testing.T) {
	w := NewWindow(3)
	for i := 0; i < 5; i++ {
		w.Push(frameAt(float64(i)))
	}
	w.Reset()
	if w.Len() != 0 {
		t.Errorf("expected empty window after reset, got %d", w.Len())
	}
	w.Push(frameAt(7))
	if diff := cmp.Diff([]float64{7}, gameTimes(w.Snapshot())); diff != "" {
		t.Errorf("unexpected contents after reset (-want +got):\n%s", diff)
	}
}
