// Package sequence holds the fixed-length temporal window fed to inference.
//
// A Window is confined to the goroutine that owns the analysis loop and is
// not safe for concurrent use.
package sequence

import "github.com/eleven-am/live-coach/internal/minimap"

// DefaultLength is the sequence length the model expects.
const DefaultLength = 16

type Window struct {
	frames []minimap.Frame
	head   int
	size   int
}

func NewWindow(capacity int) *Window {
	if capacity <= 0 {
		capacity = DefaultLength
	}
	return &Window{frames: make([]minimap.Frame, capacity)}
}

// Push appends a frame, evicting the oldest when the window is full.
func (w *Window) Push(f minimap.Frame) {
	idx := (w.head + w.size) % len(w.frames)
	if w.size == len(w.frames) {
		w.frames[w.head] = f
		w.head = (w.head + 1) % len(w.frames)
		return
	}
	w.frames[idx] = f
	w.size++
}

// Snapshot returns the frames oldest first. The slice is a copy; frames
// share their image and mask data with the window.
func (w *Window) Snapshot() []minimap.Frame {
	out := make([]minimap.Frame, w.size)
	for i := 0; i < w.size; i++ {
		out[i] = w.frames[(w.head+i)%len(w.frames)]
	}
	return out
}

// Latest returns the newest frame, if any.
func (w *Window) Latest() (minimap.Frame, bool) {
	if w.size == 0 {
		return minimap.Frame{}, false
	}
	return w.frames[(w.head+w.size-1)%len(w.frames)], true
}

func (w *Window) Len() int   { return w.size }
func (w *Window) Cap() int   { return len(w.frames) }
func (w *Window) Full() bool { return w.size == len(w.frames) }

func (w *Window) Reset() {
	clear(w.frames)
	w.head = 0
	w.size = 0
}
