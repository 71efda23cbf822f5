package prediction

import "sync"

// DefaultHistorySize holds about ten seconds of output.
const DefaultHistorySize = 60

// History is a fixed-size ring of published predictions. One goroutine
// appends; any number may read. Records are copied on the way in and out, so
// a reader sees either the previous or the new record, never part of one.
type History struct {
	mu      sync.RWMutex
	records []Prediction
	head    int
	size    int
	seq     uint64
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &History{records: make([]Prediction, capacity)}
}

// Append publishes p, evicting the oldest record at capacity, and returns
// the sequence number assigned to it.
func (h *History) Append(p Prediction) uint64 {
	p = p.Clone()

	h.mu.Lock()
	defer h.mu.Unlock()

	h.seq++
	p.Seq = h.seq

	if h.size == len(h.records) {
		h.records[h.head] = p
		h.head = (h.head + 1) % len(h.records)
		return p.Seq
	}
	h.records[(h.head+h.size)%len(h.records)] = p
	h.size++
	return p.Seq
}

// Latest returns the newest record. ok is false until the first Append.
func (h *History) Latest() (p Prediction, ok bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.size == 0 {
		return Prediction{}, false
	}
	return h.records[(h.head+h.size-1)%len(h.records)].Clone(), true
}

// Recent returns up to n records, oldest first. n <= 0 returns all of them.
func (h *History) Recent(n int) []Prediction {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if n <= 0 || n > h.size {
		n = h.size
	}
	out := make([]Prediction, 0, n)
	for i := h.size - n; i < h.size; i++ {
		out = append(out, h.records[(h.head+i)%len(h.records)].Clone())
	}
	return out
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}

func (h *History) Cap() int {
	return len(h.records)
}

// Seq is the sequence number of the newest record, 0 when empty.
func (h *History) Seq() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.seq
}
