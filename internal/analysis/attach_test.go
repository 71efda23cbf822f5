package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eleven-am/live-coach/internal/shared"
)

func TestAttachWithRetry_SucceedsAfterFailures(t *testing.T) {
	src := &fakeSource{attachErr: errors.New("game not running"), failAttaches: 3}
	l := newTestLoop(src, &fakeSynth{}, &fakeEngine{}, 2)

	backoff := shared.BackoffConfig{Initial: time.Millisecond, MaxDelay: 4 * time.Millisecond}
	if err := l.AttachWithRetry(context.Background(), backoff); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.State() != StateAttached {
		t.Errorf("expected attached, got %s", l.State())
	}
	if src.attaches != 4 {
		t.Errorf("expected 4 attach attempts, got %d", src.attaches)
	}
	if got := l.Stats().Failures[FailureAttachment]; got != 3 {
		t.Errorf("expected 3 attachment failures, got %d", got)
	}
}

func TestAttachWithRetry_GivesUp(t *testing.T) {
	src := &fakeSource{attachErr: errors.New("game not running")}
	l := newTestLoop(src, &fakeSynth{}, &fakeEngine{}, 2)

	backoff := shared.BackoffConfig{Initial: time.Millisecond, MaxDelay: time.Millisecond, MaxAttempts: 2}
	err := l.AttachWithRetry(context.Background(), backoff)
	if !errors.Is(err, ErrAttachFailed) {
		t.Fatalf("expected wrapped ErrAttachFailed, got %v", err)
	}
	if src.attaches != 2 {
		t.Errorf("expected 2 attempts, got %d", src.attaches)
	}
	if l.State() != StateNotAttached {
		t.Errorf("expected not_attached, got %s", l.State())
	}
}

func TestAttachWithRetry_ContextCancelled(t *testing.T) {
	src := &fakeSource{attachErr: errors.New("game not running")}
	l := newTestLoop(src, &fakeSynth{}, &fakeEngine{}, 2)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.AttachWithRetry(ctx, shared.BackoffConfig{Initial: 5 * time.Millisecond})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestAttachWithRetry_StoppedLoopDoesNotRetry(t *testing.T) {
	src := &fakeSource{}
	l := newTestLoop(src, &fakeSynth{}, &fakeEngine{}, 2)
	stopLoop(t, l)

	err := l.AttachWithRetry(context.Background(), shared.BackoffConfig{Initial: time.Millisecond})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if src.attaches != 0 {
		t.Errorf("source should not be touched, got %d attaches", src.attaches)
	}
}
