package analysis

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrAttachFailed = errors.New("attach failed")
	ErrInvalidState = errors.New("invalid loop state")
)

type State int32

const (
	StateNotAttached State = iota
	StateAttached
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateNotAttached:
		return "not_attached"
	case StateAttached:
		return "attached"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

type FailureKind string

const (
	FailureAttachment           FailureKind = "attachment"
	FailureTransientRead        FailureKind = "transient_read"
	FailureSynthesis            FailureKind = "synthesis"
	FailureInferenceUnavailable FailureKind = "inference_unavailable"
	FailureUnclassified         FailureKind = "unclassified"
)

var failureKinds = []FailureKind{
	FailureAttachment,
	FailureTransientRead,
	FailureSynthesis,
	FailureInferenceUnavailable,
	FailureUnclassified,
}

// CycleError abandons the current cycle and triggers the cooldown.
type CycleError struct {
	Kind FailureKind
	Err  error
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *CycleError) Unwrap() error {
	return e.Err
}

type Failure struct {
	Kind  FailureKind `json:"kind"`
	Error string      `json:"error"`
	At    time.Time   `json:"at"`
}

type Stats struct {
	State             string                 `json:"state"`
	Cycles            uint64                 `json:"cycles"`
	AbandonedCycles   uint64                 `json:"abandoned_cycles"`
	Failures          map[FailureKind]uint64 `json:"failures"`
	LastFailure       *Failure               `json:"last_failure,omitempty"`
	LastCycleDuration time.Duration          `json:"last_cycle_duration_ns"`
	WindowLength      int                    `json:"window_length"`
	WindowCapacity    int                    `json:"window_capacity"`
}
