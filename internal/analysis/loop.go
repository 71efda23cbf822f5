package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eleven-am/live-coach/internal/inference"
	"github.com/eleven-am/live-coach/internal/minimap"
	"github.com/eleven-am/live-coach/internal/prediction"
	"github.com/eleven-am/live-coach/internal/sequence"
	"github.com/eleven-am/live-coach/internal/telemetry"
	"golang.org/x/time/rate"
)

const (
	DefaultPeriod   = 60 * time.Millisecond
	DefaultCooldown = time.Second
)

var minCooldown = time.Second

type FrameSynthesizer interface {
	Synthesize(ctx context.Context, snap telemetry.Snapshot) (minimap.Frame, error)
}

type Config struct {
	Source         telemetry.Source
	Synthesizer    FrameSynthesizer
	Engine         inference.Engine
	History        *prediction.History
	Builder        *prediction.Builder
	SequenceLength int
	Period         time.Duration
	Cooldown       time.Duration
	Logger         *slog.Logger
}

// Loop runs the telemetry → inference → coach call pipeline on its own
// goroutine and publishes every result into a History.
type Loop struct {
	source  telemetry.Source
	synth   FrameSynthesizer
	engine  inference.Engine
	history *prediction.History
	builder *prediction.Builder
	window  *sequence.Window

	period   time.Duration
	cooldown time.Duration
	logger   *slog.Logger
	warnings *rate.Limiter

	mu       sync.Mutex
	state    atomic.Int32
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	doneOnce sync.Once

	cycles       atomic.Uint64
	abandoned    atomic.Uint64
	lastDuration atomic.Int64
	windowLen    atomic.Int32
	failures     map[FailureKind]*atomic.Uint64

	failMu      sync.Mutex
	lastFailure *Failure
}

func NewLoop(cfg Config) *Loop {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.SequenceLength <= 0 {
		cfg.SequenceLength = sequence.DefaultLength
	}
	if cfg.Period <= 0 {
		cfg.Period = DefaultPeriod
	}
	if cfg.Cooldown < minCooldown {
		cfg.Cooldown = minCooldown
	}
	if cfg.History == nil {
		cfg.History = prediction.NewHistory(prediction.DefaultHistorySize)
	}
	if cfg.Builder == nil {
		cfg.Builder = prediction.NewBuilder()
	}

	failures := make(map[FailureKind]*atomic.Uint64, len(failureKinds))
	for _, k := range failureKinds {
		failures[k] = new(atomic.Uint64)
	}

	return &Loop{
		source:   cfg.Source,
		synth:    cfg.Synthesizer,
		engine:   cfg.Engine,
		history:  cfg.History,
		builder:  cfg.Builder,
		window:   sequence.NewWindow(cfg.SequenceLength),
		period:   cfg.Period,
		cooldown: cfg.Cooldown,
		logger:   cfg.Logger.With("component", "analysis-loop"),
		warnings: rate.NewLimiter(rate.Every(time.Second), 3),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
		failures: failures,
	}
}

func (l *Loop) State() State {
	return State(l.state.Load())
}

func (l *Loop) History() *prediction.History {
	return l.history
}

// Done is closed once the loop has stopped.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Attach acquires the telemetry source. On failure the loop stays
// NotAttached; retrying is up to the caller.
func (l *Loop) Attach(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch st := l.State(); st {
	case StateAttached:
		return nil
	case StateNotAttached:
	default:
		return fmt.Errorf("%w: attach while %s", ErrInvalidState, st)
	}

	if err := l.source.Attach(ctx); err != nil {
		l.recordFailure(FailureAttachment, err)
		return fmt.Errorf("%w: %w", ErrAttachFailed, err)
	}

	l.state.Store(int32(StateAttached))
	l.logger.Info("telemetry attached")
	return nil
}

// Start launches the cycle goroutine. The loop must be Attached.
func (l *Loop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if st := l.State(); st != StateAttached {
		return fmt.Errorf("%w: start while %s", ErrInvalidState, st)
	}

	l.state.Store(int32(StateRunning))
	go l.run()

	l.logger.Info("analysis loop started", "period", l.period, "cooldown", l.cooldown, "sequence_length", l.window.Cap())
	return nil
}

// Stop asks the loop to finish. A cycle already in progress completes and
// publishes; no new cycle begins. Stop waits for the goroutine to exit or
// for ctx to end.
func (l *Loop) Stop(ctx context.Context) error {
	l.mu.Lock()
	switch l.State() {
	case StateRunning:
		l.stopOnce.Do(func() { close(l.stopCh) })
	case StateStopped:
	default:
		l.state.Store(int32(StateStopped))
		l.closeSource()
		l.doneOnce.Do(func() { close(l.done) })
	}
	l.mu.Unlock()

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) run() {
	defer func() {
		l.state.Store(int32(StateStopped))
		l.closeSource()
		l.logger.Info("analysis loop stopped", "cycles", l.cycles.Load())
		l.doneOnce.Do(func() { close(l.done) })
	}()

	ctx := context.Background()
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		default:
		}

		wait := l.period
		if err := l.runCycle(ctx); err != nil {
			wait = l.cooldown
		}

		timer.Reset(wait)
		select {
		case <-l.stopCh:
			return
		case <-timer.C:
		}
	}
}

// runCycle executes one tick. Any returned error, including a recovered
// panic, means the cycle was abandoned before publishing.
func (l *Loop) runCycle(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = &CycleError{Kind: FailureUnclassified, Err: fmt.Errorf("panic: %v", r)}
			l.logger.Debug("cycle panic", "stack", string(debug.Stack()))
		}
		l.lastDuration.Store(int64(time.Since(start)))
		if err != nil {
			l.abandoned.Add(1)
			kind := FailureUnclassified
			if ce, ok := err.(*CycleError); ok {
				kind = ce.Kind
			}
			l.recordFailure(kind, err)
		}
	}()

	snap, readErr := l.source.ReadSnapshot(ctx)
	if readErr != nil {
		l.recordFailure(FailureTransientRead, readErr)
	}

	frame, err := l.synth.Synthesize(ctx, snap)
	if err != nil {
		return &CycleError{Kind: FailureSynthesis, Err: err}
	}

	l.window.Push(frame)
	l.windowLen.Store(int32(l.window.Len()))

	var p prediction.Prediction
	if l.window.Full() {
		probs, inferErr := l.engine.Predict(ctx, l.window.Snapshot())
		if inferErr == nil {
			inferErr = prediction.CheckOutput(probs)
		}
		if inferErr != nil {
			l.recordFailure(FailureInferenceUnavailable, inferErr)
		}
		p = l.builder.Build(probs, inferErr, frame)
	} else {
		p = l.builder.Underfull()
	}

	p.Recommendation = prediction.Decide(p)
	l.history.Append(p)
	l.cycles.Add(1)
	return nil
}

func (l *Loop) recordFailure(kind FailureKind, err error) {
	l.failures[kind].Add(1)

	l.failMu.Lock()
	l.lastFailure = &Failure{Kind: kind, Error: err.Error(), At: time.Now()}
	l.failMu.Unlock()

	if l.warnings.Allow() {
		l.logger.Warn("analysis cycle failure", "kind", string(kind), "error", err)
		return
	}
	l.logger.Debug("analysis cycle failure", "kind", string(kind), "error", err)
}

func (l *Loop) closeSource() {
	if err := l.source.Close(); err != nil {
		l.logger.Debug("close telemetry source", "error", err)
	}
}

func (l *Loop) Stats() Stats {
	failures := make(map[FailureKind]uint64, len(l.failures))
	for k, v := range l.failures {
		failures[k] = v.Load()
	}

	l.failMu.Lock()
	var last *Failure
	if l.lastFailure != nil {
		f := *l.lastFailure
		last = &f
	}
	l.failMu.Unlock()

	return Stats{
		State:             l.State().String(),
		Cycles:            l.cycles.Load(),
		AbandonedCycles:   l.abandoned.Load(),
		Failures:          failures,
		LastFailure:       last,
		LastCycleDuration: time.Duration(l.lastDuration.Load()),
		WindowLength:      int(l.windowLen.Load()),
		WindowCapacity:    l.window.Cap(),
	}
}
