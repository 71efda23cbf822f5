package overlay

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/eleven-am/live-coach/internal/prediction"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultChannel         = "coach:predictions"
	DefaultPublishInterval = 50 * time.Millisecond
	latestKeyTTL           = time.Minute
)

// Publisher fans coach calls out over Redis pub/sub. The latest event is also
// kept under <channel>:latest so late subscribers can catch up.
type Publisher struct {
	redis    *redis.Client
	history  *prediction.History
	channel  string
	interval time.Duration
	logger   *slog.Logger
}

func NewPublisher(client *redis.Client, history *prediction.History, channel string, interval time.Duration, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	if channel == "" {
		channel = DefaultChannel
	}
	if interval <= 0 {
		interval = DefaultPublishInterval
	}
	return &Publisher{
		redis:    client,
		history:  history,
		channel:  channel,
		interval: interval,
		logger:   logger.With("component", "redis-publisher"),
	}
}

func (p *Publisher) Channel() string {
	return p.channel
}

func (p *Publisher) LatestKey() string {
	return p.channel + ":latest"
}

func (p *Publisher) Publish(ctx context.Context, pred prediction.Prediction) error {
	data, err := json.Marshal(predictionEvent(pred))
	if err != nil {
		return fmt.Errorf("marshal prediction: %w", err)
	}

	pipe := p.redis.TxPipeline()
	pipe.Publish(ctx, p.channel, data)
	pipe.Set(ctx, p.LatestKey(), data, latestKeyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish prediction: %w", err)
	}

	p.logger.Debug("published prediction", "seq", pred.Seq, "recommendation", pred.Recommendation)
	return nil
}

// Run publishes each new prediction until ctx is done.
func (p *Publisher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var lastSeq uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		pred, ok := p.history.Latest()
		if !ok || pred.Seq == lastSeq {
			continue
		}

		if err := p.Publish(ctx, pred); err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn("redis publish failed", "seq", pred.Seq, "error", err)
			continue
		}
		lastSeq = pred.Seq
	}
}
