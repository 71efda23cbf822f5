package shared

import "time"

// BackoffConfig describes a doubling retry schedule. MaxAttempts <= 0 retries
// until the caller's context ends.
type BackoffConfig struct {
	Initial     time.Duration
	MaxDelay    time.Duration
	MaxAttempts int
}

func NormalizeBackoff(cfg BackoffConfig) BackoffConfig {
	if cfg.Initial <= 0 {
		cfg.Initial = 100 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 2 * time.Second
	}
	if cfg.MaxDelay < cfg.Initial {
		cfg.MaxDelay = cfg.Initial
	}
	return cfg
}

// Next returns the delay that follows current.
func (cfg BackoffConfig) Next(current time.Duration) time.Duration {
	return min(current*2, cfg.MaxDelay)
}

func (cfg BackoffConfig) Exhausted(attempts int) bool {
	return cfg.MaxAttempts > 0 && attempts >= cfg.MaxAttempts
}
