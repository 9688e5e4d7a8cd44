package circuitbreaker

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/armorhq/armor/internal/metrics"
)

// Config configures the upstream circuit breaker.
type Config struct {
	Enabled bool

	// MaxRequests is the maximum number of requests allowed to pass through
	// when the circuit breaker is half-open.
	MaxRequests uint32

	// Interval is the cyclic period in closed state to clear the internal counts.
	// If 0, counts never clear.
	Interval time.Duration

	// Timeout is the period of the open state after which the state becomes half-open.
	Timeout time.Duration

	// Trip thresholds: consecutive failures, or failure ratio over a minimum
	// request count.
	ConsecutiveFailures uint32
	FailureRatio        float64
	MinRequests         uint32
}

// DefaultConfig returns sensible defaults for the upstream breaker.
func DefaultConfig() Config {
	return Config{
		Enabled:             true,
		MaxRequests:         3,
		Interval:            60 * time.Second,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
		FailureRatio:        0.5,
		MinRequests:         10,
	}
}

// Breaker guards calls to the upstream origin. A disabled Breaker passes
// every call through.
type Breaker struct {
	cb      *gobreaker.CircuitBreaker
	enabled bool
}

// New creates a Breaker. State transitions are logged and recorded in the
// metrics collector when one is provided.
func New(name string, cfg Config, logger zerolog.Logger, m *metrics.Metrics) *Breaker {
	if !cfg.Enabled {
		return &Breaker{}
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if cfg.ConsecutiveFailures > 0 && counts.ConsecutiveFailures >= cfg.ConsecutiveFailures {
				return true
			}
			if cfg.FailureRatio > 0 && cfg.MinRequests > 0 && counts.Requests >= cfg.MinRequests {
				failureRate := float64(counts.TotalFailures) / float64(counts.Requests)
				if failureRate >= cfg.FailureRatio {
					return true
				}
			}
			return false
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("breaker.state_changed")
			m.ObserveBreakerTransition(from.String(), to.String())
		},
	}

	return &Breaker{cb: gobreaker.NewCircuitBreaker(settings), enabled: true}
}

// Execute wraps fn with circuit breaker protection. When the breaker is
// disabled the call passes through unchanged.
func (b *Breaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	if !b.enabled {
		return fn()
	}
	return b.cb.Execute(fn)
}

// State returns the current breaker state, or "disabled".
func (b *Breaker) State() string {
	if !b.enabled {
		return "disabled"
	}
	return b.cb.State().String()
}
