// Package circuit guards the broker API with a failure-counting breaker
// so a flapping upstream does not turn every decision cycle into a
// timed-out request.
package circuit

import (
	"fmt"
	"sync"
	"time"
)

// BreakerState represents the circuit breaker state
type BreakerState string

const (
	StateClosed   BreakerState = "closed"    // Normal operation
	StateOpen     BreakerState = "open"      // Requests rejected
	StateHalfOpen BreakerState = "half_open" // Testing recovery
)

// ErrOpen is returned while the breaker rejects requests.
var ErrOpen = fmt.Errorf("circuit breaker open")

// Config holds circuit breaker configuration
type Config struct {
	Enabled             bool          `json:"enabled"`
	MaxConsecutiveFails int           `json:"max_consecutive_fails"` // Failures before the breaker trips
	Cooldown            time.Duration `json:"cooldown"`              // Wait before probing recovery
}

// DefaultConfig returns safe defaults
func DefaultConfig() *Config {
	return &Config{
		Enabled:             true,
		MaxConsecutiveFails: 5,
		Cooldown:            30 * time.Second,
	}
}

// Breaker trips after a run of consecutive failures and rejects calls
// until a cooldown passes; the first call after the cooldown probes the
// upstream and a success closes the breaker again.
type Breaker struct {
	config           *Config
	state            BreakerState
	consecutiveFails int
	lastTripTime     time.Time
	tripReason       string
	mu               sync.Mutex
	onTrip           func(reason string)
	onReset          func()
}

// NewBreaker creates a breaker in the closed state.
func NewBreaker(config *Config) *Breaker {
	if config == nil {
		config = DefaultConfig()
	}
	return &Breaker{
		config: config,
		state:  StateClosed,
	}
}

// OnTrip sets callback for when the breaker trips
func (b *Breaker) OnTrip(handler func(reason string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onTrip = handler
}

// OnReset sets callback for when the breaker closes again
func (b *Breaker) OnReset(handler func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onReset = handler
}

// Allow reports whether a request may proceed. While open, it returns
// ErrOpen with the remaining cooldown in the message; after the cooldown
// it lets a single probe through in the half-open state.
func (b *Breaker) Allow() error {
	if !b.config.Enabled {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateOpen {
		return nil
	}

	elapsed := time.Since(b.lastTripTime)
	if elapsed < b.config.Cooldown {
		remaining := b.config.Cooldown - elapsed
		return fmt.Errorf("%w, cooldown remaining: %v (reason: %s)",
			ErrOpen, remaining.Round(time.Second), b.tripReason)
	}

	b.state = StateHalfOpen
	return nil
}

// RecordSuccess clears the failure run and closes the breaker.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	b.consecutiveFails = 0
	wasOpen := b.state != StateClosed
	b.state = StateClosed
	b.tripReason = ""
	handler := b.onReset
	b.mu.Unlock()

	if wasOpen && handler != nil {
		handler()
	}
}

// RecordFailure counts a failed request. A failure in the half-open
// state re-trips immediately; in the closed state the breaker trips
// once the consecutive-failure limit is hit.
func (b *Breaker) RecordFailure(err error) {
	if !b.config.Enabled {
		return
	}

	b.mu.Lock()
	b.consecutiveFails++

	trip := false
	switch b.state {
	case StateHalfOpen:
		trip = true
	case StateClosed:
		trip = b.consecutiveFails >= b.config.MaxConsecutiveFails
	}

	var handler func(string)
	var reason string
	if trip {
		b.state = StateOpen
		b.lastTripTime = time.Now()
		b.tripReason = fmt.Sprintf("%d consecutive failures, last: %v", b.consecutiveFails, err)
		reason = b.tripReason
		handler = b.onTrip
	}
	b.mu.Unlock()

	if handler != nil {
		handler(reason)
	}
}

// State returns the current breaker state.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
