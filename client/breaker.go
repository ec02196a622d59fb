package client

import (
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/cenk/backoff"
	circuit "github.com/rubyist/circuitbreaker"
)

// Breakers holds one circuit breaker per upstream host.
// It is safe for concurrent use by clients owned by different workers.
type Breakers struct {
	threshold int64
	breakers  map[string]*circuit.Breaker
	mu        sync.RWMutex
}

// NewBreakers creates breakers that trip after threshold failures of a host.
// Only transport errors and 5xx responses count as failures.
func NewBreakers(threshold int) *Breakers {
	if threshold < 1 {
		threshold = 1
	}
	return &Breakers{
		threshold: int64(threshold),
		breakers:  make(map[string]*circuit.Breaker),
	}
}

// get returns or creates the circuit breaker for host.
func (b *Breakers) get(host string) *circuit.Breaker {
	b.mu.RLock()
	breaker, exists := b.breakers[host]
	b.mu.RUnlock()

	if exists {
		return breaker
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Double-check after acquiring write lock
	if breaker, exists := b.breakers[host]; exists {
		return breaker
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 30 * time.Second
	expBackoff.MaxInterval = 5 * time.Minute
	expBackoff.Multiplier = 2.0
	expBackoff.Reset()

	breaker = circuit.NewBreakerWithOptions(&circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ThresholdTripFunc(b.threshold),
	})
	b.breakers[host] = breaker
	return breaker
}

func (b *Breakers) call(rawURL string, fn func() ([]byte, error)) ([]byte, error) {
	host := hostOf(rawURL)
	breaker := b.get(host)

	if !breaker.Ready() {
		return nil, fmt.Errorf("%w for %s", ErrCircuitOpen, host)
	}

	var (
		body        []byte
		passthrough error
	)
	err := breaker.Call(func() error {
		var err error
		body, err = fn()
		if err != nil && !tripsBreaker(err) {
			passthrough = err
			return nil
		}
		return err
	}, 0)

	if passthrough != nil {
		return nil, passthrough
	}
	if errors.Is(err, circuit.ErrBreakerOpen) {
		return nil, fmt.Errorf("%w for %s", ErrCircuitOpen, host)
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

// State returns "open" or "closed" for every host seen so far.
func (b *Breakers) State() map[string]string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	states := make(map[string]string, len(b.breakers))
	for host, breaker := range b.breakers {
		if breaker.Tripped() {
			states[host] = "open"
		} else {
			states[host] = "closed"
		}
	}
	return states
}

func tripsBreaker(err error) bool {
	var tErr *TransportError
	if errors.As(err, &tErr) {
		return true
	}
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode >= 500
}

// hostOf extracts the host used to group breakers.
func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		if len(rawURL) > 50 {
			return rawURL[:50]
		}
		return rawURL
	}
	return parsed.Host
}
