// Package payment defines the gateway contract the reservation flow charges
// through, plus the latency simulator that stands in for a real provider.
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrDeclined is returned when the provider refuses the charge. The caller may
// retry; the reservation's payment window is not extended by a failed attempt.
var ErrDeclined = errors.New("payment declined")

// Gateway charges an amount through a payment method and returns a provider
// transaction reference. It never touches reservation state; the caller owns
// the follow-up status transition.
type Gateway interface {
	Charge(ctx context.Context, amount float64, method string) (string, error)
}

// Simulator resolves charges after a fixed latency, the way a real gateway
// round-trip would. A production deployment swaps this for a provider client;
// the Gateway contract is unchanged.
type Simulator struct {
	latency time.Duration

	// Decline forces every charge to fail. Used by tests and demo setups.
	Decline bool
}

func NewSimulator(latency time.Duration) *Simulator {
	if latency <= 0 {
		latency = 300 * time.Millisecond
	}
	return &Simulator{latency: latency}
}

func (s *Simulator) Charge(ctx context.Context, amount float64, method string) (string, error) {
	if amount < 0 {
		return "", fmt.Errorf("charge %.2f via %s: amount must be non-negative", amount, method)
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(s.latency):
	}

	if s.Decline {
		return "", fmt.Errorf("charge %.2f via %s: %w", amount, method, ErrDeclined)
	}

	return uuid.NewString(), nil
}
