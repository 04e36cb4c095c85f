package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatorChargeSucceedsAfterLatency(t *testing.T) {
	sim := NewSimulator(50 * time.Millisecond)

	start := time.Now()
	ref, err := sim.Charge(context.Background(), 598, "wechat")
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.NotEmpty(t, ref)
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
}

func TestSimulatorDecline(t *testing.T) {
	sim := NewSimulator(time.Millisecond)
	sim.Decline = true

	_, err := sim.Charge(context.Background(), 598, "alipay")
	assert.ErrorIs(t, err, ErrDeclined)
}

func TestSimulatorRejectsNegativeAmount(t *testing.T) {
	sim := NewSimulator(time.Millisecond)

	_, err := sim.Charge(context.Background(), -1, "card")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrDeclined)
}

func TestSimulatorHonorsContextCancellation(t *testing.T) {
	sim := NewSimulator(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := sim.Charge(ctx, 100, "wechat")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
