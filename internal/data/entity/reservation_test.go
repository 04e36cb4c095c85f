package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	testCases := []struct {
		from    ReservationStatus
		to      ReservationStatus
		allowed bool
	}{
		{ReservationStatusPending, ReservationStatusConfirmed, true},
		{ReservationStatusPending, ReservationStatusCancelled, true},
		{ReservationStatusPending, ReservationStatusCompleted, false},
		{ReservationStatusConfirmed, ReservationStatusCompleted, true},
		{ReservationStatusConfirmed, ReservationStatusCancelled, false},
		{ReservationStatusConfirmed, ReservationStatusConfirmed, false},
		{ReservationStatusCancelled, ReservationStatusCancelled, false},
		{ReservationStatusCancelled, ReservationStatusConfirmed, false},
		{ReservationStatusCompleted, ReservationStatusCancelled, false},
		{ReservationStatusCompleted, ReservationStatusCompleted, false},
		{ReservationStatusConfirmed, ReservationStatusPending, false},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestTerminal(t *testing.T) {
	assert.False(t, ReservationStatusPending.Terminal())
	assert.False(t, ReservationStatusConfirmed.Terminal())
	assert.True(t, ReservationStatusCompleted.Terminal())
	assert.True(t, ReservationStatusCancelled.Terminal())
}

func TestParseReservationStatus(t *testing.T) {
	status, ok := ParseReservationStatus("confirmed")
	assert.True(t, ok)
	assert.Equal(t, ReservationStatusConfirmed, status)

	// Casing is normalized to lower case everywhere; anything else is rejected.
	_, ok = ParseReservationStatus("Pending")
	assert.False(t, ok)

	_, ok = ParseReservationStatus("expired")
	assert.False(t, ok)
}

func TestWindowExpired(t *testing.T) {
	window := 15 * time.Minute
	now := time.Now()

	res := &Reservation{Status: ReservationStatusPending}
	res.CreatedAt = now.Add(-20 * time.Minute)

	// Expiry is a pure function of (now, createdAt, window); no timer involved.
	assert.True(t, res.WindowExpired(now, window))
	assert.Equal(t, time.Duration(0), res.RemainingWindow(now, window))

	res.CreatedAt = now.Add(-10 * time.Minute)
	assert.False(t, res.WindowExpired(now, window))
	assert.Equal(t, 5*time.Minute, res.RemainingWindow(now, window))

	// A confirmed reservation has no window regardless of age.
	res.Status = ReservationStatusConfirmed
	res.CreatedAt = now.Add(-20 * time.Minute)
	assert.False(t, res.WindowExpired(now, window))
}
