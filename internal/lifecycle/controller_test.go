package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"hotel-booking/internal/data/entity"
	"hotel-booking/internal/data/repository"
	"hotel-booking/internal/payment"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore is an in-memory store with the same guarded transition
// semantics as the SQL repository: a transition only succeeds from the
// single allowed source status, checked and applied under one lock.
type memStore struct {
	mu           sync.Mutex
	reservations map[uuid.UUID]*entity.Reservation
	transitions  int
	failures     int // fail this many Transition calls with a transient error
}

func newMemStore() *memStore {
	return &memStore{reservations: make(map[uuid.UUID]*entity.Reservation)}
}

func (m *memStore) put(res *entity.Reservation) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reservations[res.ID] = res
}

func (m *memStore) Get(ctx context.Context, id uuid.UUID) (*entity.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res, ok := m.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	snapshot := *res
	return &snapshot, nil
}

func (m *memStore) Transition(ctx context.Context, id uuid.UUID, target entity.ReservationStatus) (*entity.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failures > 0 {
		m.failures--
		return nil, errors.New("connection reset")
	}

	res, ok := m.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	source, ok := entity.TransitionSource(target)
	if !ok || res.Status != source {
		return nil, fmt.Errorf("reservation is %s: %w", res.Status, repository.ErrInvalidTransition)
	}

	res.Status = target
	res.UpdatedAt = time.Now()
	m.transitions++

	snapshot := *res
	return &snapshot, nil
}

// fakeGateway lets tests control charge latency and outcome.
type fakeGateway struct {
	latency time.Duration
	err     error
	calls   int
	mu      sync.Mutex
}

func (g *fakeGateway) Charge(ctx context.Context, amount float64, method string) (string, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()

	if g.latency > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(g.latency):
		}
	}
	if g.err != nil {
		return "", g.err
	}
	return uuid.NewString(), nil
}

func pendingReservation(createdAt time.Time, price float64) *entity.Reservation {
	now := createdAt
	return &entity.Reservation{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		HotelID:    uuid.New(),
		RoomID:     uuid.New(),
		UserID:     uuid.New(),
		GuestName:  "Zhang Wei",
		GuestPhone: "13800138000",
		CheckIn:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		CheckOut:   time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		TotalPrice: price,
		Status:     entity.ReservationStatusPending,
	}
}

func newTestController(store Store, gateway payment.Gateway, window time.Duration, opts ...Option) *Controller {
	return NewController(store, gateway, window, zap.NewNop(), opts...)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestPaySuccessWithinWindow(t *testing.T) {
	store := newMemStore()
	res := pendingReservation(time.Now(), 598)
	store.put(res)

	gateway := &fakeGateway{latency: 50 * time.Millisecond}
	c := newTestController(store, gateway, 15*time.Minute)
	defer c.Close()

	_, err := c.Load(context.Background(), res.ID)
	require.NoError(t, err)

	updated, err := c.Pay(context.Background(), "wechat")
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusConfirmed, updated.Status)
	assert.False(t, c.View().Expired)

	// A second payment must be rejected by the store guard.
	_, err = c.Pay(context.Background(), "wechat")
	assert.ErrorIs(t, err, repository.ErrInvalidTransition)
}

func TestDeadlineReDerivedOnLoad(t *testing.T) {
	store := newMemStore()
	// Created 20 minutes ago against a 15 minute window. The lapse must
	// be detected from created_at on load, without waiting for a tick.
	res := pendingReservation(time.Now().Add(-20*time.Minute), 420)
	store.put(res)

	c := newTestController(store, &fakeGateway{}, 15*time.Minute)
	defer c.Close()

	loaded, err := c.Load(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusCancelled, loaded.Status)

	stored, err := store.Get(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusCancelled, stored.Status)
}

func TestPayAfterWindowCancels(t *testing.T) {
	store := newMemStore()
	base := time.Now()
	res := pendingReservation(base, 880)
	store.put(res)

	clock := base
	var clockMu sync.Mutex
	now := func() time.Time {
		clockMu.Lock()
		defer clockMu.Unlock()
		return clock
	}

	gateway := &fakeGateway{}
	c := newTestController(store, gateway, 15*time.Minute, WithClock(now))
	defer c.Close()

	_, err := c.Load(context.Background(), res.ID)
	require.NoError(t, err)

	// Move the clock 16 minutes forward, then attempt to pay.
	clockMu.Lock()
	clock = base.Add(16 * time.Minute)
	clockMu.Unlock()

	_, err = c.Pay(context.Background(), "alipay")
	assert.ErrorIs(t, err, repository.ErrInvalidTransition)
	assert.Equal(t, 0, gateway.calls, "expired reservation must not be charged")

	stored, err := store.Get(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusCancelled, stored.Status)
}

func TestChargeFailureKeepsWindowRunning(t *testing.T) {
	store := newMemStore()
	res := pendingReservation(time.Now(), 598)
	store.put(res)

	gateway := &fakeGateway{err: payment.ErrDeclined}
	c := newTestController(store, gateway, 15*time.Minute)
	defer c.Close()

	_, err := c.Load(context.Background(), res.ID)
	require.NoError(t, err)

	_, err = c.Pay(context.Background(), "card")
	assert.ErrorIs(t, err, payment.ErrDeclined)

	stored, err := store.Get(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusPending, stored.Status, "failed charge must leave the reservation payable")

	// Retry with a working gateway before the deadline.
	gateway.err = nil
	updated, err := c.Pay(context.Background(), "card")
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusConfirmed, updated.Status)
}

func TestExpiryAndPaymentSingleWinner(t *testing.T) {
	// Arm the countdown one second from expiry and race it against a
	// slow payment. Exactly one guarded transition may win.
	store := newMemStore()
	res := pendingReservation(time.Now().Add(-15*time.Minute+time.Second), 598)
	store.put(res)

	gateway := &fakeGateway{latency: 950 * time.Millisecond}
	c := newTestController(store, gateway, 15*time.Minute)
	defer c.Close()

	_, err := c.Load(context.Background(), res.ID)
	require.NoError(t, err)

	_, payErr := c.Pay(context.Background(), "wechat")

	waitFor(t, 3*time.Second, func() bool {
		stored, gerr := store.Get(context.Background(), res.ID)
		return gerr == nil && stored.Status.Terminal()
	})

	stored, err := store.Get(context.Background(), res.ID)
	require.NoError(t, err)

	switch stored.Status {
	case entity.ReservationStatusConfirmed:
		assert.NoError(t, payErr)
	case entity.ReservationStatusCancelled:
		assert.ErrorIs(t, payErr, repository.ErrInvalidTransition)
	default:
		t.Fatalf("reservation left in non-terminal status %s", stored.Status)
	}
	assert.Equal(t, 1, store.transitions, "exactly one transition may win the race")
}

func TestPaySerialized(t *testing.T) {
	store := newMemStore()
	res := pendingReservation(time.Now(), 598)
	store.put(res)

	gateway := &fakeGateway{latency: 300 * time.Millisecond}
	c := newTestController(store, gateway, 15*time.Minute)
	defer c.Close()

	_, err := c.Load(context.Background(), res.ID)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, perr := c.Pay(context.Background(), "wechat")
		done <- perr
	}()

	waitFor(t, time.Second, func() bool {
		gateway.mu.Lock()
		defer gateway.mu.Unlock()
		return gateway.calls > 0
	})

	_, err = c.Pay(context.Background(), "wechat")
	assert.ErrorIs(t, err, ErrPaymentInFlight)

	require.NoError(t, <-done)
}

func TestTransitionRetriedOnceOnTransientFailure(t *testing.T) {
	store := newMemStore()
	res := pendingReservation(time.Now(), 598)
	store.put(res)
	store.failures = 1

	c := newTestController(store, &fakeGateway{}, 15*time.Minute)
	defer c.Close()

	_, err := c.Load(context.Background(), res.ID)
	require.NoError(t, err)

	updated, err := c.Pay(context.Background(), "wechat")
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusConfirmed, updated.Status)
}

func TestGuardViolationNotRetried(t *testing.T) {
	store := newMemStore()
	res := pendingReservation(time.Now(), 598)
	res.Status = entity.ReservationStatusCompleted
	store.put(res)

	c := newTestController(store, &fakeGateway{}, 15*time.Minute)
	defer c.Close()

	_, err := c.Load(context.Background(), res.ID)
	require.NoError(t, err)

	before := store.transitions
	_, err = c.Cancel(context.Background())
	assert.ErrorIs(t, err, repository.ErrInvalidTransition)
	assert.Equal(t, before, store.transitions)
}

func TestManualCancelStopsCountdown(t *testing.T) {
	store := newMemStore()
	res := pendingReservation(time.Now(), 598)
	store.put(res)

	c := newTestController(store, &fakeGateway{}, 15*time.Minute)
	defer c.Close()

	_, err := c.Load(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Greater(t, c.View().Remaining, 0)

	updated, err := c.Cancel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusCancelled, updated.Status)

	// A cancelled reservation cannot be paid.
	_, err = c.Pay(context.Background(), "wechat")
	assert.ErrorIs(t, err, repository.ErrInvalidTransition)
}

func TestBookingThenExpiryScenario(t *testing.T) {
	store := newMemStore()
	base := time.Now()
	res := pendingReservation(base, 880)
	res.CheckIn = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	res.CheckOut = time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	store.put(res)

	clock := base
	var clockMu sync.Mutex
	now := func() time.Time {
		clockMu.Lock()
		defer clockMu.Unlock()
		return clock
	}

	c := newTestController(store, &fakeGateway{}, 15*time.Minute, WithClock(now))
	defer c.Close()

	loaded, err := c.Load(context.Background(), res.ID)
	require.NoError(t, err)
	require.Equal(t, entity.ReservationStatusPending, loaded.Status)

	clockMu.Lock()
	clock = base.Add(16 * time.Minute)
	clockMu.Unlock()

	// Reloading after the window must cancel before rendering.
	reloaded, err := c.Load(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ReservationStatusCancelled, reloaded.Status)

	_, err = c.Pay(context.Background(), "wechat")
	assert.Error(t, err)
}

func TestViewReflectsCountdown(t *testing.T) {
	store := newMemStore()
	res := pendingReservation(time.Now(), 598)
	store.put(res)

	c := newTestController(store, &fakeGateway{}, 15*time.Minute)
	defer c.Close()

	_, err := c.Load(context.Background(), res.ID)
	require.NoError(t, err)

	v := c.View()
	assert.Equal(t, res.ID, v.ID)
	assert.Equal(t, entity.ReservationStatusPending, v.Status)
	assert.InDelta(t, 900, v.Remaining, 2)
	assert.Regexp(t, `^\d{2,}:\d{2}$`, v.Display)
}
