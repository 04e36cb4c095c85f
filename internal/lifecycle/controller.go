// Package lifecycle drives a single reservation through its payment
// window on the client side. It owns a countdown timer that mirrors the
// server-derived deadline and reconciles every local decision against
// the store, which stays the single source of truth for status.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"hotel-booking/internal/data/entity"
	"hotel-booking/internal/data/repository"
	"hotel-booking/internal/payment"
	"hotel-booking/pkg/countdown"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store is the slice of the reservation store the controller needs.
// Both the HTTP client and the in-process repository satisfy it.
type Store interface {
	Get(ctx context.Context, id uuid.UUID) (*entity.Reservation, error)
	Transition(ctx context.Context, id uuid.UUID, target entity.ReservationStatus) (*entity.Reservation, error)
}

// ErrPaymentInFlight is returned by Pay while a previous payment attempt
// on the same controller has not finished yet.
var ErrPaymentInFlight = errors.New("payment already in flight")

// View is an immutable render of the reservation for display code.
type View struct {
	ID        uuid.UUID
	Status    entity.ReservationStatus
	Remaining int
	Display   string
	Expired   bool
}

type Controller struct {
	store   Store
	gateway payment.Gateway
	window  time.Duration
	log     *zap.Logger

	now          func() time.Time
	tickInterval time.Duration

	mu          sync.Mutex
	reservation *entity.Reservation
	timer       *countdown.Timer
	payInFlight bool
}

type Option func(*Controller)

// WithClock overrides the wall clock, used by tests to move time.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithTickInterval compresses the countdown tick, used by tests.
func WithTickInterval(d time.Duration) Option {
	return func(c *Controller) {
		c.tickInterval = d
	}
}

func NewController(store Store, gateway payment.Gateway, window time.Duration, log *zap.Logger, opts ...Option) *Controller {
	c := &Controller{
		store:        store,
		gateway:      gateway,
		window:       window,
		log:          log.With(zap.String("component", "lifecycle")),
		now:          time.Now,
		tickInterval: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load fetches the reservation and arms the countdown when it is still
// pending. A pending reservation whose window already lapsed is
// cancelled immediately, before any timer starts. The deadline is always
// re-derived from created_at, never from a previously displayed value.
func (c *Controller) Load(ctx context.Context, id uuid.UUID) (*entity.Reservation, error) {
	res, err := c.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load reservation: %w", err)
	}

	if res.Status == entity.ReservationStatusPending && res.WindowExpired(c.now(), c.window) {
		updated, cerr := c.cancelExpired(ctx, res.ID)
		if cerr != nil {
			return nil, cerr
		}
		c.mu.Lock()
		c.stopTimerLocked()
		c.reservation = updated
		c.mu.Unlock()
		return updated, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopTimerLocked()
	c.reservation = res

	if res.Status != entity.ReservationStatusPending {
		return res, nil
	}

	remaining := res.RemainingWindow(c.now(), c.window)
	seconds := int((remaining + time.Second - 1) / time.Second)

	c.timer = countdown.New(seconds, func() { c.expire(res.ID) },
		countdown.WithInterval(c.tickInterval))
	c.timer.Start()

	c.log.Info("Countdown armed",
		zap.String("reservation_id", res.ID.String()),
		zap.Int("seconds", seconds))

	return res, nil
}

// Pay runs one payment attempt end to end. Only one attempt may be in
// flight at a time. The window is re-checked against the clock before
// charging, the charge itself never extends the window, and the final
// status comes from the store's guarded transition, never from local
// state.
func (c *Controller) Pay(ctx context.Context, method string) (*entity.Reservation, error) {
	c.mu.Lock()
	if c.reservation == nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("no reservation loaded")
	}
	if c.payInFlight {
		c.mu.Unlock()
		return nil, ErrPaymentInFlight
	}
	c.payInFlight = true
	res := c.reservation
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.payInFlight = false
		c.mu.Unlock()
	}()

	if res.Status != entity.ReservationStatusPending {
		return nil, fmt.Errorf("reservation is %s: %w", res.Status, repository.ErrInvalidTransition)
	}

	if res.WindowExpired(c.now(), c.window) {
		updated, err := c.cancelExpired(ctx, res.ID)
		if err != nil {
			return nil, err
		}
		c.setReservation(updated)
		return nil, fmt.Errorf("payment window expired: %w", repository.ErrInvalidTransition)
	}

	ref, err := c.gateway.Charge(ctx, res.TotalPrice, method)
	if err != nil {
		// A failed charge leaves the reservation pending and the
		// window running. The caller may retry until the deadline.
		c.log.Warn("Charge failed",
			zap.Error(err),
			zap.String("reservation_id", res.ID.String()))
		return nil, fmt.Errorf("charge: %w", err)
	}

	updated, err := c.transitionWithRetry(ctx, res.ID, entity.ReservationStatusConfirmed)
	if errors.Is(err, repository.ErrInvalidTransition) {
		// Lost the race against expiry or a concurrent pay. Refresh
		// and accept whatever the store decided.
		refreshed, gerr := c.store.Get(ctx, res.ID)
		if gerr == nil {
			c.setReservation(refreshed)
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	c.setReservation(updated)
	c.log.Info("Payment confirmed",
		zap.String("reservation_id", res.ID.String()),
		zap.String("payment_ref", ref),
		zap.String("method", method))
	return updated, nil
}

// Cancel cancels the loaded reservation by hand, ahead of the deadline.
func (c *Controller) Cancel(ctx context.Context) (*entity.Reservation, error) {
	c.mu.Lock()
	if c.reservation == nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("no reservation loaded")
	}
	id := c.reservation.ID
	c.mu.Unlock()

	updated, err := c.transitionWithRetry(ctx, id, entity.ReservationStatusCancelled)
	if err != nil {
		return nil, err
	}

	c.setReservation(updated)
	return updated, nil
}

// expire fires once when the countdown reaches zero. The transition is
// guarded server side, so losing to a concurrent payment is not an
// error worth surfacing.
func (c *Controller) expire(id uuid.UUID) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	updated, err := c.transitionWithRetry(ctx, id, entity.ReservationStatusCancelled)
	if errors.Is(err, repository.ErrInvalidTransition) {
		refreshed, gerr := c.store.Get(ctx, id)
		if gerr == nil {
			c.setReservation(refreshed)
		}
		c.log.Info("Expiry lost to a concurrent transition",
			zap.String("reservation_id", id.String()))
		return
	}
	if err != nil {
		c.log.Error("Failed to cancel on expiry",
			zap.Error(err),
			zap.String("reservation_id", id.String()))
		return
	}

	c.setReservation(updated)
	c.log.Info("Reservation expired",
		zap.String("reservation_id", id.String()))
}

// cancelExpired cancels a reservation whose window lapsed while no timer
// was watching it, for example between page loads. A transition conflict
// just means something else settled it first.
func (c *Controller) cancelExpired(ctx context.Context, id uuid.UUID) (*entity.Reservation, error) {
	updated, err := c.transitionWithRetry(ctx, id, entity.ReservationStatusCancelled)
	if errors.Is(err, repository.ErrInvalidTransition) {
		refreshed, gerr := c.store.Get(ctx, id)
		if gerr != nil {
			return nil, fmt.Errorf("refresh reservation: %w", gerr)
		}
		return refreshed, nil
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// transitionWithRetry retries a transition once on transient failures.
// Guard violations and context errors are final and never retried.
func (c *Controller) transitionWithRetry(ctx context.Context, id uuid.UUID, target entity.ReservationStatus) (*entity.Reservation, error) {
	updated, err := c.store.Transition(ctx, id, target)
	if err == nil || !isTransient(err) {
		return updated, err
	}

	c.log.Warn("Transition failed, retrying once",
		zap.Error(err),
		zap.String("reservation_id", id.String()),
		zap.String("target", string(target)))

	return c.store.Transition(ctx, id, target)
}

func isTransient(err error) bool {
	if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidTransition) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

func (c *Controller) setReservation(res *entity.Reservation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reservation = res
	if res.Status.Terminal() {
		c.stopTimerLocked()
	}
}

// Reservation returns the last known snapshot.
func (c *Controller) Reservation() *entity.Reservation {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.reservation == nil {
		return nil
	}
	snapshot := *c.reservation
	return &snapshot
}

// View renders the current state for display.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{}
	if c.reservation != nil {
		v.ID = c.reservation.ID
		v.Status = c.reservation.Status
	}
	if c.timer != nil {
		v.Remaining = c.timer.Remaining()
		v.Display = c.timer.Display()
		v.Expired = c.timer.Expired()
	}
	return v
}

// Close stops the countdown. Safe to call more than once.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimerLocked()
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
	}
}
