package entity

import (
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCompleted ReservationStatus = "completed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

// transitionSource maps each reachable status to the single status a
// reservation must currently hold for the change to be legal:
//
//	pending   -> confirmed  (payment succeeded)
//	pending   -> cancelled  (user cancel or window expiry)
//	confirmed -> completed  (stay elapsed, driven externally)
//
// completed and cancelled are terminal. pending is never a target.
var transitionSource = map[ReservationStatus]ReservationStatus{
	ReservationStatusConfirmed: ReservationStatusPending,
	ReservationStatusCancelled: ReservationStatusPending,
	ReservationStatusCompleted: ReservationStatusConfirmed,
}

func ParseReservationStatus(s string) (ReservationStatus, bool) {
	status := ReservationStatus(s)
	switch status {
	case ReservationStatusPending, ReservationStatusConfirmed,
		ReservationStatusCompleted, ReservationStatusCancelled:
		return status, true
	}
	return "", false
}

// TransitionSource returns the status a reservation must be in before it can
// move to target. ok is false when target is not reachable from anywhere.
func TransitionSource(target ReservationStatus) (ReservationStatus, bool) {
	source, ok := transitionSource[target]
	return source, ok
}

func (s ReservationStatus) Terminal() bool {
	return s == ReservationStatusCompleted || s == ReservationStatusCancelled
}

func (s ReservationStatus) CanTransitionTo(target ReservationStatus) bool {
	source, ok := transitionSource[target]
	return ok && source == s
}

type Reservation struct {
	Base
	HotelID    uuid.UUID         `db:"hotel_id"`
	RoomID     uuid.UUID         `db:"room_id"`
	UserID     uuid.UUID         `db:"user_id"`
	GuestName  string            `db:"guest_name"`
	GuestPhone string            `db:"guest_phone"`
	CheckIn    time.Time         `db:"check_in"`
	CheckOut   time.Time         `db:"check_out"`
	TotalPrice float64           `db:"total_price"`
	Status     ReservationStatus `db:"status"`
}

// PaymentDeadline is derived from CreatedAt alone so that expiry survives
// process restarts and never depends on in-memory timer state.
func (r *Reservation) PaymentDeadline(window time.Duration) time.Time {
	return r.CreatedAt.Add(window)
}

// WindowExpired reports whether the payment window has lapsed for a still
// pending reservation. Non-pending reservations have no window.
func (r *Reservation) WindowExpired(now time.Time, window time.Duration) bool {
	return r.Status == ReservationStatusPending && !now.Before(r.PaymentDeadline(window))
}

// RemainingWindow returns how much of the payment window is left, clamped at
// zero.
func (r *Reservation) RemainingWindow(now time.Time, window time.Duration) time.Duration {
	remaining := r.PaymentDeadline(window).Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}
