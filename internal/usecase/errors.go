package usecase

import "errors"

// ErrReservationExpired is returned when a payment is attempted after the
// window derived from created_at has lapsed, regardless of what the client's
// countdown believed.
var ErrReservationExpired = errors.New("payment window expired")

// ErrForbidden is returned when a caller touches a reservation owned by
// someone else.
var ErrForbidden = errors.New("forbidden")

// ErrUnknownPaymentMethod is returned for methods outside the configured set.
var ErrUnknownPaymentMethod = errors.New("unknown payment method")
