// Package repository sentinel errors shared by all repositories. Handlers
// distinguish failure classes with errors.Is instead of matching message
// strings: ErrNotFound maps to HTTP 404 and ErrInvalidTransition to 409.
package repository

import "errors"

// ErrNotFound is returned when the referenced row does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidTransition is returned when a status change is attempted from a
// state that does not permit it, including the losing side of a pay-vs-expire
// race. It is always an authoritative answer from the store, never a
// connectivity failure, so callers must not retry it.
var ErrInvalidTransition = errors.New("invalid status transition")
