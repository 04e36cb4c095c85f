// Package countdown implements a cancelable one-second countdown with an
// exactly-once expiry callback. The timer is a view over a duration decided
// elsewhere; it knows nothing about reservations or deadlines.
package countdown

import (
	"fmt"
	"sync"
	"time"
)

// Timer counts down a fixed number of seconds at 1 Hz. Start is idempotent,
// Stop is safe to call repeatedly, and the expiry callback fires at most once
// per run; Reset re-arms the timer for a fresh run.
type Timer struct {
	mu        sync.Mutex
	interval  time.Duration
	duration  int // seconds, as configured
	remaining int // seconds left in the current run
	expired   bool
	running   bool
	autoStart bool
	onExpire  func()
	stop      chan struct{}
	run       int // generation counter; a stale tick loop must never mutate state
}

type Option func(*Timer)

// WithInterval overrides the real-time length of one countdown second. Tests
// use a short interval so a full run finishes in milliseconds.
func WithInterval(d time.Duration) Option {
	return func(t *Timer) {
		if d > 0 {
			t.interval = d
		}
	}
}

// WithAutoStart makes the timer begin ticking on construction and again after
// every Reset.
func WithAutoStart() Option {
	return func(t *Timer) {
		t.autoStart = true
	}
}

// New builds a timer over the given number of seconds. A zero or negative
// duration produces a timer that reports expiry immediately on Start without
// ever ticking. onExpire may be nil.
func New(seconds int, onExpire func(), opts ...Option) *Timer {
	if seconds < 0 {
		seconds = 0
	}
	t := &Timer{
		interval:  time.Second,
		duration:  seconds,
		remaining: seconds,
		onExpire:  onExpire,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.autoStart {
		t.Start()
	}
	return t
}

// Start begins ticking. Calling Start on a running timer is a no-op. Starting
// with nothing left fires the expiry (once) instead of ticking.
func (t *Timer) Start() {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return
	}
	if t.remaining <= 0 {
		fire := !t.expired
		t.expired = true
		t.mu.Unlock()
		if fire && t.onExpire != nil {
			t.onExpire()
		}
		return
	}
	t.running = true
	t.run++
	stop := make(chan struct{})
	t.stop = stop
	run := t.run
	t.mu.Unlock()

	go t.tick(run, stop)
}

func (t *Timer) tick(run int, stop chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.mu.Lock()
			if run != t.run {
				// Stopped or reconfigured since this loop started.
				t.mu.Unlock()
				return
			}
			t.remaining--
			if t.remaining > 0 {
				t.mu.Unlock()
				continue
			}
			t.remaining = 0
			t.expired = true
			t.running = false
			cb := t.onExpire
			t.mu.Unlock()
			if cb != nil {
				cb()
			}
			return
		}
	}
}

// Stop halts ticking without touching the remaining time or the expired flag.
// Safe to call repeatedly and on a timer that never started.
func (t *Timer) Stop() {
	t.mu.Lock()
	if t.running {
		t.running = false
		t.run++
		close(t.stop)
		t.stop = nil
	}
	t.mu.Unlock()
}

// Reset stops the timer, clears the expired flag and re-seeds the remaining
// time, to newSeconds when given and to the original duration otherwise.
// An auto-start timer resumes ticking immediately.
func (t *Timer) Reset(newSeconds ...int) {
	t.Stop()

	t.mu.Lock()
	if len(newSeconds) > 0 {
		seconds := newSeconds[0]
		if seconds < 0 {
			seconds = 0
		}
		t.duration = seconds
	}
	t.remaining = t.duration
	t.expired = false
	auto := t.autoStart
	t.mu.Unlock()

	if auto {
		t.Start()
	}
}

// Remaining returns the seconds left; monotonically non-increasing while
// running and never negative.
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Expired reports whether the current run has reached zero. It stays true
// until Reset.
func (t *Timer) Expired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expired
}

// Running reports whether the timer is currently ticking.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Display formats the remaining time as mm:ss.
func (t *Timer) Display() string {
	remaining := t.Remaining()
	return fmt.Sprintf("%02d:%02d", remaining/60, remaining%60)
}
