package usecase

import (
	"sync"
	"time"
)

const (
	DefaultInactiveTimeout = 2 * time.Minute
	DefaultActiveDelay     = 5 * time.Minute
)

type PresenceOptions struct {
	// InactiveTimeout is how long without interaction before the user turns inactive.
	InactiveTimeout time.Duration
	// ActiveDelay is the heartbeat interval for repeating an active signal.
	ActiveDelay time.Duration
	Now         func() time.Time
}

// PresenceTracker classifies a session as active or inactive from its input
// events and reports every transition and heartbeat through onUserActive.
type PresenceTracker struct {
	session      *Session
	onUserActive func(bool)

	inactiveTimeout time.Duration
	activeDelay     time.Duration
	now             func() time.Time

	mu                  sync.Mutex
	active              bool
	wasRecentlyInactive bool
	lastUpdate          time.Time
	timer               *time.Timer
	generation          uint64
	stopped             bool
}

func NewPresenceTracker(session *Session, onUserActive func(bool), opts PresenceOptions) *PresenceTracker {
	if opts.InactiveTimeout <= 0 {
		opts.InactiveTimeout = DefaultInactiveTimeout
	}
	if opts.ActiveDelay <= 0 {
		opts.ActiveDelay = DefaultActiveDelay
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &PresenceTracker{
		session:         session,
		onUserActive:    onUserActive,
		inactiveTimeout: opts.InactiveTimeout,
		activeDelay:     opts.ActiveDelay,
		now:             opts.Now,
	}
}

// Tick evaluates the current state without treating it as a user interaction.
func (t *PresenceTracker) Tick() {
	t.evaluate(false)
}

// Interaction records a pointer, key or scroll event.
func (t *PresenceTracker) Interaction() {
	t.evaluate(true)
}

func (t *PresenceTracker) IsActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Stop clears the inactivity timer. The tracker emits nothing afterwards.
func (t *PresenceTracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopped = true
	t.generation++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *PresenceTracker) evaluate(interaction bool) {
	if t.session.UserID() == "" {
		return
	}

	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return
	}

	if interaction {
		t.wasRecentlyInactive = false
	}

	now := t.now()
	emit := false
	if t.lastUpdate.IsZero() || now.Sub(t.lastUpdate) >= t.activeDelay || (!t.active && !t.wasRecentlyInactive) {
		t.lastUpdate = now
		t.active = true
		t.wasRecentlyInactive = false
		emit = true
	}

	t.armLocked()
	t.mu.Unlock()

	if emit {
		t.onUserActive(true)
	}
}

func (t *PresenceTracker) armLocked() {
	if t.timer != nil {
		t.timer.Stop()
	}

	t.generation++
	generation := t.generation
	t.timer = time.AfterFunc(t.inactiveTimeout, func() {
		t.expire(generation)
	})
}

// expire runs when the inactivity timer armed as generation fires.
func (t *PresenceTracker) expire(generation uint64) {
	t.mu.Lock()
	if t.stopped || generation != t.generation || !t.active {
		t.mu.Unlock()
		return
	}

	t.lastUpdate = t.now()
	t.active = false
	t.wasRecentlyInactive = true
	t.mu.Unlock()

	t.onUserActive(false)
}
