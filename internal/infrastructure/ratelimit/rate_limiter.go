package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	ActionSendMessage = "send_message"
	ActionCreateChat  = "create_chat"
	ActionAddFriend   = "add_friend"
	ActionSearch      = "search"
	ActionActivity    = "activity"
	ActionRequest     = "request"
)

// Policy is the sustained rate and burst allowed for one action.
type Policy struct {
	Every time.Duration
	Burst int
}

var defaultPolicies = map[string]Policy{
	// 10 messages per minute
	ActionSendMessage: {Every: 6 * time.Second, Burst: 10},
	// 5 chat creations per hour
	ActionCreateChat: {Every: 12 * time.Minute, Burst: 5},
	ActionAddFriend:  {Every: 6 * time.Second, Burst: 10},
	ActionSearch:     {Every: 500 * time.Millisecond, Burst: 10},
	// activity frames arrive on every mouse move
	ActionActivity: {Every: 100 * time.Millisecond, Burst: 50},
	// 60 API requests per minute per client
	ActionRequest: {Every: time.Second, Burst: 60},
}

var defaultPolicy = Policy{Every: 3 * time.Second, Burst: 20}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per user and action.
type RateLimiter struct {
	mutex    sync.Mutex
	buckets  map[string]*bucket
	policies map[string]Policy
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewRateLimiter() *RateLimiter {
	policies := make(map[string]Policy, len(defaultPolicies))
	for action, p := range defaultPolicies {
		policies[action] = p
	}

	return &RateLimiter{
		buckets:  make(map[string]*bucket),
		policies: policies,
		stopCh:   make(chan struct{}),
	}
}

// SetPolicy overrides the policy of action. Existing buckets keep their old policy.
func (rl *RateLimiter) SetPolicy(action string, p Policy) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	rl.policies[action] = p
}

func (rl *RateLimiter) getLimiter(userID, action string) *rate.Limiter {
	key := userID + ":" + action

	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	if b, ok := rl.buckets[key]; ok {
		b.lastSeen = time.Now()
		return b.limiter
	}

	p, ok := rl.policies[action]
	if !ok {
		p = defaultPolicy
	}

	b := &bucket{
		limiter:  rate.NewLimiter(rate.Every(p.Every), p.Burst),
		lastSeen: time.Now(),
	}
	rl.buckets[key] = b
	return b.limiter
}

// Allow consumes a token for the user action. When none is available it
// reports how long until the next one.
func (rl *RateLimiter) Allow(userID, action string) (bool, time.Duration) {
	limiter := rl.getLimiter(userID, action)

	now := time.Now()
	r := limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, 0
	}

	delay := r.DelayFrom(now)
	if delay == 0 {
		return true, 0
	}

	r.CancelAt(now)
	return false, delay
}

// Cleanup removes buckets that have not been used for idle.
func (rl *RateLimiter) Cleanup(idle time.Duration) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	cutoff := time.Now().Add(-idle)
	for key, b := range rl.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(rl.buckets, key)
		}
	}
}

func (rl *RateLimiter) StartCleanupRoutine() {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rl.Cleanup(time.Hour)
			case <-rl.stopCh:
				return
			}
		}
	}()
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopCh)
	})
}

func (rl *RateLimiter) size() int {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	return len(rl.buckets)
}
