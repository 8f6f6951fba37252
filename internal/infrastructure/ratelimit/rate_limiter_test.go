package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowConsumesBurstThenWaits(t *testing.T) {
	rl := NewRateLimiter()
	rl.SetPolicy("test", Policy{Every: time.Hour, Burst: 2})

	ok, _ := rl.Allow("u1", "test")
	assert.True(t, ok)
	ok, _ = rl.Allow("u1", "test")
	assert.True(t, ok)

	ok, wait := rl.Allow("u1", "test")
	assert.False(t, ok)
	assert.Greater(t, wait, time.Duration(0))
}

func TestAllowIsPerUserAndAction(t *testing.T) {
	rl := NewRateLimiter()
	rl.SetPolicy("test", Policy{Every: time.Hour, Burst: 1})

	ok, _ := rl.Allow("u1", "test")
	assert.True(t, ok)
	ok, _ = rl.Allow("u2", "test")
	assert.True(t, ok)
	ok, _ = rl.Allow("u1", ActionSendMessage)
	assert.True(t, ok)

	ok, _ = rl.Allow("u1", "test")
	assert.False(t, ok)
}

func TestCleanupDropsIdleBuckets(t *testing.T) {
	rl := NewRateLimiter()
	rl.Allow("u1", ActionSearch)
	assert.Equal(t, 1, rl.size())

	rl.Cleanup(time.Hour)
	assert.Equal(t, 1, rl.size())

	rl.Cleanup(-time.Second)
	assert.Equal(t, 0, rl.size())
}
