package usecase

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"chatdash/internal/domain/entity"
)

type presenceRecorder struct {
	mu     sync.Mutex
	events []bool
}

func (r *presenceRecorder) record(active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, active)
}

func (r *presenceRecorder) all() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.events...)
}

// newTracker uses an inactivity timeout long enough that tests drive expiry by hand.
func newTracker(t *testing.T, userID string) (*PresenceTracker, *presenceRecorder, *fakeClock) {
	t.Helper()
	rec := &presenceRecorder{}
	clock := newFakeClock()
	tracker := NewPresenceTracker(NewSession(&entity.User{ID: userID}, nil), rec.record, PresenceOptions{
		InactiveTimeout: time.Hour,
		ActiveDelay:     DefaultActiveDelay,
		Now:             clock.Now,
	})
	t.Cleanup(tracker.Stop)
	return tracker, rec, clock
}

func (t *PresenceTracker) currentGeneration() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.generation
}

func (t *PresenceTracker) fireInactivityTimer() {
	t.expire(t.currentGeneration())
}

func TestPresenceInitialStateIsInactive(t *testing.T) {
	tracker, rec, _ := newTracker(t, "1")
	assert.False(t, tracker.IsActive())
	assert.Empty(t, rec.all())
}

func TestPresenceFirstInteractionActivates(t *testing.T) {
	tracker, rec, clock := newTracker(t, "1")

	tracker.Interaction()
	assert.True(t, tracker.IsActive())
	assert.Equal(t, []bool{true}, rec.all())

	clock.Advance(30 * time.Second)
	tracker.Interaction()
	tracker.Tick()
	assert.Equal(t, []bool{true}, rec.all())
}

func TestPresenceHeartbeatAfterActiveDelay(t *testing.T) {
	tracker, rec, clock := newTracker(t, "1")
	tracker.Tick()

	clock.Advance(DefaultActiveDelay - time.Second)
	tracker.Interaction()
	assert.Equal(t, []bool{true}, rec.all())

	clock.Advance(time.Second)
	tracker.Interaction()
	assert.Equal(t, []bool{true, true}, rec.all())
	assert.True(t, tracker.IsActive())
}

func TestPresenceTimeoutEmitsFalseOnce(t *testing.T) {
	tracker, rec, clock := newTracker(t, "1")
	tracker.Interaction()

	clock.Advance(DefaultInactiveTimeout)
	tracker.fireInactivityTimer()
	tracker.fireInactivityTimer()

	assert.False(t, tracker.IsActive())
	assert.Equal(t, []bool{true, false}, rec.all())
}

func TestPresenceResidualTickAfterTimeoutStaysInactive(t *testing.T) {
	tracker, rec, clock := newTracker(t, "1")
	tracker.Interaction()
	clock.Advance(DefaultInactiveTimeout)
	tracker.fireInactivityTimer()

	tracker.Tick()
	assert.False(t, tracker.IsActive())
	assert.Equal(t, []bool{true, false}, rec.all())
}

func TestPresenceInteractionAfterTimeoutReactivatesOnce(t *testing.T) {
	tracker, rec, clock := newTracker(t, "1")
	tracker.Interaction()
	clock.Advance(DefaultInactiveTimeout)
	tracker.fireInactivityTimer()

	clock.Advance(time.Minute)
	tracker.Interaction()
	tracker.Interaction()

	assert.True(t, tracker.IsActive())
	assert.Equal(t, []bool{true, false, true}, rec.all())
}

func TestPresenceStaleTimerIsIgnored(t *testing.T) {
	tracker, rec, _ := newTracker(t, "1")
	tracker.Interaction()
	stale := tracker.currentGeneration()

	tracker.Interaction()
	tracker.expire(stale)

	assert.True(t, tracker.IsActive())
	assert.Equal(t, []bool{true}, rec.all())
}

func TestPresenceIsInertWithoutIdentity(t *testing.T) {
	tracker, rec, _ := newTracker(t, "")

	tracker.Tick()
	tracker.Interaction()

	assert.False(t, tracker.IsActive())
	assert.Empty(t, rec.all())
}

func TestPresenceStopSilencesTracker(t *testing.T) {
	tracker, rec, _ := newTracker(t, "1")
	tracker.Interaction()
	generation := tracker.currentGeneration()

	tracker.Stop()
	tracker.expire(generation)
	tracker.Interaction()

	assert.Equal(t, []bool{true}, rec.all())
}

func TestPresenceInactivityTimerFires(t *testing.T) {
	rec := &presenceRecorder{}
	tracker := NewPresenceTracker(NewSession(&entity.User{ID: "1"}, nil), rec.record, PresenceOptions{
		InactiveTimeout: 20 * time.Millisecond,
	})
	defer tracker.Stop()

	tracker.Interaction()
	assert.Eventually(t, func() bool { return len(rec.all()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []bool{true, false}, rec.all())
	assert.False(t, tracker.IsActive())
}
