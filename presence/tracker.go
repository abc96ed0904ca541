package presence

import (
	"context"
	"log"
	"sync"
	"time"

	"pulsefeed.dev/project-pulsefeed/events"
)

// DefaultGrace is how long a disconnect may last before the user is persisted
// as offline.
const DefaultGrace = 5 * time.Second

// Store persists the online flag and last-active timestamp.
type Store interface {
	SetActiveStatus(ctx context.Context, userID int, active bool, at time.Time) error
}

// Tracker maintains each user's online/offline state and debounces offline
// transitions. Per user there is at most one pending offline timer; a new
// signal for the same user replaces or cancels it. Pending timers live only in
// memory — a restart loses them and the next signal re-establishes truth.
type Tracker struct {
	store Store
	bus   *events.Bus
	grace time.Duration

	mu      sync.Mutex
	pending map[int]*time.Timer
}

func NewTracker(store Store, bus *events.Bus, grace time.Duration) *Tracker {
	if grace <= 0 {
		grace = DefaultGrace
	}
	return &Tracker{
		store:   store,
		bus:     bus,
		grace:   grace,
		pending: make(map[int]*time.Timer),
	}
}

// SetPresence records a connect or disconnect signal for the user.
//
// active=true persists and publishes immediately, cancelling any pending
// offline transition. active=false only schedules the offline write; it is
// applied after the grace window unless a reconnect cancels it first.
func (t *Tracker) SetPresence(ctx context.Context, userID int, active bool) error {
	if active {
		t.cancelPending(userID)
		now := time.Now()
		if err := t.store.SetActiveStatus(ctx, userID, true, now); err != nil {
			log.Printf("presence: mark user %d online: %v", userID, err)
			return err
		}
		t.bus.Publish(events.TopicPresence, events.PresenceUpdate{
			UserID:     userID,
			IsActive:   true,
			LastActive: now,
		})
		return nil
	}

	t.scheduleOffline(userID)
	return nil
}

func (t *Tracker) cancelPending(userID int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if timer, ok := t.pending[userID]; ok {
		timer.Stop()
		delete(t.pending, userID)
	}
}

func (t *Tracker) scheduleOffline(userID int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.pending[userID]; ok {
		old.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(t.grace, func() {
		t.settleOffline(userID, timer)
	})
	t.pending[userID] = timer
}

func (t *Tracker) settleOffline(userID int, timer *time.Timer) {
	t.mu.Lock()
	current, ok := t.pending[userID]
	if !ok || current != timer {
		// A later signal replaced or cancelled this transition.
		t.mu.Unlock()
		return
	}
	delete(t.pending, userID)
	t.mu.Unlock()

	now := time.Now()
	if err := t.store.SetActiveStatus(context.Background(), userID, false, now); err != nil {
		log.Printf("presence: mark user %d offline: %v", userID, err)
		return
	}
	t.bus.Publish(events.TopicPresence, events.PresenceUpdate{
		UserID:     userID,
		IsActive:   false,
		LastActive: now,
	})
}

// Stop cancels all pending offline transitions without persisting them.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for userID, timer := range t.pending {
		timer.Stop()
		delete(t.pending, userID)
	}
}
