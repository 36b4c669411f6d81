package availability

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "deskly/pkg/errors"
	"deskly/pkg/model"
)

// CounterEngine is the fixed-grid alternative to the interval engine:
// one slot per workspace-hour with a remaining counter bounded by
// [0, capacity]. Reserve decrements every covered hour atomically,
// Release increments them back. A deployment picks either this engine or
// the interval engine for a workspace, never both.
type CounterEngine struct {
	mu    sync.Mutex
	slots map[slotKey]*model.DaySlot
}

type slotKey struct {
	workspaceID string
	date        string
	hour        int
}

func NewCounterEngine() *CounterEngine {
	return &CounterEngine{
		slots: make(map[slotKey]*model.DaySlot),
	}
}

// SeedDay creates the 24 hourly slots of one workspace-day at the given
// capacity. Hours not seeded are treated as unavailable.
func (e *CounterEngine) SeedDay(workspaceID string, day time.Time, capacity int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	date := day.Format("2006-01-02")
	for hour := 0; hour < 24; hour++ {
		key := slotKey{workspaceID: workspaceID, date: date, hour: hour}
		e.slots[key] = &model.DaySlot{
			WorkspaceID: workspaceID,
			Date:        date,
			Hour:        hour,
			Capacity:    capacity,
			Remaining:   capacity,
			UpdatedAt:   time.Now().UTC(),
		}
	}
}

func (e *CounterEngine) IsAvailable(ctx context.Context, workspaceID string, start, end time.Time) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, key := range coveredSlots(workspaceID, start, end) {
		slot, ok := e.slots[key]
		if !ok || slot.Remaining <= 0 {
			return false, nil
		}
	}
	return true, nil
}

// Reserve admits a booking by decrementing every covered hour. The
// decrement is all-or-nothing: a single exhausted hour fails the whole
// reservation with Conflict and leaves the grid untouched.
func (e *CounterEngine) Reserve(workspaceID string, start, end time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	keys := coveredSlots(workspaceID, start, end)
	if len(keys) == 0 {
		return apperrors.InvalidInput("Requested interval covers no slots")
	}

	for _, key := range keys {
		slot, ok := e.slots[key]
		if !ok || slot.Remaining <= 0 {
			return apperrors.Conflict(fmt.Sprintf("No remaining capacity at %s %02d:00", key.date, key.hour))
		}
	}

	now := time.Now().UTC()
	for _, key := range keys {
		e.slots[key].Remaining--
		e.slots[key].UpdatedAt = now
	}
	return nil
}

// Release returns the capacity taken by a cancelled booking. Remaining
// never exceeds capacity, so releasing twice cannot overfill a slot.
func (e *CounterEngine) Release(workspaceID string, start, end time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := time.Now().UTC()
	for _, key := range coveredSlots(workspaceID, start, end) {
		slot, ok := e.slots[key]
		if !ok {
			continue
		}
		if slot.Remaining < slot.Capacity {
			slot.Remaining++
			slot.UpdatedAt = now
		}
	}
}

// Remaining reports the counter of a single workspace-hour, mainly for
// listings and tests.
func (e *CounterEngine) Remaining(workspaceID string, day time.Time, hour int) (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	slot, ok := e.slots[slotKey{workspaceID: workspaceID, date: day.Format("2006-01-02"), hour: hour}]
	if !ok {
		return 0, false
	}
	return slot.Remaining, true
}

// coveredSlots expands [start, end) onto the hourly grid, truncating
// start down and rounding end up to whole hours.
func coveredSlots(workspaceID string, start, end time.Time) []slotKey {
	if !end.After(start) {
		return nil
	}

	var keys []slotKey
	cursor := start.Truncate(time.Hour)
	for cursor.Before(end) {
		keys = append(keys, slotKey{
			workspaceID: workspaceID,
			date:        cursor.Format("2006-01-02"),
			hour:        cursor.Hour(),
		})
		cursor = cursor.Add(time.Hour)
	}
	return keys
}
