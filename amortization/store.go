/*
store.go - Persistence contract for computed schedules

PURPOSE:
  The engine never stores anything. Collaborators that do (SQLite, memory,
  Redis cache) implement Store and exchange only the data shapes defined in
  types.go.

KEY INTERFACES:
  Store:    Save, Get by ID, List all
  Resetter: Optional capability to wipe all schedules (demo scenarios)

IMPLEMENTATIONS:
  - amortization/store/memory.go: In-memory for testing
  - store/sqlite/sqlite.go: SQLite
  - store/redis/cache.go: Read-through cache around another Store

EXAMPLE:
  stored, err := st.Save(ctx, schedule)
  got, err := st.Get(ctx, stored.ID)
  if errors.Is(err, amortization.ErrScheduleNotFound) {
      // 404
  }
*/
package amortization

import (
	"context"
	"time"
)

// ScheduleID identifies a stored schedule. Entries within a schedule are
// identified by their period only.
type ScheduleID string

// StoredSchedule is a schedule plus the identity a store assigned to it.
type StoredSchedule struct {
	ID        ScheduleID `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	Schedule  Schedule   `json:"schedule"`
}

// Store persists computed schedules.
type Store interface {
	// Save assigns a new ID and creation time and persists the schedule.
	Save(ctx context.Context, s Schedule) (StoredSchedule, error)

	// Get returns the schedule with the given ID, or an error wrapping
	// ErrScheduleNotFound.
	Get(ctx context.Context, id ScheduleID) (StoredSchedule, error)

	// List returns all schedules in creation order.
	List(ctx context.Context) ([]StoredSchedule, error)
}

// Resetter is implemented by stores that can delete everything.
type Resetter interface {
	Reset(ctx context.Context) error
}

// ResetStore wipes st if it supports it.
func ResetStore(ctx context.Context, st Store) error {
	r, ok := st.(Resetter)
	if !ok {
		return ErrStoreRequired
	}
	return r.Reset(ctx)
}
