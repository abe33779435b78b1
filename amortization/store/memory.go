// Package store provides Store implementations.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/warp/amortization-engine/amortization"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	schedules []amortization.StoredSchedule
	index     map[amortization.ScheduleID]int
	now       func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		index: make(map[amortization.ScheduleID]int),
		now:   time.Now,
	}
}

// Save stores a copy of s under a fresh ID.
func (m *Memory) Save(_ context.Context, s amortization.Schedule) (amortization.StoredSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := amortization.StoredSchedule{
		ID:        amortization.ScheduleID(uuid.NewString()),
		CreatedAt: m.now().UTC(),
		Schedule:  clone(s),
	}
	m.index[stored.ID] = len(m.schedules)
	m.schedules = append(m.schedules, stored)

	return withCopiedEntries(stored), nil
}

func (m *Memory) Get(_ context.Context, id amortization.ScheduleID) (amortization.StoredSchedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.index[id]
	if !ok {
		return amortization.StoredSchedule{}, fmt.Errorf("%w: %s", amortization.ErrScheduleNotFound, id)
	}
	return withCopiedEntries(m.schedules[i]), nil
}

func (m *Memory) List(_ context.Context) ([]amortization.StoredSchedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]amortization.StoredSchedule, len(m.schedules))
	for i, s := range m.schedules {
		result[i] = withCopiedEntries(s)
	}
	return result, nil
}

// Reset drops every schedule.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.schedules = nil
	m.index = make(map[amortization.ScheduleID]int)
	return nil
}

// Callers must not be able to mutate stored entries through returned slices.
func clone(s amortization.Schedule) amortization.Schedule {
	entries := make([]amortization.Entry, len(s.Entries))
	copy(entries, s.Entries)
	s.Entries = entries
	return s
}

func withCopiedEntries(s amortization.StoredSchedule) amortization.StoredSchedule {
	s.Schedule = clone(s.Schedule)
	return s
}
