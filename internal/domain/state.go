// Package domain provides core domain implementations.
package domain

import (
	"sync"
	"time"
)

// DeviceState is what the daemon knows about the inverter after the latest poll.
type DeviceState struct {
	Snapshot                 DataSnapshot
	LastUpdate               time.Time
	LastUpdateSuccess        bool
	LastError                string
	ConsecutiveFailures      int
	ExpectedOffline          bool
	LastSuccessfulUpdate     time.Time
	LastSuccessfulConnection time.Time
	Connection               ConnectionStats
	Validation               ValidationStats
}

// StateStore holds the latest DeviceState for concurrent readers.
type StateStore struct {
	state DeviceState
	mutex sync.RWMutex
}

// NewStateStore creates an empty state store.
func NewStateStore() *StateStore {
	return &StateStore{}
}

// Update applies fn to the stored state under the write lock.
func (s *StateStore) Update(fn func(state *DeviceState)) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	fn(&s.state)
}

// Current returns a copy of the stored state.
func (s *StateStore) Current() DeviceState {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	state := s.state
	state.Snapshot = s.state.Snapshot.Clone()
	return state
}
