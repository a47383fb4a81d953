package bridge

import (
	"sync"
	"time"
)

// Health is a point-in-time view of the bridge's vital signs, safe to
// read from any goroutine.
type Health struct {
	// State is the controller state at read time.
	State State

	// Ticks counts poll cycles that captured a snapshot, including
	// ones that found no changes.
	Ticks uint64

	// SkippedCaptures counts ticks abandoned because the runtime did
	// not produce a usable snapshot.
	SkippedCaptures uint64

	// StatePublishes counts attribute values that reached the broker.
	StatePublishes uint64

	// PublishFailures counts publishes that exhausted their retries.
	PublishFailures uint64

	// Reconnects counts transport drops that sent the controller back
	// to Connecting.
	Reconnects uint64

	// Reannounces counts consumer restarts that forced discovery
	// republication.
	Reannounces uint64

	// LastTick is when the newest poll cycle finished.
	LastTick time.Time
}

// healthState accumulates counters written by the controller goroutine
// and read by anyone.
type healthState struct {
	mu sync.Mutex
	h  Health
}

func (s *healthState) snapshot() Health {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.h
}

// setState records a transition and returns the previous state.
func (s *healthState) setState(next State) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.h.State
	s.h.State = next
	return prev
}

func (s *healthState) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.h.Ticks++
	s.h.LastTick = time.Now()
}

func (s *healthState) captureSkipped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.h.SkippedCaptures++
}

func (s *healthState) statePublish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.h.StatePublishes++
}

func (s *healthState) publishFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.h.PublishFailures++
}

func (s *healthState) reconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.h.Reconnects++
}

func (s *healthState) reannounce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.h.Reannounces++
}
