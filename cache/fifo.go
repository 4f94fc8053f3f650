// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package cache provides the small bounded caches the relayer uses to
// remember recently handled messages.
package cache

import (
	"sync"
)

// FIFOSet is a thread-safe set with first-in-first-out eviction. Once
// the capacity is reached, adding a new key evicts the oldest one, so
// membership means "seen recently" rather than "seen ever".
type FIFOSet[K comparable] struct {
	lk       sync.RWMutex
	members  map[K]struct{}
	queue    []K
	capacity int
}

func NewFIFOSet[K comparable](capacity int) *FIFOSet[K] {
	return &FIFOSet[K]{
		members:  make(map[K]struct{}, capacity),
		queue:    make([]K, 0, capacity),
		capacity: capacity,
	}
}

// Add inserts the key, evicting the oldest member at capacity. Adding a
// key already present does not refresh its position.
func (s *FIFOSet[K]) Add(key K) {
	s.lk.Lock()
	defer s.lk.Unlock()

	if _, ok := s.members[key]; ok {
		return
	}
	if len(s.queue) >= s.capacity {
		oldest := s.queue[0]
		s.queue = s.queue[1:]
		delete(s.members, oldest)
	}
	s.members[key] = struct{}{}
	s.queue = append(s.queue, key)
}

func (s *FIFOSet[K]) Contains(key K) bool {
	s.lk.RLock()
	defer s.lk.RUnlock()
	_, ok := s.members[key]
	return ok
}

// Remove drops the key and its queue position, so a later Add re-enters
// the key as the newest member.
func (s *FIFOSet[K]) Remove(key K) {
	s.lk.Lock()
	defer s.lk.Unlock()

	if _, ok := s.members[key]; !ok {
		return
	}
	delete(s.members, key)
	for i, queued := range s.queue {
		if queued == key {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return
		}
	}
}

func (s *FIFOSet[K]) Len() int {
	s.lk.RLock()
	defer s.lk.RUnlock()
	return len(s.members)
}
