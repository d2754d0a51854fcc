// Copyright 2026 The Devicelink Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"log/slog"
	"sync"
)

// Subscription is the handle returned by Subscribe, OnError, and
// OnReconnect. Cancel removes the callback; it is safe to call more
// than once. Function values are not comparable in Go, so
// unsubscription is handle-based rather than callback-identity based.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Cancel removes the subscription's callback from its registry.
func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

// callbackSet is a registry of callbacks dispatched synchronously and
// in no particular order. A panicking callback is recovered and logged
// so one faulty subscriber cannot break delivery to the rest.
type callbackSet[T any] struct {
	mu        sync.RWMutex
	nextID    uint64
	callbacks map[uint64]func(T)
}

func newCallbackSet[T any]() *callbackSet[T] {
	return &callbackSet[T]{callbacks: make(map[uint64]func(T))}
}

func (s *callbackSet[T]) add(fn func(T)) *Subscription {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.callbacks[id] = fn
	s.mu.Unlock()

	return &Subscription{cancel: func() {
		s.mu.Lock()
		delete(s.callbacks, id)
		s.mu.Unlock()
	}}
}

func (s *callbackSet[T]) dispatch(value T, logger *slog.Logger) {
	s.mu.RLock()
	callbacks := make([]func(T), 0, len(s.callbacks))
	for _, fn := range s.callbacks {
		callbacks = append(callbacks, fn)
	}
	s.mu.RUnlock()

	for _, fn := range callbacks {
		invoke(fn, value, logger)
	}
}

func (s *callbackSet[T]) size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.callbacks)
}

// invoke runs one callback, recovering a panic so delivery continues.
func invoke[T any](fn func(T), value T, logger *slog.Logger) {
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Warn("subscriber callback panicked", "panic", recovered)
		}
	}()
	fn(value)
}

// broadcastRouter maps message kinds to subscriber sets for
// unsolicited messages.
type broadcastRouter struct {
	mu    sync.Mutex
	kinds map[Kind]*callbackSet[Broadcast]
}

func newBroadcastRouter() *broadcastRouter {
	return &broadcastRouter{kinds: make(map[Kind]*callbackSet[Broadcast])}
}

func (r *broadcastRouter) subscribe(kind Kind, fn func(Broadcast)) *Subscription {
	r.mu.Lock()
	set, ok := r.kinds[kind]
	if !ok {
		set = newCallbackSet[Broadcast]()
		r.kinds[kind] = set
	}
	r.mu.Unlock()
	return set.add(fn)
}

func (r *broadcastRouter) dispatch(message Broadcast, logger *slog.Logger) {
	r.mu.Lock()
	set := r.kinds[message.Kind]
	r.mu.Unlock()
	if set == nil {
		return
	}
	set.dispatch(message, logger)
}
