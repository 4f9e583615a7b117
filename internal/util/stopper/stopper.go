// Copyright 2026 The Serverbind Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package stopper contains a utility class for gracefully terminating
// long-running processes.
package stopper

import (
	"context"
	"errors"
	"sync"
	"time"
)

// contextKey is a [context.Context.Value] key.
type contextKey struct{}

// ErrStopped will be returned from [context.Cause] when the Context has
// been stopped.
var ErrStopped = errors.New("stopped")

// ErrGracePeriodExpired will be returned from [context.Cause] when the
// Context has been stopped, but its goroutines have not exited in time.
var ErrGracePeriodExpired = errors.New("grace period expired")

// A Context associates a [context.Context] with the goroutines whose
// lifecycles are bound to it. Calling Stop closes the Stopping channel
// to request a graceful wind-down; the underlying context is canceled
// only once every goroutine started by Go has exited (or a grace
// period has elapsed). Context implements [context.Context], so it
// fits into idiomatic context plumbing.
type Context struct {
	cancel   func(error)
	delegate context.Context
	stopping chan struct{}

	mu struct {
		sync.RWMutex
		count    int
		deferred []func()
		err      error
		stopping bool
	}
}

var _ context.Context = (*Context)(nil)

// From returns a pre-existing Context from the context chain, or nil if
// the chain is not associated with one. Use [WithContext] to construct
// a new Context.
func From(ctx context.Context) *Context {
	if s, ok := ctx.(*Context); ok {
		return s
	}
	if s := ctx.Value(contextKey{}); s != nil {
		return s.(*Context)
	}
	return nil
}

// WithContext creates a new Context whose work will be immediately
// canceled when the parent context is canceled.
func WithContext(ctx context.Context) *Context {
	ctx, cancel := context.WithCancelCause(ctx)
	s := &Context{
		cancel:   cancel,
		delegate: ctx,
		stopping: make(chan struct{}),
	}
	// A parent cancellation becomes a Stop call so that the Stopping
	// channel and deferred callbacks still fire.
	go func() {
		<-s.Done()
		s.Stop(0)
	}()
	return s
}

// Deadline implements [context.Context].
func (s *Context) Deadline() (deadline time.Time, ok bool) { return s.delegate.Deadline() }

// Done implements [context.Context]. The returned channel is closed
// once Stop has been called and all associated goroutines have exited,
// or immediately if the parent context is canceled.
func (s *Context) Done() <-chan struct{} { return s.delegate.Done() }

// Err implements [context.Context].
func (s *Context) Err() error { return s.delegate.Err() }

// Defer registers a callback to execute after the Context has stopped
// and all goroutines started by Go have exited. Callbacks run in
// reverse registration order.
func (s *Context) Defer(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mu.deferred = append(s.mu.deferred, fn)
}

// Go spawns a goroutine to execute the given function and monitors its
// lifecycle. The function is not executed, and false is returned, if
// Stop has already been called. A non-nil error from the function
// triggers Stop; the first such error is reported by Wait.
func (s *Context) Go(fn func() error) (accepted bool) {
	if !s.apply(1) {
		return false
	}
	go func() {
		defer s.apply(-1)
		if err := fn(); err != nil {
			s.mu.Lock()
			if s.mu.err == nil {
				s.mu.err = err
			}
			s.mu.Unlock()
			s.Stop(0)
		}
	}()
	return true
}

// IsStopping returns true once [Context.Stop] has been called. See also
// [Context.Stopping] for a notification-based API.
func (s *Context) IsStopping() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mu.stopping
}

// Stop begins a graceful shutdown: the Stopping channel is closed, and
// once all goroutines started by Go have exited, the Context is
// canceled. If gracePeriod is non-zero, the Context is forcefully
// canceled when goroutines outlive it.
func (s *Context) Stop(gracePeriod time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mu.stopping {
		return
	}
	s.mu.stopping = true
	close(s.stopping)

	if s.mu.count == 0 {
		s.finishLocked()
	} else if gracePeriod > 0 {
		go func() {
			select {
			case <-time.After(gracePeriod):
				s.cancel(ErrGracePeriodExpired)
			case <-s.Done():
			}
		}()
	}
}

// Stopping returns a channel that is closed when a graceful shutdown
// has been requested or when the parent context has been canceled.
func (s *Context) Stopping() <-chan struct{} {
	return s.stopping
}

// Value implements [context.Context].
func (s *Context) Value(key any) any {
	if _, ok := key.(contextKey); ok {
		return s
	}
	return s.delegate.Value(key)
}

// Wait blocks until the Context has fully stopped. It returns the
// first non-nil error from any of the callbacks passed to Go.
func (s *Context) Wait() error {
	<-s.Done()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mu.err
}

// apply maintains the count of running goroutines. It returns false,
// without applying the delta, once the Context is stopping.
func (s *Context) apply(delta int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mu.stopping && delta >= 0 {
		return false
	}
	s.mu.count += delta
	if s.mu.count < 0 {
		// Implementation error, not user problem.
		panic("over-released")
	}
	if s.mu.count == 0 && s.mu.stopping {
		s.finishLocked()
	}
	return true
}

// finishLocked schedules the deferred callbacks and the final context
// cancellation. Callers must hold mu; the callbacks themselves run
// outside the lock so they may use the Context freely.
func (s *Context) finishLocked() {
	deferred := s.mu.deferred
	s.mu.deferred = nil
	go func() {
		for i := len(deferred) - 1; i >= 0; i-- {
			deferred[i]()
		}
		s.cancel(ErrStopped)
	}()
}
