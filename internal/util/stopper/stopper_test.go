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

package stopper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrom(t *testing.T) {
	a := assert.New(t)

	a.Nil(From(context.Background()))

	s := WithContext(context.Background())
	defer s.Stop(0)
	a.Same(s, From(s))

	mid := context.WithValue(s, struct{}{}, "x")
	a.Same(s, From(mid))
}

func TestCancelOuter(t *testing.T) {
	a := assert.New(t)

	top, cancelTop := context.WithCancel(context.Background())
	s := WithContext(top)

	s.Go(func() error { <-s.Done(); return nil })

	cancelTop()
	select {
	case <-s.Stopping():
	// Verify that canceling the top-level also closes the Stopping channel.
	case <-time.After(time.Second):
		a.Fail("timed out waiting for Stopping to close")
	}
	a.True(s.IsStopping())
	a.ErrorIs(s.Err(), context.Canceled)
	a.Nil(s.Wait())
}

func TestCallbackErrorStops(t *testing.T) {
	a := assert.New(t)

	s := WithContext(context.Background())
	err := errors.New("BOOM")
	s.Go(func() error { return err })
	a.ErrorIs(s.Wait(), err)
}

func TestStopWaitsForWork(t *testing.T) {
	a := assert.New(t)

	s := WithContext(context.Background())
	waitFor := make(chan struct{})
	a.True(s.Go(func() error { <-waitFor; return nil }))

	s.Stop(0)
	select {
	case <-s.Stopping():
	// OK
	case <-time.After(time.Second):
		a.Fail("call to stop did not close Stopping")
	}

	// The context should not cancel until the work is done.
	a.Nil(s.Err())

	close(waitFor)
	select {
	case <-s.Done():
	// OK
	case <-time.After(time.Second):
		a.Fail("timeout waiting for context to finish")
	}

	// New work is refused once stopping.
	a.False(s.Go(func() error { return nil }))
	a.Nil(s.Wait())
}

func TestDeferRunsAfterWork(t *testing.T) {
	a := assert.New(t)

	s := WithContext(context.Background())
	order := make(chan int, 2)
	s.Defer(func() { order <- 1 })
	s.Defer(func() { order <- 2 })

	s.Stop(0)
	<-s.Done()

	// Reverse registration order.
	a.Equal(2, <-order)
	a.Equal(1, <-order)
}

func TestGracePeriod(t *testing.T) {
	a := assert.New(t)

	s := WithContext(context.Background())
	hung := make(chan struct{})
	s.Go(func() error {
		defer close(hung)
		<-s.Done()
		return nil
	})

	s.Stop(time.Millisecond)
	select {
	case <-s.Done():
	// OK
	case <-time.After(time.Second):
		a.Fail("grace period did not cancel the context")
	}
	a.ErrorIs(context.Cause(s), ErrGracePeriodExpired)
	<-hung
}
