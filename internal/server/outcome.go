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

package server

import (
	"context"
	"net"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// An outcome is the single settlement of one listen attempt. The two
// signals that race during startup, the listener becoming ready and
// the transport reporting an error, both land here and exactly one of
// them wins. An error signal that arrives after the ready signal is an
// operational fault on a live listener rather than a startup failure:
// it is logged and the settled outcome is left untouched.
type outcome struct {
	settled chan struct{}

	mu struct {
		sync.Mutex
		resolved bool
		listener net.Listener
		err      error
	}
}

func newOutcome() *outcome {
	return &outcome{settled: make(chan struct{})}
}

// ready settles the outcome with a bound listener. It is a no-op if
// the outcome has already settled.
func (o *outcome) ready(l net.Listener) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.mu.resolved {
		return
	}
	o.mu.resolved = true
	o.mu.listener = l
	close(o.settled)
}

// fail settles the outcome with the startup error, carried unchanged.
// If the outcome is already settled, the error is instead reported as
// a post-startup fault: same signal, opposite policy.
func (o *outcome) fail(err error) {
	o.mu.Lock()
	if o.mu.resolved {
		o.mu.Unlock()
		asyncErrors.Inc()
		log.Errorf("http server error: %+v", errors.WithStack(err))
		return
	}
	o.mu.resolved = true
	o.mu.err = err
	close(o.settled)
	o.mu.Unlock()
	startupErrors.Inc()
}

// await blocks for the single settlement, or for cancellation of the
// surrounding context.
func (o *outcome) await(ctx context.Context) (net.Listener, error) {
	select {
	case <-o.settled:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.mu.listener, o.mu.err
}
