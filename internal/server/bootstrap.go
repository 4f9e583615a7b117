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
	"net"
	"net/http"

	"github.com/fieldline/serverbind/internal/util/stopper"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// A Server is the bound listener together with the application handler
// attached to it. The caller owns the listener's lifecycle once
// Bootstrap returns; stopping the associated [stopper.Context] drains
// the serving loop gracefully.
type Server struct {
	addr     string
	handler  http.Handler
	listener net.Listener
}

// Addr returns the resolved address of the bound listener. It is
// computed once, at the moment the listener became ready.
func (s *Server) Addr() string { return s.addr }

// Handler returns the application handle attached at bootstrap.
func (s *Server) Handler() http.Handler { return s.handler }

// Listener returns the bound listener.
func (s *Server) Listener() net.Listener { return s.listener }

// Bootstrap binds the configured endpoint and attaches the
// already-constructed application handler to it. The handler is
// opaque to this package; it is not constructed or inspected here.
//
// A stale socket file at a configured socket path is removed before
// the bind. Bind failures are returned unchanged, without wrapping,
// so the caller sees the native transport error. Errors raised by the
// listener after it became ready are logged and never unsettle the
// returned result. No retries are attempted; a failed call leaves the
// caller free to invoke Bootstrap again.
func Bootstrap(ctx *stopper.Context, config *Config, app http.Handler) (*Server, error) {
	target, err := config.Target()
	if err != nil {
		return nil, err
	}
	if st, ok := target.(SocketTarget); ok {
		reconcileSocket(string(st))
	}

	material, err := config.Material()
	if err != nil {
		return nil, err
	}
	factory, err := NewListenerFactory(material)
	if err != nil {
		return nil, err
	}

	srv := &http.Server{
		Handler: h2c.NewHandler(app, &http2.Server{}),
	}

	// The outcome must exist before the listen attempt is initiated so
	// that an early error cannot fire into the void.
	out := newOutcome()
	ctx.Go(func() error {
		l, err := factory.Listen(ctx, target)
		if err != nil {
			out.fail(err)
			return nil
		}
		out.ready(l)
		listenerUp.Set(1)
		defer listenerUp.Set(0)
		// A fault in the serving loop arrives on the same path as a
		// bind failure; the outcome's guard routes it to the log.
		if err := srv.Serve(l); !errors.Is(err, http.ErrServerClosed) {
			out.fail(err)
		}
		return nil
	})

	l, err := out.await(ctx)
	if err != nil {
		return nil, err
	}
	ctx.Defer(func() { _ = l.Close() })

	addr, err := ResolveAddr(l)
	if err != nil {
		return nil, err
	}
	log.WithField("address", addr).Info("Server listening")

	ctx.Go(func() error {
		<-ctx.Stopping()
		if err := srv.Shutdown(ctx); err != nil {
			log.WithError(err).Error("did not shut down cleanly")
		} else {
			log.Info("Server shutdown complete")
		}
		return nil
	})

	return &Server{addr: addr, handler: app, listener: l}, nil
}
