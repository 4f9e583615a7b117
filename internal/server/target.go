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

// Package server builds and binds the network listener that a server
// process exposes to clients: a TCP port or a Unix domain socket,
// optionally terminating TLS.
package server

import (
	"net"
	"strconv"
)

// A Target identifies the endpoint to bind. Exactly one concrete
// variant is active per bootstrap attempt.
type Target interface {
	// Network returns the network name understood by [net.Listen].
	Network() string
	// Address returns the listen address for the Network.
	Address() string
}

// TCPTarget binds a TCP port. A zero Port requests an OS-assigned
// ephemeral port; an empty Host binds all interfaces.
type TCPTarget struct {
	Host string
	Port int
}

var _ Target = (*TCPTarget)(nil)

// Network implements [Target].
func (t *TCPTarget) Network() string { return "tcp" }

// Address implements [Target].
func (t *TCPTarget) Address() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// SocketTarget binds a Unix domain socket at a filesystem path.
type SocketTarget string

var _ Target = SocketTarget("")

// Network implements [Target].
func (t SocketTarget) Network() string { return "unix" }

// Address implements [Target].
func (t SocketTarget) Address() string { return string(t) }
