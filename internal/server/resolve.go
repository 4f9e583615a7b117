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
	"strings"

	"github.com/pkg/errors"
)

// ErrNoAddress is returned when resolution is attempted against a
// listener that exposes no usable address.
var ErrNoAddress = errors.New("server has no address")

// ResolveAddr renders the bound endpoint of a listener as a URI. The
// host text is kept exactly as the operating system reported it,
// including any-interface forms; a reported value that already carries
// a scheme passes through unchanged. The result is a pure function of
// the listener's state at call time.
func ResolveAddr(l net.Listener) (string, error) {
	if l == nil {
		return "", ErrNoAddress
	}
	addr := l.Addr()
	if addr == nil {
		return "", ErrNoAddress
	}
	text := addr.String()
	if text == "" {
		return "", ErrNoAddress
	}
	if strings.Contains(text, "://") {
		return text, nil
	}
	return "http://" + text, nil
}
