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
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"net"
	"os"

	"github.com/pkg/errors"
)

// A ListenerFactory constructs the listener for a bootstrap attempt,
// terminating TLS when material was supplied.
type ListenerFactory struct {
	tlsConfig *tls.Config
}

// NewListenerFactory returns a factory for plaintext listeners when
// material is nil, or TLS-terminating listeners otherwise. The
// certificate and key are parsed here with whatever validation the
// transport layer performs natively; nothing more.
func NewListenerFactory(material *TLSMaterial) (*ListenerFactory, error) {
	if material == nil {
		return &ListenerFactory{}, nil
	}
	keyPEM, err := decryptKey(material.KeyPEM, material.Passphrase)
	if err != nil {
		return nil, err
	}
	cert, err := tls.X509KeyPair(material.CertPEM, keyPEM)
	if err != nil {
		return nil, err
	}
	return &ListenerFactory{
		tlsConfig: &tls.Config{Certificates: []tls.Certificate{cert}},
	}, nil
}

// TLS reports whether listeners produced by this factory terminate
// TLS.
func (f *ListenerFactory) TLS() bool { return f.tlsConfig != nil }

// Listen binds the target. Bind failures are returned unchanged so
// that callers see the operating system's native error text.
func (f *ListenerFactory) Listen(ctx context.Context, target Target) (net.Listener, error) {
	l, err := (&net.ListenConfig{}).Listen(ctx, target.Network(), target.Address())
	if err != nil {
		return nil, err
	}
	if _, ok := target.(SocketTarget); ok {
		// Restrict the socket file to the owning user.
		if err := os.Chmod(target.Address(), 0o600); err != nil {
			_ = l.Close()
			return nil, err
		}
	}
	if f.tlsConfig != nil {
		l = tls.NewListener(l, f.tlsConfig)
	}
	return l, nil
}

// decryptKey removes legacy PEM encryption from a private key. Keys
// without a passphrase pass through untouched.
func decryptKey(keyPEM []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return keyPEM, nil
	}
	block, _ := pem.Decode(keyPEM)
	if block == nil {
		return nil, errors.New("no PEM data in TLS private key")
	}
	// Legacy RFC 1423 encryption is the only scheme the runtime can
	// decrypt without external dependencies.
	//nolint:staticcheck
	if !x509.IsEncryptedPEMBlock(block) {
		return keyPEM, nil
	}
	//nolint:staticcheck
	der, err := x509.DecryptPEMBlock(block, []byte(passphrase))
	if err != nil {
		return nil, errors.Wrap(err, "unable to decrypt TLS private key")
	}
	return pem.EncodeToMemory(&pem.Block{Type: block.Type, Bytes: der}), nil
}
