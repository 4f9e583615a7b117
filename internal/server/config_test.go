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
	"crypto/tls"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreflight(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		errMsg string
	}{
		{
			name: "tcp default",
			cfg:  Config{BindAddr: ":8080"},
		},
		{
			name: "socket path",
			cfg:  Config{SocketPath: "/tmp/api.sock"},
		},
		{
			name:   "no target",
			cfg:    Config{},
			errMsg: "one of bindAddr or socketPath must be set",
		},
		{
			name:   "both targets",
			cfg:    Config{BindAddr: ":8080", SocketPath: "/tmp/api.sock"},
			errMsg: "mutually exclusive",
		},
		{
			name:   "cert without key",
			cfg:    Config{BindAddr: ":8080", TLSCertFile: "server.crt"},
			errMsg: "either both of tlsCertificate and tlsPrivateKey must be set, or none",
		},
		{
			name:   "key without cert",
			cfg:    Config{BindAddr: ":8080", TLSPrivateKey: "server.key"},
			errMsg: "either both of tlsCertificate and tlsPrivateKey must be set, or none",
		},
		{
			name: "self-signed plus cert",
			cfg: Config{
				BindAddr:           ":8080",
				GenerateSelfSigned: true,
				TLSCertFile:        "server.crt",
				TLSPrivateKey:      "server.key",
			},
			errMsg: "self-signed certificate requested",
		},
		{
			name:   "unparseable bindAddr",
			cfg:    Config{BindAddr: "8080"},
			errMsg: "invalid bindAddr",
		},
		{
			name:   "negative port",
			cfg:    Config{BindAddr: "127.0.0.1:-1"},
			errMsg: "must be non-negative",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := assert.New(t)
			err := tt.cfg.Preflight()
			if tt.errMsg == "" {
				a.NoError(err)
			} else {
				a.ErrorContains(err, tt.errMsg)
			}
		})
	}
}

func TestTarget(t *testing.T) {
	a := assert.New(t)
	r := require.New(t)

	cfg := &Config{BindAddr: ":0"}
	target, err := cfg.Target()
	r.NoError(err)
	tcp, ok := target.(*TCPTarget)
	r.True(ok)
	a.Equal("", tcp.Host)
	a.Zero(tcp.Port)
	a.Equal("tcp", target.Network())
	a.Equal(":0", target.Address())

	cfg = &Config{BindAddr: "127.0.0.1:8080"}
	target, err = cfg.Target()
	r.NoError(err)
	a.Equal("127.0.0.1:8080", target.Address())

	// The socket path wins over any bindAddr default.
	cfg = &Config{BindAddr: ":8080", SocketPath: "/run/api.sock"}
	target, err = cfg.Target()
	r.NoError(err)
	a.Equal("unix", target.Network())
	a.Equal("/run/api.sock", target.Address())
}

func TestLoadFile(t *testing.T) {
	a := assert.New(t)
	r := require.New(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	r.NoError(os.WriteFile(path, []byte(`
socketPath: /run/api.sock
tlsCertificate: server.crt
tlsPrivateKey: server.key
tlsPassphrase: hunter2
`), 0o600))

	cfg := &Config{}
	r.NoError(cfg.LoadFile(path))
	a.Equal("/run/api.sock", cfg.SocketPath)
	a.Equal("server.crt", cfg.TLSCertFile)
	a.Equal("server.key", cfg.TLSPrivateKey)
	a.Equal("hunter2", cfg.TLSPassphrase)
	a.NoError(cfg.Preflight())

	// Unknown keys are a configuration mistake, not noise.
	r.NoError(os.WriteFile(path, []byte("bindAdr: ':8080'\n"), 0o600))
	a.ErrorContains(cfg.LoadFile(path), "could not parse config file")

	a.ErrorContains(cfg.LoadFile(filepath.Join(t.TempDir(), "absent.yaml")),
		"could not read config file")
}

func TestMaterial(t *testing.T) {
	a := assert.New(t)
	r := require.New(t)

	// Plaintext by default.
	cfg := &Config{BindAddr: ":8080"}
	material, err := cfg.Material()
	r.NoError(err)
	a.Nil(material)

	// Self-signed generation produces a usable key pair.
	cfg = &Config{BindAddr: ":8080", GenerateSelfSigned: true}
	material, err = cfg.Material()
	r.NoError(err)
	r.NotNil(material)
	_, err = tls.X509KeyPair(material.CertPEM, material.KeyPEM)
	a.NoError(err)

	// Files are read here and handed on as opaque blobs.
	dir := t.TempDir()
	certFile := filepath.Join(dir, "server.crt")
	keyFile := filepath.Join(dir, "server.key")
	r.NoError(os.WriteFile(certFile, material.CertPEM, 0o600))
	r.NoError(os.WriteFile(keyFile, material.KeyPEM, 0o600))

	cfg = &Config{BindAddr: ":8080", TLSCertFile: certFile, TLSPrivateKey: keyFile}
	loaded, err := cfg.Material()
	r.NoError(err)
	a.Equal(material.CertPEM, loaded.CertPEM)
	a.Equal(material.KeyPEM, loaded.KeyPEM)

	cfg.TLSPrivateKey = filepath.Join(dir, "absent.key")
	_, err = cfg.Material()
	a.ErrorContains(err, "unable to read TLS private key")
}
