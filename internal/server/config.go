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
	"bytes"
	"io"
	"net"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config contains the user-visible configuration for binding the
// server's listener.
type Config struct {
	BindAddr           string `yaml:"bindAddr"`
	SocketPath         string `yaml:"socketPath"`
	GenerateSelfSigned bool   `yaml:"tlsSelfSigned"`
	TLSCertFile        string `yaml:"tlsCertificate"`
	TLSPrivateKey      string `yaml:"tlsPrivateKey"`
	TLSPassphrase      string `yaml:"tlsPassphrase"`
}

// Bind registers flags.
func (c *Config) Bind(flags *pflag.FlagSet) {
	flags.StringVar(
		&c.BindAddr,
		"bindAddr",
		":8080",
		"the network address to bind to")
	flags.StringVar(
		&c.SocketPath,
		"socketPath",
		"",
		"listen on a Unix domain socket at this path instead of a TCP port")
	flags.BoolVar(
		&c.GenerateSelfSigned,
		"tlsSelfSigned",
		false,
		"if true, generate a self-signed TLS certificate valid for 'localhost'")
	flags.StringVar(
		&c.TLSCertFile,
		"tlsCertificate",
		"",
		"a path to a PEM-encoded TLS certificate chain")
	flags.StringVar(
		&c.TLSPrivateKey,
		"tlsPrivateKey",
		"",
		"a path to a PEM-encoded TLS private key")
	flags.StringVar(
		&c.TLSPassphrase,
		"tlsPassphrase",
		"",
		"the passphrase for an encrypted TLS private key")
}

// LoadFile replaces the configuration with the contents of a YAML
// file. Unknown keys are rejected.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "could not read config file %q", path)
	}
	next := Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&next); err != nil && !errors.Is(err, io.EOF) {
		return errors.Wrapf(err, "could not parse config file %q", path)
	}
	*c = next
	return nil
}

// Preflight validates the configuration.
func (c *Config) Preflight() error {
	if c.BindAddr == "" && c.SocketPath == "" {
		return errors.New("one of bindAddr or socketPath must be set")
	}
	if c.BindAddr != "" && c.SocketPath != "" {
		return errors.New("bindAddr and socketPath are mutually exclusive")
	}
	if (c.TLSCertFile == "") != (c.TLSPrivateKey == "") {
		return errors.New("either both of tlsCertificate and tlsPrivateKey must be set, or none")
	}
	if c.GenerateSelfSigned && c.TLSCertFile != "" {
		return errors.New("self-signed certificate requested, but also specified a TLS certificate")
	}
	if c.BindAddr != "" {
		if _, err := c.Target(); err != nil {
			return err
		}
	}
	return nil
}

// Target returns the endpoint to bind, as configured.
func (c *Config) Target() (Target, error) {
	if c.SocketPath != "" {
		return SocketTarget(c.SocketPath), nil
	}
	host, portStr, err := net.SplitHostPort(c.BindAddr)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid bindAddr %q", c.BindAddr)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid port in bindAddr %q", c.BindAddr)
	}
	if port < 0 {
		return nil, errors.Errorf("port in bindAddr %q must be non-negative", c.BindAddr)
	}
	return &TCPTarget{Host: host, Port: port}, nil
}

// Material loads the TLS material named by the configuration. It
// returns nil when the server should speak plaintext. The certificate
// and key are handed onward as opaque byte blobs; this is the only
// place that touches the files.
func (c *Config) Material() (*TLSMaterial, error) {
	if c.GenerateSelfSigned {
		return SelfSignedMaterial()
	}
	if c.TLSCertFile == "" {
		return nil, nil
	}
	cert, err := os.ReadFile(c.TLSCertFile)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read TLS certificate")
	}
	key, err := os.ReadFile(c.TLSPrivateKey)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read TLS private key")
	}
	return &TLSMaterial{
		CertPEM:    cert,
		KeyPEM:     key,
		Passphrase: c.TLSPassphrase,
	}, nil
}
