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

// Package start contains the command to start the server.
package start

import (
	"net/http"
	"runtime/debug"

	"github.com/fieldline/serverbind/internal/server"
	"github.com/fieldline/serverbind/internal/util/stopper"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Command returns the command to start the server.
func Command() *cobra.Command {
	cfg := &server.Config{}
	var configPath string
	cmd := &cobra.Command{
		Args:  cobra.NoArgs,
		Short: "start the server",
		Use:   "start",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if configPath != "" {
				if err := cfg.LoadFile(configPath); err != nil {
					return err
				}
			}
			// Choosing a socket path supersedes the default TCP bind.
			if cfg.SocketPath != "" && !cmd.Flags().Changed("bindAddr") {
				cfg.BindAddr = ""
			}
			if err := cfg.Preflight(); err != nil {
				return err
			}

			// Print build info on startup so we always have a place
			// to start debugging from.
			if bi, ok := debug.ReadBuildInfo(); ok {
				info := make(log.Fields, len(bi.Settings))
				for _, s := range bi.Settings {
					info[s.Key] = s.Value
				}
				log.WithFields(info).Info("serverbind starting")
			}

			ctx := stopper.WithContext(cmd.Context())

			mux := http.NewServeMux()
			mux.HandleFunc("/_/healthz", func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "OK", http.StatusOK)
			})
			mux.Handle("/_/metrics", promhttp.Handler())

			if _, err := server.Bootstrap(ctx, cfg, mux); err != nil {
				ctx.Stop(0)
				return err
			}
			return ctx.Wait()
		},
	}
	cfg.Bind(cmd.Flags())
	cmd.Flags().StringVar(&configPath, "config", "",
		"replace flag-provided settings with the contents of a YAML file")
	return cmd
}
