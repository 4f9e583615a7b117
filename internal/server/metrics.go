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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	asyncErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "http_async_errors_total",
		Help: "the number of errors raised by an already-ready listener",
	})
	listenerUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "listener_up",
		Help: "set to 1 while the bound listener is serving",
	})
	reconcileErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "socket_reconcile_errors_total",
		Help: "the number of stale socket files that could not be removed",
	})
	startupErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "listener_startup_errors_total",
		Help: "the number of listen attempts that failed before becoming ready",
	})
)
