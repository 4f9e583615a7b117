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
	"io/fs"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// reconcileSocket removes a stale socket file left behind by a prior
// process instance. A missing file is the expected steady state. Any
// other failure is logged and ignored: the subsequent bind attempt is
// allowed to fail on its own terms with a more specific error.
func reconcileSocket(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		reconcileErrors.Inc()
		log.Error(err)
	}
}
