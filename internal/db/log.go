// Copyright (c) 2026 Guardian Team
// Guardian - Steam Guard vault and confirmation engine
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"fmt"
	"sync/atomic"

	"github.com/toeirei/guardian/internal/logging"
)

var verbose atomic.Bool

// SetDebug turns connection and maintenance tracing on or off. The CLI
// enables it with --verbose.
func SetDebug(enabled bool) { verbose.Store(enabled) }

func dbLogf(format string, v ...any) {
	if !verbose.Load() {
		return
	}
	logging.With("component", "db").Debug(fmt.Sprintf(format, v...))
}
