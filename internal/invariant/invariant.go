// Package invariant reports states that correct callers never produce, such as
// firing a module before it was applied. Builds tagged rangedebug panic on a
// violation; other builds log at debug level and let the caller skip the work.
package invariant

import (
	"sync/atomic"

	"shootingrange/rangesim/internal/logging"
)

var violations atomic.Uint64

// Check returns ok. When ok is false the violation is counted and, depending on
// the build, either logged or turned into a panic.
func Check(ok bool, message string, fields ...logging.Field) bool {
	if ok {
		return true
	}
	violations.Add(1)
	if strict {
		panic("invariant violated: " + message)
	}
	logging.L().Debug("invariant violated", append(fields, logging.String("invariant", message))...)
	return false
}

// Violations reports how many checks failed since start.
func Violations() uint64 { return violations.Load() }
