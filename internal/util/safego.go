// Package util holds small cross-cutting helpers shared by more than one
// bridge package.
package util

import (
	"runtime/debug"

	"github.com/dev-bridge/engine-runtime-bridge/internal/bridgelog"
)

// SafeGo launches fn in a goroutine with deferred panic recovery.
// On panic: logs stack trace to stderr. Does NOT os.Exit — background
// panics should be survivable so the bridge stays up.
func SafeGo(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				bridgelog.Bridge.Errorf("PANIC in background goroutine: %v\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}
