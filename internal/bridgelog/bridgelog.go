// Package bridgelog provides the bridge's stderr logging convention: a
// fixed "[component]" prefix per subsystem, no framework, matching the
// teacher daemon's own fmt.Fprintf(os.Stderr, ...) style.
package bridgelog

import (
	"log"
	"os"
)

// Logger wraps a stdlib *log.Logger with a subsystem prefix.
type Logger struct {
	l *log.Logger
}

// New returns a Logger writing to stderr with "[component] " prefixed to
// every line, timestamped the way log.Logger does by default.
func New(component string) *Logger {
	return &Logger{l: log.New(os.Stderr, "["+component+"] ", log.LstdFlags)}
}

func (lg *Logger) Printf(format string, args ...any) { lg.l.Printf(format, args...) }
func (lg *Logger) Println(args ...any)               { lg.l.Println(args...) }

// Errorf logs a message tagged ERROR, for operationally significant
// failures (save failures, malformed payloads) the bridge survives.
func (lg *Logger) Errorf(format string, args ...any) {
	lg.l.Printf("ERROR "+format, args...)
}

var (
	Bridge     = New("bridge")
	Snapshot   = New("snapshot")
	Input      = New("input")
	Screenshot = New("screenshot")
	Events     = New("events")
	Waiter     = New("waiter")
)
