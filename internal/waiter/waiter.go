// Package waiter implements the Condition Waiter (spec.md §4.7): polled
// evaluation of property predicates, existence/freed checks, and
// one-shot signal waits under a deadline measured on the engine clock.
package waiter

import (
	"context"

	"github.com/dev-bridge/engine-runtime-bridge/internal/apperr"
	"github.com/dev-bridge/engine-runtime-bridge/internal/engine"
	"github.com/dev-bridge/engine-runtime-bridge/internal/serialize"
)

// Condition enumerates spec.md §4.7's condition kinds.
type Condition string

const (
	ConditionNodeExists      Condition = "node_exists"
	ConditionNodeFreed       Condition = "node_freed"
	ConditionPropertyEquals  Condition = "property_equals"
	ConditionPropertyGreater Condition = "property_greater"
	ConditionPropertyLess    Condition = "property_less"
	ConditionSignal          Condition = "signal"
)

// Request mirrors wait_for's input parameters (spec.md §6 POST /wait_for).
type Request struct {
	Condition    Condition
	Resolve      func() engine.Node // resolves ref/path to a node each poll; nil result means unresolved
	Property     string
	Value        any
	Signal       string
	Timeout      float64
	PollInterval float64
}

// Result is wait_for's return shape (spec.md §4.7).
type Result struct {
	ConditionMet bool
	Elapsed      float64
}

const (
	defaultTimeout      = 10.0
	defaultPollInterval = 0.1
	signalPollInterval  = 0.05
)

// Waiter runs condition evaluation against an engine.Clock so elapsed
// time and poll cadence respect pause and time_scale (spec.md §4.7,
// §5 "Pause behavior").
type Waiter struct {
	clock engine.Clock
}

func New(clock engine.Clock) *Waiter {
	return &Waiter{clock: clock}
}

// Wait runs wait_for to completion (spec.md §4.7 Algorithm). ctx bounds
// only the goroutine's lifetime (e.g. connection teardown); the
// engine-clock deadline is the primary bound.
func (w *Waiter) Wait(ctx context.Context, req Request) (Result, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	interval := req.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	switch req.Condition {
	case ConditionNodeExists:
		return w.pollUntil(ctx, interval, timeout, func() bool {
			return req.Resolve() != nil
		})
	case ConditionNodeFreed:
		return w.pollUntil(ctx, interval, timeout, func() bool {
			n := req.Resolve()
			return n == nil || !n.IsInTree()
		})
	case ConditionPropertyEquals:
		return w.pollUntil(ctx, interval, timeout, func() bool {
			v, ok := w.readProperty(req)
			return ok && equalSerialized(v, req.Value)
		})
	case ConditionPropertyGreater:
		return w.pollUntil(ctx, interval, timeout, func() bool {
			v, ok := w.readProperty(req)
			a, aok := asFloat(v)
			b, bok := asFloat(req.Value)
			return ok && aok && bok && a > b
		})
	case ConditionPropertyLess:
		return w.pollUntil(ctx, interval, timeout, func() bool {
			v, ok := w.readProperty(req)
			a, aok := asFloat(v)
			b, bok := asFloat(req.Value)
			return ok && aok && bok && a < b
		})
	case ConditionSignal:
		return w.waitSignal(ctx, req, timeout)
	default:
		return Result{}, apperr.ParamInvalid("condition")
	}
}

func (w *Waiter) readProperty(req Request) (any, bool) {
	n := req.Resolve()
	if n == nil {
		return nil, false
	}
	v, ok := n.Property(req.Property)
	if !ok {
		return nil, false
	}
	return serialize.Serialize(v), true
}

// pollUntil polls pred every interval engine-clock seconds until it's
// true or the engine-clock elapsed time reaches timeout (spec.md §4.7).
func (w *Waiter) pollUntil(ctx context.Context, interval, timeout float64, pred func() bool) (Result, error) {
	start := w.clock.Now()
	if pred() {
		return Result{ConditionMet: true, Elapsed: w.clock.Now() - start}, nil
	}
	for {
		select {
		case <-w.clock.AfterSeconds(ctx, interval):
		case <-ctx.Done():
			return Result{ConditionMet: false, Elapsed: w.clock.Now() - start}, nil
		}
		elapsed := w.clock.Now() - start
		if pred() {
			return Result{ConditionMet: true, Elapsed: elapsed}, nil
		}
		if elapsed >= timeout {
			return Result{ConditionMet: false, Elapsed: elapsed}, nil
		}
	}
}

// waitSignal installs a one-shot callback on the target node's signal,
// then polls at signalPollInterval granularity; on timeout it explicitly
// disconnects if still connected (spec.md §4.7, §9 open question).
func (w *Waiter) waitSignal(ctx context.Context, req Request, timeout float64) (Result, error) {
	n := req.Resolve()
	if n == nil {
		return Result{}, apperr.TargetMissing("wait_for signal target does not resolve")
	}

	start := w.clock.Now()
	fired := make(chan struct{})
	var once bool
	sub, err := n.Connect(req.Signal, func(args []any) {
		if !once {
			once = true
			close(fired)
		}
	})
	if err != nil {
		return Result{}, apperr.CapabilityMissing("node has no signal " + req.Signal)
	}
	connected := true
	defer func() {
		if connected {
			n.Disconnect(req.Signal, sub)
		}
	}()

	for {
		select {
		case <-fired:
			return Result{ConditionMet: true, Elapsed: w.clock.Now() - start}, nil
		case <-w.clock.AfterSeconds(ctx, signalPollInterval):
			elapsed := w.clock.Now() - start
			select {
			case <-fired:
				return Result{ConditionMet: true, Elapsed: elapsed}, nil
			default:
			}
			if elapsed >= timeout {
				n.Disconnect(req.Signal, sub)
				connected = false
				return Result{ConditionMet: false, Elapsed: elapsed}, nil
			}
		case <-ctx.Done():
			return Result{ConditionMet: false, Elapsed: w.clock.Now() - start}, nil
		}
	}
}

func equalSerialized(a, b any) bool {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		return af == bf
	}
	return a == b
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}
