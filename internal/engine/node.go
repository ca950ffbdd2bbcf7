// Package engine defines the thin contract the bridge consumes from the
// running engine process. The bridge never implements the engine itself —
// this package only states the capabilities spec.md §1 says we consume:
// a scene tree of capability-bearing nodes, a frame/timer clock, and nothing
// else. A real integration satisfies these interfaces against the actual
// engine; internal/engine/fake.go gives the test suite an in-memory scene
// graph that does the same.
package engine

import "context"

// SubscriptionID identifies one signal connection made through Connect.
type SubscriptionID uint64

// SignalInfo describes one signal a node exposes, mirroring spec.md §3's
// node capability surface ("signal list").
type SignalInfo struct {
	Name        string
	ArgCount    int
	ConnCount   int // number of live connections; Node.Signals() only reports signals with >=1
}

// Node is the capability-bearing opaque the bridge references by instance ID
// and scene path (spec.md §3). The bridge never owns a Node; every Node it
// holds must be re-validated against IsInTree before use (spec.md §3
// invariants, design notes "Refs as weak identities").
type Node interface {
	InstanceID() int64
	ClassName() string
	Name() string
	// Path returns the node's path relative to the current scene root.
	Path() string
	Parent() Node
	Children() []Node
	// Groups returns non-internal group names (no "_"-prefixed entries).
	Groups() []string
	// IsInTree reports whether the node is still live and attached.
	IsInTree() bool

	// Property reads a named property (script-exported or built-in).
	Property(name string) (any, bool)
	// SetProperty writes a named property, type-coercing from the
	// deserialized JSON value per spec.md §6.
	SetProperty(name string, value any) error
	// ScriptProperties returns storage-flagged (exported/persistent)
	// script-declared properties only — spec.md §4.2 "properties includes
	// only script-declared, storage-flagged properties".
	ScriptProperties() map[string]any
	// CallMethod invokes a method by name with positional arguments.
	CallMethod(name string, args []any) (any, error)
	// Signals lists signals with at least one live connection (spec.md §4.3
	// "signals (only those with at least one connection)").
	Signals() []SignalInfo
	// Connect installs handler on the named signal, returning a handle for
	// Disconnect. handler receives at most SignalInfo.ArgCount arguments;
	// excess engine-side parameters are dropped by the implementation
	// (spec.md §4.6 "excess parameters are dropped").
	Connect(signal string, handler func(args []any)) (SubscriptionID, error)
	Disconnect(signal string, sub SubscriptionID)
}

// SceneTree is the thin slice of the engine's tree API the bridge needs:
// a root to walk, a way to resolve a path, and lifecycle notifications for
// the event accumulator (spec.md §4.6).
type SceneTree interface {
	Root() Node
	// Resolve finds a node by scene-relative path from the given root, or
	// nil if none exists.
	Resolve(root Node, path string) Node
	// ScenePath is the currently loaded scene's file path (spec.md §3
	// Snapshot.scene file path; used by the Event Accumulator's
	// scene-change detection, spec.md §4.6).
	ScenePath() string
	// SceneName is the loaded scene's display name.
	SceneName() string
	// OnNodeAdded/OnNodeRemoved mirror the engine's own tree signals.
	OnNodeAdded(handler func(n Node)) SubscriptionID
	OnNodeRemoved(handler func(n Node)) SubscriptionID
	Disconnect(sub SubscriptionID)
}

// Clock is the engine's frame/time source. All cooperative suspension in
// this bridge (spec.md §5) happens only through Clock — frame ticks or
// engine-clock timers — never through a wall-clock sleep, so that pause and
// time_scale apply uniformly (spec.md §4.4, §4.7, §5 "Pause behavior").
type Clock interface {
	// Frame is the current engine frame number.
	Frame() uint64
	// Now is the engine clock's elapsed seconds, advancing at TimeScale and
	// frozen while Paused.
	Now() float64
	Paused() bool
	TimeScale() float64
	// Viewport reports the current viewport size and mouse position, used
	// by the Snapshot Engine (spec.md §3 Snapshot fields).
	Viewport() (width, height int)
	MousePosition() (x, y float64)
	FPS() float64

	// AfterFrames returns a channel closed once N engine frames have
	// elapsed from now. N==0 closes after the next single tick.
	AfterFrames(ctx context.Context, n int) <-chan struct{}
	// AfterSeconds returns a channel closed once d engine-clock seconds
	// have elapsed, respecting Paused and TimeScale.
	AfterSeconds(ctx context.Context, d float64) <-chan struct{}
}
