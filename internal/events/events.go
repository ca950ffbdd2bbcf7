// Package events implements the Event Accumulator (spec.md §4.6):
// auto-subscription to a fixed set of engine signal capabilities,
// a bounded FIFO event buffer with monotonic IDs, property watches, and
// scene-change detection.
package events

import (
	"context"
	"strings"
	"sync"

	"github.com/dev-bridge/engine-runtime-bridge/internal/engine"
	"github.com/dev-bridge/engine-runtime-bridge/internal/serialize"
	"github.com/dev-bridge/engine-runtime-bridge/internal/types"
)

// autoSignals is the fixed set of (class, signal) auto-subscription
// capabilities spec.md §4.6 lists. Class names approximate the engine's
// own hierarchy; a node matches by exact ClassName().
var autoSignals = map[string][]string{
	"Area2D": {"area_entered", "area_exited", "body_entered", "body_exited"},
	"Area3D": {"area_entered", "area_exited", "body_entered", "body_exited"},

	"AnimationPlayer":  {"animation_finished"},
	"AnimatedSprite2D": {"animation_finished"},
	"AnimatedSprite3D": {"animation_finished"},
	"AnimationTree":    {"animation_finished"},

	"VisibleOnScreenNotifier2D": {"screen_entered", "screen_exited"},
	"VisibleOnScreenNotifier3D": {"screen_entered", "screen_exited"},

	"Timer":  {"timeout"},
	"Button": {"pressed"},

	"AudioStreamPlayer":   {"finished"},
	"AudioStreamPlayer2D": {"finished"},
	"AudioStreamPlayer3D": {"finished"},

	"RigidBody2D": {"sleeping_state_changed"},
	"RigidBody3D": {"sleeping_state_changed"},

	"NavigationAgent2D": {"target_reached", "navigation_finished"},
	"NavigationAgent3D": {"target_reached", "navigation_finished"},
}

func skip(n engine.Node) bool {
	return strings.HasPrefix(n.Name(), "@") || n.ClassName() == "BridgeHTTPServer"
}

type subKey struct {
	instanceID int64
	signal     string
}

type subEntry struct {
	node engine.Node
	sub  engine.SubscriptionID
}

// Accumulator owns the buffer, watches, and signal subscription set. It
// is module-scoped state with process lifetime = bridge lifetime
// (spec.md §5).
type Accumulator struct {
	mu sync.Mutex

	tree  engine.SceneTree
	clock engine.Clock
	cap   int

	enabled bool
	baseline string

	nextID uint64
	buffer []types.Event

	subs map[subKey]subEntry

	watches []types.Watch

	lifecycleAdded   engine.SubscriptionID
	lifecycleRemoved engine.SubscriptionID
}

func New(tree engine.SceneTree, clock engine.Clock, bufferCap int) *Accumulator {
	return &Accumulator{
		tree:  tree,
		clock: clock,
		cap:   bufferCap,
		subs:  make(map[subKey]subEntry),
	}
}

// Start scans the current scene tree, subscribes to every matching
// node's auto-signal capabilities, and records a scene-path baseline
// (spec.md §4.6).
func (a *Accumulator) Start() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.enabled {
		return
	}
	a.enabled = true
	a.baseline = a.tree.ScenePath()
	a.subscribeTree(a.tree.Root())
	a.lifecycleAdded = a.tree.OnNodeAdded(a.onNodeAdded)
	a.lifecycleRemoved = a.tree.OnNodeRemoved(a.onNodeRemoved)
}

// Stop disconnects every signal subscription and the lifecycle hooks.
// The accumulator must be stopped before it is destroyed (spec.md §4.6).
func (a *Accumulator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.enabled {
		return
	}
	a.disconnectAllLocked()
	a.tree.Disconnect(a.lifecycleAdded)
	a.tree.Disconnect(a.lifecycleRemoved)
	a.enabled = false
}

func (a *Accumulator) disconnectAllLocked() {
	for key, entry := range a.subs {
		entry.node.Disconnect(key.signal, entry.sub)
	}
	a.subs = make(map[subKey]subEntry)
}

func (a *Accumulator) subscribeTree(n engine.Node) {
	if n == nil || skip(n) {
		return
	}
	a.subscribeNode(n)
	for _, c := range n.Children() {
		a.subscribeTree(c)
	}
}

func (a *Accumulator) subscribeNode(n engine.Node) {
	signals, ok := autoSignals[n.ClassName()]
	if !ok {
		return
	}
	for _, sig := range signals {
		key := subKey{instanceID: n.InstanceID(), signal: sig}
		if _, exists := a.subs[key]; exists {
			continue
		}
		sub, err := n.Connect(sig, a.makeHandler(n, sig))
		if err != nil {
			continue
		}
		a.subs[key] = subEntry{node: n, sub: sub}
	}
}

func (a *Accumulator) makeHandler(n engine.Node, signal string) func(args []any) {
	return func(args []any) {
		a.mu.Lock()
		defer a.mu.Unlock()
		detail := map[string]any{"signal": signal}
		if len(args) >= 1 {
			if argNode, ok := args[0].(engine.Node); ok {
				detail["path"] = argNode.Path()
			}
		}
		a.emitLocked(types.EventSignal, n.Path(), detail)
	}
}

// onNodeAdded auto-subscribes the new node deferred to the next frame so
// it is fully installed (spec.md §4.6).
func (a *Accumulator) onNodeAdded(n engine.Node) {
	if skip(n) {
		return
	}
	go func() {
		<-a.clock.AfterFrames(context.Background(), 1)
		a.mu.Lock()
		a.subscribeNode(n)
		a.emitLocked(types.EventNodeAdded, n.Path(), map[string]any{"class": n.ClassName()})
		a.mu.Unlock()
	}()
}

// onNodeRemoved purges the node's tracking entry and emits node_removed
// (spec.md §4.6).
func (a *Accumulator) onNodeRemoved(n engine.Node) {
	if skip(n) {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for key, entry := range a.subs {
		if key.instanceID == n.InstanceID() {
			entry.node.Disconnect(key.signal, entry.sub)
			delete(a.subs, key)
		}
	}
	a.emitLocked(types.EventNodeRemoved, n.Path(), map[string]any{"class": n.ClassName()})
}

func (a *Accumulator) emitLocked(t types.EventType, source string, detail map[string]any) {
	a.nextID++
	ev := types.Event{
		ID:     a.nextID,
		Type:   t,
		Time:   a.clock.Now(),
		Frame:  a.clock.Frame(),
		Source: source,
		Detail: detail,
	}
	a.buffer = append(a.buffer, ev)
	if len(a.buffer) > a.cap {
		a.buffer = a.buffer[len(a.buffer)-a.cap:]
	}
}

// Poll iterates watches emitting property_changed on difference, and
// detects scene changes, rebuilding the subscription set and baseline on
// one (spec.md §4.6).
func (a *Accumulator) Poll() {
	a.mu.Lock()
	defer a.mu.Unlock()

	current := a.tree.ScenePath()
	if a.enabled && current != a.baseline {
		a.disconnectAllLocked()
		a.baseline = current
		a.emitLocked(types.EventSceneChanged, "", map[string]any{"scene_path": current})
		a.subscribeTree(a.tree.Root())
	}

	for i := range a.watches {
		w := &a.watches[i]
		n := a.tree.Resolve(a.tree.Root(), w.NodePath)
		if n == nil {
			continue
		}
		v, ok := n.Property(w.Property)
		if !ok {
			continue
		}
		serialized := serialize.Serialize(v)
		if !equalJSON(serialized, w.LastValue) {
			a.emitLocked(types.EventPropertyChanged, w.NodePath, map[string]any{
				"label":     w.Label,
				"old_value": w.LastValue,
				"new_value": serialized,
			})
			w.LastValue = serialized
		}
	}
}

// AddWatch records a new watch, seeding last_value from the node's
// current value so the first Poll doesn't emit a spurious change
// (spec.md §4.6 add_watch).
func (a *Accumulator) AddWatch(path, property, label string) types.Watch {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, w := range a.watches {
		if w.NodePath == path && w.Property == property {
			a.watches[i].Label = label
			return a.watches[i]
		}
	}
	w := types.Watch{NodePath: path, Property: property, Label: label}
	if n := a.tree.Resolve(a.tree.Root(), path); n != nil {
		if v, ok := n.Property(property); ok {
			w.LastValue = serialize.Serialize(v)
		}
	}
	a.watches = append(a.watches, w)
	return w
}

func (a *Accumulator) RemoveWatch(path, property string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, w := range a.watches {
		if w.NodePath == path && w.Property == property {
			a.watches = append(a.watches[:i], a.watches[i+1:]...)
			return true
		}
	}
	return false
}

func (a *Accumulator) GetWatches() []types.Watch {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]types.Watch, len(a.watches))
	copy(out, a.watches)
	return out
}

// Drain returns and clears the buffer (spec.md §4.6).
func (a *Accumulator) Drain() []types.Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := a.buffer
	a.buffer = nil
	return out
}

func (a *Accumulator) Peek() []types.Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]types.Event, len(a.buffer))
	copy(out, a.buffer)
	return out
}

func (a *Accumulator) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.buffer)
}

func (a *Accumulator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.buffer = nil
}

// equalJSON compares two already-serialized values for equality,
// matching spec.md §3's "last_value stores the serialized form so
// equality is well-defined across JSON round-trips." Slices/maps compare
// by recursively-equal structure rather than identity.
func equalJSON(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			if !equalJSON(v, bv[k]) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !equalJSON(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
