// Package state implements the State Reader (spec.md §4.3) as a registry
// of typed reader modules, the way the teacher's capture/interfaces.go
// dispatches SchemaStore/CSPGenerator/ClientRegistry by capability
// (spec.md §9 names it directly: "registry of typed reader modules, each
// responsible for one capability family and each declaring its
// applicability predicate").
package state

import (
	"github.com/dev-bridge/engine-runtime-bridge/internal/engine"
	"github.com/dev-bridge/engine-runtime-bridge/internal/serialize"
)

// Reader is one capability family: Applies reports whether it has
// anything to contribute for n, and Read adds its fields into out. The
// set is small, closed, and iteration order doesn't matter: where two
// readers write the same key (global_position, visible_in_tree,
// one_shot, text) both copy the same property value (spec.md §9).
type Reader interface {
	Applies(n engine.Node) bool
	Read(n engine.Node, out map[string]any)
}

// Registry is the closed, ordered set of capability readers plus the
// trailing additions every node gets regardless of capability.
type Registry struct {
	readers []Reader
}

// Default builds the registry for the capability taxonomy spec.md §4.3
// lists. Order doesn't affect correctness (shared keys carry the same
// value whichever reader writes them last) but is
// kept stable for readability and deterministic test fixtures.
func Default() *Registry {
	return &Registry{readers: []Reader{
		transformReader{},
		uiLayoutReader{},
		canvasItemReader{},
		kinematicBodyReader{},
		rigidBodyReader{},
		animationPlayerReader{},
		animatedSpriteReader{},
		areaReader{},
		timerReader{},
		audioPlayerReader{},
		particleEmitterReader{},
		camera2DReader{},
		camera3DReader{},
		navAgentReader{},
		raycastReader{},
		tileMapLayerReader{},
		progressReader{},
		textInputReader{},
		labelButtonReader{},
	}}
}

// Read builds read_state(node): a common preamble plus every applicable
// capability's contribution, plus the trailing additions (spec.md §4.3).
func (r *Registry) Read(n engine.Node) map[string]any {
	out := map[string]any{
		"name":  n.Name(),
		"class": n.ClassName(),
		"path":  n.Path(),
	}
	for _, reader := range r.readers {
		if reader.Applies(n) {
			reader.Read(n, out)
		}
	}

	props := n.ScriptProperties()
	serialized := make(map[string]any, len(props))
	for k, v := range props {
		serialized[k] = serialize.Serialize(v)
	}
	out["properties"] = serialized
	out["groups"] = n.Groups()

	var signals []string
	for _, s := range n.Signals() {
		if s.ConnCount > 0 {
			signals = append(signals, s.Name)
		}
	}
	out["signals"] = signals

	return out
}

func prop(n engine.Node, name string) (any, bool) { return n.Property(name) }

func has(n engine.Node, name string) bool {
	_, ok := n.Property(name)
	return ok
}

func copyProp(n engine.Node, out map[string]any, name string) {
	if v, ok := prop(n, name); ok {
		out[name] = serialize.Serialize(v)
	}
}
