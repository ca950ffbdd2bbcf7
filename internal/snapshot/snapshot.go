// Package snapshot implements the Snapshot Engine (spec.md §4.2): stable
// ref assignment, bounded depth-first traversal, and ref resolution.
package snapshot

import (
	"strconv"
	"strings"

	"github.com/dev-bridge/engine-runtime-bridge/internal/engine"
	"github.com/dev-bridge/engine-runtime-bridge/internal/serialize"
	"github.com/dev-bridge/engine-runtime-bridge/internal/types"
)

// classesWithText lists node classes spec.md §4.2 always annotates with
// a text field, in addition to any node exposing a "text" property.
var classesWithText = map[string]bool{
	"Label": true, "Button": true, "LineEdit": true, "TextEdit": true, "RichTextLabel": true,
}

// classesWithSize lists layout-capable UI node classes; spec.md §4.2
// fills NodeRecord.Size only for these.
var classesWithSize = map[string]bool{
	"Control": true, "Panel": true, "Button": true, "Label": true, "LineEdit": true,
	"TextEdit": true, "ProgressBar": true, "TextureRect": true, "ColorRect": true,
}

func is2D(class string) bool {
	return strings.HasSuffix(class, "2D") || class == "Node2D" || strings.Contains(class, "2D")
}

func is3D(class string) bool {
	return strings.HasSuffix(class, "3D") || class == "Node3D" || strings.Contains(class, "3D")
}

// Engine is the stable-identity ref map and traversal driver. It owns two
// long-lived maps (instance_id -> ref, instance_id -> node), module-scoped
// state with process lifetime = bridge lifetime (spec.md §5 "Shared
// resources").
type Engine struct {
	refByID  map[int64]types.Ref
	nodeByID map[int64]engine.Node

	maxDepth     int
	maxNodeCount int
}

// New constructs a Snapshot Engine with the given default depth and
// node-count bounds (spec.md §4.2: default 12, cap >=2000).
func New(maxDepth, maxNodeCount int) *Engine {
	return &Engine{
		refByID:      make(map[int64]types.Ref),
		nodeByID:     make(map[int64]engine.Node),
		maxDepth:     maxDepth,
		maxNodeCount: maxNodeCount,
	}
}

// prune drops entries whose node is no longer valid or in-tree (spec.md
// §4.2 step 1, done at the start of every snapshot).
func (e *Engine) prune() {
	for id, n := range e.nodeByID {
		if !n.IsInTree() {
			delete(e.nodeByID, id)
			delete(e.refByID, id)
		}
	}
}

// refFor looks up or assigns a ref for n: substr(class,0,3) + instance id
// decimal (spec.md §4.2). Deterministic and collision-free because
// instance IDs are unique for the engine's lifetime.
func (e *Engine) refFor(n engine.Node) types.Ref {
	id := n.InstanceID()
	if r, ok := e.refByID[id]; ok {
		return r
	}
	class := n.ClassName()
	if len(class) > 3 {
		class = class[:3]
	}
	r := types.Ref(class + strconv.FormatInt(id, 10))
	e.refByID[id] = r
	e.nodeByID[id] = n
	return r
}

// skip reports whether n should be omitted from traversal: names starting
// with "@" (engine-internal) or the bridge's own HTTP server node
// (spec.md §4.2 skip policy).
func skip(n engine.Node) bool {
	if strings.HasPrefix(n.Name(), "@") {
		return true
	}
	if n.ClassName() == "BridgeHTTPServer" {
		return true
	}
	return false
}

// Take runs take_snapshot(root, maxDepth) (spec.md §4.2). maxDepth<=0
// uses the engine's configured default.
func (e *Engine) Take(root engine.Node, maxDepth int) *types.Snapshot {
	if maxDepth <= 0 {
		maxDepth = e.maxDepth
	}
	e.prune()

	count := 0
	truncated := false
	var walk func(n engine.Node, depth int) *types.NodeRecord
	walk = func(n engine.Node, depth int) *types.NodeRecord {
		if count >= e.maxNodeCount {
			truncated = true
			return nil
		}
		count++
		rec := e.recordFor(n)
		if depth >= maxDepth {
			return rec
		}
		for _, c := range n.Children() {
			if skip(c) {
				continue
			}
			if count >= e.maxNodeCount {
				truncated = true
				break
			}
			if cr := walk(c, depth+1); cr != nil {
				rec.Children = append(rec.Children, *cr)
			}
		}
		return rec
	}

	rootRec := walk(root, 0)

	snap := &types.Snapshot{Root: rootRec}
	if truncated {
		snap.Truncated = true
		snap.TruncatedAt = count
		snap.Note = "snapshot truncated at node-count cap; use root= to focus"
	}
	return snap
}

// recordFor builds one NodeRecord per spec.md §4.2's per-node population
// rules, not including children.
func (e *Engine) recordFor(n engine.Node) *types.NodeRecord {
	rec := &types.NodeRecord{
		Ref:   e.refFor(n),
		Name:  n.Name(),
		Class: n.ClassName(),
		Path:  n.Path(),
	}

	class := n.ClassName()
	if is3D(class) {
		rec.Position = vecOrNil(n, "position", 3)
		rec.GlobalPosition = vecOrNil(n, "global_position", 3)
		rec.Rotation = valOrNil(n, "rotation")
		rec.Scale = vecOrNil(n, "scale", 3)
	} else if is2D(class) {
		rec.Position = vecOrNil(n, "position", 2)
		rec.GlobalPosition = vecOrNil(n, "global_position", 2)
		rec.Rotation = valOrNil(n, "rotation")
		rec.Scale = vecOrNil(n, "scale", 2)
	}

	if classesWithSize[class] {
		rec.Size = vecOrNil(n, "size", 2)
	}

	if classesWithText[class] {
		rec.Text, _ = stringProp(n, "text")
	} else if _, ok := n.Property("text"); ok {
		rec.Text, _ = stringProp(n, "text")
	}

	if v, ok := n.Property("visible"); ok {
		if b, ok := v.(bool); ok {
			rec.Visible = b
		}
	} else {
		rec.Visible = true
	}

	rec.Groups = n.Groups()

	props := n.ScriptProperties()
	rec.Properties = make(map[string]any, len(props))
	for k, v := range props {
		rec.Properties[k] = serialize.Serialize(v)
	}

	return rec
}

func vecOrNil(n engine.Node, prop string, dims int) any {
	v, ok := n.Property(prop)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case serialize.Vec2:
		if dims != 2 {
			return nil
		}
		return serialize.Serialize(t)
	case serialize.Vec3:
		if dims != 3 {
			return nil
		}
		return serialize.Serialize(t)
	default:
		return nil
	}
}

func valOrNil(n engine.Node, prop string) any {
	v, ok := n.Property(prop)
	if !ok {
		return nil
	}
	return serialize.Serialize(v)
}

func stringProp(n engine.Node, prop string) (string, bool) {
	v, ok := n.Property(prop)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Resolve implements resolve(ref_or_path, scene_root) (spec.md §4.2):
// first the ref map (validating liveness, evicting stale entries),
// otherwise a node path from root, finally the scene root itself.
func (e *Engine) Resolve(tree engine.SceneTree, refOrPath string, root engine.Node) engine.Node {
	if refOrPath == "" {
		return root
	}
	if r := types.Ref(refOrPath); e.resolveRef(r) != nil {
		return e.resolveRef(r)
	}
	if n := tree.Resolve(root, refOrPath); n != nil {
		return n
	}
	return tree.Root()
}

func (e *Engine) resolveRef(r types.Ref) engine.Node {
	for id, candidate := range e.refByID {
		if candidate != r {
			continue
		}
		n, ok := e.nodeByID[id]
		if !ok || !n.IsInTree() {
			delete(e.refByID, id)
			delete(e.nodeByID, id)
			return nil
		}
		return n
	}
	return nil
}

// ResolveRef resolves a bare ref without path/root fallback, used by
// components (Input Injector, Condition Waiter) that address a node by
// ref alone and must distinguish "unresolved" from "use scene root".
func (e *Engine) ResolveRef(r types.Ref) engine.Node {
	return e.resolveRef(r)
}
