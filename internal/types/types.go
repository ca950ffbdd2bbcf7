// Package types holds the bridge's wire-level data model (spec.md §3):
// Ref, Snapshot, Event, Watch, Connection, and Request. These are plain
// value types; the packages that produce and consume them own the
// behavior.
package types

import "fmt"

// Ref is the short textual node identifier the snapshot engine assigns,
// constructed as the first three characters of the class name followed
// by the decimal instance ID (spec.md §3).
type Ref string

// NodeRecord is one entry in a Snapshot's node tree.
type NodeRecord struct {
	Ref      Ref                      `json:"ref"`
	Name     string                   `json:"name"`
	Class    string                   `json:"class"`
	Path     string                   `json:"path"`
	Visible  bool                     `json:"visible"`

	Position       any `json:"position"`        // [x,y] or [x,y,z], null for non-spatial
	GlobalPosition any `json:"global_position"`  // same shape as Position
	Rotation       any `json:"rotation"`         // scalar (2D) or quaternion (3D), null if N/A
	Scale          any `json:"scale"`            // [x,y] or [x,y,z], null if N/A

	Size any `json:"size,omitempty"` // [w,h], Control-only

	Text string `json:"text,omitempty"`

	Groups     []string       `json:"groups"`
	Properties map[string]any `json:"properties"`

	Children []NodeRecord `json:"children"`
}

// Snapshot is the immutable value one traversal produces (spec.md §3).
type Snapshot struct {
	ScenePath string  `json:"scene_path"`
	SceneName string  `json:"scene_name"`
	Viewport  [2]int  `json:"viewport"`
	Mouse     [2]float64 `json:"mouse"`
	Frame     uint64  `json:"frame"`
	FPS       float64 `json:"fps"`
	ClockTime float64 `json:"clock_time"`
	Paused    bool    `json:"paused"`

	Root *NodeRecord `json:"root"`

	Truncated   bool   `json:"truncated,omitempty"`
	TruncatedAt int    `json:"truncated_at,omitempty"`
	Note        string `json:"note,omitempty"`
}

// EventType enumerates spec.md §3's Event.type values.
type EventType string

const (
	EventSignal         EventType = "signal"
	EventNodeAdded      EventType = "node_added"
	EventNodeRemoved    EventType = "node_removed"
	EventPropertyChanged EventType = "property_changed"
	EventSceneChanged   EventType = "scene_changed"
)

// Event is one accumulator entry (spec.md §3). ID is assigned by the
// accumulator and is strictly monotonic within a bridge lifetime.
type Event struct {
	ID     uint64         `json:"id"`
	Type   EventType      `json:"type"`
	Time   float64        `json:"time"`
	Frame  uint64         `json:"frame"`
	Source string         `json:"source"`
	Detail map[string]any `json:"detail"`
}

// Watch is a (node_path, property) pair tracked for change detection
// (spec.md §3). Set membership is unique on (NodePath, Property).
type Watch struct {
	NodePath  string `json:"node_path"`
	Property  string `json:"property"`
	Label     string `json:"label"`
	LastValue any    `json:"last_value"`
}

// Key returns the (NodePath, Property) uniqueness key for a watch set.
func (w Watch) Key() [2]string { return [2]string{w.NodePath, w.Property} }

// ConnState is a Connection's position in the lifecycle spec.md §3
// describes: accepted -> buffering -> header-parsed -> body-complete ->
// dispatched -> response-written -> closed.
type ConnState int

const (
	ConnAccepted ConnState = iota
	ConnBuffering
	ConnHeaderParsed
	ConnBodyComplete
	ConnDispatched
	ConnResponseWritten
	ConnClosed
)

// Request is a fully-parsed HTTP request (spec.md §3).
type Request struct {
	Method      string
	Path        string
	QueryParams map[string]string
	Headers     map[string]string // lowercased keys
	Body        []byte
	JSONBody    any // parsed value, or nil if absent/not JSON
}

// Param returns a query parameter, or "" with ok=false if absent.
func (r *Request) Param(name string) (string, bool) {
	v, ok := r.QueryParams[name]
	return v, ok
}

// BodyMap type-asserts JSONBody as a JSON object, or returns nil.
func (r *Request) BodyMap() map[string]any {
	m, _ := r.JSONBody.(map[string]any)
	return m
}

// field returns a parameter by name, checking the JSON body object first
// (POST endpoints) and falling back to the query string (GET endpoints),
// matching spec.md §4.8's "ref and path are interchangeable" style of
// permissive input handling across both transports.
func (r *Request) field(name string) (any, bool) {
	if m := r.BodyMap(); m != nil {
		if v, ok := m[name]; ok {
			return v, true
		}
	}
	if v, ok := r.QueryParams[name]; ok {
		return v, true
	}
	return nil, false
}

// Value returns a named parameter's raw decoded value, with no type
// coercion (used for /set_property and /wait_for's "value" field, whose
// type varies with the target property).
func (r *Request) Value(name string) (any, bool) {
	return r.field(name)
}

// String returns a named parameter coerced to a string.
func (r *Request) String(name string) (string, bool) {
	v, ok := r.field(name)
	if !ok {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return "", false
}

// Float returns a named parameter coerced to a float64, accepting both a
// JSON number and a numeric query string.
func (r *Request) Float(name string) (float64, bool) {
	v, ok := r.field(name)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		var f float64
		if _, err := fmt.Sscanf(t, "%g", &f); err == nil {
			return f, true
		}
	}
	return 0, false
}

// Int returns a named parameter coerced to an int.
func (r *Request) Int(name string) (int, bool) {
	f, ok := r.Float(name)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// Bool returns a named parameter coerced to a bool.
func (r *Request) Bool(name string) (bool, bool) {
	v, ok := r.field(name)
	if !ok {
		return false, false
	}
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		return t == "true" || t == "1", true
	}
	return false, false
}

// Array returns a named parameter coerced to a []any.
func (r *Request) Array(name string) ([]any, bool) {
	v, ok := r.field(name)
	if !ok {
		return nil, false
	}
	arr, ok := v.([]any)
	return arr, ok
}
