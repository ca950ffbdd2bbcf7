// Package serialize maps engine-native value types to JSON-safe values
// and back (spec.md §3 Serializer, §6 "Serialization of values"). The
// bridge never holds real engine types, so this package defines small Go
// value types standing in for the engine's vectors, colors, transforms,
// and so on; internal/engine.FakeNode stores properties as these types,
// and a real integration would convert its own native types into them at
// the boundary.
package serialize

import (
	"encoding/base64"
	"fmt"
)

// Vec2/Vec3 mirror the engine's 2D/3D vector types.
type Vec2 struct{ X, Y float64 }
type Vec3 struct{ X, Y, Z float64 }

// Color is an RGBA color with each channel in [0,1].
type Color struct{ R, G, B, A float64 }

// Rect2 is a 2D axis-aligned rectangle.
type Rect2 struct {
	Position Vec2
	Size     Vec2
}

// AABB is a 3D axis-aligned bounding box.
type AABB struct {
	Position Vec3
	Size     Vec3
}

// Transform2D is a 2D origin + rotation pair (spec.md §6: "2D transforms
// as {origin, rotation}").
type Transform2D struct {
	Origin   Vec2
	Rotation float64
}

// Basis3 is a 3x3 row-major 3D rotation/scale basis.
type Basis3 [3][3]float64

// Quaternion is an (x,y,z,w) rotation quaternion.
type Quaternion struct{ X, Y, Z, W float64 }

// NodePath and StringName are distinct engine string-like types that
// serialize as plain strings but are worth keeping distinct so a real
// integration can tell them apart from an ordinary string property.
type NodePath string
type StringName string

// Resource is a reference to an engine resource; it serializes as its
// resource path (spec.md §6: "resources as their resource path").
type Resource struct{ Path string }

// Serialize converts an engine-native value into a JSON-safe value per
// spec.md §6. Unrecognized types fall back to their string form.
func Serialize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case Vec2:
		return []float64{t.X, t.Y}
	case Vec3:
		return []float64{t.X, t.Y, t.Z}
	case Color:
		return map[string]any{"r": t.R, "g": t.G, "b": t.B, "a": t.A}
	case Rect2:
		return map[string]any{
			"position": Serialize(t.Position),
			"size":     Serialize(t.Size),
		}
	case AABB:
		return map[string]any{
			"position": Serialize(t.Position),
			"size":     Serialize(t.Size),
		}
	case Transform2D:
		return map[string]any{
			"origin":   Serialize(t.Origin),
			"rotation": t.Rotation,
		}
	case Basis3:
		return [][]float64{
			{t[0][0], t[0][1], t[0][2]},
			{t[1][0], t[1][1], t[1][2]},
			{t[2][0], t[2][1], t[2][2]},
		}
	case Quaternion:
		return []float64{t.X, t.Y, t.Z, t.W}
	case NodePath:
		return string(t)
	case StringName:
		return string(t)
	case Resource:
		return t.Path
	case []byte:
		return base64.StdEncoding.EncodeToString(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Serialize(e)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = e
		}
		return out
	case []float64:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = e
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Serialize(e)
		}
		return out
	case bool, int, int64, float64, string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Deserialize converts a JSON-decoded raw value into the Go-native type
// matching existing's type, per spec.md §6: "Deserialization infers
// target type from the receiving property's type metadata." When
// existing is nil, raw is returned unchanged (no type to infer).
func Deserialize(existing any, raw any) (any, error) {
	switch existing.(type) {
	case Vec2:
		arr, ok := asFloatSlice(raw)
		if !ok || len(arr) != 2 {
			return nil, fmt.Errorf("expected a 2-element array for Vec2, got %v", raw)
		}
		return Vec2{X: arr[0], Y: arr[1]}, nil
	case Vec3:
		arr, ok := asFloatSlice(raw)
		if !ok || len(arr) != 3 {
			return nil, fmt.Errorf("expected a 3-element array for Vec3, got %v", raw)
		}
		return Vec3{X: arr[0], Y: arr[1], Z: arr[2]}, nil
	case Color:
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected {r,g,b,a} for Color, got %v", raw)
		}
		return Color{R: numOr(m["r"], 0), G: numOr(m["g"], 0), B: numOr(m["b"], 0), A: numOr(m["a"], 1)}, nil
	case Rect2:
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected {position,size} for Rect2, got %v", raw)
		}
		pos, err := Deserialize(Vec2{}, m["position"])
		if err != nil {
			return nil, err
		}
		sz, err := Deserialize(Vec2{}, m["size"])
		if err != nil {
			return nil, err
		}
		return Rect2{Position: pos.(Vec2), Size: sz.(Vec2)}, nil
	case AABB:
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected {position,size} for AABB, got %v", raw)
		}
		pos, err := Deserialize(Vec3{}, m["position"])
		if err != nil {
			return nil, err
		}
		sz, err := Deserialize(Vec3{}, m["size"])
		if err != nil {
			return nil, err
		}
		return AABB{Position: pos.(Vec3), Size: sz.(Vec3)}, nil
	case Transform2D:
		m, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected {origin,rotation} for Transform2D, got %v", raw)
		}
		origin, err := Deserialize(Vec2{}, m["origin"])
		if err != nil {
			return nil, err
		}
		return Transform2D{Origin: origin.(Vec2), Rotation: numOr(m["rotation"], 0)}, nil
	case Basis3:
		rows, ok := raw.([]any)
		if !ok || len(rows) != 3 {
			return nil, fmt.Errorf("expected a 3x3 array for Basis3, got %v", raw)
		}
		var b Basis3
		for i, row := range rows {
			r, ok := asFloatSlice(row)
			if !ok || len(r) != 3 {
				return nil, fmt.Errorf("expected a 3x3 array for Basis3, got %v", raw)
			}
			b[i] = [3]float64{r[0], r[1], r[2]}
		}
		return b, nil
	case Quaternion:
		arr, ok := asFloatSlice(raw)
		if !ok || len(arr) != 4 {
			return nil, fmt.Errorf("expected a 4-element array for Quaternion, got %v", raw)
		}
		return Quaternion{X: arr[0], Y: arr[1], Z: arr[2], W: arr[3]}, nil
	case NodePath:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected a string for NodePath, got %v", raw)
		}
		return NodePath(s), nil
	case StringName:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected a string for StringName, got %v", raw)
		}
		return StringName(s), nil
	case Resource:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected a string path for Resource, got %v", raw)
		}
		return Resource{Path: s}, nil
	case []byte:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("expected base64 string for byte array, got %v", raw)
		}
		return base64.StdEncoding.DecodeString(s)
	default:
		return raw, nil
	}
}

func asFloatSlice(raw any) ([]float64, bool) {
	if fs, ok := raw.([]float64); ok {
		return fs, true
	}
	arr, ok := raw.([]any)
	if !ok {
		return nil, false
	}
	out := make([]float64, len(arr))
	for i, e := range arr {
		n, ok := e.(float64)
		if !ok {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}

func numOr(v any, def float64) float64 {
	if n, ok := v.(float64); ok {
		return n
	}
	return def
}
