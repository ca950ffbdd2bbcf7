package serialize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeVec2(t *testing.T) {
	got := Serialize(Vec2{X: 1, Y: 2})
	assert.Equal(t, []float64{1, 2}, got)
}

func TestSerializeColor(t *testing.T) {
	got := Serialize(Color{R: 1, G: 0.5, B: 0, A: 1})
	assert.Equal(t, map[string]any{"r": 1.0, "g": 0.5, "b": 0.0, "a": 1.0}, got)
}

func TestSerializeRect2Nested(t *testing.T) {
	got := Serialize(Rect2{Position: Vec2{X: 1, Y: 2}, Size: Vec2{X: 3, Y: 4}})
	want := map[string]any{
		"position": []float64{1, 2},
		"size":     []float64{3, 4},
	}
	assert.Equal(t, want, got)
}

func TestSerializeNodePathAndStringName(t *testing.T) {
	assert.Equal(t, "/root/Player", Serialize(NodePath("/root/Player")))
	assert.Equal(t, "Player", Serialize(StringName("Player")))
}

func TestSerializeResourceUsesPath(t *testing.T) {
	assert.Equal(t, "res://sprite.png", Serialize(Resource{Path: "res://sprite.png"}))
}

func TestSerializeUnknownTypeFallsBackToString(t *testing.T) {
	type weird struct{ N int }
	got := Serialize(weird{N: 3})
	assert.Equal(t, "{3}", got)
}

func TestDeserializeVec2RoundTrip(t *testing.T) {
	raw := Serialize(Vec2{X: 5, Y: 6})
	got, err := Deserialize(Vec2{}, raw)
	require.NoError(t, err)
	assert.Equal(t, Vec2{X: 5, Y: 6}, got)
}

func TestDeserializeVec2WrongShape(t *testing.T) {
	_, err := Deserialize(Vec2{}, []any{1.0})
	assert.Error(t, err)
}

func TestDeserializeColorDefaultsAlpha(t *testing.T) {
	got, err := Deserialize(Color{}, map[string]any{"r": 1.0, "g": 0.0, "b": 0.0})
	require.NoError(t, err)
	assert.Equal(t, Color{R: 1, G: 0, B: 0, A: 1}, got)
}

func TestDeserializeTransform2D(t *testing.T) {
	raw := map[string]any{"origin": []any{1.0, 2.0}, "rotation": 0.5}
	got, err := Deserialize(Transform2D{}, raw)
	require.NoError(t, err)
	assert.Equal(t, Transform2D{Origin: Vec2{X: 1, Y: 2}, Rotation: 0.5}, got)
}

func TestDeserializeBasis3(t *testing.T) {
	raw := []any{
		[]any{1.0, 0.0, 0.0},
		[]any{0.0, 1.0, 0.0},
		[]any{0.0, 0.0, 1.0},
	}
	got, err := Deserialize(Basis3{}, raw)
	require.NoError(t, err)
	want := Basis3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	assert.Equal(t, want, got)
}

func TestDeserializeUnknownExistingPassesThrough(t *testing.T) {
	got, err := Deserialize("hello", "world")
	require.NoError(t, err)
	assert.Equal(t, "world", got)
}

func TestDeserializeByteSliceBase64(t *testing.T) {
	raw := Serialize([]byte("hi"))
	got, err := Deserialize([]byte(nil), raw)
	require.NoError(t, err)
	assert.Equal(t, []byte("hi"), got)
}
