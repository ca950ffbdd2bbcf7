package input

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-bridge/engine-runtime-bridge/internal/engine"
	"github.com/dev-bridge/engine-runtime-bridge/internal/serialize"
)

func TestResolveKeyKnownNameCaseInsensitive(t *testing.T) {
	code, ok := ResolveKey("Space")
	require.True(t, ok)
	assert.Equal(t, 32, code)
}

func TestResolveKeySingleCharacterFallsBackToASCII(t *testing.T) {
	code, ok := ResolveKey("Q")
	require.True(t, ok)
	assert.Equal(t, int('Q'), code)
}

func TestResolveKeyUnknownNameFails(t *testing.T) {
	_, ok := ResolveKey("not-a-key")
	assert.False(t, ok)
}

func TestKeyTapPressesThenReleasesAfterOneFrame(t *testing.T) {
	clock := engine.NewFakeClock()
	sink := engine.NewFakeInputSink()
	inj := New(clock, sink)

	done := make(chan error, 1)
	go func() { done <- inj.Key(context.Background(), "a", ActionTap, 0) }()

	var err error
	for i := 0; i < 200; i++ {
		clock.Tick(0.016)
		select {
		case err = <-done:
			i = 200
		default:
			time.Sleep(time.Millisecond)
		}
	}
	require.NoError(t, err)

	require.Len(t, sink.Events, 2)
	assert.True(t, sink.Events[0].Pressed)
	assert.False(t, sink.Events[1].Pressed)
}

func TestKeyHoldWithZeroDurationSeparatesByOneFrame(t *testing.T) {
	clock := engine.NewFakeClock()
	sink := engine.NewFakeInputSink()
	inj := New(clock, sink)

	done := make(chan error, 1)
	go func() { done <- inj.Key(context.Background(), "a", ActionHold, 0) }()

	var err error
	for i := 0; i < 200; i++ {
		clock.Tick(0.016)
		select {
		case err = <-done:
			i = 200
		default:
			time.Sleep(time.Millisecond)
		}
	}
	require.NoError(t, err)

	require.Len(t, sink.Events, 2)
	assert.True(t, sink.Events[0].Pressed)
	assert.False(t, sink.Events[1].Pressed)
}

func TestKeyPressAndReleaseAreIndependentCalls(t *testing.T) {
	clock := engine.NewFakeClock()
	sink := engine.NewFakeInputSink()
	inj := New(clock, sink)

	require.NoError(t, inj.Key(context.Background(), "a", ActionPress, 0))
	require.NoError(t, inj.Key(context.Background(), "a", ActionRelease, 0))

	require.Len(t, sink.Events, 2)
	assert.True(t, sink.Events[0].Pressed)
	assert.False(t, sink.Events[1].Pressed)
}

func TestKeyUnknownNameErrors(t *testing.T) {
	clock := engine.NewFakeClock()
	sink := engine.NewFakeInputSink()
	inj := New(clock, sink)

	err := inj.Key(context.Background(), "nonsense-key", ActionPress, 0)
	assert.Error(t, err)
}

func TestClickDispatchesPressThenRelease(t *testing.T) {
	clock := engine.NewFakeClock()
	sink := engine.NewFakeInputSink()
	inj := New(clock, sink)

	inj.Click(10, 20, 0, false)
	require.Len(t, sink.Events, 2)
	assert.True(t, sink.Events[0].Pressed)
	assert.False(t, sink.Events[1].Pressed)
	assert.Equal(t, 10.0, sink.Events[0].X)
}

func TestClickTargetUINodeUsesGlobalRect(t *testing.T) {
	n := engine.NewFakeNode(1, "Button", "OK")
	n.SetBuiltin("global_rect", serialize.Rect2{
		Position: serialize.Vec2{X: 10, Y: 20},
		Size:     serialize.Vec2{X: 100, Y: 40},
	})

	x, y, ok, _ := ClickTarget(n, nil)
	require.True(t, ok)
	assert.Equal(t, 60.0, x)
	assert.Equal(t, 40.0, y)
}

func TestClickTarget2DNodeUsesGlobalPosition(t *testing.T) {
	n := engine.NewFakeNode(1, "Sprite2D", "Enemy")
	n.SetBuiltin("global_position", serialize.Vec2{X: 5, Y: 8})

	x, y, ok, _ := ClickTarget(n, nil)
	require.True(t, ok)
	assert.Equal(t, 5.0, x)
	assert.Equal(t, 8.0, y)
}

func TestClickTarget3DNodeRequiresActiveCamera(t *testing.T) {
	n := engine.NewFakeNode(1, "Node3D", "Enemy")
	n.SetBuiltin("global_position", serialize.Vec3{X: 1, Y: 2, Z: 3})

	_, _, ok, diag := ClickTarget(n, nil)
	assert.False(t, ok)
	assert.Contains(t, diag, "no active 3D camera")
}

func TestClickTargetUnsupportedNodeType(t *testing.T) {
	n := engine.NewFakeNode(1, "AudioStreamPlayer", "Music")
	_, _, ok, diag := ClickTarget(n, nil)
	assert.False(t, ok)
	assert.Contains(t, diag, "unsupported node type")
}

func TestFindActiveCamera3DWalksTree(t *testing.T) {
	root := engine.NewFakeNode(1, "Node3D", "root")
	cam := engine.NewFakeNode(2, "Camera3D", "MainCam")
	cam.SetBuiltin("current", true)
	root.AddChild(cam)

	found := FindActiveCamera3D(root)
	assert.Equal(t, engine.Node(cam), found)
}

func TestFindActiveCamera3DNoneActive(t *testing.T) {
	root := engine.NewFakeNode(1, "Node3D", "root")
	cam := engine.NewFakeNode(2, "Camera3D", "MainCam")
	cam.SetBuiltin("current", false)
	root.AddChild(cam)

	assert.Nil(t, FindActiveCamera3D(root))
}

func TestExecuteSequenceRunsStepsInOrder(t *testing.T) {
	clock := engine.NewFakeClock()
	sink := engine.NewFakeInputSink()
	inj := New(clock, sink)

	steps := []Step{
		{Click: &[2]float64{1, 2}},
		{Action: "jump", Pressed: boolPtr(true), Strength: 1},
		{MouseMove: &[2]float64{3, 4}},
	}
	err := inj.ExecuteSequence(context.Background(), steps, nil)
	require.NoError(t, err)

	require.Len(t, sink.Events, 4)
	assert.Equal(t, "mouse_button", sink.Events[0].Kind)
	assert.Equal(t, "mouse_button", sink.Events[1].Kind)
	assert.Equal(t, "action", sink.Events[2].Kind)
	assert.Equal(t, "mouse_motion", sink.Events[3].Kind)
}

func boolPtr(b bool) *bool { return &b }
