package routes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-bridge/engine-runtime-bridge/internal/apperr"
	"github.com/dev-bridge/engine-runtime-bridge/internal/config"
	"github.com/dev-bridge/engine-runtime-bridge/internal/engine"
	"github.com/dev-bridge/engine-runtime-bridge/internal/health"
	"github.com/dev-bridge/engine-runtime-bridge/internal/httpbridge"
	"github.com/dev-bridge/engine-runtime-bridge/internal/serialize"
	"github.com/dev-bridge/engine-runtime-bridge/internal/types"
)

type testRig struct {
	bridge *Bridge
	tree   *engine.FakeTree
	root   *engine.FakeNode
	player *engine.FakeNode
	clock  *engine.FakeClock
	sink   *engine.FakeInputSink
}

func newTestRig() *testRig {
	root := engine.NewFakeNode(1, "Node2D", "root")
	player := engine.NewFakeNode(2, "Sprite2D", "Player")
	player.SetExported("hp", 10.0)
	player.SetBuiltin("global_position", serialize.Vec2{X: 5, Y: 5})
	root.AddChild(player)

	tree := engine.NewFakeTree(root, "res://main.tscn", "Main")
	clock := engine.NewFakeClock()
	sink := engine.NewFakeInputSink()
	capturer := engine.NewFakeCapturer(64, 64)

	cfg := config.Defaults()
	b := New(tree, clock, clock, sink, capturer, cfg)

	return &testRig{bridge: b, tree: tree, root: root, player: player, clock: clock, sink: sink}
}

func req(method, path string, params map[string]any, query map[string]string) *types.Request {
	r := &types.Request{Method: method, Path: path, QueryParams: query}
	if params != nil {
		r.JSONBody = toAnyMap(params)
	}
	return r
}

func toAnyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func TestHandleSnapshotReturnsTreeShape(t *testing.T) {
	rig := newTestRig()
	out, err := rig.bridge.handleSnapshot(context.Background(), req("GET", "/snapshot", nil, nil))
	require.NoError(t, err)

	m := out.(map[string]any)
	assert.Equal(t, "res://main.tscn", m["scene_path"])
	root := m["root"].(*types.NodeRecord)
	assert.Equal(t, "root", root.Name)
	require.Len(t, root.Children, 1)
}

func TestHandleSnapshotUnknownRootErrors(t *testing.T) {
	rig := newTestRig()
	_, err := rig.bridge.handleSnapshot(context.Background(), req("GET", "/snapshot", nil, map[string]string{"root": "NoSuchPath"}))
	assert.Error(t, err)
}

func TestHandleStateReadsNodeProperties(t *testing.T) {
	rig := newTestRig()
	out, err := rig.bridge.handleState(context.Background(), req("GET", "/state", nil, map[string]string{"path": "Player"}))
	require.NoError(t, err)

	m := out.(map[string]any)
	assert.Equal(t, "Player", m["name"])
	props := m["properties"].(map[string]any)
	assert.Equal(t, 10.0, props["hp"])
}

func TestHandleStateMissingTargetErrors(t *testing.T) {
	rig := newTestRig()
	_, err := rig.bridge.handleState(context.Background(), req("GET", "/state", nil, nil))
	assert.Error(t, err)

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.CodeTargetMissing, appErr.Code)
}

func TestHandleSetPropertyCoercesAndApplies(t *testing.T) {
	rig := newTestRig()
	_, err := rig.bridge.handleSetProperty(context.Background(), req("POST", "/set_property", map[string]any{
		"path": "Player", "property": "hp", "value": 42.0,
	}, nil))
	require.NoError(t, err)

	v, ok := rig.player.Property("hp")
	require.True(t, ok)
	assert.Equal(t, 42.0, v)
}

func TestHandleSetPropertyMissingPropertyErrors(t *testing.T) {
	rig := newTestRig()
	_, err := rig.bridge.handleSetProperty(context.Background(), req("POST", "/set_property", map[string]any{
		"path": "Player", "value": 1.0,
	}, nil))
	assert.Error(t, err)
}

func TestHandleCallMethodInvokesRegisteredMethod(t *testing.T) {
	rig := newTestRig()
	rig.player.RegisterMethod("heal", func(args []any) (any, error) {
		return "healed", nil
	})

	out, err := rig.bridge.handleCallMethod(context.Background(), req("POST", "/call_method", map[string]any{
		"path": "Player", "method": "heal",
	}, nil))
	require.NoError(t, err)
	m := out.(map[string]any)
	assert.Equal(t, "healed", m["result"])
}

func TestHandleClickDispatchesToSink(t *testing.T) {
	rig := newTestRig()
	_, err := rig.bridge.handleClick(context.Background(), req("POST", "/click", map[string]any{
		"x": 10.0, "y": 20.0,
	}, nil))
	require.NoError(t, err)
	require.Len(t, rig.sink.Events, 2)
	assert.Equal(t, 10.0, rig.sink.Events[0].X)
}

func TestHandleClickMissingCoordinatesErrors(t *testing.T) {
	rig := newTestRig()
	_, err := rig.bridge.handleClick(context.Background(), req("POST", "/click", map[string]any{"x": 1.0}, nil))
	assert.Error(t, err)
}

func TestHandleKeyDefaultsToTap(t *testing.T) {
	rig := newTestRig()
	done := make(chan error, 1)
	go func() {
		_, err := rig.bridge.handleKey(context.Background(), req("POST", "/key", map[string]any{"key": "a"}, nil))
		done <- err
	}()
	for i := 0; i < 200; i++ {
		rig.clock.Tick(0.016)
		select {
		case err := <-done:
			require.NoError(t, err)
			require.Len(t, rig.sink.Events, 2)
			return
		default:
		}
	}
	t.Fatal("handleKey never completed")
}

func TestHandleKeyMissingNameErrors(t *testing.T) {
	rig := newTestRig()
	_, err := rig.bridge.handleKey(context.Background(), req("POST", "/key", map[string]any{}, nil))
	assert.Error(t, err)
}

func TestHandlePauseTogglesController(t *testing.T) {
	rig := newTestRig()
	_, err := rig.bridge.handlePause(context.Background(), req("POST", "/pause", map[string]any{"paused": true}, nil))
	require.NoError(t, err)
	assert.True(t, rig.clock.Paused())
}

func TestHandleTimescaleClampsViaController(t *testing.T) {
	rig := newTestRig()
	_, err := rig.bridge.handleTimescale(context.Background(), req("POST", "/timescale", map[string]any{"scale": 100.0}, nil))
	require.NoError(t, err)
	assert.Equal(t, 10.0, rig.clock.TimeScale())
}

func TestHandleInfoReportsClockState(t *testing.T) {
	rig := newTestRig()
	out, err := rig.bridge.handleInfo(context.Background(), req("GET", "/info", nil, nil))
	require.NoError(t, err)
	m := out.(map[string]any)
	assert.Equal(t, "Main", m["scene_name"])
}

func TestHandleHealthReflectsMonitorStatus(t *testing.T) {
	rig := newTestRig()
	out, err := rig.bridge.handleHealth(context.Background(), req("GET", "/health", nil, nil))
	require.NoError(t, err)
	status := out.(health.Status)
	assert.True(t, status.Healthy)
	assert.False(t, status.CircuitOpen)
}

func TestHandleSnapshotDiffWithNoPriorSnapshot(t *testing.T) {
	rig := newTestRig()
	out, err := rig.bridge.handleSnapshotDiff(context.Background(), req("GET", "/snapshot/diff", nil, nil))
	require.NoError(t, err)
	m := out.(map[string]any)
	assert.Nil(t, m["diff"])
}

func TestHandleSnapshotDiffAfterTwoSnapshots(t *testing.T) {
	rig := newTestRig()
	_, err := rig.bridge.handleSnapshot(context.Background(), req("GET", "/snapshot", nil, nil))
	require.NoError(t, err)
	out, err := rig.bridge.handleSnapshotDiff(context.Background(), req("GET", "/snapshot/diff", nil, nil))
	require.NoError(t, err)
	m := out.(map[string]any)
	assert.NotNil(t, m["current"])
	assert.NotNil(t, m["baseline"])
}

func TestHandleAddWatchThenDrainReportsPropertyChange(t *testing.T) {
	rig := newTestRig()
	_, err := rig.bridge.handleAddWatch(context.Background(), req("POST", "/events/watch", map[string]any{
		"path": "Player", "property": "hp", "label": "health",
	}, nil))
	require.NoError(t, err)

	_, err = rig.bridge.handleSetProperty(context.Background(), req("POST", "/set_property", map[string]any{
		"path": "Player", "property": "hp", "value": 90.0,
	}, nil))
	require.NoError(t, err)

	rig.bridge.Events.Poll()

	out, err := rig.bridge.handleEventsDrain(context.Background(), req("GET", "/events", nil, nil))
	require.NoError(t, err)
	m := out.(map[string]any)
	events := m["events"].([]types.Event)
	require.Len(t, events, 1)
	assert.Equal(t, types.EventPropertyChanged, events[0].Type)

	out2, err := rig.bridge.handleEventsDrain(context.Background(), req("GET", "/events", nil, nil))
	require.NoError(t, err)
	assert.Empty(t, out2.(map[string]any)["events"].([]types.Event))
}

func TestHandleGetWatchesAndRemoveWatch(t *testing.T) {
	rig := newTestRig()
	_, err := rig.bridge.handleAddWatch(context.Background(), req("POST", "/events/watch", map[string]any{
		"path": "Player", "property": "hp",
	}, nil))
	require.NoError(t, err)

	out, err := rig.bridge.handleGetWatches(context.Background(), req("GET", "/events/watches", nil, nil))
	require.NoError(t, err)
	watches := out.(map[string]any)["watches"].([]types.Watch)
	require.Len(t, watches, 1)

	out2, err := rig.bridge.handleRemoveWatch(context.Background(), req("POST", "/events/unwatch", map[string]any{
		"path": "Player", "property": "hp",
	}, nil))
	require.NoError(t, err)
	assert.True(t, out2.(map[string]any)["removed"].(bool))
}

func TestHandleSceneHistoryRecordsSceneChangesViaTick(t *testing.T) {
	rig := newTestRig()
	srv, err := httpbridge.New("127.0.0.1", 0, 4)
	require.NoError(t, err)
	defer srv.Close()
	Register(srv, rig.bridge)

	newRoot := engine.NewFakeNode(9, "Node2D", "root2")
	rig.tree.LoadScene(newRoot, "res://level2.tscn", "Level2")
	rig.bridge.Tick(srv)

	out, err := rig.bridge.handleSceneHistory(context.Background(), req("GET", "/scene_history", nil, nil))
	require.NoError(t, err)
	m := out.(map[string]any)
	history := m["history"].([]sceneHistoryEntry)
	require.Len(t, history, 1)
	assert.Equal(t, "res://level2.tscn", history[0].ScenePath)
}
