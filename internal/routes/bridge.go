// Package routes implements the thin Route Handler layer (spec.md
// §4.8): parsing query/body parameters, invoking the snapshot/state/
// input/screenshot/events/waiter components, and returning a JSON-ready
// value.
package routes

import (
	"sync"

	"github.com/dev-bridge/engine-runtime-bridge/internal/config"
	"github.com/dev-bridge/engine-runtime-bridge/internal/engine"
	"github.com/dev-bridge/engine-runtime-bridge/internal/events"
	"github.com/dev-bridge/engine-runtime-bridge/internal/health"
	"github.com/dev-bridge/engine-runtime-bridge/internal/httpbridge"
	"github.com/dev-bridge/engine-runtime-bridge/internal/input"
	"github.com/dev-bridge/engine-runtime-bridge/internal/logtail"
	"github.com/dev-bridge/engine-runtime-bridge/internal/screenshot"
	"github.com/dev-bridge/engine-runtime-bridge/internal/snapshot"
	"github.com/dev-bridge/engine-runtime-bridge/internal/state"
	"github.com/dev-bridge/engine-runtime-bridge/internal/types"
	"github.com/dev-bridge/engine-runtime-bridge/internal/waiter"
)

// Bridge aggregates the runtime bridge's module-scoped state: the
// snapshot ref map, the event buffer, and the watch list (spec.md §5
// "Shared resources"). All of it is owned by the runtime-bridge object
// and mutated only from handler code.
type Bridge struct {
	mu sync.Mutex

	Tree       engine.SceneTree
	Clock      engine.Clock
	Controller engine.Controller
	Sink       engine.InputSink
	Capturer   engine.ViewportCapturer

	Snap     *snapshot.Engine
	State    *state.Registry
	Input    *input.Injector
	Shots    *screenshot.Pipeline
	Events   *events.Accumulator
	Waiter   *waiter.Waiter
	Cfg      config.Config
	Actions  []string // engine-supplied mapped-action names, if any

	Health  *health.Monitor
	Console *logtail.Tail

	history   []sceneHistoryEntry
	ring      []*types.Snapshot // prior scene-tree snapshots, newest last
	lastScene string            // scene path Tick last saw
}

type sceneHistoryEntry struct {
	ScenePath string  `json:"scene_path"`
	Time      float64 `json:"time"`
}

const snapshotRingSize = 5

// New assembles a Bridge from its component parts.
func New(tree engine.SceneTree, clock engine.Clock, controller engine.Controller, sink engine.InputSink, capturer engine.ViewportCapturer, cfg config.Config) *Bridge {
	snap := snapshot.New(cfg.MaxSnapshotDepth, cfg.MaxNodeCount)
	console, err := logtail.New(cfg.ConsoleLogPath, cfg.MaxEventBuffer)
	if err != nil {
		console = nil
	}
	acc := events.New(tree, clock, cfg.MaxEventBuffer)
	acc.Start()
	return &Bridge{
		Tree:       tree,
		Clock:      clock,
		Controller: controller,
		Sink:       sink,
		Capturer:   capturer,
		Snap:       snap,
		State:      state.Default(),
		Input:      input.New(clock, sink),
		Shots:      screenshot.New(capturer, clock),
		Events:     acc,
		Waiter:     waiter.New(clock),
		Cfg:        cfg,
		Health:     health.New(),
		Console:    console,
		lastScene:  tree.ScenePath(),
	}
}

// resolveTarget implements the "ref and path are interchangeable"
// convention spec.md §4.8 describes, trying "ref" then "path".
func (b *Bridge) resolveTarget(req *types.Request) (engine.Node, string, bool) {
	if ref, ok := req.String("ref"); ok && ref != "" {
		if n := b.Snap.ResolveRef(types.Ref(ref)); n != nil {
			return n, ref, true
		}
		return nil, ref, false
	}
	if path, ok := req.String("path"); ok && path != "" {
		if n := b.Tree.Resolve(b.Tree.Root(), path); n != nil {
			return n, path, true
		}
		return nil, path, false
	}
	return nil, "", false
}

// recordSnapshot keeps a bounded ring of prior snapshots for
// GET /snapshot/diff (SPEC_FULL.md §3 SUPPLEMENTAL FEATURES: "Named
// multi-snapshot comparison").
func (b *Bridge) recordSnapshot(s *types.Snapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ring = append(b.ring, s)
	if len(b.ring) > snapshotRingSize {
		b.ring = b.ring[len(b.ring)-snapshotRingSize:]
	}
}

func (b *Bridge) previousSnapshot() *types.Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.ring) < 2 {
		return nil
	}
	return b.ring[len(b.ring)-2]
}

// recordSceneHistory appends a scene-change timestamp, bounded the way
// the teacher tracks per-entry arrival times alongside its log buffer
// (SPEC_FULL.md SUPPLEMENTAL FEATURES: "Scene history").
func (b *Bridge) recordSceneHistory(scenePath string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history = append(b.history, sceneHistoryEntry{ScenePath: scenePath, Time: b.Clock.Now()})
	if len(b.history) > b.Cfg.MaxEventBuffer {
		b.history = b.history[len(b.history)-b.Cfg.MaxEventBuffer:]
	}
}

func (b *Bridge) sceneHistory() []sceneHistoryEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]sceneHistoryEntry, len(b.history))
	copy(out, b.history)
	return out
}

// Tick drives Poll on the http server and the accumulator's scene-change
// detection once per engine frame.
func (b *Bridge) Tick(srv *httpbridge.Server) {
	srv.Poll()
	b.Events.Poll()
	if current := b.Tree.ScenePath(); current != b.lastScene {
		b.lastScene = current
		b.recordSceneHistory(current)
	}
}
