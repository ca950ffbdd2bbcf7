package routes

import (
	"context"

	"github.com/dev-bridge/engine-runtime-bridge/internal/apperr"
	"github.com/dev-bridge/engine-runtime-bridge/internal/engine"
	"github.com/dev-bridge/engine-runtime-bridge/internal/httpbridge"
	"github.com/dev-bridge/engine-runtime-bridge/internal/input"
	"github.com/dev-bridge/engine-runtime-bridge/internal/screenshot"
	"github.com/dev-bridge/engine-runtime-bridge/internal/serialize"
	"github.com/dev-bridge/engine-runtime-bridge/internal/types"
	"github.com/dev-bridge/engine-runtime-bridge/internal/waiter"
)

// Register installs every runtime endpoint spec.md §6 names onto srv.
func Register(srv *httpbridge.Server, b *Bridge) {
	srv.SetHealthReporter(b.Health)

	srv.Register("GET", "/health", b.handleHealth)
	srv.Register("GET", "/console", b.handleConsole)
	srv.Register("GET", "/snapshot", b.handleSnapshot)
	srv.Register("GET", "/screenshot", b.handleScreenshot)
	srv.Register("GET", "/screenshot/node", b.handleScreenshotNode)
	srv.Register("POST", "/click", b.handleClick)
	srv.Register("POST", "/click_node", b.handleClickNode)
	srv.Register("POST", "/key", b.handleKey)
	srv.Register("POST", "/action", b.handleAction)
	srv.Register("GET", "/actions", b.handleActions)
	srv.Register("POST", "/mouse_move", b.handleMouseMove)
	srv.Register("POST", "/sequence", b.handleSequence)
	srv.Register("GET", "/state", b.handleState)
	srv.Register("POST", "/set_property", b.handleSetProperty)
	srv.Register("POST", "/call_method", b.handleCallMethod)
	srv.Register("POST", "/wait", b.handleWait)
	srv.Register("POST", "/wait_for", b.handleWaitFor)
	srv.Register("GET", "/info", b.handleInfo)
	srv.Register("POST", "/pause", b.handlePause)
	srv.Register("POST", "/timescale", b.handleTimescale)
	srv.Register("GET", "/snapshot/diff", b.handleSnapshotDiff)
	srv.Register("GET", "/scene_history", b.handleSceneHistory)
	srv.Register("GET", "/events", b.handleEventsDrain)
	srv.Register("GET", "/events/peek", b.handleEventsPeek)
	srv.Register("POST", "/events/watch", b.handleAddWatch)
	srv.Register("POST", "/events/unwatch", b.handleRemoveWatch)
	srv.Register("GET", "/events/watches", b.handleGetWatches)
}

func withDescription(m map[string]any, desc string) map[string]any {
	if m == nil {
		m = map[string]any{}
	}
	m["_description"] = desc
	return m
}

func snapshotToMap(s *types.Snapshot) map[string]any {
	return map[string]any{
		"scene_path":   s.ScenePath,
		"scene_name":   s.SceneName,
		"viewport":     s.Viewport,
		"mouse":        s.Mouse,
		"frame":        s.Frame,
		"fps":          s.FPS,
		"clock_time":   s.ClockTime,
		"paused":       s.Paused,
		"root":         s.Root,
		"truncated":    s.Truncated,
		"truncated_at": s.TruncatedAt,
		"note":         s.Note,
	}
}

func (b *Bridge) takeSnapshot(root engine.Node, depth int) *types.Snapshot {
	if root == nil {
		root = b.Tree.Root()
	}
	s := b.Snap.Take(root, depth)
	w, h := b.Clock.Viewport()
	mx, my := b.Clock.MousePosition()
	s.Viewport = [2]int{w, h}
	s.Mouse = [2]float64{mx, my}
	s.Frame = b.Clock.Frame()
	s.FPS = b.Clock.FPS()
	s.ClockTime = b.Clock.Now()
	s.Paused = b.Clock.Paused()
	s.ScenePath = b.Tree.ScenePath()
	s.SceneName = b.Tree.SceneName()
	b.recordSnapshot(s)
	return s
}

func (b *Bridge) handleSnapshot(ctx context.Context, req *types.Request) (any, error) {
	root := b.Tree.Root()
	if rp, ok := req.String("root"); ok && rp != "" {
		if n := b.Snap.ResolveRef(types.Ref(rp)); n != nil {
			root = n
		} else if n := b.Tree.Resolve(b.Tree.Root(), rp); n != nil {
			root = n
		} else {
			return nil, targetMissingErr()
		}
	}
	depth, _ := req.Int("depth")

	s := b.takeSnapshot(root, depth)
	out := snapshotToMap(s)

	if includeShot, _ := req.Bool("include_screenshot"); includeShot {
		quality, hasQ := req.Float("quality")
		if !hasQ {
			quality = b.Cfg.DefaultQuality
		}
		annotate, _ := req.Bool("annotate")
		result, err := b.captureViewport(annotate, quality, s)
		if err == nil {
			out["screenshot"] = map[string]any{
				"image": result.ImageBase64, "mime": result.Mime,
				"size": [2]int{result.Width, result.Height},
			}
		}
	}

	return withDescription(out, "scene tree snapshot"), nil
}

func (b *Bridge) captureViewport(annotate bool, quality float64, s *types.Snapshot) (*screenshot.Result, error) {
	opts := screenshot.Options{Quality: quality, MaxBase64Len: b.Cfg.MaxBase64Length, Context: "viewport"}
	if annotate && s.Root != nil {
		w, h := b.Clock.Viewport()
		opts.Annotations = screenshot.CollectAnnotations(s.Root, [2]int{w, h}, nil)
	}
	return b.Shots.Capture(opts)
}

func (b *Bridge) handleScreenshot(ctx context.Context, req *types.Request) (any, error) {
	width, _ := req.Int("width")
	height, _ := req.Int("height")
	quality, hasQ := req.Float("quality")
	if !hasQ {
		quality = b.Cfg.DefaultQuality
	}
	if width == 0 {
		width = b.Cfg.DefaultScreenshotWidth
	}
	if height == 0 {
		height = b.Cfg.DefaultScreenshotHeight
	}

	opts := screenshot.Options{Width: width, Height: height, Quality: quality, MaxBase64Len: b.Cfg.MaxBase64Length, Context: "viewport"}
	if annotate, _ := req.Bool("annotate"); annotate {
		s := b.takeSnapshot(nil, 0)
		vw, vh := b.Clock.Viewport()
		opts.Annotations = screenshot.CollectAnnotations(s.Root, [2]int{vw, vh}, nil)
	}
	result, err := b.Shots.Capture(opts)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"image": result.ImageBase64, "mime": result.Mime, "size": [2]int{result.Width, result.Height},
		"context": result.Context, "frame": result.Frame, "timestamp": result.Timestamp,
	}, nil
}

func (b *Bridge) handleScreenshotNode(ctx context.Context, req *types.Request) (any, error) {
	n, _, ok := b.resolveTarget(req)
	if !ok {
		return nil, targetMissingErr()
	}
	vw, vh := b.Clock.Viewport()
	cam := input.FindActiveCamera3D(b.Tree.Root())
	rect, err := screenshot.NodeRect(n, n.ClassName(), vw, vh, cam)
	if err != nil {
		return nil, err
	}
	width, _ := req.Int("width")
	height, _ := req.Int("height")
	quality, hasQ := req.Float("quality")
	if !hasQ {
		quality = b.Cfg.DefaultQuality
	}
	result, err := b.Shots.CaptureRegion(rect, screenshot.Options{
		Width: width, Height: height, Quality: quality, MaxBase64Len: b.Cfg.MaxBase64Length, Context: "node",
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"image": result.ImageBase64, "mime": result.Mime, "size": [2]int{result.Width, result.Height},
		"context": result.Context, "frame": result.Frame, "timestamp": result.Timestamp,
	}, nil
}

func (b *Bridge) handleClick(ctx context.Context, req *types.Request) (any, error) {
	x, okX := req.Float("x")
	y, okY := req.Float("y")
	if !okX || !okY {
		return nil, apperr.ParamInvalid("x/y")
	}
	button, _ := req.Int("button")
	double, _ := req.Bool("double")
	b.Input.Click(x, y, button, double)
	return b.maybeSnapshot(req, map[string]any{}, "clicked point"), nil
}

func (b *Bridge) handleClickNode(ctx context.Context, req *types.Request) (any, error) {
	n, _, ok := b.resolveTarget(req)
	if !ok {
		return nil, targetMissingErr()
	}
	cam := input.FindActiveCamera3D(b.Tree.Root())
	if err := b.Input.ClickNode(n, cam); err != nil {
		return nil, apperr.EngineDiagnostic(err.Error())
	}
	return b.maybeSnapshot(req, map[string]any{}, "clicked node"), nil
}

func (b *Bridge) handleKey(ctx context.Context, req *types.Request) (any, error) {
	name, ok := req.String("key")
	if !ok || name == "" {
		return nil, apperr.ParamInvalid("key")
	}
	actionStr, _ := req.String("action")
	if actionStr == "" {
		actionStr = string(input.ActionTap)
	}
	duration, _ := req.Float("duration")
	if err := b.Input.Key(ctx, name, input.Action(actionStr), duration); err != nil {
		return nil, apperr.EngineDiagnostic(err.Error())
	}
	return withDescription(nil, "synthesized key event"), nil
}

func (b *Bridge) handleAction(ctx context.Context, req *types.Request) (any, error) {
	name, ok := req.String("action")
	if !ok || name == "" {
		return nil, apperr.ParamInvalid("action")
	}
	pressed, _ := req.Bool("pressed")
	strength, hasStrength := req.Float("strength")
	if !hasStrength {
		strength = 1
	}
	b.Input.TriggerAction(name, pressed, strength)
	return withDescription(nil, "triggered mapped action"), nil
}

func (b *Bridge) handleActions(ctx context.Context, req *types.Request) (any, error) {
	return withDescription(map[string]any{"actions": b.Actions}, "enumerated mapped actions"), nil
}

func (b *Bridge) handleMouseMove(ctx context.Context, req *types.Request) (any, error) {
	x, _ := req.Float("x")
	y, _ := req.Float("y")
	relX, _ := req.Float("relative_x")
	relY, _ := req.Float("relative_y")
	b.Input.MouseMove(x, y, relX, relY)
	return withDescription(nil, "moved cursor"), nil
}

func (b *Bridge) handleSequence(ctx context.Context, req *types.Request) (any, error) {
	rawSteps, ok := req.Array("steps")
	if !ok {
		return nil, apperr.ParamInvalid("steps")
	}
	steps := make([]input.Step, 0, len(rawSteps))
	for _, raw := range rawSteps {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		steps = append(steps, parseStep(b, m))
	}
	cam := input.FindActiveCamera3D(b.Tree.Root())
	if err := b.Input.ExecuteSequence(ctx, steps, cam); err != nil {
		return nil, err
	}

	out := map[string]any{}
	if after, _ := req.Bool("snapshot_after"); after {
		out["snapshot"] = snapshotToMap(b.takeSnapshot(nil, 0))
	}
	if after, _ := req.Bool("screenshot_after"); after {
		result, err := b.Shots.Capture(screenshot.Options{Quality: b.Cfg.DefaultQuality, MaxBase64Len: b.Cfg.MaxBase64Length, Context: "sequence"})
		if err == nil {
			out["screenshot"] = map[string]any{"image": result.ImageBase64, "mime": result.Mime, "size": [2]int{result.Width, result.Height}}
		}
	}
	return withDescription(out, "executed input sequence"), nil
}

func parseStep(b *Bridge, m map[string]any) input.Step {
	var step input.Step
	if wv, ok := m["wait"].(float64); ok {
		step.Wait = &wv
		return step
	}
	if key, ok := m["key"].(string); ok {
		step.Key = key
		if a, ok := m["action"].(string); ok {
			step.KeyAction = input.Action(a)
		} else {
			step.KeyAction = input.ActionTap
		}
		if d, ok := m["duration"].(float64); ok {
			step.Duration = d
		}
		return step
	}
	if clickNode, ok := m["click_node"].(string); ok {
		if n := b.Snap.ResolveRef(types.Ref(clickNode)); n != nil {
			step.ClickNode = n
		}
		return step
	}
	if click, ok := m["click"].([]any); ok && len(click) == 2 {
		x, _ := click[0].(float64)
		y, _ := click[1].(float64)
		step.Click = &[2]float64{x, y}
		return step
	}
	if mv, ok := m["mouse_move"].([]any); ok && len(mv) == 2 {
		x, _ := mv[0].(float64)
		y, _ := mv[1].(float64)
		step.MouseMove = &[2]float64{x, y}
		return step
	}
	if action, ok := m["action"].(string); ok {
		step.Action = action
		if p, ok := m["pressed"].(bool); ok {
			step.Pressed = &p
		}
		if s, ok := m["strength"].(float64); ok {
			step.Strength = s
		}
	}
	return step
}

func (b *Bridge) handleState(ctx context.Context, req *types.Request) (any, error) {
	n, _, ok := b.resolveTarget(req)
	if !ok {
		return nil, targetMissingErr()
	}
	return b.State.Read(n), nil
}

func (b *Bridge) handleSetProperty(ctx context.Context, req *types.Request) (any, error) {
	n, _, ok := b.resolveTarget(req)
	if !ok {
		return nil, targetMissingErr()
	}
	propName, ok := req.String("property")
	if !ok || propName == "" {
		return nil, apperr.ParamInvalid("property")
	}
	rawValue, ok := req.Value("value")
	if !ok {
		return nil, apperr.ParamInvalid("value")
	}
	existing, _ := n.Property(propName)
	coerced, err := serialize.Deserialize(existing, rawValue)
	if err != nil {
		return nil, apperr.ParamInvalid("value")
	}
	if err := n.SetProperty(propName, coerced); err != nil {
		return nil, apperr.TargetMissing(err.Error())
	}
	return b.maybeSnapshot(req, map[string]any{}, "set property"), nil
}

func (b *Bridge) handleCallMethod(ctx context.Context, req *types.Request) (any, error) {
	n, _, ok := b.resolveTarget(req)
	if !ok {
		return nil, targetMissingErr()
	}
	method, ok := req.String("method")
	if !ok || method == "" {
		return nil, apperr.ParamInvalid("method")
	}
	args, _ := req.Array("args")
	result, err := n.CallMethod(method, args)
	if err != nil {
		return nil, apperr.CapabilityMissing(err.Error())
	}
	return withDescription(map[string]any{"result": serialize.Serialize(result)}, "invoked method"), nil
}

func (b *Bridge) handleWait(ctx context.Context, req *types.Request) (any, error) {
	seconds, _ := req.Float("seconds")
	<-b.Clock.AfterSeconds(ctx, seconds)
	out := map[string]any{}
	if snap, _ := req.Bool("snapshot"); snap {
		out["snapshot"] = snapshotToMap(b.takeSnapshot(nil, 0))
	}
	if shot, _ := req.Bool("screenshot"); shot {
		result, err := b.Shots.Capture(screenshot.Options{Quality: b.Cfg.DefaultQuality, MaxBase64Len: b.Cfg.MaxBase64Length, Context: "wait"})
		if err == nil {
			out["screenshot"] = map[string]any{"image": result.ImageBase64, "mime": result.Mime, "size": [2]int{result.Width, result.Height}}
		}
	}
	return withDescription(out, "waited fixed delay"), nil
}

func (b *Bridge) handleWaitFor(ctx context.Context, req *types.Request) (any, error) {
	condStr, ok := req.String("condition")
	if !ok {
		return nil, apperr.ParamInvalid("condition")
	}
	property, _ := req.String("property")
	value, _ := req.Value("value")
	signal, _ := req.String("signal")
	timeout, _ := req.Float("timeout")
	pollInterval, _ := req.Float("poll_interval")

	result, err := b.Waiter.Wait(ctx, waiter.Request{
		Condition:    waiter.Condition(condStr),
		Property:     property,
		Value:        value,
		Signal:       signal,
		Timeout:      timeout,
		PollInterval: pollInterval,
		Resolve: func() engine.Node {
			node, _, ok := b.resolveTarget(req)
			if !ok {
				return nil
			}
			return node
		},
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"condition_met": result.ConditionMet, "elapsed": result.Elapsed}, nil
}

func (b *Bridge) handleInfo(ctx context.Context, req *types.Request) (any, error) {
	w, h := b.Clock.Viewport()
	return map[string]any{
		"scene_path": b.Tree.ScenePath(),
		"scene_name": b.Tree.SceneName(),
		"viewport":   [2]int{w, h},
		"fps":        b.Clock.FPS(),
		"frame":      b.Clock.Frame(),
		"paused":     b.Clock.Paused(),
		"time_scale": b.Clock.TimeScale(),
	}, nil
}

func (b *Bridge) handlePause(ctx context.Context, req *types.Request) (any, error) {
	paused, ok := req.Bool("paused")
	if !ok {
		return nil, apperr.ParamInvalid("paused")
	}
	b.Controller.SetPaused(paused)
	return withDescription(map[string]any{"paused": paused}, "toggled pause"), nil
}

func (b *Bridge) handleTimescale(ctx context.Context, req *types.Request) (any, error) {
	scale, ok := req.Float("scale")
	if !ok {
		return nil, apperr.ParamInvalid("scale")
	}
	b.Controller.SetTimeScale(scale)
	return withDescription(map[string]any{"scale": b.Clock.TimeScale()}, "set time scale"), nil
}

func (b *Bridge) handleSnapshotDiff(ctx context.Context, req *types.Request) (any, error) {
	depth, _ := req.Int("depth")
	current := b.takeSnapshot(nil, depth)
	prev := b.previousSnapshot()
	if prev == nil {
		return withDescription(map[string]any{"diff": nil, "note": "no prior snapshot to diff against"}, "snapshot diff"), nil
	}
	return withDescription(map[string]any{"current": snapshotToMap(current), "baseline": snapshotToMap(prev)}, "snapshot diff vs prior baseline"), nil
}

func (b *Bridge) handleSceneHistory(ctx context.Context, req *types.Request) (any, error) {
	return withDescription(map[string]any{"history": b.sceneHistory()}, "recent scene-tree changes"), nil
}

func (b *Bridge) handleHealth(ctx context.Context, req *types.Request) (any, error) {
	return b.Health.Status(), nil
}

func (b *Bridge) handleConsole(ctx context.Context, req *types.Request) (any, error) {
	if b.Console == nil {
		return withDescription(map[string]any{"lines": []string{}}, "no console log configured"), nil
	}
	lines := b.Console.Lines()
	if n, ok := req.Int("lines"); ok && n > 0 && n < len(lines) {
		lines = lines[len(lines)-n:]
	}
	return withDescription(map[string]any{"lines": lines}, "engine log tail"), nil
}

// handleEventsDrain implements GET /events: spec.md §4.6's drain(),
// exposed over HTTP so a client can collect accumulated signal/watch
// events (End-to-end scenario 3: "then drain events (externally)").
func (b *Bridge) handleEventsDrain(ctx context.Context, req *types.Request) (any, error) {
	return withDescription(map[string]any{"events": b.Events.Drain()}, "drained accumulated events"), nil
}

func (b *Bridge) handleEventsPeek(ctx context.Context, req *types.Request) (any, error) {
	return withDescription(map[string]any{"events": b.Events.Peek()}, "peeked accumulated events"), nil
}

func (b *Bridge) handleAddWatch(ctx context.Context, req *types.Request) (any, error) {
	path, ok := req.String("path")
	if !ok || path == "" {
		return nil, apperr.ParamInvalid("path")
	}
	property, ok := req.String("property")
	if !ok || property == "" {
		return nil, apperr.ParamInvalid("property")
	}
	label, _ := req.String("label")
	w := b.Events.AddWatch(path, property, label)
	return withDescription(map[string]any{"watch": w}, "registered property watch"), nil
}

func (b *Bridge) handleRemoveWatch(ctx context.Context, req *types.Request) (any, error) {
	path, ok := req.String("path")
	if !ok || path == "" {
		return nil, apperr.ParamInvalid("path")
	}
	property, ok := req.String("property")
	if !ok || property == "" {
		return nil, apperr.ParamInvalid("property")
	}
	removed := b.Events.RemoveWatch(path, property)
	return withDescription(map[string]any{"removed": removed}, "removed property watch"), nil
}

func (b *Bridge) handleGetWatches(ctx context.Context, req *types.Request) (any, error) {
	return withDescription(map[string]any{"watches": b.Events.GetWatches()}, "active property watches"), nil
}

func (b *Bridge) maybeSnapshot(req *types.Request, out map[string]any, desc string) map[string]any {
	if snap, _ := req.Bool("snapshot"); snap {
		out["snapshot"] = snapshotToMap(b.takeSnapshot(nil, 0))
	}
	return withDescription(out, desc)
}

func targetMissingErr() error {
	return apperr.TargetMissing("ref/path does not resolve to a node")
}
