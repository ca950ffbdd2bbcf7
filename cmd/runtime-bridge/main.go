// Command runtime-bridge starts the in-process HTTP control surface
// (spec.md §1-§2) against the running game. Until a real engine
// integration is linked in, it drives the bridge against an in-memory
// scene graph (internal/engine's Fake* types) so the full protocol is
// exercisable end to end.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dev-bridge/engine-runtime-bridge/internal/bridgelog"
	"github.com/dev-bridge/engine-runtime-bridge/internal/config"
	"github.com/dev-bridge/engine-runtime-bridge/internal/engine"
	"github.com/dev-bridge/engine-runtime-bridge/internal/httpbridge"
	"github.com/dev-bridge/engine-runtime-bridge/internal/routes"
	"github.com/dev-bridge/engine-runtime-bridge/internal/serialize"
)

// frameInterval is the wall-clock period the FakeClock ticks at when no
// real engine drives it; 60Hz matches the default FPS FakeClock reports.
const frameInterval = time.Second / 60

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "runtime-bridge:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("runtime-bridge", flag.ContinueOnError)
	cfg, err := config.Load(fs, args)
	if err != nil {
		return err
	}

	tree, clock, sink, capturer := buildFakeEngine(cfg)

	srv, err := httpbridge.New(cfg.Host, cfg.RuntimePort, 32)
	if err != nil {
		return fmt.Errorf("bind runtime bridge: %w", err)
	}
	defer srv.Close()

	b := routes.New(tree, clock, clock, sink, capturer, cfg)
	defer b.Events.Stop()
	routes.Register(srv, b)

	bridgelog.Bridge.Printf("listening on %s", srv.Addr())

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()
	for range ticker.C {
		clock.Tick(frameInterval.Seconds())
		b.Tick(srv)
	}
	return nil
}

// buildFakeEngine assembles a small demo scene tree so /snapshot, /state,
// and /screenshot have something concrete to report against when no real
// engine process is attached.
func buildFakeEngine(cfg config.Config) (*engine.FakeTree, *engine.FakeClock, *engine.FakeInputSink, *engine.FakeCapturer) {
	root := engine.NewFakeNode(1, "Node2D", "Root")

	player := engine.NewFakeNode(2, "CharacterBody2D", "Player")
	player.SetBuiltin("position", serialize.Vec2{X: 100, Y: 300})
	player.SetBuiltin("global_position", serialize.Vec2{X: 100, Y: 300})
	player.SetBuiltin("rotation", 0.0)
	player.SetBuiltin("scale", serialize.Vec2{X: 1, Y: 1})
	player.SetExported("speed", 200.0)
	player.SetBuiltin("is_on_floor", true)
	player.SetBuiltin("velocity", serialize.Vec2{X: 0, Y: 0})
	player.DeclareSignal("hit", 1)
	player.AddGroup("player")
	root.AddChild(player)

	hud := engine.NewFakeNode(3, "Control", "HUD")
	hud.SetBuiltin("global_position", serialize.Vec2{X: 0, Y: 0})
	hud.SetBuiltin("size", serialize.Vec2{X: 800, Y: 600})
	hud.SetBuiltin("global_rect", serialize.Rect2{Position: serialize.Vec2{X: 0, Y: 0}, Size: serialize.Vec2{X: 800, Y: 600}})
	root.AddChild(hud)

	label := engine.NewFakeNode(4, "Label", "ScoreLabel")
	label.SetBuiltin("text", "Score: 0")
	label.SetBuiltin("global_position", serialize.Vec2{X: 16, Y: 16})
	label.SetBuiltin("size", serialize.Vec2{X: 120, Y: 24})
	hud.AddChild(label)

	clock := engine.NewFakeClock()
	clock.SetViewport(cfg.DefaultScreenshotWidth, cfg.DefaultScreenshotHeight)

	tree := engine.NewFakeTree(root, "res://main.tscn", "Main")
	sink := engine.NewFakeInputSink()
	capturer := engine.NewFakeCapturer(cfg.DefaultScreenshotWidth, cfg.DefaultScreenshotHeight)

	return tree, clock, sink, capturer
}
