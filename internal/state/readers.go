package state

import (
	"github.com/dev-bridge/engine-runtime-bridge/internal/engine"
	"github.com/dev-bridge/engine-runtime-bridge/internal/serialize"
)

// Applicability is decided by exact class-name match or by property
// presence, the closest equivalent a bridge with no real engine type
// metadata has to the engine's own "is_class(...)" checks. A real
// integration would query the engine's class hierarchy directly instead.

type transformReader struct{}

func (transformReader) Applies(n engine.Node) bool {
	return has(n, "position") && has(n, "rotation") && has(n, "scale")
}
func (transformReader) Read(n engine.Node, out map[string]any) {
	copyProp(n, out, "position")
	copyProp(n, out, "global_position")
	copyProp(n, out, "rotation")
	copyProp(n, out, "scale")
}

type uiLayoutReader struct{}

func (uiLayoutReader) Applies(n engine.Node) bool { return has(n, "size") }
func (uiLayoutReader) Read(n engine.Node, out map[string]any) {
	copyProp(n, out, "size")
	copyProp(n, out, "global_position")
	if v, ok := prop(n, "visible_in_tree"); ok {
		out["visible_in_tree"] = serialize.Serialize(v)
	}
}

type canvasItemReader struct{}

func (canvasItemReader) Applies(n engine.Node) bool { return has(n, "modulate") }
func (canvasItemReader) Read(n engine.Node, out map[string]any) {
	copyProp(n, out, "modulate")
	copyProp(n, out, "self_modulate")
	copyProp(n, out, "z_index")
	if v, ok := prop(n, "visible_in_tree"); ok {
		out["visible_in_tree"] = serialize.Serialize(v)
	}
}

type kinematicBodyReader struct{}

func (kinematicBodyReader) Applies(n engine.Node) bool { return has(n, "is_on_floor") }
func (kinematicBodyReader) Read(n engine.Node, out map[string]any) {
	copyProp(n, out, "velocity")
	copyProp(n, out, "is_on_floor")
	copyProp(n, out, "is_on_wall")
	copyProp(n, out, "is_on_ceiling")
	if v, ok := prop(n, "slide_collisions"); ok {
		out["slide_collisions"] = serialize.Serialize(v)
	}
}

type rigidBodyReader struct{}

func (rigidBodyReader) Applies(n engine.Node) bool { return has(n, "linear_velocity") }
func (rigidBodyReader) Read(n engine.Node, out map[string]any) {
	copyProp(n, out, "linear_velocity")
	copyProp(n, out, "angular_velocity")
	copyProp(n, out, "sleeping")
	copyProp(n, out, "mass")
	copyProp(n, out, "gravity_scale")
	copyProp(n, out, "contact_monitor")
	if has(n, "physics_material_override") {
		copyProp(n, out, "friction")
		copyProp(n, out, "bounce")
	}
}

type animationPlayerReader struct{}

func (animationPlayerReader) Applies(n engine.Node) bool { return n.ClassName() == "AnimationPlayer" }
func (animationPlayerReader) Read(n engine.Node, out map[string]any) {
	copyProp(n, out, "current_animation")
	copyProp(n, out, "current_animation_position")
	copyProp(n, out, "is_playing")
}

type animatedSpriteReader struct{}

func (animatedSpriteReader) Applies(n engine.Node) bool {
	return n.ClassName() == "AnimatedSprite2D" || n.ClassName() == "AnimatedSprite3D"
}
func (animatedSpriteReader) Read(n engine.Node, out map[string]any) {
	copyProp(n, out, "animation")
	copyProp(n, out, "frame")
	copyProp(n, out, "is_playing")
}

type areaReader struct{}

func (areaReader) Applies(n engine.Node) bool {
	return n.ClassName() == "Area2D" || n.ClassName() == "Area3D"
}
func (areaReader) Read(n engine.Node, out map[string]any) {
	if v, ok := prop(n, "overlapping_bodies"); ok {
		out["overlapping_bodies"] = serialize.Serialize(v)
	}
	if v, ok := prop(n, "overlapping_areas"); ok {
		out["overlapping_areas"] = serialize.Serialize(v)
	}
}

type timerReader struct{}

func (timerReader) Applies(n engine.Node) bool { return n.ClassName() == "Timer" }
func (timerReader) Read(n engine.Node, out map[string]any) {
	copyProp(n, out, "time_left")
	copyProp(n, out, "is_stopped")
	copyProp(n, out, "wait_time")
	copyProp(n, out, "one_shot")
	copyProp(n, out, "autostart")
}

type audioPlayerReader struct{}

func (audioPlayerReader) Applies(n engine.Node) bool { return has(n, "stream") && has(n, "volume_db") }
func (audioPlayerReader) Read(n engine.Node, out map[string]any) {
	copyProp(n, out, "playing")
	copyProp(n, out, "stream")
	copyProp(n, out, "volume_db")
	copyProp(n, out, "bus")
	if n.ClassName() == "AudioStreamPlayer2D" || n.ClassName() == "AudioStreamPlayer3D" {
		copyProp(n, out, "max_distance")
		copyProp(n, out, "attenuation_model")
	}
}

type particleEmitterReader struct{}

func (particleEmitterReader) Applies(n engine.Node) bool { return has(n, "emitting") }
func (particleEmitterReader) Read(n engine.Node, out map[string]any) {
	copyProp(n, out, "emitting")
	copyProp(n, out, "amount")
	copyProp(n, out, "lifetime")
	copyProp(n, out, "one_shot")
}

type camera2DReader struct{}

func (camera2DReader) Applies(n engine.Node) bool { return n.ClassName() == "Camera2D" }
func (camera2DReader) Read(n engine.Node, out map[string]any) {
	copyProp(n, out, "current")
	copyProp(n, out, "zoom")
	if v, ok := prop(n, "limit"); ok {
		out["bounds"] = serialize.Serialize(v)
	}
	copyProp(n, out, "drag_horizontal_enabled")
	copyProp(n, out, "drag_vertical_enabled")
}

type camera3DReader struct{}

func (camera3DReader) Applies(n engine.Node) bool { return n.ClassName() == "Camera3D" }
func (camera3DReader) Read(n engine.Node, out map[string]any) {
	copyProp(n, out, "current")
	copyProp(n, out, "fov")
	copyProp(n, out, "near")
	copyProp(n, out, "far")
	copyProp(n, out, "projection")
}

type navAgentReader struct{}

func (navAgentReader) Applies(n engine.Node) bool {
	return n.ClassName() == "NavigationAgent2D" || n.ClassName() == "NavigationAgent3D"
}
func (navAgentReader) Read(n engine.Node, out map[string]any) {
	copyProp(n, out, "target_position")
	copyProp(n, out, "is_navigation_finished")
	copyProp(n, out, "distance_to_target")
	copyProp(n, out, "is_target_reachable")
	copyProp(n, out, "max_speed")
}

type raycastReader struct{}

func (raycastReader) Applies(n engine.Node) bool {
	return n.ClassName() == "RayCast2D" || n.ClassName() == "RayCast3D"
}
func (raycastReader) Read(n engine.Node, out map[string]any) {
	copyProp(n, out, "enabled")
	copyProp(n, out, "is_colliding")
	if v, ok := prop(n, "collider_name"); ok {
		out["collider"] = serialize.Serialize(v)
	}
	copyProp(n, out, "collision_point")
	copyProp(n, out, "collision_normal")
}

type tileMapLayerReader struct{}

func (tileMapLayerReader) Applies(n engine.Node) bool { return n.ClassName() == "TileMapLayer" }
func (tileMapLayerReader) Read(n engine.Node, out map[string]any) {
	if v, ok := prop(n, "tile_set"); ok {
		out["tileset"] = serialize.Serialize(v)
	}
	copyProp(n, out, "enabled")
	if v, ok := prop(n, "used_cells_count"); ok {
		out["used_cells_count"] = serialize.Serialize(v)
	}
}

type progressReader struct{}

func (progressReader) Applies(n engine.Node) bool { return has(n, "min_value") && has(n, "max_value") }
func (progressReader) Read(n engine.Node, out map[string]any) {
	copyProp(n, out, "value")
	if v, ok := prop(n, "min_value"); ok {
		out["min"] = serialize.Serialize(v)
	}
	if v, ok := prop(n, "max_value"); ok {
		out["max"] = serialize.Serialize(v)
	}
	if v, ok := prop(n, "ratio"); ok {
		out["ratio"] = serialize.Serialize(v)
	}
}

type textInputReader struct{}

func (textInputReader) Applies(n engine.Node) bool {
	return n.ClassName() == "LineEdit" || n.ClassName() == "TextEdit"
}
func (textInputReader) Read(n engine.Node, out map[string]any) {
	copyProp(n, out, "text")
	copyProp(n, out, "placeholder_text")
	copyProp(n, out, "editable")
}

type labelButtonReader struct{}

func (labelButtonReader) Applies(n engine.Node) bool {
	return n.ClassName() == "Label" || n.ClassName() == "Button"
}
func (labelButtonReader) Read(n engine.Node, out map[string]any) {
	copyProp(n, out, "text")
	if n.ClassName() == "Button" {
		copyProp(n, out, "disabled")
	}
}
