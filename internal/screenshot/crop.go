package screenshot

import (
	"image"

	"github.com/dev-bridge/engine-runtime-bridge/internal/apperr"
	"github.com/dev-bridge/engine-runtime-bridge/internal/engine"
	"github.com/dev-bridge/engine-runtime-bridge/internal/serialize"
)

// NodeRect computes the screen-space rectangle capture_node crops to
// (spec.md §4.5 "Node-focused crop"): UI nodes use their global rect with
// a small pad; 2D nodes center a square region on their global position;
// 3D nodes require an active 3D camera and center the same square on the
// x,y of their global position (depth is dropped; no camera projection is
// applied). The rect is clamped to the viewport.
func NodeRect(n engine.Node, class string, viewportW, viewportH int, activeCamera3D engine.Node) (image.Rectangle, error) {
	const pad = 16
	const squareSize = 200

	var r image.Rectangle
	switch {
	case isUINode(class):
		pos, hasPos := n.Property("global_position")
		size, hasSize := n.Property("size")
		if !hasPos || !hasSize {
			return image.Rectangle{}, apperr.TargetMissing("UI node has no rect for crop")
		}
		x, y := xyOf(pos)
		w, h := xyOf(size)
		r = image.Rect(int(x)-pad, int(y)-pad, int(x+w)+pad, int(y+h)+pad)
	case is2DClass(class):
		pos, has := n.Property("global_position")
		if !has {
			return image.Rectangle{}, apperr.TargetMissing("2D node has no global_position")
		}
		x, y := xyOf(pos)
		half := squareSize / 2
		r = image.Rect(int(x)-half, int(y)-half, int(x)+half, int(y)+half)
	case is3DClass(class):
		if activeCamera3D == nil {
			return image.Rectangle{}, apperr.CapabilityMissing("no active 3D camera for node-focused crop")
		}
		pos, has := n.Property("global_position")
		if !has {
			return image.Rectangle{}, apperr.TargetMissing("3D node has no global_position")
		}
		x, y := xyOf(pos)
		half := squareSize / 2
		r = image.Rect(int(x)-half, int(y)-half, int(x)+half, int(y)+half)
	default:
		return image.Rectangle{}, apperr.CapabilityMissing("unsupported node type for screenshot crop")
	}

	clamped := r.Intersect(image.Rect(0, 0, viewportW, viewportH))
	if clamped.Empty() {
		return image.Rectangle{}, apperr.TargetMissing("crop rect is empty after clamping to viewport")
	}
	return clamped, nil
}

func isUINode(class string) bool {
	switch class {
	case "Control", "Button", "Label", "Panel", "LineEdit", "TextEdit", "ProgressBar", "TextureRect", "ColorRect":
		return true
	}
	return false
}

func is2DClass(class string) bool { return containsAny(class, "2D") }
func is3DClass(class string) bool { return containsAny(class, "3D") }

func containsAny(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

func xyOf(v any) (float64, float64) {
	switch t := v.(type) {
	case serialize.Vec2:
		return t.X, t.Y
	case serialize.Vec3:
		return t.X, t.Y
	}
	return 0, 0
}

// cropImage returns the sub-rectangle of img described by r: a SubImage
// view sharing img's pixels when img supports SubImage, otherwise a new
// RGBA copy.
func cropImage(img image.Image, r image.Rectangle) image.Image {
	if sub, ok := img.(interface {
		SubImage(r image.Rectangle) image.Image
	}); ok {
		return sub.SubImage(r)
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := 0; y < r.Dy(); y++ {
		for x := 0; x < r.Dx(); x++ {
			dst.Set(x, y, img.At(r.Min.X+x, r.Min.Y+y))
		}
	}
	return dst
}
