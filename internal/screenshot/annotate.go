package screenshot

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/dev-bridge/engine-runtime-bridge/internal/types"
)

// Annotation is one entry collect_annotations produces (spec.md §4.5).
type Annotation struct {
	Ref        types.Ref
	Type       string
	ScreenPos  [2]float64
	ScreenRect *[4]float64 // x,y,w,h; nil unless the node is a UI rect
}

// organizational container classes with no script properties are skipped
// (spec.md §4.5 per-node eligibility).
var organizationalClasses = map[string]bool{
	"Node": true, "Node2D": true, "Node3D": true, "CanvasLayer": true,
}

// visualClasses are always annotated when visible (spec.md §4.5:
// "common visual/interactive classes... annotated").
func isVisualClass(class string) bool {
	switch {
	case strings.Contains(class, "Button"), strings.Contains(class, "Label"),
		strings.Contains(class, "Sprite"), strings.Contains(class, "Body"),
		strings.Contains(class, "Camera"), strings.Contains(class, "Control"),
		strings.Contains(class, "Area"):
		return true
	}
	return false
}

// CollectAnnotations walks a snapshot's node tree (already bounded by the
// Snapshot Engine) selecting nodes eligible for the overlay, per spec.md
// §4.5's per-node eligibility rules.
func CollectAnnotations(root *types.NodeRecord, viewport [2]int, activeCamera3DBehind func(pos any) bool) []Annotation {
	var out []Annotation
	var walk func(n *types.NodeRecord)
	walk = func(n *types.NodeRecord) {
		eligible := n.Visible &&
			!(organizationalClasses[n.Class] && len(n.Properties) == 0 && n.Text == "") &&
			(n.Text != "" || len(n.Properties) > 0 || isVisualClass(n.Class))
		if eligible && !(strings.Contains(n.Class, "3D") && activeCamera3DBehind != nil && activeCamera3DBehind(n.GlobalPosition)) {
			if a, ok := annotationFor(n, viewport); ok {
				out = append(out, a)
			}
		}
		for i := range n.Children {
			walk(&n.Children[i])
		}
	}
	if root != nil {
		walk(root)
	}
	return out
}

func annotationFor(n *types.NodeRecord, viewport [2]int) (Annotation, bool) {
	pos, ok := asXY(n.GlobalPosition)
	if !ok {
		pos, ok = asXY(n.Position)
	}
	if !ok {
		return Annotation{}, false
	}
	if pos[0] < 0 || pos[1] < 0 || pos[0] > float64(viewport[0]) || pos[1] > float64(viewport[1]) {
		return Annotation{}, false
	}
	a := Annotation{Ref: n.Ref, Type: n.Class, ScreenPos: pos}
	if size, ok := asXY(n.Size); ok {
		a.ScreenRect = &[4]float64{pos[0], pos[1], size[0], size[1]}
	}
	return a, true
}

func asXY(v any) ([2]float64, bool) {
	switch t := v.(type) {
	case []float64:
		if len(t) >= 2 {
			return [2]float64{t[0], t[1]}, true
		}
	case []any:
		if len(t) >= 2 {
			x, ok1 := t[0].(float64)
			y, ok2 := t[1].(float64)
			if ok1 && ok2 {
				return [2]float64{x, y}, true
			}
		}
	}
	return [2]float64{}, false
}

// RenderOverlay draws the annotation overlay onto an offscreen surface
// the size of the viewport, then alpha-blends it onto base (spec.md
// §4.5 Rendering). Returns a new image; base is not mutated.
func RenderOverlay(base image.Image, annotations []Annotation) image.Image {
	bounds := base.Bounds()
	overlay := image.NewRGBA(bounds)

	face := basicfont.Face7x13
	labelBG := color.RGBA{R: 20, G: 20, B: 24, A: 200}
	labelFG := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	outline := color.RGBA{R: 0, G: 0, B: 0, A: 255}
	dotColor := color.RGBA{R: 255, G: 96, B: 32, A: 255}

	for _, a := range annotations {
		x, y := int(a.ScreenPos[0]), int(a.ScreenPos[1])

		if a.ScreenRect != nil {
			drawRectOutline(overlay, int(a.ScreenRect[0]), int(a.ScreenRect[1]),
				int(a.ScreenRect[2]), int(a.ScreenRect[3]), outline)
		}

		label := string(a.Ref)
		textW := font.MeasureString(face, label).Ceil()
		pillW, pillH := textW+10, 16
		px, py := x-pillW/2, y-pillH-6
		drawPill(overlay, px, py, pillW, pillH, labelBG)
		drawOutlinedText(overlay, face, px+5, py+pillH-4, label, labelFG, outline)

		drawDot(overlay, x, y, 3, dotColor)
	}

	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, base, bounds.Min, draw.Src)
	draw.Draw(out, bounds, overlay, bounds.Min, draw.Over)
	return out
}

func drawRectOutline(img *image.RGBA, x, y, w, h int, c color.Color) {
	for i := x; i < x+w; i++ {
		img.Set(i, y, c)
		img.Set(i, y+h, c)
	}
	for j := y; j < y+h; j++ {
		img.Set(x, j, c)
		img.Set(x+w, j, c)
	}
}

func drawPill(img *image.RGBA, x, y, w, h int, c color.Color) {
	r := image.Rect(x, y, x+w, y+h)
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Over)
}

func drawDot(img *image.RGBA, cx, cy, radius int, c color.Color) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				img.Set(cx+dx, cy+dy, c)
			}
		}
	}
}

// drawOutlinedText draws label at (x,y) in fg with a 1px outline in
// outline for readability against arbitrary backgrounds (spec.md §4.5:
// "a centered pill-shaped label carrying the ref, with outlined text").
func drawOutlinedText(img *image.RGBA, face font.Face, x, y int, label string, fg, outline color.Color) {
	pt := fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	for _, off := range [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		d := &font.Drawer{
			Dst:  img,
			Src:  image.NewUniform(outline),
			Face: face,
			Dot:  fixed.Point26_6{X: pt.X + fixed.I(off[0]), Y: pt.Y + fixed.I(off[1])},
		}
		d.DrawString(label)
	}
	d := &font.Drawer{Dst: img, Src: image.NewUniform(fg), Face: face, Dot: pt}
	d.DrawString(label)
}
