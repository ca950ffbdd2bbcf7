package screenshot

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-bridge/engine-runtime-bridge/internal/types"
)

func TestCollectAnnotationsIncludesVisualClass(t *testing.T) {
	root := &types.NodeRecord{
		Ref:            "n1",
		Class:          "Button",
		Visible:        true,
		GlobalPosition: []float64{100, 200},
	}
	out := CollectAnnotations(root, [2]int{800, 600}, nil)
	require.Len(t, out, 1)
	assert.Equal(t, types.Ref("n1"), out[0].Ref)
	assert.Equal(t, [2]float64{100, 200}, out[0].ScreenPos)
}

func TestCollectAnnotationsSkipsInvisible(t *testing.T) {
	root := &types.NodeRecord{
		Class:          "Button",
		Visible:        false,
		GlobalPosition: []float64{100, 200},
	}
	out := CollectAnnotations(root, [2]int{800, 600}, nil)
	assert.Empty(t, out)
}

func TestCollectAnnotationsSkipsEmptyOrganizationalNodes(t *testing.T) {
	root := &types.NodeRecord{
		Class:          "Node2D",
		Visible:        true,
		GlobalPosition: []float64{100, 200},
	}
	out := CollectAnnotations(root, [2]int{800, 600}, nil)
	assert.Empty(t, out)
}

func TestCollectAnnotationsSkipsOutOfViewport(t *testing.T) {
	root := &types.NodeRecord{
		Class:          "Button",
		Visible:        true,
		GlobalPosition: []float64{-5, 200},
	}
	out := CollectAnnotations(root, [2]int{800, 600}, nil)
	assert.Empty(t, out)
}

func TestCollectAnnotationsRecursesChildren(t *testing.T) {
	root := &types.NodeRecord{
		Class:   "Node2D",
		Visible: true,
		Children: []types.NodeRecord{
			{Class: "Label", Visible: true, GlobalPosition: []float64{10, 10}, Text: "hi"},
		},
	}
	out := CollectAnnotations(root, [2]int{800, 600}, nil)
	require.Len(t, out, 1)
	assert.Equal(t, "Label", out[0].Type)
}

func TestCollectAnnotationsSetsScreenRectWhenSizePresent(t *testing.T) {
	root := &types.NodeRecord{
		Class:          "Button",
		Visible:        true,
		GlobalPosition: []float64{10, 10},
		Size:           []float64{30, 15},
	}
	out := CollectAnnotations(root, [2]int{800, 600}, nil)
	require.Len(t, out, 1)
	require.NotNil(t, out[0].ScreenRect)
	assert.Equal(t, [4]float64{10, 10, 30, 15}, *out[0].ScreenRect)
}

func TestRenderOverlayReturnsNewImageSameSize(t *testing.T) {
	base := image.NewRGBA(image.Rect(0, 0, 50, 50))
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			base.Set(x, y, color.RGBA{R: 10, G: 10, B: 10, A: 255})
		}
	}
	annotations := []Annotation{{Ref: "n1", Type: "Button", ScreenPos: [2]float64{25, 25}}}

	out := RenderOverlay(base, annotations)
	require.Equal(t, base.Bounds(), out.Bounds())

	r, g, b, _ := base.At(0, 0).RGBA()
	assert.Equal(t, uint32(10*257), r)
	assert.Equal(t, uint32(10*257), g)
	assert.Equal(t, uint32(10*257), b)
}
