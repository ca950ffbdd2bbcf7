package engine

import (
	"image"
	"image/color"
)

// ViewportCapturer is the engine's screen-capture contract (spec.md
// §4.5 stage 1: "Acquire the viewport's current texture"). A real
// integration reads back the render target; the fake used for tests and
// local preview synthesizes a flat-color image.
type ViewportCapturer interface {
	CaptureFrame() (image.Image, error)
}

// FakeCapturer returns a solid-color image of the given size, standing
// in for a real viewport texture readback.
type FakeCapturer struct {
	Width, Height int
	Fill          func(w, h int) image.Image
}

func NewFakeCapturer(w, h int) *FakeCapturer {
	return &FakeCapturer{Width: w, Height: h}
}

func (c *FakeCapturer) CaptureFrame() (image.Image, error) {
	if c.Fill != nil {
		return c.Fill(c.Width, c.Height), nil
	}
	img := image.NewRGBA(image.Rect(0, 0, c.Width, c.Height))
	fillSolid(img, 32, 32, 40, 255)
	return img, nil
}

func fillSolid(img *image.RGBA, r, g, b, a uint8) {
	bounds := img.Bounds()
	c := color.RGBA{R: r, G: g, B: b, A: a}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}
