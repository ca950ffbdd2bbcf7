package screenshot

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-bridge/engine-runtime-bridge/internal/engine"
)

func TestCaptureProducesJPEGWithinBudget(t *testing.T) {
	capturer := engine.NewFakeCapturer(64, 64)
	clock := engine.NewFakeClock()
	p := New(capturer, clock)

	res, err := p.Capture(Options{Width: 32, Height: 32, Quality: 0.8, MaxBase64Len: 2_000_000})
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", res.Mime)
	assert.Equal(t, 32, res.Width)
	assert.Equal(t, 32, res.Height)
	assert.NotEmpty(t, res.ImageBase64)
}

func TestCaptureAdaptsQualityUnderTightBudget(t *testing.T) {
	capturer := engine.NewFakeCapturer(512, 512)
	clock := engine.NewFakeClock()
	p := New(capturer, clock)

	res, err := p.Capture(Options{Width: 512, Height: 512, Quality: 0.95, MaxBase64Len: 200})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(res.ImageBase64), 2000, "should keep shrinking down to the quality floor even if still over budget")
}

func TestCaptureErrorsWhenCapturerFails(t *testing.T) {
	capturer := &failingCapturer{}
	clock := engine.NewFakeClock()
	p := New(capturer, clock)

	_, err := p.Capture(Options{})
	assert.Error(t, err)
}

type failingCapturer struct{}

func (f *failingCapturer) CaptureFrame() (image.Image, error) { return nil, nil }

func TestCaptureRegionCropsBeforeEncoding(t *testing.T) {
	capturer := engine.NewFakeCapturer(100, 100)
	clock := engine.NewFakeClock()
	p := New(capturer, clock)

	region := image.Rect(10, 10, 50, 50)
	res, err := p.CaptureRegion(region, Options{Width: 40, Height: 40})
	require.NoError(t, err)
	assert.Equal(t, 40, res.Width)
	assert.Equal(t, 40, res.Height)
}

func TestResizeDefaultsToSourceDimensionsWhenUnset(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	resized := Resize(img, 0, 0)
	assert.Equal(t, 20, resized.Bounds().Dx())
	assert.Equal(t, 10, resized.Bounds().Dy())
}

func TestResizeScalesToRequestedDimensions(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 10))
	resized := Resize(img, 10, 5)
	assert.Equal(t, 10, resized.Bounds().Dx())
	assert.Equal(t, 5, resized.Bounds().Dy())
}
