// Package screenshot implements the Screenshot Pipeline (spec.md §4.5):
// viewport capture, optional annotation overlay, resize, and
// quality-adaptive JPEG encoding under a byte budget.
package screenshot

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"

	"github.com/dev-bridge/engine-runtime-bridge/internal/apperr"
	"github.com/dev-bridge/engine-runtime-bridge/internal/engine"
)

// qualityFloor and qualityStep implement spec.md §4.5's budget adaptation:
// "re-encode at progressively lower quality in ~0.15 steps down to a
// floor of 0.2".
const (
	qualityStep  = 0.15
	qualityFloor = 0.2
)

// Result is the wire shape spec.md §4.5's capture contract returns.
type Result struct {
	ImageBase64 string
	Mime        string
	Width       int
	Height      int
	Context     string
	Frame       uint64
	Timestamp   float64
}

// Pipeline captures frames from an engine.ViewportCapturer and encodes
// them per spec.md §4.5.
type Pipeline struct {
	capturer engine.ViewportCapturer
	clock    engine.Clock
}

func New(capturer engine.ViewportCapturer, clock engine.Clock) *Pipeline {
	return &Pipeline{capturer: capturer, clock: clock}
}

// Options configures one Capture call.
type Options struct {
	Width, Height int
	Quality       float64
	MaxBase64Len  int
	Annotations   []Annotation // nil disables the overlay stage
	Context       string
}

// CaptureRegion runs the pipeline against a cropped sub-rectangle of the
// captured frame, used by GET /screenshot/node (spec.md §4.5
// "Node-focused crop").
func (p *Pipeline) CaptureRegion(region image.Rectangle, opts Options) (*Result, error) {
	img, err := p.capturer.CaptureFrame()
	if err != nil || img == nil {
		return nil, apperr.ResourceUnavailable("viewport capture returned null")
	}
	cropped := cropImage(img, region)
	return p.encode(cropped, opts)
}

// Capture runs the full pipeline: acquire, optionally annotate, resize,
// encode under budget, base64-encode (spec.md §4.5 stages 1-5).
func (p *Pipeline) Capture(opts Options) (*Result, error) {
	img, err := p.capturer.CaptureFrame()
	if err != nil || img == nil {
		return nil, apperr.ResourceUnavailable("viewport capture returned null")
	}

	if len(opts.Annotations) > 0 {
		img = RenderOverlay(img, opts.Annotations)
	}
	return p.encode(img, opts)
}

func (p *Pipeline) encode(img image.Image, opts Options) (*Result, error) {
	resized := Resize(img, opts.Width, opts.Height)

	quality := opts.Quality
	if quality <= 0 {
		quality = 0.8
	}
	budget := opts.MaxBase64Len
	if budget <= 0 {
		budget = 2_000_000
	}

	var encoded []byte
	for {
		buf, err := encodeJPEG(resized, quality)
		if err != nil {
			return nil, apperr.Internal(err.Error())
		}
		b64Len := base64.StdEncoding.EncodedLen(len(buf))
		if b64Len <= budget || quality <= qualityFloor {
			encoded = buf
			break
		}
		quality -= qualityStep
		if quality < qualityFloor {
			quality = qualityFloor
		}
	}

	return &Result{
		ImageBase64: base64.StdEncoding.EncodeToString(encoded),
		Mime:        "image/jpeg",
		Width:       resized.Bounds().Dx(),
		Height:      resized.Bounds().Dy(),
		Context:     opts.Context,
		Frame:       p.clock.Frame(),
		Timestamp:   p.clock.Now(),
	}, nil
}

// Resize scales img to w x h using a high-quality filter (spec.md §4.5
// stage 3: CatmullRom, the same family of resampler golang.org/x/image
// exists specifically to provide — stdlib's image package has no
// scaler at all).
func Resize(img image.Image, w, h int) image.Image {
	if w <= 0 || h <= 0 {
		w, h = img.Bounds().Dx(), img.Bounds().Dy()
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality float64) ([]byte, error) {
	q := int(quality * 100)
	if q < 1 {
		q = 1
	}
	if q > 100 {
		q = 100
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: q}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
