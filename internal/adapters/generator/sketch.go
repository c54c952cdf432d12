package generator

import (
	"context"
	"fmt"
	"image"
	"sketchify/internal/core/domain"

	"github.com/rs/zerolog/log"
)

// SketchParams tunes the local filter pipelines. Zero values are replaced by
// the documented defaults, so callers can override any subset.
type SketchParams struct {
	// BlurKernel is the Gaussian kernel size for pencil, artistic and color
	// (odd, default 21).
	BlurKernel int
	// DetailBlurKernel is the kernel size for the detailed style (default 15).
	DetailBlurKernel int
	// EdgeLow and EdgeHigh are the double thresholds for the detailed style's
	// edge operator (defaults 50 and 150).
	EdgeLow  int
	EdgeHigh int
	// Sharpen enables the high-pass pass of the artistic style (default on).
	Sharpen *bool
	// Alpha and Beta are the artistic contrast/brightness terms
	// (defaults 1.2 and 10).
	Alpha float64
	Beta  float64
	// ColorIntensity is the fraction of original saturation kept by the color
	// style (default 0.3).
	ColorIntensity float64
	// SketchWeight and ColorWeight blend the pencil layer against the
	// desaturated original for the color style (defaults 0.7 and 0.3).
	SketchWeight float64
	ColorWeight  float64
}

func DefaultSketchParams() SketchParams {
	sharpen := true
	return SketchParams{
		BlurKernel:       21,
		DetailBlurKernel: 15,
		EdgeLow:          50,
		EdgeHigh:         150,
		Sharpen:          &sharpen,
		Alpha:            1.2,
		Beta:             10,
		ColorIntensity:   0.3,
		SketchWeight:     0.7,
		ColorWeight:      0.3,
	}
}

func (p SketchParams) withDefaults() SketchParams {
	d := DefaultSketchParams()
	if p.BlurKernel <= 0 {
		p.BlurKernel = d.BlurKernel
	}
	if p.DetailBlurKernel <= 0 {
		p.DetailBlurKernel = d.DetailBlurKernel
	}
	if p.EdgeLow <= 0 {
		p.EdgeLow = d.EdgeLow
	}
	if p.EdgeHigh <= 0 {
		p.EdgeHigh = d.EdgeHigh
	}
	if p.Sharpen == nil {
		p.Sharpen = d.Sharpen
	}
	if p.Alpha == 0 {
		p.Alpha = d.Alpha
	}
	if p.Beta == 0 {
		p.Beta = d.Beta
	}
	if p.ColorIntensity == 0 {
		p.ColorIntensity = d.ColorIntensity
	}
	if p.SketchWeight == 0 {
		p.SketchWeight = d.SketchWeight
	}
	if p.ColorWeight == 0 {
		p.ColorWeight = d.ColorWeight
	}
	return p
}

// Sketch is the local filter engine. It is fully deterministic: identical
// input bytes, style and parameters yield identical output bytes.
type Sketch struct {
	params     SketchParams
	constraint domain.SizeConstraint
}

func NewSketch(params SketchParams, constraint domain.SizeConstraint) *Sketch {
	return &Sketch{params: params.withDefaults(), constraint: constraint}
}

func (s *Sketch) Name() string {
	return "sketch"
}

func (s *Sketch) Kind() domain.ProviderKind {
	return domain.ProviderLocal
}

// Available is always true; the local engine is the final fallback.
func (s *Sketch) Available() bool {
	return true
}

func (s *Sketch) Constraint() domain.SizeConstraint {
	return s.constraint
}

func (s *Sketch) Produce(_ context.Context, request *domain.EffectRequest, source domain.Image) (domain.Image, error) {
	return s.Apply(source, request.Style, s.params)
}

// Apply runs the pipeline for one of the four local styles. The vivid style
// is served by the color pipeline.
func (s *Sketch) Apply(img domain.Image, style domain.Style, params SketchParams) (domain.Image, error) {
	if img.Pixels == nil || img.Pixels.Bounds().Empty() {
		return domain.Image{}, domain.ErrEmptyImage
	}

	p := params.withDefaults()

	log.Debug().Str("style", string(style)).Msg("applying local sketch filter")

	var out image.Image
	switch style {
	case domain.StylePencil:
		out = pencilSketch(img.Pixels, p.BlurKernel)
	case domain.StyleDetailed:
		out = detailedSketch(img.Pixels, p)
	case domain.StyleArtistic:
		out = artisticSketch(img.Pixels, p)
	case domain.StyleColor, domain.StyleVivid:
		out = colorSketch(img.Pixels, p)
	default:
		return domain.Image{}, fmt.Errorf("%w: %q", domain.ErrUnknownStyle, style)
	}

	return domain.Image{Pixels: out, Origin: img.Origin}, nil
}

// pencilSketch is the base pipeline: grayscale, invert, blur, dodge-blend
// against the original grayscale.
func pencilSketch(src image.Image, blurKernel int) *image.Gray {
	gray := grayscale(src)
	blurred := gaussianBlurGray(invertGray(gray), blurKernel)
	return dodgeBlend(blurred, gray)
}

func detailedSketch(src image.Image, p SketchParams) *image.Gray {
	gray := grayscale(src)
	edges := invertGray(edgeMap(gray, p.EdgeLow, p.EdgeHigh))
	base := pencilSketch(src, p.DetailBlurKernel)
	return andGray(base, edges)
}

func artisticSketch(src image.Image, p SketchParams) *image.Gray {
	sketch := pencilSketch(src, p.BlurKernel)
	if *p.Sharpen {
		sketch = sharpenGray(sketch)
	}
	return adjustGray(sketch, p.Alpha, p.Beta)
}

func colorSketch(src image.Image, p SketchParams) *image.RGBA {
	sketch := grayToRGBA(pencilSketch(src, p.BlurKernel))
	desaturated := reduceSaturation(toRGBA(src), p.ColorIntensity)
	return blendRGBA(sketch, desaturated, p.SketchWeight, p.ColorWeight)
}
