package converter

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"sketchify/internal/core/domain"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
)

const (
	startQuality    = 95
	qualityStep     = 5
	qualityFloor    = 10
	fallbackQuality = 85
	scaleStep       = 0.1
	minScale        = 0.3
)

// Normalizer makes images conform to a provider's SizeConstraint. It is
// stateless and never performs network calls.
type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize applies the dimension policy: upscale so the smaller dimension
// reaches the minimum, then downscale so the larger dimension fits the
// maximum. Both checks run independently, in that order. Conforming images
// are returned as-is.
func (n *Normalizer) Normalize(img domain.Image, c domain.SizeConstraint) (domain.Image, error) {
	if img.Pixels == nil {
		return domain.Image{}, domain.ErrEmptyImage
	}

	bounds := img.Pixels.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return domain.Image{}, domain.ErrEmptyImage
	}

	pixels := img.Pixels

	if c.MinDimension > 0 && min(w, h) < c.MinDimension {
		scale := float64(c.MinDimension) / float64(min(w, h))
		pixels = resample(pixels, scaled(w, scale), scaled(h, scale))
		w, h = pixels.Bounds().Dx(), pixels.Bounds().Dy()
		log.Debug().Int("width", w).Int("height", h).Msg("upscaled to minimum dimension")
	}

	if c.MaxDimension > 0 && max(w, h) > c.MaxDimension {
		scale := float64(c.MaxDimension) / float64(max(w, h))
		pixels = resample(pixels, scaled(w, scale), scaled(h, scale))
		w, h = pixels.Bounds().Dx(), pixels.Bounds().Dy()
		log.Debug().Int("width", w).Int("height", h).Msg("downscaled to maximum dimension")
	}

	if pixels == img.Pixels {
		return img, nil
	}

	return domain.Image{Pixels: pixels, Origin: img.Origin}, nil
}

// EncodeBounded encodes to JPEG under c.MaxBytes: quality decrements from 95
// to the floor of 10, then the image is shrunk geometrically at quality 85
// down to 30% of its size. The final attempt is returned regardless, so the
// step budget is finite and callers must not retry.
func (n *Normalizer) EncodeBounded(img domain.Image, c domain.SizeConstraint) ([]byte, error) {
	if img.Pixels == nil {
		return nil, domain.ErrEmptyImage
	}

	encoded, err := encodeJPEG(img.Pixels, startQuality)
	if err != nil {
		return nil, err
	}

	if c.MaxBytes <= 0 {
		return encoded, nil
	}

	quality := startQuality
	for len(encoded) > c.MaxBytes && quality-qualityStep >= qualityFloor {
		quality -= qualityStep
		encoded, err = encodeJPEG(img.Pixels, quality)
		if err != nil {
			return nil, err
		}
	}

	if len(encoded) <= c.MaxBytes {
		return encoded, nil
	}

	log.Warn().Int("bytes", len(encoded)).Msg("quality floor reached, shrinking dimensions")

	bounds := img.Pixels.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	for scale := 1.0 - scaleStep; len(encoded) > c.MaxBytes && scale >= minScale; scale -= scaleStep {
		shrunk := resample(img.Pixels, scaled(w, scale), scaled(h, scale))
		encoded, err = encodeJPEG(shrunk, fallbackQuality)
		if err != nil {
			return nil, err
		}
	}

	if len(encoded) > c.MaxBytes {
		log.Warn().Int("bytes", len(encoded)).Int("maxBytes", c.MaxBytes).
			Msg("byte bound not met, returning best effort")
	}

	return encoded, nil
}

// EncodePNG encodes losslessly, for payloads where compression artifacts
// would degrade the generation input.
func EncodePNG(pixels image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, pixels); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeJPEG(pixels image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, pixels, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func resample(src image.Image, w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

func scaled(dim int, scale float64) int {
	s := int(math.Round(float64(dim) * scale))
	if s < 1 {
		return 1
	}
	return s
}
