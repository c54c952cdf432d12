package converter

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"sketchify/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noisyImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	seed := uint32(1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			seed = seed*1664525 + 1013904223
			img.Set(x, y, color.RGBA{
				R: uint8(seed >> 24),
				G: uint8(seed >> 16),
				B: uint8(seed >> 8),
				A: 255,
			})
		}
	}
	return img
}

func TestNormalizeDimensions(t *testing.T) {
	constraint := domain.SizeConstraint{MinDimension: 384, MaxDimension: 1024}

	tests := []struct {
		name       string
		width      int
		height     int
		wantWidth  int
		wantHeight int
	}{
		{
			name:       "within bounds unchanged",
			width:      500,
			height:     400,
			wantWidth:  500,
			wantHeight: 400,
		},
		{
			name:       "square below minimum upscaled",
			width:      200,
			height:     200,
			wantWidth:  384,
			wantHeight: 384,
		},
		{
			name:       "smaller dimension reaches minimum, ratio preserved",
			width:      200,
			height:     100,
			wantWidth:  768,
			wantHeight: 384,
		},
		{
			name:       "larger dimension clamped to maximum",
			width:      2048,
			height:     1024,
			wantWidth:  1024,
			wantHeight: 512,
		},
		{
			name:       "exactly at bounds unchanged",
			width:      1024,
			height:     384,
			wantWidth:  1024,
			wantHeight: 384,
		},
	}

	n := NewNormalizer()

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := domain.Image{Pixels: noisyImage(tc.width, tc.height), Origin: "test"}

			got, err := n.Normalize(src, constraint)
			require.NoError(t, err)

			bounds := got.Pixels.Bounds()
			assert.Equal(t, tc.wantWidth, bounds.Dx())
			assert.Equal(t, tc.wantHeight, bounds.Dy())
			assert.Equal(t, "test", got.Origin)
		})
	}
}

func TestNormalizeIdentityReturnsSamePixels(t *testing.T) {
	n := NewNormalizer()
	src := domain.Image{Pixels: noisyImage(500, 500)}

	got, err := n.Normalize(src, domain.SizeConstraint{MinDimension: 32, MaxDimension: 2000})
	require.NoError(t, err)

	assert.Same(t, src.Pixels, got.Pixels)
}

func TestNormalizeEmptyImage(t *testing.T) {
	n := NewNormalizer()

	_, err := n.Normalize(domain.Image{}, domain.RemoteSizePolicy)
	require.ErrorIs(t, err, domain.ErrEmptyImage)
}

func TestEncodeBoundedFitsGenerousBudget(t *testing.T) {
	n := NewNormalizer()
	img := domain.Image{Pixels: noisyImage(200, 200)}

	encoded, err := n.EncodeBounded(img, domain.SizeConstraint{MaxBytes: 1 << 20})
	require.NoError(t, err)
	require.NotEmpty(t, encoded)
	assert.LessOrEqual(t, len(encoded), 1<<20)
}

func TestEncodeBoundedDegradesQuality(t *testing.T) {
	n := NewNormalizer()
	img := domain.Image{Pixels: noisyImage(400, 400)}

	full, err := n.EncodeBounded(img, domain.SizeConstraint{})
	require.NoError(t, err)

	budget := len(full) / 2
	encoded, err := n.EncodeBounded(img, domain.SizeConstraint{MaxBytes: budget})
	require.NoError(t, err)
	assert.Less(t, len(encoded), len(full))
}

func TestEncodeBoundedTerminatesOnImpossibleBudget(t *testing.T) {
	n := NewNormalizer()
	img := domain.Image{Pixels: noisyImage(400, 400)}

	// An unmeetable bound still returns the final attempt instead of failing.
	encoded, err := n.EncodeBounded(img, domain.SizeConstraint{MaxBytes: 10})
	require.NoError(t, err)
	assert.NotEmpty(t, encoded)
}

func TestEncodePNGRoundTrips(t *testing.T) {
	encoded, err := EncodePNG(noisyImage(16, 16))
	require.NoError(t, err)

	decoded, _, err := image.Decode(bytes.NewReader(encoded))
	require.NoError(t, err)
	assert.Equal(t, 16, decoded.Bounds().Dx())
}
