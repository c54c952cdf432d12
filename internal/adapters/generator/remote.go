package generator

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"sketchify/internal/adapters/converter"
	"sketchify/internal/adapters/file"
	"sketchify/internal/core/domain"
	"sketchify/internal/core/port"
	"strconv"
)

// fetchImage downloads and decodes a generation result. A payload that does
// not decode is a hard DecodeError, never retried.
func fetchImage(ctx context.Context, url string) (domain.Image, error) {
	data, err := file.DownloadFile(ctx, url)
	if err != nil {
		return domain.Image{}, fmt.Errorf("fetching result: %w", err)
	}

	pixels, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return domain.Image{}, &domain.DecodeError{Err: err}
	}

	return domain.Image{Pixels: pixels, Origin: url}, nil
}

// inlineImage encodes the source as a base64 data URL for submission. PNG is
// preferred; when the PNG blows the provider's byte cap the bounded JPEG
// encoder takes over.
func inlineImage(img domain.Image, c domain.SizeConstraint, normalizer port.Normalizer) (string, error) {
	encoded, err := converter.EncodePNG(img.Pixels)
	if err != nil {
		return "", fmt.Errorf("encoding inline image: %w", err)
	}

	mime := "image/png"
	if c.MaxBytes > 0 && len(encoded) > c.MaxBytes {
		encoded, err = normalizer.EncodeBounded(img, c)
		if err != nil {
			return "", fmt.Errorf("encoding inline image: %w", err)
		}
		mime = "image/jpeg"
	}

	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(encoded)), nil
}

// derivedSeed hashes the submitted payload so identical inputs request the
// same generation seed. Best-effort hint only; the remote side does not
// guarantee determinism.
func derivedSeed(payload string) int {
	sum := md5.Sum([]byte(payload))
	n, err := strconv.ParseUint(hex.EncodeToString(sum[:])[:8], 16, 64)
	if err != nil {
		return 42
	}
	return int(n % 10000)
}
