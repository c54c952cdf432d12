package port

import "sketchify/internal/core/domain"

type Normalizer interface {
	// Normalize returns an image whose dimensions satisfy the constraint,
	// upscaling or downscaling uniformly as needed. Images already within
	// bounds are returned unchanged.
	Normalize(img domain.Image, c domain.SizeConstraint) (domain.Image, error)
	// EncodeBounded encodes the image as JPEG, degrading quality and then
	// dimensions until the payload fits c.MaxBytes. It always returns the
	// final attempt, even if the byte bound could not be met.
	EncodeBounded(img domain.Image, c domain.SizeConstraint) ([]byte, error)
}
