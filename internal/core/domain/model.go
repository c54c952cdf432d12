package domain

import (
	"fmt"
	"image"
	"time"
)

type Style string

const (
	StylePencil   Style = "pencil"
	StyleDetailed Style = "detailed"
	StyleArtistic Style = "artistic"
	StyleColor    Style = "color"
	StyleVivid    Style = "vivid"
	StyleAnime    Style = "anime"
	StyleInk      Style = "ink"
)

// ParseStyle validates a style string from an untrusted caller.
func ParseStyle(s string) (Style, error) {
	switch Style(s) {
	case StylePencil, StyleDetailed, StyleArtistic, StyleColor, StyleVivid, StyleAnime, StyleInk:
		return Style(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStyle, s)
	}
}

type ProviderKind string

const (
	ProviderRemote ProviderKind = "remote"
	ProviderLocal  ProviderKind = "local"
	ProviderNone   ProviderKind = "none"
)

// Image is a decoded pixel buffer plus the path or URL it came from, if any.
// Transforms never mutate an Image in place; they return a new one.
type Image struct {
	Pixels image.Image
	Origin string
}

// SizeConstraint is the input policy a provider requires of its source image.
type SizeConstraint struct {
	MinDimension int
	MaxDimension int
	MaxBytes     int
}

var (
	// RemoteSizePolicy matches the synthesis API input limits.
	RemoteSizePolicy = SizeConstraint{MinDimension: 384, MaxDimension: 1024, MaxBytes: 3 << 20}
	// LocalSizePolicy bounds what the filter engine will process.
	LocalSizePolicy = SizeConstraint{MinDimension: 32, MaxDimension: 2000, MaxBytes: 3 << 20}
)

// EffectRequest describes one stylization request. Immutable once constructed.
type EffectRequest struct {
	Source    Image
	Style     Style
	Watermark bool
	LocalOnly bool
}

type ProviderFailure struct {
	Provider string
	Reason   string
}

// EffectOutcome is the single aggregate result of a request. Expected
// provider failures end up in Failures, never as a raised error.
type EffectOutcome struct {
	Success  bool
	Provider ProviderKind
	Style    Style
	Elapsed  time.Duration
	Failures []ProviderFailure
	Result   Image
}
