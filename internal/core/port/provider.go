package port

import (
	"context"
	"sketchify/internal/core/domain"
)

type Provider interface {
	// Name identifies the provider in failure logs.
	Name() string
	// Kind reports whether the provider is a remote generator or the local engine.
	Kind() domain.ProviderKind
	// Available reports whether the provider is configured and may be attempted.
	// It is resolved at configuration time, not re-checked per call.
	Available() bool
	// Constraint returns the size policy the provider requires of its input.
	Constraint() domain.SizeConstraint
	// Produce turns the normalized source image into the requested effect. The
	// source is guaranteed to satisfy Constraint() when called by the orchestrator.
	Produce(ctx context.Context, request *domain.EffectRequest, source domain.Image) (domain.Image, error)
}
