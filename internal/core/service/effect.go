package service

import (
	"context"
	"time"

	"sketchify/internal/core/domain"
	"sketchify/internal/core/port"

	"github.com/rs/zerolog/log"
)

// Effect orchestrates providers in priority order: primary remote, secondary
// remote, local engine. The first success wins; every expected provider
// failure is recorded in the outcome instead of being raised.
type Effect struct {
	providers  []port.Provider
	normalizer port.Normalizer
}

func NewEffect(normalizer port.Normalizer, providers ...port.Provider) *Effect {
	for _, p := range providers {
		log.Info().Str("provider", p.Name()).Bool("available", p.Available()).
			Msg("registering effect provider")
	}
	return &Effect{providers: providers, normalizer: normalizer}
}

// Produce resolves one request to a single outcome. Only malformed requests
// return an error; provider failures fall through to the next provider and
// end up in the outcome's failure log.
func (e *Effect) Produce(ctx context.Context, request *domain.EffectRequest) (*domain.EffectOutcome, error) {
	if request == nil || request.Source.Pixels == nil {
		return nil, domain.ErrEmptyImage
	}
	if _, err := domain.ParseStyle(string(request.Style)); err != nil {
		return nil, err
	}

	l := log.With().Str("style", string(request.Style)).Logger()
	start := time.Now()

	outcome := &domain.EffectOutcome{
		Provider: domain.ProviderNone,
		Style:    request.Style,
	}

	for _, provider := range e.providers {
		if request.LocalOnly && provider.Kind() == domain.ProviderRemote {
			l.Debug().Str("provider", provider.Name()).Msg("remote attempts disabled, skipping")
			continue
		}

		if !provider.Available() {
			outcome.Failures = append(outcome.Failures, domain.ProviderFailure{
				Provider: provider.Name(),
				Reason:   domain.ErrProviderUnavailable.Error(),
			})
			continue
		}

		result, err := e.attempt(ctx, provider, request)
		if err != nil {
			l.Warn().Err(err).Str("provider", provider.Name()).Msg("provider attempt failed")
			outcome.Failures = append(outcome.Failures, domain.ProviderFailure{
				Provider: provider.Name(),
				Reason:   err.Error(),
			})
			continue
		}

		outcome.Success = true
		outcome.Provider = provider.Kind()
		outcome.Result = result
		outcome.Elapsed = time.Since(start)

		l.Info().Str("provider", provider.Name()).Dur("elapsed", outcome.Elapsed).
			Msg("effect produced")

		return outcome, nil
	}

	outcome.Elapsed = time.Since(start)
	l.Warn().Int("attempts", len(outcome.Failures)).Msg("all providers failed")

	return outcome, nil
}

// attempt normalizes the source for the provider's policy and runs the
// provider inside the per-provider failure boundary.
func (e *Effect) attempt(ctx context.Context, provider port.Provider, request *domain.EffectRequest) (domain.Image, error) {
	source, err := e.normalizer.Normalize(request.Source, provider.Constraint())
	if err != nil {
		return domain.Image{}, err
	}

	return provider.Produce(ctx, request, source)
}
