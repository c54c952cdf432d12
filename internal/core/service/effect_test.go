package service

import (
	"context"
	"errors"
	"image"
	"testing"

	"sketchify/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockProvider struct {
	name      string
	kind      domain.ProviderKind
	available bool
	result    domain.Image
	err       error
	Called    bool
}

func (m *MockProvider) Name() string                      { return m.name }
func (m *MockProvider) Kind() domain.ProviderKind         { return m.kind }
func (m *MockProvider) Available() bool                   { return m.available }
func (m *MockProvider) Constraint() domain.SizeConstraint { return domain.LocalSizePolicy }

func (m *MockProvider) Produce(_ context.Context, _ *domain.EffectRequest, _ domain.Image) (domain.Image, error) {
	m.Called = true
	return m.result, m.err
}

type MockNormalizer struct {
	err error
}

func (m *MockNormalizer) Normalize(img domain.Image, _ domain.SizeConstraint) (domain.Image, error) {
	return img, m.err
}

func (m *MockNormalizer) EncodeBounded(_ domain.Image, _ domain.SizeConstraint) ([]byte, error) {
	return nil, m.err
}

func validRequest() *domain.EffectRequest {
	return &domain.EffectRequest{
		Source: domain.Image{Pixels: image.NewGray(image.Rect(0, 0, 8, 8))},
		Style:  domain.StylePencil,
	}
}

func resultImage() domain.Image {
	return domain.Image{Pixels: image.NewGray(image.Rect(0, 0, 4, 4)), Origin: "result"}
}

func TestProduceFirstProviderWins(t *testing.T) {
	remote := &MockProvider{name: "dashscope", kind: domain.ProviderRemote, available: true, result: resultImage()}
	local := &MockProvider{name: "sketch", kind: domain.ProviderLocal, available: true}

	effect := NewEffect(&MockNormalizer{}, remote, local)

	outcome, err := effect.Produce(context.Background(), validRequest())
	require.NoError(t, err)

	assert.True(t, outcome.Success)
	assert.Equal(t, domain.ProviderRemote, outcome.Provider)
	assert.Equal(t, "result", outcome.Result.Origin)
	assert.Empty(t, outcome.Failures)
	assert.False(t, local.Called)
}

func TestProduceFallsBackToLocal(t *testing.T) {
	remote := &MockProvider{name: "dashscope", kind: domain.ProviderRemote, available: true,
		err: &domain.RemoteJobTimeoutError{JobID: "job-2"}}
	secondary := &MockProvider{name: "image-edit", kind: domain.ProviderRemote, available: false}
	local := &MockProvider{name: "sketch", kind: domain.ProviderLocal, available: true, result: resultImage()}

	effect := NewEffect(&MockNormalizer{}, remote, secondary, local)

	outcome, err := effect.Produce(context.Background(), validRequest())
	require.NoError(t, err)

	assert.True(t, outcome.Success)
	assert.Equal(t, domain.ProviderLocal, outcome.Provider)
	require.Len(t, outcome.Failures, 2)
	assert.Equal(t, "dashscope", outcome.Failures[0].Provider)
	assert.Contains(t, outcome.Failures[0].Reason, "timed out")
	assert.Equal(t, "image-edit", outcome.Failures[1].Provider)
	assert.Equal(t, domain.ErrProviderUnavailable.Error(), outcome.Failures[1].Reason)
}

func TestProduceAllProvidersFail(t *testing.T) {
	remote := &MockProvider{name: "dashscope", kind: domain.ProviderRemote, available: true,
		err: &domain.RemoteJobFailedError{Reason: "boom"}}
	local := &MockProvider{name: "sketch", kind: domain.ProviderLocal, available: true,
		err: domain.ErrUnknownStyle}

	effect := NewEffect(&MockNormalizer{}, remote, local)

	outcome, err := effect.Produce(context.Background(), validRequest())
	require.NoError(t, err)

	assert.False(t, outcome.Success)
	assert.Equal(t, domain.ProviderNone, outcome.Provider)
	require.Len(t, outcome.Failures, 2)
	assert.Equal(t, "dashscope", outcome.Failures[0].Provider)
	assert.Equal(t, "sketch", outcome.Failures[1].Provider)
}

func TestProduceLocalOnlySkipsRemotes(t *testing.T) {
	remote := &MockProvider{name: "dashscope", kind: domain.ProviderRemote, available: true, result: resultImage()}
	local := &MockProvider{name: "sketch", kind: domain.ProviderLocal, available: true, result: resultImage()}

	effect := NewEffect(&MockNormalizer{}, remote, local)

	request := validRequest()
	request.LocalOnly = true

	outcome, err := effect.Produce(context.Background(), request)
	require.NoError(t, err)

	assert.True(t, outcome.Success)
	assert.Equal(t, domain.ProviderLocal, outcome.Provider)
	assert.False(t, remote.Called)
	assert.Empty(t, outcome.Failures)
}

func TestProduceNormalizerFailureRecorded(t *testing.T) {
	remote := &MockProvider{name: "dashscope", kind: domain.ProviderRemote, available: true, result: resultImage()}

	effect := NewEffect(&MockNormalizer{err: errors.New("resize blew up")}, remote)

	outcome, err := effect.Produce(context.Background(), validRequest())
	require.NoError(t, err)

	assert.False(t, outcome.Success)
	assert.False(t, remote.Called)
	require.Len(t, outcome.Failures, 1)
	assert.Contains(t, outcome.Failures[0].Reason, "resize blew up")
}

func TestProduceValidation(t *testing.T) {
	effect := NewEffect(&MockNormalizer{})

	_, err := effect.Produce(context.Background(), nil)
	require.ErrorIs(t, err, domain.ErrEmptyImage)

	_, err = effect.Produce(context.Background(), &domain.EffectRequest{Style: domain.StylePencil})
	require.ErrorIs(t, err, domain.ErrEmptyImage)

	request := validRequest()
	request.Style = "charcoal"
	_, err = effect.Produce(context.Background(), request)
	require.ErrorIs(t, err, domain.ErrUnknownStyle)
}
