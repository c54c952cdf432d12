package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStyle(t *testing.T) {
	for _, s := range []string{"pencil", "detailed", "artistic", "color", "vivid", "anime", "ink"} {
		style, err := ParseStyle(s)
		require.NoError(t, err)
		assert.Equal(t, Style(s), style)
	}

	_, err := ParseStyle("charcoal")
	require.ErrorIs(t, err, ErrUnknownStyle)
}

func TestJobStatusTerminal(t *testing.T) {
	assert.True(t, JobSucceeded.Terminal())
	assert.True(t, JobFailed.Terminal())
	assert.True(t, JobTimedOut.Terminal())

	assert.False(t, JobSubmitted.Terminal())
	assert.False(t, JobPending.Terminal())
	assert.False(t, JobRunning.Terminal())
}

func TestStylePromptsFallBackToInk(t *testing.T) {
	prompts := DefaultStylePrompts()

	assert.Equal(t, prompts[StylePencil], prompts.For(StylePencil))
	assert.Equal(t, prompts[StyleInk], prompts.For(StyleDetailed))
	assert.Equal(t, prompts[StyleInk], prompts.For(StyleArtistic))
}
