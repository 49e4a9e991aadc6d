package ai

import (
	"context"
	"testing"

	"github.com/Soypete/mathy-bot/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModel(t *testing.T) {
	ctx := context.Background()

	llm, err := NewModel(ctx, ModelConfig{Provider: ProviderOpenAI, BaseURL: "http://127.0.0.1:8080"}, logging.Discard())
	require.NoError(t, err)
	assert.NotNil(t, llm)

	_, err = NewModel(ctx, ModelConfig{Provider: ProviderGemini}, logging.Discard())
	assert.ErrorContains(t, err, "requires an API key")

	_, err = NewModel(ctx, ModelConfig{Provider: "claude"}, logging.Discard())
	assert.ErrorContains(t, err, "unknown LLM provider")
}
