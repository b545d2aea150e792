package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prathmesh008/scrappingsydney/internal/profile"
)

func TestNewEmbeddingConfigFromProfile(t *testing.T) {
	p := &profile.Profile{
		EmbeddingModel:   "text-embedding-3-small",
		EmbeddingAPIKey:  "sk-test",
		EmbeddingBaseURL: "https://llm.example.com/v1",
		EmbeddingDim:     1536,
	}

	config := NewEmbeddingConfigFromProfile(p)

	assert.Equal(t, "text-embedding-3-small", config.Model)
	assert.Equal(t, "sk-test", config.APIKey)
	assert.Equal(t, "https://llm.example.com/v1", config.BaseURL)
	assert.Equal(t, 1536, config.Dimensions)
}

func TestEmbeddingConfigValidate(t *testing.T) {
	valid := EmbeddingConfig{Model: "text-embedding-3-small", APIKey: "sk-test", Dimensions: 1536}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*EmbeddingConfig)
	}{
		{"missing model", func(c *EmbeddingConfig) { c.Model = "" }},
		{"missing api key", func(c *EmbeddingConfig) { c.APIKey = "" }},
		{"zero dimensions", func(c *EmbeddingConfig) { c.Dimensions = 0 }},
		{"negative dimensions", func(c *EmbeddingConfig) { c.Dimensions = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid
			tt.mutate(&config)
			assert.Error(t, config.Validate())
		})
	}
}
