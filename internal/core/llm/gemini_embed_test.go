package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDimAcceptsMatchingWidth(t *testing.T) {
	g := &GeminiEmbedder{modelName: "text-embedding-004", dim: 4}

	assert.NoError(t, g.checkDim([]float32{1, 2, 3, 4}))
}

func TestCheckDimRejectsMismatch(t *testing.T) {
	g := &GeminiEmbedder{modelName: "text-embedding-004", dim: 768}

	err := g.checkDim(make([]float32, 1536))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1536-dim")
	assert.Contains(t, err.Error(), "configured for 768")

	assert.Error(t, g.checkDim(nil))
}
