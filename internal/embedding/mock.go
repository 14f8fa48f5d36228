package embedding

import (
	"context"
	"crypto/sha256"
)

const mockDimensions = 1536

// MockClient produces deterministic pseudo-embeddings derived from the input
// text. Identical text always embeds identically, which is enough for
// duplicate-detection tests.
type MockClient struct {
	EmbedError error
	EmbedCalls []string
}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (c *MockClient) Embed(ctx context.Context, text string) ([]float32, error) {
	c.EmbedCalls = append(c.EmbedCalls, text)
	if c.EmbedError != nil {
		return nil, c.EmbedError
	}

	seed := sha256.Sum256([]byte(text))
	vec := make([]float32, mockDimensions)
	for i := range vec {
		vec[i] = float32(seed[i%len(seed)]) / 255.0
	}
	return vec, nil
}
