// Package mocks provides in-memory and canned implementations of the ports
// for service tests.
package mocks

import "context"

// Embedder is a mock implementation of ports.Embedder.
type Embedder struct {
	EmbeddingResult []float32
	Err             error

	// Texts collects every text passed to EmbedBatch.
	Texts          [][]string
	BatchCallCount int
}

// Embed returns the configured embedding or error.
func (m *Embedder) Embed(_ context.Context, _ string) ([]float32, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.EmbeddingResult, nil
}

// EmbedBatch returns the configured embedding for every text.
func (m *Embedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.BatchCallCount++
	if m.Err != nil {
		return nil, m.Err
	}
	m.Texts = append(m.Texts, texts)
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = m.EmbeddingResult
	}
	return result, nil
}
