// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/meshintel/paperdex/pkg/types"
)

// Defaults for the local Ollama embedding service.
const (
	defaultOllamaURL  = "http://localhost:11434"
	defaultEmbedModel = "nomic-embed-text:latest"
)

// OllamaEmbedder produces embeddings through a local Ollama server.
type OllamaEmbedder struct {
	llm *ollama.LLM
}

// NewOllamaEmbedder connects to the configured Ollama server.
func NewOllamaEmbedder(cfg types.IndexConfig) (*OllamaEmbedder, error) {
	serverURL := cfg.OllamaURL
	if serverURL == "" {
		serverURL = defaultOllamaURL
	}
	model := cfg.EmbedModel
	if model == "" {
		model = defaultEmbedModel
	}

	llm, err := ollama.New(ollama.WithModel(model), ollama.WithServerURL(serverURL))
	if err != nil {
		return nil, fmt.Errorf("initializing embedder: %w", err)
	}
	return &OllamaEmbedder{llm: llm}, nil
}

// Embed returns one vector per input text.
func (e *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vectors, err := e.llm.CreateEmbedding(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("creating embeddings: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(texts))
	}
	return vectors, nil
}
