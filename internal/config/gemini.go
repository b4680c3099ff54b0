package config

import (
	"os"
	"strconv"
	"sync"
)

type GeminiConfig struct {
	APIKey         string
	EmbeddingModel string
	EmbeddingDim   int
	ExplainModel   string
	ExplainEnabled bool
}

var (
	geminiConfig *GeminiConfig
	geminiOnce   sync.Once
)

func LoadGeminiConfig() *GeminiConfig {
	geminiOnce.Do(func() {
		model := os.Getenv("EMBEDDING_MODEL")
		if model == "" {
			model = "gemini-embedding-001"
		}
		dim := 3072
		if v := os.Getenv("EMBEDDING_DIM"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				dim = n
			}
		}
		explainModel := os.Getenv("EXPLAIN_MODEL")
		if explainModel == "" {
			explainModel = "gemini-2.5-flash"
		}
		geminiConfig = &GeminiConfig{
			APIKey:         os.Getenv("GEMINI_API_KEY"),
			EmbeddingModel: model,
			EmbeddingDim:   dim,
			ExplainModel:   explainModel,
			ExplainEnabled: os.Getenv("EXPLAIN_ENABLED") == "true",
		}
	})
	return geminiConfig
}
