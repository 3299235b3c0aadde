package summarizer

import (
	"context"
	"sync"

	"github.com/nguyentantai21042004/channel-digest/internal/config"
	"github.com/nguyentantai21042004/channel-digest/internal/logger"
)

// generateFunc sends one prompt with one key and returns the response text
type generateFunc func(ctx context.Context, apiKey, model, prompt string, maxTokens int32) (string, error)

type implSummarizer struct {
	mu         sync.Mutex
	apiKeys    []string
	currentKey int
	logger     logger.Logger
	model      string
	maxTokens  int32
	generate   generateFunc
}

// New creates a Summarizer that rotates through the configured Gemini API keys.
func New(cfg config.GeminiConfig, log logger.Logger) Summarizer {
	return &implSummarizer{
		apiKeys:   cfg.APIKeys,
		logger:    log,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		generate:  generateWithGemini,
	}
}
