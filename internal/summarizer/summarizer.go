package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const summaryPrompt = "Summarize the following transcript:\n\n%s"

var (
	ErrNoAPIKeys     = errors.New("no gemini api keys configured")
	ErrEmptyResponse = errors.New("empty response from Gemini")
)

// Summarize sends the transcript to Gemini and returns the summary text.
// Rotates API keys on 429 / quota errors.
func (s *implSummarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	if len(s.apiKeys) == 0 {
		return "", ErrNoAPIKeys
	}

	prompt := fmt.Sprintf(summaryPrompt, transcript)

	var lastErr error
	for range len(s.apiKeys) {
		idx, key := s.key()

		text, err := s.generate(ctx, key, s.model, prompt, s.maxTokens)
		if err != nil {
			if isQuotaError(err) {
				s.logger.Warn(ctx, "Key %d rate limited, rotating...", idx+1)
				s.rotateKey(idx)
				lastErr = err
				continue
			}
			return "", fmt.Errorf("generate content: %w", err)
		}

		text = strings.TrimSpace(text)
		if text == "" {
			return "", ErrEmptyResponse
		}
		return text, nil
	}

	return "", fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (s *implSummarizer) key() (int, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentKey, s.apiKeys[s.currentKey]
}

// rotateKey advances past from unless another run already did
func (s *implSummarizer) rotateKey(from int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentKey == from {
		s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
	}
}

func isQuotaError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

func generateWithGemini(ctx context.Context, apiKey, model, prompt string, maxTokens int32) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	var genCfg *genai.GenerateContentConfig
	if maxTokens > 0 {
		genCfg = &genai.GenerateContentConfig{MaxOutputTokens: maxTokens}
	}

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), genCfg)
	if err != nil {
		return "", err
	}

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", nil
	}

	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
	}
	return text.String(), nil
}
