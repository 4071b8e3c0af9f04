// Package gemini summarizes text with Google's Gemini models.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/upstream"
)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-2.5-flash"

const systemInstruction = `You summarize financial news for an investor.
Answer with a short neutral summary of at most three sentences.
Do not add facts that are not in the text.`

// Config configures a Summarizer.
type Config struct {
	Model   string
	Token   upstream.TokenFunc
	BaseURL string // overrides the API endpoint, used by tests
}

// Summarizer calls generateContent with a summarization instruction.
type Summarizer struct {
	model   string
	token   upstream.TokenFunc
	baseURL string
}

// NewSummarizer creates a Gemini summarizer.
func NewSummarizer(cfg Config) *Summarizer {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Token == nil {
		cfg.Token = upstream.StaticToken(upstream.ProviderGemini, "")
	}
	return &Summarizer{model: cfg.Model, token: cfg.Token, baseURL: cfg.BaseURL}
}

// Name identifies the summarizer backend.
func (s *Summarizer) Name() string { return upstream.ProviderGemini }

// Summarize returns a model-written summary of text.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", apperrors.ErrEmptyText
	}

	apiKey, err := s.token(ctx)
	if err != nil {
		return "", err
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if s.baseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: s.baseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return "", fmt.Errorf("failed to create gemini client: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, s.model, genai.Text(text), &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemInstruction}}},
	})
	if err != nil {
		return "", classify(err)
	}

	summary := strings.TrimSpace(resp.Text())
	if summary == "" {
		return "", fmt.Errorf("gemini returned no text: %w", apperrors.ErrUpstreamRejected)
	}
	return summary, nil
}

func classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return upstream.StatusError(upstream.ProviderGemini, apiErr.Code, apiErr.Message)
	}
	return upstream.TransportError(upstream.ProviderGemini, err)
}
