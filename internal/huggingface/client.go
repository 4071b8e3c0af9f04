// Package huggingface calls hosted models on the Hugging Face inference API.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/model"
	"github.com/ndewijer/portfolio-tracker/internal/upstream"
)

// DefaultBaseURL is the serverless inference endpoint; a model id is appended.
const DefaultBaseURL = "https://router.huggingface.co/hf-inference/models"

// Default models.
const (
	DefaultSentimentModel = "mrm8488/distilroberta-finetuned-financial-news-sentiment-analysis"
	DefaultSummaryModel   = "facebook/bart-large-cnn"
)

// Config configures a Client. Zero values select the defaults.
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	Token          upstream.TokenFunc
	SentimentModel string
	SummaryModel   string
}

// Client runs text classification and summarization models.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          upstream.TokenFunc
	sentimentModel string
	summaryModel   string
}

// NewClient creates a Hugging Face inference client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Token == nil {
		cfg.Token = upstream.StaticToken(upstream.ProviderHuggingFace, "")
	}
	if cfg.SentimentModel == "" {
		cfg.SentimentModel = DefaultSentimentModel
	}
	if cfg.SummaryModel == "" {
		cfg.SummaryModel = DefaultSummaryModel
	}
	return &Client{
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		token:          cfg.Token,
		sentimentModel: cfg.SentimentModel,
		summaryModel:   cfg.SummaryModel,
	}
}

type inferenceRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// Classify runs the sentiment model and returns labels by descending score.
func (c *Client) Classify(ctx context.Context, text string) ([]model.Classification, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.ErrEmptyText
	}

	body, err := c.post(ctx, c.sentimentModel, inferenceRequest{Inputs: text})
	if err != nil {
		return nil, err
	}

	// A single input returns [[...]]; some models answer with a flat [...].
	var nested [][]model.Classification
	var labels []model.Classification
	if err := json.Unmarshal(body, &nested); err == nil && len(nested) > 0 {
		labels = nested[0]
	} else if err := json.Unmarshal(body, &labels); err != nil {
		return nil, fmt.Errorf("failed to decode classification: %v: %w", err, apperrors.ErrUpstreamRejected)
	}

	sort.SliceStable(labels, func(i, j int) bool { return labels[i].Score > labels[j].Score })
	return labels, nil
}

// Summarize runs the summarization model.
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", apperrors.ErrEmptyText
	}

	body, err := c.post(ctx, c.summaryModel, inferenceRequest{
		Inputs:     text,
		Parameters: map[string]any{"do_sample": false},
	})
	if err != nil {
		return "", err
	}

	var out []struct {
		SummaryText string `json:"summary_text"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to decode summary: %v: %w", err, apperrors.ErrUpstreamRejected)
	}
	if len(out) == 0 {
		return "", fmt.Errorf("empty summary returned: %w", apperrors.ErrUpstreamRejected)
	}
	return strings.TrimSpace(out[0].SummaryText), nil
}

// Name identifies the summarizer backend.
func (c *Client) Name() string { return upstream.ProviderHuggingFace }

func (c *Client) post(ctx context.Context, modelID string, payload inferenceRequest) ([]byte, error) {
	token, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+modelID, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, upstream.TransportError(upstream.ProviderHuggingFace, err)
	}
	defer resp.Body.Close()

	// 503 while a cold model loads maps to unavailable and is retried.
	if err := upstream.CheckResponse(upstream.ProviderHuggingFace, resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, upstream.TransportError(upstream.ProviderHuggingFace, err)
	}
	return body, nil
}
