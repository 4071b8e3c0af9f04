// Package newsapi is a client for the NewsAPI.org v2 REST API.
package newsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/model"
	"github.com/ndewijer/portfolio-tracker/internal/upstream"
)

// DefaultBaseURL is the NewsAPI v2 endpoint.
const DefaultBaseURL = "https://newsapi.org/v2"

// Config configures a Client. Zero values select the defaults.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Token   upstream.TokenFunc
}

// Client handles communication with NewsAPI.org
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      upstream.TokenFunc
}

// NewClient creates a new NewsAPI client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Token == nil {
		cfg.Token = upstream.StaticToken(upstream.ProviderNewsAPI, "")
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
	}
}

// articlesResponse represents the response from NewsAPI
type articlesResponse struct {
	Status       string `json:"status"`
	Code         string `json:"code"`
	Message      string `json:"message"`
	TotalResults int    `json:"totalResults"`
	Articles     []struct {
		Source struct {
			ID   *string `json:"id"`
			Name string  `json:"name"`
		} `json:"source"`
		Author      *string `json:"author"`
		Title       string  `json:"title"`
		Description *string `json:"description"`
		URL         string  `json:"url"`
		URLToImage  *string `json:"urlToImage"`
		PublishedAt string  `json:"publishedAt"`
		Content     *string `json:"content"`
	} `json:"articles"`
}

type sourcesResponse struct {
	Status  string             `json:"status"`
	Code    string             `json:"code"`
	Message string             `json:"message"`
	Sources []model.NewsSource `json:"sources"`
}

// TopHeadlines returns breaking headlines.
func (c *Client) TopHeadlines(ctx context.Context, params HeadlinesParams) (model.NewsPage, error) {
	if err := params.Validate(); err != nil {
		return model.NewsPage{}, err
	}
	return c.articles(ctx, "/top-headlines", params.values(), params.Query)
}

// Everything searches all indexed articles.
func (c *Client) Everything(ctx context.Context, params EverythingParams) (model.NewsPage, error) {
	if err := params.Validate(); err != nil {
		return model.NewsPage{}, err
	}
	return c.articles(ctx, "/everything", params.values(), params.Query)
}

// Sources lists the publishers available for top headlines.
func (c *Client) Sources(ctx context.Context, params SourcesParams) ([]model.NewsSource, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var resp sourcesResponse
	if err := c.get(ctx, "/top-headlines/sources", params.values(), &resp); err != nil {
		return nil, err
	}
	if resp.Status != "ok" {
		return nil, apiError(resp.Code, resp.Message)
	}
	return resp.Sources, nil
}

// Search returns the newest articles matching query, most recent first.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]model.NewsArticle, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	page, err := c.Everything(ctx, EverythingParams{
		Query:    query,
		SortBy:   "publishedAt",
		PageSize: limit,
	})
	if err != nil {
		return nil, err
	}
	return page.Articles, nil
}

func (c *Client) articles(ctx context.Context, path string, params url.Values, query string) (model.NewsPage, error) {
	var resp articlesResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return model.NewsPage{}, err
	}
	if resp.Status != "ok" {
		return model.NewsPage{}, apiError(resp.Code, resp.Message)
	}

	articles := make([]model.NewsArticle, 0, len(resp.Articles))
	for _, item := range resp.Articles {
		// NewsAPI marks deleted articles with this placeholder title.
		if item.Title == "" || item.Title == "[Removed]" {
			continue
		}
		// Unparseable timestamps are left zero.
		publishedAt, _ := time.Parse(time.RFC3339, item.PublishedAt)

		articles = append(articles, model.NewsArticle{
			SourceID:    deref(item.Source.ID),
			Source:      item.Source.Name,
			Author:      deref(item.Author),
			Title:       item.Title,
			Description: deref(item.Description),
			URL:         item.URL,
			ImageURL:    deref(item.URLToImage),
			PublishedAt: publishedAt,
			Content:     deref(item.Content),
			Query:       query,
		})
	}

	return model.NewsPage{TotalResults: resp.TotalResults, Articles: articles}, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Api-Key", token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return upstream.TransportError(upstream.ProviderNewsAPI, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return upstream.TransportError(upstream.ProviderNewsAPI, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if resp.StatusCode < 500 && json.Unmarshal(body, &apiErr) == nil && apiErr.Code != "" {
			return apiError(apiErr.Code, apiErr.Message)
		}
		return upstream.StatusError(upstream.ProviderNewsAPI, resp.StatusCode, "")
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode newsapi response: %v: %w", err, apperrors.ErrUpstreamRejected)
	}
	return nil
}

// apiError maps a NewsAPI error code onto the error taxonomy.
func apiError(code, message string) error {
	switch code {
	case "rateLimited":
		return fmt.Errorf("newsapi: %s: %w", message, apperrors.ErrRateLimited)
	case "apiKeyMissing", "apiKeyInvalid", "apiKeyDisabled", "apiKeyExhausted":
		return fmt.Errorf("newsapi %s: %s: %w", code, message, apperrors.ErrUpstreamRejected)
	case "parametersMissing", "parameterInvalid", "sourcesTooMany", "sourceDoesNotExist":
		return fmt.Errorf("newsapi %s: %s: %w", code, message, apperrors.ErrValidation)
	case "unexpectedError":
		return fmt.Errorf("newsapi: %s: %w", message, apperrors.ErrUpstreamUnavailable)
	default:
		return fmt.Errorf("newsapi %s: %s: %w", code, message, apperrors.ErrUpstreamRejected)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
