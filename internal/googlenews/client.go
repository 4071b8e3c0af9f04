// Package googlenews searches Google News through its public RSS feed.
package googlenews

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/model"
	"github.com/ndewijer/portfolio-tracker/internal/upstream"
)

// DefaultBaseURL is the Google News RSS search endpoint.
const DefaultBaseURL = "https://news.google.com/rss/search"

// MaxResults caps the articles returned per query.
const MaxResults = 10

// Config configures a Client. Zero values select the defaults.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client queries the Google News RSS search feed.
type Client struct {
	httpClient *http.Client
	parser     *gofeed.Parser
	baseURL    string
}

// NewClient creates a Google News client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		parser:     gofeed.NewParser(),
		baseURL:    cfg.BaseURL,
	}
}

// Search returns up to limit articles (at most MaxResults) for query in
// feed order.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]model.NewsArticle, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is required: %w", apperrors.ErrValidation)
	}
	if limit <= 0 || limit > MaxResults {
		limit = MaxResults
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("hl", "en-US")
	params.Set("gl", "US")
	params.Set("ceid", "US:en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/rss+xml, application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, upstream.TransportError(upstream.ProviderGoogleNews, err)
	}
	defer resp.Body.Close()

	if err := upstream.CheckResponse(upstream.ProviderGoogleNews, resp); err != nil {
		return nil, err
	}

	feed, err := c.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse google news feed: %v: %w", err, apperrors.ErrUpstreamRejected)
	}

	articles := make([]model.NewsArticle, 0, limit)
	for _, item := range feed.Items {
		if len(articles) == limit {
			break
		}
		title, publisher := splitPublisher(item.Title)
		a := model.NewsArticle{
			Source:      publisher,
			Title:       title,
			Description: cleanHTML(item.Description),
			URL:         item.Link,
			Query:       query,
		}
		if a.Source == "" {
			a.Source = "Google News"
		}
		if item.Author != nil {
			a.Author = item.Author.Name
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = item.PublishedParsed.UTC()
		}
		articles = append(articles, a)
	}

	return articles, nil
}

// splitPublisher separates Google's "Headline - Publisher" title format.
func splitPublisher(title string) (string, string) {
	i := strings.LastIndex(title, " - ")
	if i <= 0 {
		return strings.TrimSpace(title), ""
	}
	return strings.TrimSpace(title[:i]), strings.TrimSpace(title[i+3:])
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
