package googlenews

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
)

func rssFeed(items int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>Google News</title>`)
	for i := 0; i < items; i++ {
		fmt.Fprintf(&b, `<item>
			<title>Apple stock surges %d - Reuters</title>
			<link>https://news.example.com/%d</link>
			<pubDate>Wed, 01 May 2024 12:00:00 GMT</pubDate>
			<description>&lt;a href="https://x"&gt;Apple stock surges&lt;/a&gt;&amp;nbsp;&lt;font&gt;Reuters&lt;/font&gt;</description>
		</item>`, i, i)
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

func TestSearch(t *testing.T) {
	t.Run("parses feed items", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("q") != "AAPL" || q.Get("ceid") != "US:en" {
				t.Errorf("Unexpected query %s", r.URL.RawQuery)
			}
			w.Header().Set("Content-Type", "application/rss+xml")
			w.Write([]byte(rssFeed(2))) //nolint:errcheck
		}))
		defer server.Close()

		client := NewClient(Config{BaseURL: server.URL, Timeout: 2 * time.Second})
		articles, err := client.Search(context.Background(), "AAPL", 5)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(articles) != 2 {
			t.Fatalf("Expected 2 articles, got %d", len(articles))
		}

		a := articles[0]
		if a.Title != "Apple stock surges 0" {
			t.Errorf("Expected publisher stripped from title, got %q", a.Title)
		}
		if a.Source != "Reuters" {
			t.Errorf("Expected source Reuters, got %q", a.Source)
		}
		if strings.Contains(a.Description, "<") {
			t.Errorf("Expected HTML stripped, got %q", a.Description)
		}
		if a.PublishedAt.IsZero() {
			t.Error("Expected published date to be parsed")
		}
	})

	t.Run("caps results at ten", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(rssFeed(15))) //nolint:errcheck
		}))
		defer server.Close()

		client := NewClient(Config{BaseURL: server.URL})
		articles, err := client.Search(context.Background(), "market", 50)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if len(articles) != MaxResults {
			t.Errorf("Expected %d articles, got %d", MaxResults, len(articles))
		}
	})

	t.Run("maps rate limiting", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := NewClient(Config{BaseURL: server.URL})
		_, err := client.Search(context.Background(), "market", 5)
		if !errors.Is(err, apperrors.ErrRateLimited) {
			t.Errorf("Expected ErrRateLimited, got %v", err)
		}
	})

	t.Run("empty query", func(t *testing.T) {
		client := NewClient(Config{})
		if _, err := client.Search(context.Background(), "  ", 5); !errors.Is(err, apperrors.ErrValidation) {
			t.Errorf("Expected validation error, got %v", err)
		}
	})
}

func TestSplitPublisher(t *testing.T) {
	tests := []struct {
		in, title, publisher string
	}{
		{"Stocks rally - Bloomberg", "Stocks rally", "Bloomberg"},
		{"Q1 - results - are in - CNBC", "Q1 - results - are in", "CNBC"},
		{"No publisher", "No publisher", ""},
	}
	for _, tt := range tests {
		title, publisher := splitPublisher(tt.in)
		if title != tt.title || publisher != tt.publisher {
			t.Errorf("splitPublisher(%q) = %q, %q; want %q, %q", tt.in, title, publisher, tt.title, tt.publisher)
		}
	}
}
