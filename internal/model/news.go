package model

import "time"

// NewsArticle is a single article returned by a news provider.
// Optional fields are empty strings when the provider omits them.
type NewsArticle struct {
	SourceID    string    `json:"sourceId,omitempty"`
	Source      string    `json:"source"`
	Author      string    `json:"author,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
	Content     string    `json:"content,omitempty"`
	Query       string    `json:"query,omitempty"`
}

// NewsSource is a publisher known to the news provider.
type NewsSource struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Category    string `json:"category"`
	Language    string `json:"language"`
	Country     string `json:"country"`
}

// NewsPage is one page of provider results.
type NewsPage struct {
	TotalResults int           `json:"totalResults"`
	Articles     []NewsArticle `json:"articles"`
}
