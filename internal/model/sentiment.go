package model

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// SentimentResult is the keyword score of a piece of text.
type SentimentResult struct {
	Label        string  `json:"label"`
	Score        float64 `json:"score"`
	PositiveHits int     `json:"positiveHits"`
	NegativeHits int     `json:"negativeHits"`
}

// ScoredArticle pairs an article with the sentiment of its title.
type ScoredArticle struct {
	NewsArticle
	Sentiment SentimentResult `json:"sentiment"`
}

// SentimentDistribution counts articles per label.
type SentimentDistribution struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// Headline is a condensed article for summaries.
type Headline struct {
	Title     string `json:"title"`
	Sentiment string `json:"sentiment"`
	Source    string `json:"source"`
	URL       string `json:"url"`
}

// SentimentAggregate is the sentiment of a deduplicated corpus.
type SentimentAggregate struct {
	TotalArticles    int                   `json:"totalArticles"`
	Distribution     SentimentDistribution `json:"distribution"`
	AverageScore     float64               `json:"averageScore"`
	OverallSentiment string                `json:"overallSentiment"`
	Articles         []ScoredArticle       `json:"articles"`
}

// NewsSummary is the per-symbol sentiment report.
type NewsSummary struct {
	Symbol          string     `json:"symbol"`
	CompanyName     string     `json:"companyName,omitempty"`
	RecentHeadlines []Headline `json:"recentHeadlines"`
	SentimentAggregate
}

// SentimentComparison is one row of a multi-symbol comparison.
type SentimentComparison struct {
	Symbol           string  `json:"symbol"`
	CompanyName      string  `json:"companyName,omitempty"`
	TotalArticles    int     `json:"totalArticles"`
	OverallSentiment string  `json:"overallSentiment"`
	AverageScore     float64 `json:"averageScore"`
	Positive         int     `json:"positive"`
	Negative         int     `json:"negative"`
	Neutral          int     `json:"neutral"`
}

// Classification is a label predicted by a hosted model.
type Classification struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Summary is model-generated text.
type Summary struct {
	Summary string `json:"summary"`
	Backend string `json:"backend"`
}
