package sentiment

import (
	"github.com/ndewijer/portfolio-tracker/internal/calc"
	"github.com/ndewijer/portfolio-tracker/internal/model"
)

// Dedupe drops articles whose exact title was already seen, keeping the
// first occurrence and the original order.
func Dedupe(articles []model.NewsArticle) []model.NewsArticle {
	seen := make(map[string]bool, len(articles))
	out := make([]model.NewsArticle, 0, len(articles))
	for _, a := range articles {
		if seen[a.Title] {
			continue
		}
		seen[a.Title] = true
		out = append(out, a)
	}
	return out
}

// Aggregate deduplicates articles, scores each title and summarises the
// corpus. The overall label is the most frequent one; ties resolve to
// neutral. An empty corpus is neutral with an average score of 0.
func Aggregate(articles []model.NewsArticle) model.SentimentAggregate {
	unique := Dedupe(articles)

	agg := model.SentimentAggregate{
		TotalArticles:    len(unique),
		OverallSentiment: model.SentimentNeutral,
		Articles:         make([]model.ScoredArticle, 0, len(unique)),
	}

	total := 0.0
	for _, a := range unique {
		result := Score(a.Title)
		total += result.Score

		switch result.Label {
		case model.SentimentPositive:
			agg.Distribution.Positive++
		case model.SentimentNegative:
			agg.Distribution.Negative++
		default:
			agg.Distribution.Neutral++
		}

		agg.Articles = append(agg.Articles, model.ScoredArticle{NewsArticle: a, Sentiment: result})
	}

	agg.AverageScore = calc.Round(calc.SafeDivide(total, float64(len(unique)), 0), 3)
	agg.OverallSentiment = overall(agg.Distribution)

	return agg
}

func overall(d model.SentimentDistribution) string {
	switch {
	case d.Positive > d.Negative && d.Positive > d.Neutral:
		return model.SentimentPositive
	case d.Negative > d.Positive && d.Negative > d.Neutral:
		return model.SentimentNegative
	default:
		return model.SentimentNeutral
	}
}

// Headlines returns the first n scored articles in condensed form.
func Headlines(articles []model.ScoredArticle, n int) []model.Headline {
	if n > len(articles) {
		n = len(articles)
	}
	out := make([]model.Headline, 0, n)
	for _, a := range articles[:n] {
		out = append(out, model.Headline{
			Title:     a.Title,
			Sentiment: a.Sentiment.Label,
			Source:    a.Source,
			URL:       a.URL,
		})
	}
	return out
}
