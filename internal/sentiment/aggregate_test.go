package sentiment

import (
	"testing"

	"github.com/ndewijer/portfolio-tracker/internal/model"
)

func TestDedupe(t *testing.T) {
	articles := []model.NewsArticle{
		{Title: "Apple rallies", Query: "AAPL"},
		{Title: "Apple rallies", Query: "Apple"},
		{Title: "apple rallies", Query: "Apple"},
		{Title: "Microsoft slips", Query: "AAPL"},
	}

	got := Dedupe(articles)
	if len(got) != 3 {
		t.Fatalf("Expected 3 unique titles, got %d", len(got))
	}
	if got[0].Query != "AAPL" {
		t.Errorf("Expected first occurrence to win, got query %q", got[0].Query)
	}
	if got[2].Title != "Microsoft slips" {
		t.Errorf("Expected order preserved, got %q last", got[2].Title)
	}
}

func TestAggregate(t *testing.T) {
	t.Run("distribution and average", func(t *testing.T) {
		articles := []model.NewsArticle{
			{Title: "Apple stock surges on strong earnings report"}, // positive 0.75
			{Title: "Apple stock surges on strong earnings report"}, // duplicate
			{Title: "Apple stock drops on weak iPhone sales"},       // negative 0.667
			{Title: "Apple earnings beat estimates"},                // positive 0.667
			{Title: "Apple announces new product line"},             // neutral 0.5
		}

		agg := Aggregate(articles)
		if agg.TotalArticles != 4 {
			t.Errorf("Expected 4 articles, got %d", agg.TotalArticles)
		}
		want := model.SentimentDistribution{Positive: 2, Negative: 1, Neutral: 1}
		if agg.Distribution != want {
			t.Errorf("Expected distribution %+v, got %+v", want, agg.Distribution)
		}
		if agg.OverallSentiment != model.SentimentPositive {
			t.Errorf("Expected positive overall, got %s", agg.OverallSentiment)
		}
		// (0.75 + 0.667 + 0.667 + 0.5) / 4 = 0.646
		if agg.AverageScore != 0.646 {
			t.Errorf("Expected average 0.646, got %v", agg.AverageScore)
		}
	})

	t.Run("tie is neutral", func(t *testing.T) {
		agg := Aggregate([]model.NewsArticle{
			{Title: "Stocks rally"},
			{Title: "Stocks crash"},
		})
		if agg.OverallSentiment != model.SentimentNeutral {
			t.Errorf("Expected neutral on tie, got %s", agg.OverallSentiment)
		}
	})

	t.Run("empty corpus", func(t *testing.T) {
		agg := Aggregate(nil)
		if agg.TotalArticles != 0 || agg.AverageScore != 0 || agg.OverallSentiment != model.SentimentNeutral {
			t.Errorf("Unexpected empty aggregate %+v", agg)
		}
	})
}

func TestHeadlines(t *testing.T) {
	agg := Aggregate([]model.NewsArticle{
		{Title: "a", Source: "s1"}, {Title: "b"}, {Title: "c"},
		{Title: "d"}, {Title: "e"}, {Title: "f"},
	})

	got := Headlines(agg.Articles, 5)
	if len(got) != 5 {
		t.Fatalf("Expected 5 headlines, got %d", len(got))
	}
	if got[0].Source != "s1" || got[0].Sentiment != model.SentimentNeutral {
		t.Errorf("Unexpected first headline %+v", got[0])
	}
	if len(Headlines(agg.Articles[:2], 5)) != 2 {
		t.Error("Expected short input to be returned whole")
	}
}
