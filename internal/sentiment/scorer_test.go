package sentiment

import (
	"testing"

	"github.com/ndewijer/portfolio-tracker/internal/model"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantLabel string
		wantScore float64
	}{
		{"positive headline", "Apple stock surges on strong earnings report", model.SentimentPositive, 0.75},
		{"negative headline", "Apple stock drops on weak iPhone sales", model.SentimentNegative, 0.667},
		{"neutral headline", "Apple announces new product line", model.SentimentNeutral, 0.5},
		{"up and gain", "Shares up after quarterly gain", model.SentimentPositive, 0.667},
		{"case insensitive", "BULLISH RALLY", model.SentimentPositive, 0.667},
		{"tie is neutral", "Gains offset by losses", model.SentimentNeutral, 0.5},
		{"substring false positive", "Supply chain update", model.SentimentPositive, 0.5},
		{"empty text", "", model.SentimentNeutral, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.text)
			if got.Label != tt.wantLabel {
				t.Errorf("Score(%q).Label = %q, want %q (pos=%d neg=%d)", tt.text, got.Label, tt.wantLabel, got.PositiveHits, got.NegativeHits)
			}
			if got.Score != tt.wantScore {
				t.Errorf("Score(%q).Score = %v, want %v", tt.text, got.Score, tt.wantScore)
			}
		})
	}
}

func TestScoreCountsEachKeywordOnce(t *testing.T) {
	got := Score("rally rally rally")
	if got.PositiveHits != 1 {
		t.Errorf("Expected 1 positive hit, got %d", got.PositiveHits)
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	text := "Markets rally as inflation concern eases, but risk remains"
	first := Score(text)
	for i := 0; i < 50; i++ {
		if got := Score(text); got != first {
			t.Fatalf("Score changed between runs: %+v vs %+v", first, got)
		}
	}
}

func TestScoreRange(t *testing.T) {
	texts := []string{
		"up rise gain positive growth profit earnings beat strong bullish surge rally higher increase success",
		"down fall drop negative loss decline miss weak bearish crash lower decrease failure risk concern",
	}
	for _, text := range texts {
		got := Score(text)
		if got.Score < 0 || got.Score > 1 {
			t.Errorf("Score out of range: %v", got.Score)
		}
	}
}
