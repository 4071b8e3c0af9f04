// Package sentiment scores financial text with a fixed keyword list and
// aggregates scores over deduplicated article sets.
package sentiment

import (
	"strings"

	"github.com/ndewijer/portfolio-tracker/internal/calc"
	"github.com/ndewijer/portfolio-tracker/internal/model"
)

// NeutralScore is the score of text with no winning side.
const NeutralScore = 0.5

var positiveWords = []string{
	"up", "rise", "gain", "positive", "growth", "profit", "earnings", "beat",
	"strong", "bullish", "surge", "rally", "higher", "increase", "success",
}

var negativeWords = []string{
	"down", "fall", "drop", "negative", "loss", "decline", "miss", "weak",
	"bearish", "crash", "lower", "decrease", "failure", "risk", "concern",
}

// Score classifies text by counting which keywords occur in it.
//
// Matching is a case-insensitive substring test and each keyword counts at
// most once, so "supply" matches "up". The winning side's hit count h gives
// score h / (positive + negative + 1), rounded to three decimals; a tie is
// neutral with score 0.5.
func Score(text string) model.SentimentResult {
	lower := strings.ToLower(text)

	pos := countHits(lower, positiveWords)
	neg := countHits(lower, negativeWords)

	result := model.SentimentResult{
		Label:        model.SentimentNeutral,
		Score:        NeutralScore,
		PositiveHits: pos,
		NegativeHits: neg,
	}

	denominator := float64(pos + neg + 1)
	switch {
	case pos > neg:
		result.Label = model.SentimentPositive
		result.Score = calc.Round(float64(pos)/denominator, 3)
	case neg > pos:
		result.Label = model.SentimentNegative
		result.Score = calc.Round(float64(neg)/denominator, 3)
	}

	return result
}

func countHits(text string, words []string) int {
	hits := 0
	for _, word := range words {
		if strings.Contains(text, word) {
			hits++
		}
	}
	return hits
}
