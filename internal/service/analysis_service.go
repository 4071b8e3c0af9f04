package service

import (
	"context"
	"strings"

	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/model"
	"github.com/ndewijer/portfolio-tracker/internal/sentiment"
	"github.com/ndewijer/portfolio-tracker/internal/upstream"
)

// Classifier labels text with a hosted sentiment model.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]model.Classification, error)
}

// Summarizer condenses text. Name identifies the backend and doubles as
// its breaker name.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
	Name() string
}

// AnalysisService runs keyword scoring and model inference on free text.
type AnalysisService struct {
	classifier Classifier
	summarizer Summarizer
	guard      *upstream.Guard
}

// NewAnalysisService creates an AnalysisService.
func NewAnalysisService(classifier Classifier, summarizer Summarizer, guard *upstream.Guard) *AnalysisService {
	return &AnalysisService{
		classifier: classifier,
		summarizer: summarizer,
		guard:      guard,
	}
}

// ScoreText applies the keyword sentiment scorer.
func (s *AnalysisService) ScoreText(text string) (model.SentimentResult, error) {
	if strings.TrimSpace(text) == "" {
		return model.SentimentResult{}, apperrors.ErrEmptyText
	}
	return sentiment.Score(text), nil
}

// ClassifyText runs the hosted sentiment model. Labels are ordered by
// descending score.
func (s *AnalysisService) ClassifyText(ctx context.Context, text string) ([]model.Classification, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.ErrEmptyText
	}
	return upstream.Call(ctx, s.guard, upstream.ProviderHuggingFace, func(ctx context.Context) ([]model.Classification, error) {
		return s.classifier.Classify(ctx, text)
	})
}

// SummarizeText condenses text with the configured summarizer.
func (s *AnalysisService) SummarizeText(ctx context.Context, text string) (model.Summary, error) {
	if strings.TrimSpace(text) == "" {
		return model.Summary{}, apperrors.ErrEmptyText
	}

	backend := s.summarizer.Name()
	summary, err := upstream.Call(ctx, s.guard, backend, func(ctx context.Context) (string, error) {
		return s.summarizer.Summarize(ctx, text)
	})
	if err != nil {
		return model.Summary{}, err
	}
	return model.Summary{Summary: summary, Backend: backend}, nil
}
