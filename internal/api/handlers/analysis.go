package handlers

import (
	"net/http"

	"github.com/ndewijer/portfolio-tracker/internal/api/request"
	"github.com/ndewijer/portfolio-tracker/internal/api/response"
	"github.com/ndewijer/portfolio-tracker/internal/apperrors"
	"github.com/ndewijer/portfolio-tracker/internal/service"
	"github.com/ndewijer/portfolio-tracker/internal/validation"
)

// MaxTextLength bounds the text accepted by the analysis endpoints.
const MaxTextLength = 10000

// AnalysisHandler handles free-text sentiment and summarization endpoints.
type AnalysisHandler struct {
	analysisService *service.AnalysisService
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(analysisService *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
	}
}

func parseText(w http.ResponseWriter, r *http.Request) (string, bool) {
	req, err := parseJSON[request.TextRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return "", false
	}
	if err := validation.ValidateText(req, MaxTextLength); err != nil {
		respondServiceError(w, "invalid text", err)
		return "", false
	}
	return req.Text, true
}

// Sentiment scores text with the keyword lexicon.
//
// Endpoint: POST /api/analysis/sentiment
// Request: {"text": "..."}
// Response: 200 OK with model.SentimentResult
// Error: 400 Bad Request if text is blank or too long
func (h *AnalysisHandler) Sentiment(w http.ResponseWriter, r *http.Request) {
	text, ok := parseText(w, r)
	if !ok {
		return
	}

	result, err := h.analysisService.ScoreText(text)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToAnalyze.Error(), err)
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// ModelSentiment classifies text with the hosted sentiment model.
//
// Endpoint: POST /api/analysis/sentiment/model
// Request: {"text": "..."}
// Response: 200 OK with []model.Classification
// Error: 503 Service Unavailable if no Hugging Face token is configured
func (h *AnalysisHandler) ModelSentiment(w http.ResponseWriter, r *http.Request) {
	text, ok := parseText(w, r)
	if !ok {
		return
	}

	labels, err := h.analysisService.ClassifyText(r.Context(), text)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToAnalyze.Error(), err)
		return
	}

	response.RespondJSON(w, http.StatusOK, labels)
}

// Summarize condenses text with the configured summarizer.
//
// Endpoint: POST /api/analysis/summarize
// Request: {"text": "..."}
// Response: 200 OK with model.Summary
func (h *AnalysisHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	text, ok := parseText(w, r)
	if !ok {
		return
	}

	summary, err := h.analysisService.SummarizeText(r.Context(), text)
	if err != nil {
		respondServiceError(w, apperrors.ErrFailedToAnalyze.Error(), err)
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}
