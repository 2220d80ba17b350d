package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ecomly/support-ai/internal/domain/sentiment"
	"github.com/ecomly/support-ai/internal/domain/suggest"
	apperrors "github.com/ecomly/support-ai/pkg/errors"
)

// Handler wires the HTTP transport to the domain services. The narrow
// interfaces below exist so tests can stub each collaborator.
type Handler struct {
	engine       engine
	retriever    retriever
	sentimentSvc sentimentService
	model        string
	logger       *slog.Logger
}

type engine interface {
	GenerateSuggestion(ctx context.Context, userMessage string, history []suggest.ConversationMessage, conversationID string) suggest.Result
}

type retriever interface {
	EmbedFAQs(ctx context.Context, entries []suggest.FAQEntry) (int, error)
	SearchFAQs(ctx context.Context, query string, limit int) (suggest.Retrieval, error)
}

type sentimentService interface {
	Classify(ctx context.Context, text string) (sentiment.Result, error)
}

// NewHandler constructs the root HTTP handler. model is reported by the
// health endpoint.
func NewHandler(eng engine, ret retriever, sentimentSvc sentimentService, model string, logger *slog.Logger) *Handler {
	return &Handler{
		engine:       eng,
		retriever:    ret,
		sentimentSvc: sentimentSvc,
		model:        model,
		logger:       logger.With("component", "http.handler"),
	}
}

// Health reports liveness plus the configured completion model.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "support-ai",
		"model":   h.model,
	})
}

type suggestionRequest struct {
	ConversationID      string                        `json:"conversation_id"`
	UserMessage         string                        `json:"user_message"`
	ConversationHistory []suggest.ConversationMessage `json:"conversation_history"`
}

// Suggest generates an AI response suggestion for a customer message.
// The engine owns the degradation contract, so this endpoint only fails
// on malformed requests.
func (h *Handler) Suggest(c *gin.Context) {
	var req suggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	if strings.TrimSpace(req.UserMessage) == "" {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "user_message cannot be empty", nil))
		return
	}

	result := h.engine.GenerateSuggestion(c.Request.Context(), req.UserMessage, req.ConversationHistory, req.ConversationID)
	c.JSON(http.StatusOK, result)
}

type sentimentRequest struct {
	Text string `json:"text"`
}

// Sentiment classifies the supplied text. Provider failures degrade
// inside the service, so a well-formed request always yields 200.
func (h *Handler) Sentiment(c *gin.Context) {
	var req sentimentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	result, err := h.sentimentSvc.Classify(c.Request.Context(), req.Text)
	if err != nil {
		status := http.StatusInternalServerError
		code := "sentiment_failed"
		if apperrors.IsCode(err, apperrors.CodeInvalidInput) {
			status = http.StatusBadRequest
			code = "invalid_request"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, result)
}

// EmbedFAQs embeds and stores a batch of FAQ entries. Provider and
// storage integrity errors surface as 500 with a descriptive message.
func (h *Handler) EmbedFAQs(c *gin.Context) {
	var entries []suggest.FAQEntry
	if err := c.ShouldBindJSON(&entries); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	if len(entries) == 0 {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "faq list cannot be empty", nil))
		return
	}

	count, err := h.retriever.EmbedFAQs(c.Request.Context(), entries)
	if err != nil {
		status := http.StatusInternalServerError
		code := "embed_failed"
		if apperrors.IsCode(err, apperrors.CodeInvalidInput) {
			status = http.StatusBadRequest
			code = "invalid_request"
		}
		if apperrors.IsCode(err, apperrors.CodeDimensionMismatch) {
			code = apperrors.CodeDimensionMismatch
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"embedded_count": count,
		"message":        "Successfully embedded " + strconv.Itoa(count) + " FAQs",
	})
}

type searchResult struct {
	ID         string   `json:"id"`
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	Category   string   `json:"category"`
	Tags       []string `json:"tags"`
	Similarity float64  `json:"similarity"`
}

type searchResponse struct {
	Query    string         `json:"query"`
	Results  []searchResult `json:"results"`
	Fallback bool           `json:"fallback"`
	Reason   string         `json:"reason,omitempty"`
}

// SearchFAQs performs semantic FAQ search. Degraded retrieval is
// flagged in the payload instead of being conflated with real matches.
func (h *Handler) SearchFAQs(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "query cannot be empty", nil))
		return
	}
	limit := 5
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "limit must be a positive integer", err))
			return
		}
		limit = parsed
	}

	retrieval, err := h.retriever.SearchFAQs(c.Request.Context(), query, limit)
	if err != nil {
		code := "search_failed"
		if apperrors.IsCode(err, apperrors.CodeDimensionMismatch) {
			code = apperrors.CodeDimensionMismatch
		}
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, code, errMessage(err), err))
		return
	}

	results := make([]searchResult, 0, len(retrieval.Matches))
	for _, match := range retrieval.Matches {
		results = append(results, searchResult{
			ID:         match.Record.ID,
			Question:   match.Record.Question,
			Answer:     match.Record.Answer,
			Category:   match.Record.Category,
			Tags:       match.Record.Tags,
			Similarity: match.Similarity,
		})
	}
	c.JSON(http.StatusOK, searchResponse{
		Query:    query,
		Results:  results,
		Fallback: retrieval.Fallback,
		Reason:   string(retrieval.Reason),
	})
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
