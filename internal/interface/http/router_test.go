package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ecomly/support-ai/internal/domain/sentiment"
	"github.com/ecomly/support-ai/internal/domain/suggest"
	"github.com/ecomly/support-ai/internal/infra/config"
	apperrors "github.com/ecomly/support-ai/pkg/errors"
)

type stubEngine struct {
	generateFn func(ctx context.Context, userMessage string, history []suggest.ConversationMessage, conversationID string) suggest.Result
}

func (s *stubEngine) GenerateSuggestion(ctx context.Context, userMessage string, history []suggest.ConversationMessage, conversationID string) suggest.Result {
	if s.generateFn != nil {
		return s.generateFn(ctx, userMessage, history, conversationID)
	}
	return suggest.Result{Message: "stub reply", Confidence: 0.9, Sources: []suggest.FAQSource{}}
}

type stubRetriever struct {
	embedFn  func(ctx context.Context, entries []suggest.FAQEntry) (int, error)
	searchFn func(ctx context.Context, query string, limit int) (suggest.Retrieval, error)
}

func (s *stubRetriever) EmbedFAQs(ctx context.Context, entries []suggest.FAQEntry) (int, error) {
	if s.embedFn != nil {
		return s.embedFn(ctx, entries)
	}
	return len(entries), nil
}

func (s *stubRetriever) SearchFAQs(ctx context.Context, query string, limit int) (suggest.Retrieval, error) {
	if s.searchFn != nil {
		return s.searchFn(ctx, query, limit)
	}
	return suggest.Retrieval{Matches: []suggest.RankedMatch{}}, nil
}

type stubSentiment struct {
	classifyFn func(ctx context.Context, text string) (sentiment.Result, error)
}

func (s *stubSentiment) Classify(ctx context.Context, text string) (sentiment.Result, error) {
	if s.classifyFn != nil {
		return s.classifyFn(ctx, text)
	}
	return sentiment.Result{Sentiment: sentiment.Neutral, Confidence: 0.85}, nil
}

func newTestServer(t *testing.T, eng engine, ret retriever, svc sentimentService) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if eng == nil {
		eng = &stubEngine{}
	}
	if ret == nil {
		ret = &stubRetriever{}
	}
	if svc == nil {
		svc = &stubSentiment{}
	}
	handler := NewHandler(eng, ret, svc, "gpt-test", logger)
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
	}
	return NewRouter(cfg, handler, logger).Handler
}

func doJSON(t *testing.T, server http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, req)
	return recorder
}

func decodeErrorBody(t *testing.T, recorder *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	return payload.Error.Code, payload.Error.Message
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t, nil, nil, nil)

	recorder := doJSON(t, server, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	require.Equal(t, "ok", payload["status"])
	require.Equal(t, "support-ai", payload["service"])
	require.Equal(t, "gpt-test", payload["model"])
	require.NotEmpty(t, recorder.Header().Get("X-Request-ID"))
}

func TestSuggestEndpoint(t *testing.T) {
	eng := &stubEngine{
		generateFn: func(_ context.Context, userMessage string, history []suggest.ConversationMessage, conversationID string) suggest.Result {
			require.Equal(t, "Where is my order?", userMessage)
			require.Len(t, history, 1)
			require.Equal(t, "conv-1", conversationID)
			return suggest.Result{
				Message:    "Your order ships within 3-5 business days.",
				Confidence: 0.91,
				Sources:    []suggest.FAQSource{{FAQID: "f1", Relevance: 0.91}},
				Reasoning:  "Based on 1 relevant FAQs",
			}
		},
	}
	server := newTestServer(t, eng, nil, nil)

	recorder := doJSON(t, server, http.MethodPost, "/api/ai/suggest", map[string]any{
		"conversation_id": "conv-1",
		"user_message":    "Where is my order?",
		"conversation_history": []map[string]string{
			{"sender": "customer", "content": "hi"},
		},
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var result suggest.Result
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	require.Equal(t, "Your order ships within 3-5 business days.", result.Message)
	require.Equal(t, 0.91, result.Confidence)
	require.Len(t, result.Sources, 1)
	require.Equal(t, "f1", result.Sources[0].FAQID)
}

func TestSuggestEndpointRejectsEmptyMessage(t *testing.T) {
	server := newTestServer(t, nil, nil, nil)

	recorder := doJSON(t, server, http.MethodPost, "/api/ai/suggest", map[string]any{
		"conversation_id": "conv-1",
		"user_message":    "   ",
	})
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	code, message := decodeErrorBody(t, recorder)
	require.Equal(t, "invalid_request", code)
	require.Contains(t, message, "user_message")
}

func TestSuggestEndpointDegradedStill200(t *testing.T) {
	eng := &stubEngine{
		generateFn: func(context.Context, string, []suggest.ConversationMessage, string) suggest.Result {
			return suggest.Result{
				Message:    "I apologize, but I need to transfer you to a human agent for better assistance.",
				Confidence: 0.0,
				Sources:    []suggest.FAQSource{},
				Reasoning:  "error occurred during generation",
			}
		},
	}
	server := newTestServer(t, eng, nil, nil)

	recorder := doJSON(t, server, http.MethodPost, "/api/ai/suggest", map[string]any{
		"user_message": "help",
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var result suggest.Result
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	require.Equal(t, 0.0, result.Confidence)
	require.NotNil(t, result.Sources)
	require.Empty(t, result.Sources)
}

func TestSentimentEndpoint(t *testing.T) {
	svc := &stubSentiment{
		classifyFn: func(_ context.Context, text string) (sentiment.Result, error) {
			require.Equal(t, "this is terrible", text)
			return sentiment.Result{Sentiment: sentiment.Negative, Confidence: 0.85}, nil
		},
	}
	server := newTestServer(t, nil, nil, svc)

	recorder := doJSON(t, server, http.MethodPost, "/api/ai/sentiment", map[string]string{"text": "this is terrible"})
	require.Equal(t, http.StatusOK, recorder.Code)

	var result sentiment.Result
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	require.Equal(t, sentiment.Negative, result.Sentiment)
	require.Equal(t, 0.85, result.Confidence)
}

func TestSentimentEndpointEmptyText(t *testing.T) {
	svc := &stubSentiment{
		classifyFn: func(context.Context, string) (sentiment.Result, error) {
			return sentiment.Result{}, apperrors.Wrap(apperrors.CodeInvalidInput, "text cannot be empty", nil)
		},
	}
	server := newTestServer(t, nil, nil, svc)

	recorder := doJSON(t, server, http.MethodPost, "/api/ai/sentiment", map[string]string{"text": ""})
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	code, _ := decodeErrorBody(t, recorder)
	require.Equal(t, "invalid_request", code)
}

func TestEmbedEndpoint(t *testing.T) {
	ret := &stubRetriever{
		embedFn: func(_ context.Context, entries []suggest.FAQEntry) (int, error) {
			require.Len(t, entries, 2)
			require.Equal(t, "faq-1", entries[0].FAQID)
			return 2, nil
		},
	}
	server := newTestServer(t, nil, ret, nil)

	recorder := doJSON(t, server, http.MethodPost, "/api/faq/embed", []map[string]any{
		{"faq_id": "faq-1", "question": "q1", "answer": "a1", "category": "Shipping", "tags": []string{"shipping"}},
		{"faq_id": "faq-2", "question": "q2", "answer": "a2"},
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var payload struct {
		Success       bool   `json:"success"`
		EmbeddedCount int    `json:"embedded_count"`
		Message       string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	require.True(t, payload.Success)
	require.Equal(t, 2, payload.EmbeddedCount)
	require.Equal(t, "Successfully embedded 2 FAQs", payload.Message)
}

func TestEmbedEndpointEmptyList(t *testing.T) {
	server := newTestServer(t, nil, nil, nil)

	recorder := doJSON(t, server, http.MethodPost, "/api/faq/embed", []map[string]any{})
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	code, _ := decodeErrorBody(t, recorder)
	require.Equal(t, "invalid_request", code)
}

func TestEmbedEndpointDimensionMismatch(t *testing.T) {
	ret := &stubRetriever{
		embedFn: func(context.Context, []suggest.FAQEntry) (int, error) {
			return 0, apperrors.Wrap(apperrors.CodeDimensionMismatch, "embedding dimension 16 does not match store dimension 32", nil)
		},
	}
	server := newTestServer(t, nil, ret, nil)

	recorder := doJSON(t, server, http.MethodPost, "/api/faq/embed", []map[string]any{
		{"faq_id": "faq-1", "question": "q1", "answer": "a1"},
	})
	require.Equal(t, http.StatusInternalServerError, recorder.Code)

	code, message := decodeErrorBody(t, recorder)
	require.Equal(t, "dimension_mismatch", code)
	require.Contains(t, message, "dimension")
}

func TestSearchEndpoint(t *testing.T) {
	ret := &stubRetriever{
		searchFn: func(_ context.Context, query string, limit int) (suggest.Retrieval, error) {
			require.Equal(t, "shipping", query)
			require.Equal(t, 2, limit)
			return suggest.Retrieval{
				Matches: []suggest.RankedMatch{
					{Record: suggest.FAQRecord{ID: "f1", Question: "q1", Answer: "a1", Category: "Shipping", Tags: []string{"shipping"}}, Similarity: 0.93},
					{Record: suggest.FAQRecord{ID: "f2", Question: "q2", Answer: "a2"}, Similarity: 0.71},
				},
			}, nil
		},
	}
	server := newTestServer(t, nil, ret, nil)

	recorder := doJSON(t, server, http.MethodGet, "/api/faq/search?query=shipping&limit=2", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var payload searchResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	require.Equal(t, "shipping", payload.Query)
	require.False(t, payload.Fallback)
	require.Empty(t, payload.Reason)
	require.Len(t, payload.Results, 2)
	require.Equal(t, "f1", payload.Results[0].ID)
	require.Equal(t, 0.93, payload.Results[0].Similarity)
}

func TestSearchEndpointFallbackFlagged(t *testing.T) {
	ret := &stubRetriever{
		searchFn: func(context.Context, string, int) (suggest.Retrieval, error) {
			return suggest.Retrieval{
				Fallback: true,
				Reason:   suggest.ReasonEmptyStore,
				Matches: []suggest.RankedMatch{
					{Record: suggest.FAQRecord{ID: "mock-1"}, Similarity: 0.92},
				},
			}, nil
		},
	}
	server := newTestServer(t, nil, ret, nil)

	recorder := doJSON(t, server, http.MethodGet, "/api/faq/search?query=anything", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var payload searchResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	require.True(t, payload.Fallback)
	require.Equal(t, "empty_store", payload.Reason)
	require.Len(t, payload.Results, 1)
}

func TestSearchEndpointValidation(t *testing.T) {
	server := newTestServer(t, nil, nil, nil)

	recorder := doJSON(t, server, http.MethodGet, "/api/faq/search", nil)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = doJSON(t, server, http.MethodGet, "/api/faq/search?query=x&limit=-1", nil)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	code, message := decodeErrorBody(t, recorder)
	require.Equal(t, "invalid_request", code)
	require.Contains(t, message, "limit")
}

func TestSearchEndpointStoreError(t *testing.T) {
	ret := &stubRetriever{
		searchFn: func(context.Context, string, int) (suggest.Retrieval, error) {
			return suggest.Retrieval{}, errors.New("index unavailable")
		},
	}
	server := newTestServer(t, nil, ret, nil)

	recorder := doJSON(t, server, http.MethodGet, "/api/faq/search?query=x", nil)
	require.Equal(t, http.StatusInternalServerError, recorder.Code)

	code, _ := decodeErrorBody(t, recorder)
	require.Equal(t, "search_failed", code)
}

func TestRateLimitMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(&stubEngine{}, &stubRetriever{}, &stubSentiment{}, "gpt-test", logger)
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address: ":0",
			RateLimit: config.RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             2,
			},
		},
	}
	server := NewRouter(cfg, handler, logger).Handler

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		recorder := doJSON(t, server, http.MethodGet, "/health", nil)
		statuses = append(statuses, recorder.Code)
	}
	require.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)
}
