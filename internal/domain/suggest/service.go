package suggest

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/ecomly/support-ai/pkg/metrics"
)

// systemInstruction is the fixed completion system prompt.
const systemInstruction = "You are a helpful customer support assistant. " +
	"Use the provided FAQ context to answer customer questions accurately and professionally. " +
	"If the FAQs don't contain relevant information, politely say you'll need to check with a team member."

// handoffMessage is returned whenever the pipeline fails.
const handoffMessage = "I apologize, but I need to transfer you to a human agent for better assistance."

// fallbackReasoning is the fixed reasoning for the terminal fallback result.
const fallbackReasoning = "error occurred during generation"

// maxSources caps the source references attached to a suggestion.
const maxSources = 3

// Engine orchestrates retrieve, prompt building, completion and scoring
// for a single request. It holds no per-request state: the vector store
// contents are the only mutable state shared across requests.
type Engine struct {
	cfg       Config
	retriever *Retriever
	prompts   *PromptBuilder
	completer Completer
	logger    *slog.Logger
}

// NewEngine constructs the suggestion engine.
func NewEngine(cfg Config, retriever *Retriever, prompts *PromptBuilder, completer Completer, logger *slog.Logger) *Engine {
	return &Engine{
		cfg:       cfg,
		retriever: retriever,
		prompts:   prompts,
		completer: completer,
		logger:    logger.With("component", "suggest.engine"),
	}
}

// GenerateSuggestion runs the full retrieval-augmented pipeline. It
// never fails: any error along the way degrades to the fixed
// human-handoff result so the caller always receives a valid payload.
func (e *Engine) GenerateSuggestion(ctx context.Context, userMessage string, history []ConversationMessage, conversationID string) Result {
	retrieval, err := e.retriever.FindRelevant(ctx, userMessage, e.cfg.TopK)
	if err != nil {
		e.logger.Error("retrieval failed", "conversation_id", conversationID, "error", err)
		return fallbackResult()
	}

	faqContext := e.prompts.BuildFAQContext(retrieval.Matches)
	conversationContext := e.prompts.BuildConversationContext(history)
	prompt := e.prompts.BuildPrompt(userMessage, faqContext, conversationContext)

	message, err := e.completer.Complete(ctx, systemInstruction, prompt, e.cfg.Temperature, e.cfg.MaxResponseTokens)
	if err != nil {
		e.logger.Error("completion failed", "conversation_id", conversationID, "error", err)
		return fallbackResult()
	}

	usage := metrics.TokenUsage{
		PromptTokens: e.prompts.CountTokens(systemInstruction) + e.prompts.CountTokens(prompt),
	}
	usage.CompletionTokens = e.prompts.CountTokens(message)
	usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens

	confidence := scoreConfidence(retrieval.Matches)
	e.logger.Info("suggestion generated",
		"conversation_id", conversationID,
		"matches", len(retrieval.Matches),
		"fallback_retrieval", retrieval.Fallback,
		"confidence", confidence,
		"prompt_tokens", usage.PromptTokens,
		"total_tokens", usage.TotalTokens,
	)

	return Result{
		Message:    message,
		Confidence: confidence,
		Sources:    buildSources(retrieval.Matches),
		Reasoning:  buildReasoning(retrieval),
	}
}

// fallbackResult is the terminal safety net for the whole request; it
// must never fail.
func fallbackResult() Result {
	return Result{
		Message:    handoffMessage,
		Confidence: 0.0,
		Sources:    []FAQSource{},
		Reasoning:  fallbackReasoning,
	}
}

// scoreConfidence is the maximum match similarity clamped into [0,1]
// and rounded to two decimals, or 0 when there are no matches.
func scoreConfidence(matches []RankedMatch) float64 {
	if len(matches) == 0 {
		return 0.0
	}
	max := 0.0
	for _, m := range matches {
		if m.Similarity > max {
			max = m.Similarity
		}
	}
	if max > 1 {
		max = 1
	}
	return math.Round(max*100) / 100
}

func buildSources(matches []RankedMatch) []FAQSource {
	limit := len(matches)
	if limit > maxSources {
		limit = maxSources
	}
	sources := make([]FAQSource, 0, limit)
	for _, m := range matches[:limit] {
		sources = append(sources, FAQSource{
			FAQID:     m.Record.ID,
			Question:  m.Record.Question,
			Answer:    m.Record.Answer,
			Relevance: m.Similarity,
		})
	}
	return sources
}

func buildReasoning(retrieval Retrieval) string {
	if retrieval.Fallback {
		return fmt.Sprintf("Based on %d fallback FAQs (retrieval degraded: %s)", len(retrieval.Matches), retrieval.Reason)
	}
	return fmt.Sprintf("Based on %d relevant FAQs", len(retrieval.Matches))
}
