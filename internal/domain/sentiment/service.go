package sentiment

import (
	"context"
	"log/slog"
	"strings"

	apperrors "github.com/ecomly/support-ai/pkg/errors"
)

// classifyInstruction is the strict single-word completion prompt.
const classifyInstruction = "Analyze the sentiment of the following customer message. " +
	"Respond with only one word: positive, neutral, or negative."

// placeholderConfidence is attached to every successful classification.
// It is not derived from any model signal.
const placeholderConfidence = 0.85

// Service classifies free text into one of three sentiment buckets.
type Service struct {
	cfg       Config
	completer Completer
	store     Store
	logger    *slog.Logger
}

// NewService constructs the classifier.
func NewService(cfg Config, completer Completer, store Store, logger *slog.Logger) *Service {
	return &Service{
		cfg:       cfg,
		completer: completer,
		store:     store,
		logger:    logger.With("component", "sentiment.service"),
	}
}

// Classify returns the sentiment of text. Provider failures degrade to
// {neutral, 0.0}; unexpected provider output is corrected to neutral.
// The only error returned is for empty input.
func (s *Service) Classify(ctx context.Context, text string) (Result, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Result{}, apperrors.Wrap(apperrors.CodeInvalidInput, "text cannot be empty", nil)
	}

	key := cacheKey(trimmed)
	if s.store != nil {
		cached, ok, err := s.store.Get(ctx, key)
		if err != nil {
			s.logger.Warn("sentiment cache lookup failed", "error", err)
		} else if ok {
			return cached, nil
		}
	}

	raw, err := s.completer.Complete(ctx, classifyInstruction, trimmed, s.cfg.Temperature, s.cfg.MaxTokens)
	if err != nil {
		s.logger.Error("sentiment completion failed", "error", err)
		return Result{Sentiment: Neutral, Confidence: 0.0}, nil
	}

	result := Result{Sentiment: normalize(raw), Confidence: placeholderConfidence}
	if s.store != nil {
		if err := s.store.Save(ctx, key, result, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("sentiment cache save failed", "error", err)
		}
	}
	return result, nil
}

// normalize maps raw provider output onto the closed label set.
// Surrounding whitespace, quotes and punctuation are stripped so
// outputs like `"Negative."` still land on the enum; anything else is
// corrected to neutral.
func normalize(raw string) string {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	cleaned = strings.Trim(cleaned, " \t\r\n.!?,:;'\"")
	switch cleaned {
	case Positive, Neutral, Negative:
		return cleaned
	default:
		return Neutral
	}
}

func cacheKey(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}
