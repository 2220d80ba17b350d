package sentiment

import (
	"context"
	"time"
)

// Known sentiment labels. Classify never returns anything else.
const (
	Positive = "positive"
	Neutral  = "neutral"
	Negative = "negative"
)

// Result is the classification payload returned to the transport.
// Confidence is a fixed placeholder on success (0.85), not a calibrated
// probability, and 0.0 on provider failure.
type Result struct {
	Sentiment  string  `json:"sentiment"`
	Confidence float64 `json:"confidence"`
}

// Completer generates text from a system instruction and a user prompt.
type Completer interface {
	Complete(ctx context.Context, system, prompt string, temperature float32, maxTokens int) (string, error)
}

// Store caches classification results keyed by normalized input text.
type Store interface {
	Get(ctx context.Context, key string) (Result, bool, error)
	Save(ctx context.Context, key string, result Result, ttl time.Duration) error
}

// Config holds runtime knobs for the classifier.
type Config struct {
	Model       string
	Temperature float32
	MaxTokens   int
	CacheTTL    time.Duration
}
