package suggest

import "context"

// FAQRecord is an embedded FAQ entry held by the vector store.
// Identity is the ID; Upsert with an existing ID replaces the record.
type FAQRecord struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Category  string    `json:"category"`
	Tags      []string  `json:"tags"`
	Embedding []float32 `json:"-"`
}

// RankedMatch pairs a stored record with its query similarity in [0,1].
type RankedMatch struct {
	Record     FAQRecord `json:"record"`
	Similarity float64   `json:"similarity"`
}

// ConversationMessage is one turn of the conversation supplied by the caller.
type ConversationMessage struct {
	Sender  string `json:"sender"`
	Content string `json:"content"`
}

// FAQSource identifies a record that grounded a suggestion.
type FAQSource struct {
	FAQID     string  `json:"faq_id"`
	Question  string  `json:"question"`
	Answer    string  `json:"answer"`
	Relevance float64 `json:"relevance"`
}

// Result is the suggestion payload returned to the transport.
type Result struct {
	Message    string      `json:"message"`
	Confidence float64     `json:"confidence"`
	Sources    []FAQSource `json:"sources"`
	Reasoning  string      `json:"reasoning,omitempty"`
}

// FAQEntry is a not-yet-embedded FAQ submitted through the embed endpoint.
type FAQEntry struct {
	FAQID    string   `json:"faq_id"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// FallbackReason explains why the fallback match set was substituted.
type FallbackReason string

const (
	// ReasonEmptyStore means no FAQs have been embedded yet.
	ReasonEmptyStore FallbackReason = "empty_store"
	// ReasonProviderError means the embedding provider call failed.
	ReasonProviderError FallbackReason = "provider_error"
)

// Retrieval is the tagged result of a retrieval call. Fallback
// distinguishes the fixed degraded-mode match set from genuine data so
// callers never conflate the two.
type Retrieval struct {
	Matches  []RankedMatch
	Fallback bool
	Reason   FallbackReason
}

// Embedder produces an embedding vector for free form text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Completer generates text from a system instruction and a user prompt.
type Completer interface {
	Complete(ctx context.Context, system, prompt string, temperature float32, maxTokens int) (string, error)
}

// VectorStore holds embedded FAQ records and answers nearest-neighbour
// queries. The in-memory implementation is a placeholder for a durable
// backing store, hence the contexts on every method.
type VectorStore interface {
	Upsert(ctx context.Context, record FAQRecord) error
	Search(ctx context.Context, query []float32, k int) ([]RankedMatch, error)
	Len() int
}
