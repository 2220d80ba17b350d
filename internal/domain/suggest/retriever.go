package suggest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	apperrors "github.com/ecomly/support-ai/pkg/errors"
)

// Retriever turns free text into ranked FAQ matches.
type Retriever struct {
	store    VectorStore
	embedder Embedder
	logger   *slog.Logger
}

// NewRetriever constructs a Retriever.
func NewRetriever(store VectorStore, embedder Embedder, logger *slog.Logger) *Retriever {
	return &Retriever{
		store:    store,
		embedder: embedder,
		logger:   logger.With("component", "suggest.retriever"),
	}
}

// FindRelevant embeds the query text and searches the store. An empty
// store or an embedding provider failure degrades to the fixed fallback
// match set, flagged via Retrieval.Fallback; store integrity errors
// (dimension mismatch) are returned as errors instead.
func (r *Retriever) FindRelevant(ctx context.Context, queryText string, k int) (Retrieval, error) {
	if k <= 0 {
		k = 5
	}
	if r.store.Len() == 0 {
		r.logger.Warn("vector store empty, serving fallback matches")
		return fallbackRetrieval(ReasonEmptyStore), nil
	}

	embedding, err := r.embedder.Embed(ctx, queryText)
	if err != nil {
		if ctx.Err() != nil {
			return Retrieval{}, apperrors.Wrap(apperrors.CodeEmbeddingError, "query embedding canceled", err)
		}
		r.logger.Warn("query embedding failed, serving fallback matches", "error", err)
		return fallbackRetrieval(ReasonProviderError), nil
	}

	matches, err := r.store.Search(ctx, embedding, k)
	if err != nil {
		return Retrieval{}, err
	}
	return Retrieval{Matches: matches}, nil
}

// EmbedFAQs embeds each entry and upserts it into the store. Returns
// the number of records embedded; any provider or storage error aborts
// and propagates.
func (r *Retriever) EmbedFAQs(ctx context.Context, entries []FAQEntry) (int, error) {
	count := 0
	for _, entry := range entries {
		if strings.TrimSpace(entry.FAQID) == "" {
			return count, apperrors.Wrap(apperrors.CodeInvalidInput, "faq_id cannot be empty", nil)
		}
		text := fmt.Sprintf("Question: %s\nAnswer: %s", entry.Question, entry.Answer)
		embedding, err := r.embedder.Embed(ctx, text)
		if err != nil {
			return count, apperrors.Wrap(apperrors.CodeEmbeddingError, "failed to embed faq "+entry.FAQID, err)
		}
		record := FAQRecord{
			ID:        entry.FAQID,
			Question:  entry.Question,
			Answer:    entry.Answer,
			Category:  entry.Category,
			Tags:      entry.Tags,
			Embedding: embedding,
		}
		if err := r.store.Upsert(ctx, record); err != nil {
			return count, err
		}
		count++
	}
	r.logger.Info("embedded faqs", "count", count)
	return count, nil
}

// SearchFAQs is FindRelevant exposed to the search endpoint.
func (r *Retriever) SearchFAQs(ctx context.Context, query string, limit int) (Retrieval, error) {
	return r.FindRelevant(ctx, query, limit)
}

// fallbackRetrieval returns the fixed degraded-mode match set. The
// similarities 0.92, 0.85 and 0.78 are a documented contract for
// demo/ops continuity, not real relevance scores.
func fallbackRetrieval(reason FallbackReason) Retrieval {
	return Retrieval{
		Fallback: true,
		Reason:   reason,
		Matches: []RankedMatch{
			{
				Record: FAQRecord{
					ID:       "mock-1",
					Question: "What is your shipping policy?",
					Answer:   "We offer free shipping on orders over $50. Standard shipping takes 3-5 business days.",
					Category: "Shipping",
					Tags:     []string{"shipping", "delivery"},
				},
				Similarity: 0.92,
			},
			{
				Record: FAQRecord{
					ID:       "mock-2",
					Question: "How do I return an item?",
					Answer:   "You can return items within 30 days of purchase. Visit our returns portal to start the process.",
					Category: "Returns",
					Tags:     []string{"returns", "refund"},
				},
				Similarity: 0.85,
			},
			{
				Record: FAQRecord{
					ID:       "mock-3",
					Question: "Do you offer international shipping?",
					Answer:   "Yes, we ship to over 50 countries. International shipping rates vary by location.",
					Category: "Shipping",
					Tags:     []string{"shipping", "international"},
				},
				Similarity: 0.78,
			},
		},
	}
}
