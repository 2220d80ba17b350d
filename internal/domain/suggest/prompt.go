package suggest

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// The literal section labels below are part of the observable contract:
// downstream consumers and tests match on them.
const (
	faqSectionHeader          = "Relevant FAQs:\n"
	conversationSectionHeader = "Previous conversation:\n"
	currentMessageHeader      = "Current customer message:\n"
	promptInstruction         = "Based on the FAQs and conversation context, provide a helpful response to the customer."
	noRelevantFAQs            = "No relevant FAQs found."
)

// conversationWindow limits how many trailing history messages are rendered.
const conversationWindow = 5

// PromptBuilder assembles completion prompts from structured inputs.
// It is pure: no network calls, no mutable state beyond the tokenizer.
type PromptBuilder struct {
	maxContextTokens int
	counter          func(string) int
}

// NewPromptBuilder constructs a builder with the given FAQ context token
// budget. A non-positive budget disables truncation.
func NewPromptBuilder(maxContextTokens int) *PromptBuilder {
	return &PromptBuilder{
		maxContextTokens: maxContextTokens,
		counter:          tokenCounter(),
	}
}

// BuildFAQContext renders matches as numbered Q/A blocks in ranking
// order, dropping whole trailing blocks once the token budget is
// exceeded. At least one block is always kept.
func (b *PromptBuilder) BuildFAQContext(matches []RankedMatch) string {
	if len(matches) == 0 {
		return noRelevantFAQs
	}

	blocks := make([]string, 0, len(matches))
	used := 0
	for i, match := range matches {
		block := fmt.Sprintf("FAQ %d:\nQ: %s\nA: %s\n", i+1, match.Record.Question, match.Record.Answer)
		cost := b.counter(block)
		if b.maxContextTokens > 0 && len(blocks) > 0 && used+cost > b.maxContextTokens {
			break
		}
		blocks = append(blocks, block)
		used += cost
	}

	return strings.Join(blocks, "\n")
}

// BuildConversationContext renders the last messages of the history as
// "sender: content" lines in chronological order. Empty history yields
// an empty string, which callers treat as "omit the section entirely".
func (b *PromptBuilder) BuildConversationContext(history []ConversationMessage) string {
	if len(history) == 0 {
		return ""
	}
	window := history
	if len(window) > conversationWindow {
		window = window[len(window)-conversationWindow:]
	}
	lines := make([]string, 0, len(window))
	for _, msg := range window {
		sender := msg.Sender
		if sender == "" {
			sender = "user"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", sender, msg.Content))
	}
	return strings.Join(lines, "\n")
}

// BuildPrompt concatenates the FAQ context, the conversation context
// (only when non-empty), and the user message into the final
// instruction text.
func (b *PromptBuilder) BuildPrompt(userMessage, faqContext, conversationContext string) string {
	var sb strings.Builder
	sb.WriteString(faqSectionHeader)
	sb.WriteString(faqContext)
	sb.WriteString("\n\n")

	if conversationContext != "" {
		sb.WriteString(conversationSectionHeader)
		sb.WriteString(conversationContext)
		sb.WriteString("\n\n")
	}

	sb.WriteString(currentMessageHeader)
	sb.WriteString(userMessage)
	sb.WriteString("\n\n")
	sb.WriteString(promptInstruction)
	return sb.String()
}

// CountTokens reports the token cost of text for usage accounting.
func (b *PromptBuilder) CountTokens(text string) int {
	return b.counter(text)
}

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

// tokenCounter returns a counting function backed by the cl100k_base
// tokenizer, falling back to an upper-biased rune estimate when the
// encoding cannot be loaded (e.g. no vocabulary cache available).
func tokenCounter() func(string) int {
	return func(text string) int {
		encodingOnce.Do(func() {
			enc, err := tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
			if err == nil {
				encoding = enc
			}
		})
		if encoding != nil {
			return len(encoding.Encode(text, nil, nil))
		}
		return estimateTokens(text)
	}
}

// estimateTokens over-estimates so budgets are never exceeded: roughly
// one token per two runes, never below the word count.
func estimateTokens(text string) int {
	if text == "" {
		return 0
	}
	runes := utf8.RuneCountInString(text)
	words := len(strings.Fields(text))
	byRunes := (runes + 1) / 2
	if byRunes < words {
		return words
	}
	return byRunes
}
