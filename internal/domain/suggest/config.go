package suggest

// Config holds runtime knobs for the suggestion pipeline.
type Config struct {
	Model               string
	Temperature         float32
	TopK                int
	MaxResponseTokens   int
	ConfidenceThreshold float64
	MaxContextTokens    int
}
