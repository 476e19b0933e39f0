package embedding

import "context"

// Provider generates a fixed-length embedding vector for a piece of text.
// The capability is optional: the research pipeline works without one, it
// just loses similarity recall over past entries.
type Provider interface {
	Encode(ctx context.Context, text string) ([]float32, error)
}
