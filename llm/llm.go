// Package llm abstracts the hosted model used for FAQ extraction.
package llm

import "context"

// Client is a minimal completion interface over a hosted model.
type Client interface {
	// Complete sends a prompt and returns the model's text response.
	Complete(ctx context.Context, prompt string) (string, error)
}
