package pii

import "context"

// Detector port (interface for a single PII detection backend).
// Detect must not mutate shared state; offsets refer to the given text.
type Detector interface {
	Name() string
	Detect(ctx context.Context, text string) ([]Entity, error)
}
