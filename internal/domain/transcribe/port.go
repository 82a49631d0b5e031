package transcribe

import (
	"context"
	"io"
)

// Segment is one time-aligned chunk of the transcript, in seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript bundles the full text with its ordered segments.
type Transcript struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
}

// Transcriber port (interface for the speech-to-text provider).
// filename carries the original media name so the provider can infer
// the container format. Unreadable or unsupported media is an error.
type Transcriber interface {
	Transcribe(ctx context.Context, media io.Reader, filename string) (Transcript, error)
}
