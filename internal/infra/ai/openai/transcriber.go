package openai

import (
	"context"
	"fmt"
	"io"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/video-pii-analyzer/internal/domain/transcribe"
)

// Transcriber implements speech-to-text via the audio.transcriptions
// endpoint, requesting verbose_json so segment timings come back.
type Transcriber struct {
	client *openai.Client
	model  string
}

func NewTranscriber(client *openai.Client, model string) *Transcriber {
	if model == "" {
		model = openai.Whisper1
	}
	return &Transcriber{client: client, model: model}
}

func (t *Transcriber) Transcribe(ctx context.Context, media io.Reader, filename string) (transcribe.Transcript, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		Reader:   media,
		FilePath: filename, // only the name matters when Reader is set
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return transcribe.Transcript{}, fmt.Errorf("transcription failed: %w", err)
	}

	out := transcribe.Transcript{Text: resp.Text}
	for _, s := range resp.Segments {
		out.Segments = append(out.Segments, transcribe.Segment{
			Start: s.Start,
			End:   s.End,
			Text:  s.Text,
		})
	}
	return out, nil
}
