package media

import (
	"context"
	"io"
)

// Store port (interface for holding uploaded media between submission
// and analysis). Save returns an opaque reference owned by the job
// until Remove releases it.
type Store interface {
	Save(ctx context.Context, r io.Reader, filename string) (ref string, err error)
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
	Remove(ctx context.Context, ref string) error
}
