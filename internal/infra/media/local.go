package media

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Local stores uploaded media as files under a spool directory. The
// returned reference is the absolute file path.
type Local struct {
	dir string
}

func NewLocal(dir string) (*Local, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "video-pii-uploads")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{dir: dir}, nil
}

func (l *Local) Save(_ context.Context, r io.Reader, filename string) (string, error) {
	// keep the original extension so the transcriber can infer the format
	name := uuid.New().String() + filepath.Ext(filename)
	path := filepath.Join(l.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func (l *Local) Open(_ context.Context, ref string) (io.ReadCloser, error) {
	return os.Open(ref)
}

func (l *Local) Remove(_ context.Context, ref string) error {
	err := os.Remove(ref)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
