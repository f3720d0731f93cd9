package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var ErrNoSink = errors.New("no export destination configured")

// Sink receives a rendered export and reports where it ended up.
type Sink interface {
	Put(ctx context.Context, data []byte) (string, error)
}

// FileSink writes to a local path. Path "-" writes to Stdout.
type FileSink struct {
	Path   string
	Stdout io.Writer
}

func (s FileSink) Put(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.Path == "-" {
		out := s.Stdout
		if out == nil {
			out = os.Stdout
		}
		if _, err := out.Write(data); err != nil {
			return "", fmt.Errorf("write stdout: %w", err)
		}
		return "stdout", nil
	}
	if s.Path == "" {
		return "", ErrNoSink
	}
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create export dir: %w", err)
		}
	}
	if err := os.WriteFile(s.Path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return s.Path, nil
}
