package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sduenas/perceval-mozilla/pkg/backend"
)

// JSONLines writes one JSON document per line, the natural format for
// piping harvested items into indexers.
type JSONLines struct {
	w      io.Writer
	closer io.Closer
}

// NewJSONLines wraps an existing writer. The caller keeps ownership of w;
// Close is a no-op.
func NewJSONLines(w io.Writer) *JSONLines {
	return &JSONLines{w: w}
}

// NewJSONLinesFile opens (or creates) path for appending. "-" selects
// standard output.
func NewJSONLinesFile(path string) (*JSONLines, error) {
	if path == "-" {
		return NewJSONLines(os.Stdout), nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output file: %w", err)
	}
	return &JSONLines{w: f, closer: f}, nil
}

func (j *JSONLines) Store(ctx context.Context, env backend.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal item %s: %w", env.UUID, err)
	}
	data = append(data, '\n')
	if _, err := j.w.Write(data); err != nil {
		return fmt.Errorf("write item %s: %w", env.UUID, err)
	}
	return nil
}

func (j *JSONLines) Close() error {
	if j.closer != nil {
		return j.closer.Close()
	}
	return nil
}

var _ Sink = (*JSONLines)(nil)
