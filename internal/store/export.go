package store

import (
	"bufio"
	"context"
	"os"
	"path/filepath"

	"github.com/zhouzirui/elyx-journey/backend/internal/logger"
	"github.com/zhouzirui/elyx-journey/backend/internal/model/journey"
)

// Export file names.
const (
	MessagesFile  = "messages.jsonl"
	DecisionsFile = "decisions.jsonl"
	TestsFile     = "tests.jsonl"
	MetricsFile   = "metrics.json"
)

// ExportJSONL writes the journey as line-delimited records into dir, one file
// per record kind, plus the metrics as a single document.
func ExportJSONL(ctx context.Context, dir string, j *journey.Journey) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &StoreError{Op: "export", Path: dir, Err: err}
	}

	if err := writeLines(ctx, filepath.Join(dir, MessagesFile), j.Messages); err != nil {
		return err
	}
	if err := writeLines(ctx, filepath.Join(dir, DecisionsFile), j.Decisions); err != nil {
		return err
	}
	if err := writeLines(ctx, filepath.Join(dir, TestsFile), j.Tests); err != nil {
		return err
	}

	path := filepath.Join(dir, MetricsFile)
	data, err := codec.MarshalIndent(j.Metrics, "", "  ")
	if err != nil {
		return &StoreError{Op: "encode", Path: path, Err: err}
	}
	if err := writeAtomic(path, append(data, '\n')); err != nil {
		return &StoreError{Op: "export", Path: path, Err: err}
	}

	logger.Infof(ctx, "[store] exported jsonl dir=%s messages=%d decisions=%d tests=%d",
		dir, len(j.Messages), len(j.Decisions), len(j.Tests))
	return nil
}

func writeLines[T any](ctx context.Context, path string, records []T) error {
	f, err := os.Create(path)
	if err != nil {
		return &StoreError{Op: "export", Path: path, Err: err}
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := codec.NewEncoder(w)
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := enc.Encode(rec); err != nil {
			return &StoreError{Op: "encode", Path: path, Err: err}
		}
	}
	if err := w.Flush(); err != nil {
		return &StoreError{Op: "export", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &StoreError{Op: "export", Path: path, Err: err}
	}
	return nil
}
