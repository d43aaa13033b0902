// Package store persists generated journeys as a single JSON document that
// the viewer reads back.
package store

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"

	"github.com/zhouzirui/elyx-journey/backend/internal/logger"
	"github.com/zhouzirui/elyx-journey/backend/internal/model/journey"
)

// codec sorts map keys so the same journey always encodes to the same bytes.
var codec = sonic.ConfigStd

// FileStore reads and writes one journey file.
type FileStore struct {
	path string
}

// NewFileStore creates a store rooted at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Write replaces the file atomically: the document goes to a temp file in the
// same directory which is then renamed over the target.
func (s *FileStore) Write(ctx context.Context, j *journey.Journey) error {
	if j == nil {
		return &StoreError{Op: "write", Path: s.path, Err: errors.New("nil journey")}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := codec.MarshalIndent(j, "", "  ")
	if err != nil {
		return &StoreError{Op: "encode", Path: s.path, Err: err}
	}
	if err := writeAtomic(s.path, append(data, '\n')); err != nil {
		return &StoreError{Op: "write", Path: s.path, Err: err}
	}

	logger.Infof(ctx, "[store] wrote journey path=%s messages=%d bytes=%d", s.path, len(j.Messages), len(data))
	return nil
}

// Read loads the journey. A missing file unwraps to ErrNotFound, an
// undecodable one to ErrCorrupt.
func (s *FileStore) Read(ctx context.Context) (*journey.Journey, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &StoreError{Op: "read", Path: s.path, Kind: ErrNotFound}
		}
		return nil, &StoreError{Op: "read", Path: s.path, Err: err}
	}

	var j journey.Journey
	if err := codec.Unmarshal(data, &j); err != nil {
		return nil, &StoreError{Op: "decode", Path: s.path, Kind: ErrCorrupt, Err: err}
	}
	if j.MemberName == "" {
		return nil, &StoreError{Op: "decode", Path: s.path, Kind: ErrCorrupt, Err: errors.New("member_name is empty")}
	}
	return &j, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
