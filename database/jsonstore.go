package database

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"imagesearch/logging"
	"imagesearch/types"
)

// JSONStore keeps the corpus as one pretty-printed JSON array in a file.
// Every operation reads the whole file; appends rewrite it atomically.
type JSONStore struct {
	path string
	mu   sync.Mutex
}

// NewJSONStore returns a store backed by the file at path. The file is
// created on the first append.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Path returns the backing file.
func (s *JSONStore) Path() string { return s.path }

// ReadAll returns every stored fingerprint. A missing or empty file is an
// empty corpus. A file that is not a JSON array is logged and treated as
// empty; a record that does not decode fails the read.
func (s *JSONStore) ReadAll(ctx context.Context) ([]types.Fingerprint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readAll(ctx)
}

func (s *JSONStore) readAll(ctx context.Context) ([]types.Fingerprint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []types.Fingerprint{}, nil
	}
	if err != nil {
		return nil, readError(s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []types.Fingerprint{}, nil
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		logging.LogWarning("Corpus file %s is not a JSON array, treating it as empty: %v", s.path, err)
		return []types.Fingerprint{}, nil
	}

	corpus := make([]types.Fingerprint, 0, len(records))
	for i, raw := range records {
		fp, err := decodeRecord(raw)
		if err != nil {
			return nil, readError(s.path, fmt.Errorf("record %d: %w", i, err))
		}
		corpus = append(corpus, fp)
	}
	return corpus, nil
}

func decodeRecord(raw json.RawMessage) (types.Fingerprint, error) {
	var fp types.Fingerprint
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fp); err != nil {
		return types.Fingerprint{}, err
	}
	if fp.Filepath == "" {
		return types.Fingerprint{}, errors.New("missing filepath")
	}
	if len(fp.Histograms) == 0 {
		return types.Fingerprint{}, errors.New("missing histogram")
	}
	return fp, nil
}

// Append adds fp unless an identical record for the same filepath exists.
func (s *JSONStore) Append(ctx context.Context, fp types.Fingerprint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	corpus, err := s.readAll(ctx)
	if err != nil {
		return false, err
	}
	for _, existing := range corpus {
		if existing.Filepath == fp.Filepath && existing.Equal(fp) {
			return false, nil
		}
	}

	corpus = append(corpus, fp)
	if err := s.write(corpus); err != nil {
		return false, err
	}
	return true, nil
}

// ContainsPath reports whether any record was stored for path.
func (s *JSONStore) ContainsPath(ctx context.Context, path string) (bool, error) {
	corpus, err := s.ReadAll(ctx)
	if err != nil {
		return false, err
	}
	for _, fp := range corpus {
		if fp.Filepath == path {
			return true, nil
		}
	}
	return false, nil
}

// Close is a no-op; the store holds no open handles.
func (s *JSONStore) Close() error { return nil }

func (s *JSONStore) write(corpus []types.Fingerprint) error {
	data, err := json.MarshalIndent(corpus, "", "  ")
	if err != nil {
		return writeError(s.path, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return writeError(s.path, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return writeError(s.path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return writeError(s.path, err)
	}
	if err := tmp.Close(); err != nil {
		return writeError(s.path, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return writeError(s.path, err)
	}
	return nil
}
