package storage

import (
	"context"
	"io"
	"os"
)

// FileSource reads the corpus from a local JSONL file.
type FileSource struct {
	path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Open(_ context.Context) (io.ReadCloser, error) {
	return os.Open(s.path)
}

func (s *FileSource) Name() string {
	return s.path
}
