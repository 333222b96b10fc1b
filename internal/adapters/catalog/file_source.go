package catalog

import (
	"context"
	"fmt"
	"os"
	"rental-quote-service/internal/domain"
)

// FileSource loads the catalog from a JSON document on disk. The file is
// re-read on every Load so edits are picked up by the next refresh.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Load(ctx context.Context) (*domain.RateCatalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("load catalog file: %w", err)
	}
	defer f.Close()

	doc, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("load catalog file %q: %w", s.Path, err)
	}
	c, err := doc.ToDomain()
	if err != nil {
		return nil, fmt.Errorf("load catalog file %q: %w", s.Path, err)
	}
	return c, nil
}
