package semantic

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FileCache is a durable content-addressed Cache: one file per content
// hash holding the similarity value. Entries are idempotent, so write
// collisions between concurrent runs are harmless; create-if-absent is the
// only coordination used.
type FileCache struct {
	dir string
}

// NewFileCache opens (creating if needed) a cache directory.
func NewFileCache(dir string) (*FileCache, error) {
	if dir == "" {
		return nil, fmt.Errorf("cache dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &FileCache{dir: dir}, nil
}

func (c *FileCache) path(contentHash string) string {
	return filepath.Join(c.dir, contentHash+".sim")
}

// Lookup implements Cache.
func (c *FileCache) Lookup(contentHash string) (float64, bool, error) {
	data, err := os.ReadFile(c.path(contentHash))
	if os.IsNotExist(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("cache lookup %s: %w", contentHash, err)
	}
	sim, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return 0, false, fmt.Errorf("cache entry %s malformed: %w", contentHash, err)
	}
	return sim, true, nil
}

// Store implements Cache with create-if-absent semantics.
func (c *FileCache) Store(contentHash string, similarity float64) error {
	f, err := os.OpenFile(c.path(contentHash), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if os.IsExist(err) {
		return nil // idempotent entry already present
	}
	if err != nil {
		return fmt.Errorf("cache store %s: %w", contentHash, err)
	}
	defer f.Close()

	if _, err := f.WriteString(strconv.FormatFloat(similarity, 'f', 4, 64) + "\n"); err != nil {
		return fmt.Errorf("cache store %s: %w", contentHash, err)
	}
	return nil
}
