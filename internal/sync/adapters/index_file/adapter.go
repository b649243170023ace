// Package indexfile persists the chart index as YAML on disk.
package indexfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/rancher/fleet-helm-charts/internal/sync/domain"
)

// Adapter implements ports.IndexStorePort against a single index.yaml
// path.
type Adapter struct {
	path string
}

// New creates an index store for the given file path.
func New(path string) *Adapter {
	return &Adapter{path: path}
}

// Load reads and parses the index. A missing file yields an empty
// index so a first sync can bootstrap the repository.
func (a *Adapter) Load(_ context.Context) (*domain.IndexFile, error) {
	data, err := os.ReadFile(a.path)
	if os.IsNotExist(err) {
		return domain.NewIndexFile(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", a.path, err)
	}

	var idx domain.IndexFile
	if err := yaml.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", a.path, err)
	}
	if idx.Entries == nil {
		idx.Entries = make(map[string][]*domain.IndexEntry)
	}
	return &idx, nil
}

// Save writes the index atomically (temp file + rename) with two-space
// indentation.
func (a *Adapter) Save(_ context.Context, index *domain.IndexFile) error {
	tmp, err := os.CreateTemp(filepath.Dir(a.path), ".index-*.yaml")
	if err != nil {
		return fmt.Errorf("creating temp index: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := yaml.NewEncoder(tmp)
	enc.SetIndent(2)
	if err := enc.Encode(index); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding index: %w", err)
	}
	if err := enc.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("flushing index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp index: %w", err)
	}

	if err := os.Rename(tmp.Name(), a.path); err != nil {
		return fmt.Errorf("replacing %s: %w", a.path, err)
	}
	return nil
}
