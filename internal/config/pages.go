package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// pageCapDoc is the on-disk shape of the page cap file. JSON documents such
// as {"pages_to_fetch": 100} are valid YAML and load unchanged.
type pageCapDoc struct {
	PagesToFetch int `yaml:"pages_to_fetch"`
}

// PageCapFile reads the per-instrument page cap. The file is re-read on
// every Load so edits take effect at the next cycle.
type PageCapFile struct {
	Path     string
	Fallback int
	Logger   *slog.Logger
}

// NewPageCapFile creates a PageCapFile.
func NewPageCapFile(path string, fallback int, logger *slog.Logger) *PageCapFile {
	if logger == nil {
		logger = slog.Default()
	}
	return &PageCapFile{Path: path, Fallback: fallback, Logger: logger}
}

// Load returns the configured page cap. When the file is missing,
// unparseable or holds a non-positive value, the fallback is returned and
// written back so later runs read the same value. A failed write is logged
// and does not change the result.
func (f *PageCapFile) Load() int {
	pages, err := f.read()
	if err == nil {
		return pages
	}

	f.Logger.Warn("page cap unreadable, using fallback",
		"path", f.Path,
		"fallback", f.Fallback,
		"err", err,
	)
	if err := f.Store(f.Fallback); err != nil {
		f.Logger.Error("failed to persist fallback page cap", "path", f.Path, "err", err)
	}
	return f.Fallback
}

func (f *PageCapFile) read() (int, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return 0, fmt.Errorf("read page cap file: %w", err)
	}

	var doc pageCapDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("parse page cap file: %w", err)
	}
	if doc.PagesToFetch < 1 {
		return 0, errors.New("pages_to_fetch must be >= 1")
	}
	return doc.PagesToFetch, nil
}

// Store writes pages to the file, creating parent directories as needed.
func (f *PageCapFile) Store(pages int) error {
	data, err := yaml.Marshal(pageCapDoc{PagesToFetch: pages})
	if err != nil {
		return fmt.Errorf("marshal page cap: %w", err)
	}
	if dir := filepath.Dir(f.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create page cap dir: %w", err)
		}
	}
	if err := os.WriteFile(f.Path, data, 0o644); err != nil {
		return fmt.Errorf("write page cap file: %w", err)
	}
	return nil
}
