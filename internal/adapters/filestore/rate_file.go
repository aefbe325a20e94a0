package filestore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"fxconvert/internal/domain"

	"github.com/sirupsen/logrus"
)

// RateFile keeps the rate document in a single JSON file. Writes overwrite the file in place.
type RateFile struct {
	path string
}

func NewRateFile(path string) *RateFile {
	return &RateFile{path: path}
}

func (f *RateFile) Path() string { return f.path }

func (f *RateFile) Write(doc domain.RateDocument) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode rates document: %w", err)
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create cache directory %q: %w", dir, err)
		}
	}
	if err := os.WriteFile(f.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write rates file %q: %w", f.path, err)
	}

	logrus.WithFields(logrus.Fields{"path": f.path, "bases": len(doc)}).Debug("Rates file written")
	return nil
}

func (f *RateFile) Read() (domain.RateDocument, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrCacheMissing
		}
		return nil, fmt.Errorf("failed to read rates file %q: %w", f.path, err)
	}

	var doc domain.RateDocument
	if err = json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrMalformedCache, f.path, err)
	}
	if doc == nil {
		// a literal "null" file
		doc = domain.RateDocument{}
	}
	if err = doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

func (f *RateFile) Exists() bool {
	info, err := os.Stat(f.path)
	return err == nil && !info.IsDir()
}

func (f *RateFile) ModTime() (time.Time, error) {
	info, err := os.Stat(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return time.Time{}, domain.ErrCacheMissing
		}
		return time.Time{}, fmt.Errorf("failed to stat rates file %q: %w", f.path, err)
	}
	return info.ModTime(), nil
}
