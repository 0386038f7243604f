package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"newsdesk/internal/domain/entity"
)

// ErrInvalidSources is returned when the sources file cannot be decoded.
var ErrInvalidSources = errors.New("invalid sources file")

type sourcesFile struct {
	Collections []entity.SourceCollection `yaml:"collections"`
}

// LoadSources reads the source collections from path. A missing file yields
// no collections and a warning, which the rss probe then reports as unhealthy.
func LoadSources(path string) ([]entity.SourceCollection, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("sources file not found, no RSS feeds configured", slog.String("path", path))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read sources file %s: %w", path, err)
	}
	return ParseSources(data)
}

// ParseSources decodes a sources document. Unknown keys are rejected so a
// misspelled field does not silently drop feeds.
func ParseSources(data []byte) ([]entity.SourceCollection, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc sourcesFile
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidSources, err)
	}
	return doc.Collections, nil
}
