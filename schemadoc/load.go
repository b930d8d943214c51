package schemadoc

import (
	"fmt"
	"os"

	"github.com/reoring/gosift/source"
)

// Load reads and compiles a schema document, picking the format from the file
// extension (.yaml, .yml, .json, .toml, .msgpack).
func Load(path string, opts ...Option) (*Document, error) {
	f, ok := source.FormatFromPath(path)
	if !ok {
		return nil, fmt.Errorf("schemadoc: %s: %w", path, source.ErrUnknownFormat)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schemadoc: %w", err)
	}
	doc, err := LoadBytes(f, data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// LoadBytes decodes data in format f and compiles it.
func LoadBytes(f source.Format, data []byte, opts ...Option) (*Document, error) {
	v, err := source.Decode(f, data)
	if err != nil {
		return nil, fmt.Errorf("schemadoc: %w", err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: /: expected a mapping at the top level, got %T", ErrInvalidDocument, v)
	}
	return Compile(m, opts...)
}
