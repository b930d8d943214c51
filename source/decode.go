// Package source decodes serialized documents (JSON, YAML, TOML,
// MessagePack) into the untyped values schemas consume: nil, bool, string,
// numbers, time.Time, []any and map[string]any.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	json "github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Format identifies a document encoding.
type Format string

const (
	JSON    Format = "json"
	YAML    Format = "yaml"
	TOML    Format = "toml"
	MsgPack Format = "msgpack"
)

// ErrUnknownFormat is returned for format names, extensions or content types
// that no decoder handles.
var ErrUnknownFormat = errors.New("source: unknown format")

// Formats lists the supported formats in a stable order.
func Formats() []Format { return []Format{JSON, YAML, TOML, MsgPack} }

// ParseFormat resolves a user-supplied format name ("json", "yml", ...).
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "toml":
		return TOML, nil
	case "msgpack", "mpk", "messagepack":
		return MsgPack, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// FormatFromPath picks a format from the file extension.
func FormatFromPath(path string) (Format, bool) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", false
	}
	f, err := ParseFormat(ext)
	return f, err == nil
}

// FormatFromContentType picks a format from an HTTP Content-Type header.
// An empty header means JSON.
func FormatFromContentType(ct string) (Format, bool) {
	if strings.TrimSpace(ct) == "" {
		return JSON, true
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", false
	}
	switch {
	case mt == "application/json" || strings.HasSuffix(mt, "+json"):
		return JSON, true
	case mt == "application/yaml" || mt == "application/x-yaml" || mt == "text/yaml":
		return YAML, true
	case mt == "application/toml":
		return TOML, true
	case mt == "application/msgpack" || mt == "application/x-msgpack" || mt == "application/vnd.msgpack":
		return MsgPack, true
	}
	return "", false
}

// Decode turns data into an untyped value.
func Decode(f Format, data []byte) (any, error) {
	var (
		v   any
		err error
	)
	switch f {
	case JSON:
		v, err = decodeJSON(data)
	case YAML:
		v, err = decodeYAML(data)
	case TOML:
		v, err = decodeTOML(data)
	case MsgPack:
		err = msgpack.Unmarshal(data, &v)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("source: decode %s: %w", f, err)
	}
	return Normalize(v), nil
}

// DecodeReader reads at most limit bytes from r (no limit when limit <= 0)
// and decodes them.
func DecodeReader(f Format, r io.Reader, limit int64) (any, error) {
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("source: read: %w", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("source: input exceeds %d bytes", limit)
	}
	return Decode(f, data)
}

func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	// anything after the first value, including a stray '}' or ']'
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return v, nil
}

func decodeYAML(data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func decodeTOML(data []byte) (any, error) {
	var v map[string]any
	if _, err := toml.Decode(string(data), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Normalize rewrites decoder-specific shapes into the common value model:
// json.Number becomes int64 when integral and float64 otherwise, maps with
// non-string keys get their keys stringified, and typed slices of maps become
// []any.
func Normalize(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil && !math.IsInf(f, 0) {
			return f
		}
		return t.String()
	case map[string]any:
		for k, e := range t {
			t[k] = Normalize(e)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = Normalize(e)
		}
		return out
	case []any:
		for i, e := range t {
			t[i] = Normalize(e)
		}
		return t
	case []map[string]any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Normalize(e)
		}
		return out
	}
	return v
}
