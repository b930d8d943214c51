package gosift

import (
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Segment is one step of a Path: an object key or an array index.
type Segment struct {
	key     string
	index   int
	isIndex bool
}

// Key returns a segment addressing an object field or record entry.
func Key(k string) Segment { return Segment{key: k} }

// Index returns a segment addressing an array or tuple position.
func Index(i int) Segment { return Segment{index: i, isIndex: true} }

// IsIndex reports whether the segment addresses a position.
func (s Segment) IsIndex() bool { return s.isIndex }

// Value returns the segment as a string key or an int index.
func (s Segment) Value() any {
	if s.isIndex {
		return s.index
	}
	return s.key
}

func (s Segment) String() string {
	if s.isIndex {
		return strconv.Itoa(s.index)
	}
	return s.key
}

// MarshalJSON renders keys as strings and indices as numbers.
func (s Segment) MarshalJSON() ([]byte, error) { return json.Marshal(s.Value()) }

// Path locates a value relative to the schema that raised an issue.
type Path []Segment

// PathOf builds a path from string keys and int indices. Other values are
// rendered as keys.
func PathOf(parts ...any) Path {
	p := make(Path, 0, len(parts))
	for _, part := range parts {
		switch v := part.(type) {
		case int:
			p = append(p, Index(v))
		case string:
			p = append(p, Key(v))
		case Segment:
			p = append(p, v)
		default:
			p = append(p, Key(fmt.Sprint(v)))
		}
	}
	return p
}

// Prepend returns a new path starting with seg. The receiver is not modified.
func (p Path) Prepend(seg Segment) Path {
	out := make(Path, 0, len(p)+1)
	out = append(out, seg)
	return append(out, p...)
}

// Append returns a new path ending with seg. The receiver is not modified.
func (p Path) Append(seg Segment) Path {
	out := make(Path, 0, len(p)+1)
	out = append(out, p...)
	return append(out, seg)
}

// Pointer renders the path as an RFC 6901 JSON Pointer ("/" for the root).
func (p Path) Pointer() string {
	if len(p) == 0 {
		return "/"
	}
	b := &strings.Builder{}
	for _, s := range p {
		b.WriteByte('/')
		if s.isIndex {
			b.WriteString(strconv.Itoa(s.index))
			continue
		}
		// escape '~' -> '~0', '/' -> '~1' per RFC6901
		b.WriteString(strings.ReplaceAll(strings.ReplaceAll(s.key, "~", "~0"), "/", "~1"))
	}
	return b.String()
}

// Values returns the path as plain keys and indices.
func (p Path) Values() []any {
	out := make([]any, len(p))
	for i, s := range p {
		out[i] = s.Value()
	}
	return out
}

// ParsePointer parses an RFC 6901 JSON Pointer. Every segment is returned as
// a key; consumers decide whether a numeric key addresses a position. "" and
// "/" both denote the root.
func ParsePointer(ptr string) Path {
	if ptr == "" || ptr == "/" {
		return Path{}
	}
	parts := strings.Split(strings.TrimPrefix(ptr, "/"), "/")
	p := make(Path, len(parts))
	for i, part := range parts {
		p[i] = Key(strings.ReplaceAll(strings.ReplaceAll(part, "~1", "/"), "~0", "~"))
	}
	return p
}
