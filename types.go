package gosift

import (
	"time"
)

// missingValue is the type of Missing. It is unexported so Missing can only be
// produced by this package.
type missingValue struct{}

func (missingValue) String() string { return "<missing>" }

// Missing is the absent-input sentinel. It differs from nil (null): defaults
// apply only to Missing, and object schemas pass Missing for declared fields
// that the input does not contain.
var Missing any = missingValue{}

// IsMissing reports whether v is the absent sentinel.
func IsMissing(v any) bool {
	_, ok := v.(missingValue)
	return ok
}

// Result is the outcome of SafeParse: Data when Success, otherwise the full
// batch of Issues.
type Result[T any] struct {
	Success bool
	Data    T
	Issues  Issues
}

// Mode selects how a parse treats deferred stages.
type Mode uint8

const (
	Sync  Mode = iota // Deferred stages are rejected with ErrAsyncStage.
	Async             // Deferred stages are awaited.
)

func (m Mode) String() string {
	if m == Async {
		return "async"
	}
	return "sync"
}

// File is a binary blob value with the metadata file schemas validate.
type File struct {
	Name         string
	Type         string // MIME type.
	LastModified time.Time
	Data         []byte
}

// NewFile builds a File, copying data.
func NewFile(name, mimeType string, data []byte) *File {
	return &File{Name: name, Type: mimeType, LastModified: time.Now(), Data: append([]byte(nil), data...)}
}

// Size returns the blob length in bytes.
func (f *File) Size() int { return len(f.Data) }

// CloneValue reconstructs an independent File.
func (f *File) CloneValue() any {
	if f == nil {
		return (*File)(nil)
	}
	return &File{Name: f.Name, Type: f.Type, LastModified: f.LastModified, Data: append([]byte(nil), f.Data...)}
}
