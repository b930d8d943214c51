package gosift

import (
	"context"
	"io"

	"github.com/reoring/gosift/i18n"
	"github.com/reoring/gosift/source"
)

// Source is a serialized document that can be decoded into an untyped value.
type Source interface {
	Decode() (any, error)
}

type bytesSource struct {
	format source.Format
	data   []byte
}

func (s bytesSource) Decode() (any, error) { return source.Decode(s.format, s.data) }

type readerSource struct {
	format source.Format
	r      io.Reader
	limit  int64
}

func (s readerSource) Decode() (any, error) { return source.DecodeReader(s.format, s.r, s.limit) }

// JSONBytes wraps a JSON document.
func JSONBytes(b []byte) Source { return bytesSource{format: source.JSON, data: b} }

// YAMLBytes wraps a YAML document.
func YAMLBytes(b []byte) Source { return bytesSource{format: source.YAML, data: b} }

// TOMLBytes wraps a TOML document.
func TOMLBytes(b []byte) Source { return bytesSource{format: source.TOML, data: b} }

// MsgPackBytes wraps a MessagePack document.
func MsgPackBytes(b []byte) Source { return bytesSource{format: source.MsgPack, data: b} }

// BytesOf wraps a document in the given format.
func BytesOf(f source.Format, b []byte) Source { return bytesSource{format: f, data: b} }

// ReaderOf wraps a stream in the given format. At most limit bytes are read
// (no limit when limit <= 0).
func ReaderOf(f source.Format, r io.Reader, limit int64) Source {
	return readerSource{format: f, r: r, limit: limit}
}

// ParseFrom decodes src and parses the result with s. Decoding failures are
// reported as a single parse_error issue at the root.
func ParseFrom[T any](ctx context.Context, s Schema[T], src Source) (T, error) {
	return parseFrom(ctx, s, src, Sync)
}

// ParseFromAsync is ParseFrom using the asynchronous pipeline.
func ParseFromAsync[T any](ctx context.Context, s Schema[T], src Source) (T, error) {
	return parseFrom(ctx, s, src, Async)
}

// SafeParseFrom is ParseFrom with data errors reported in the Result.
func SafeParseFrom[T any](ctx context.Context, s Schema[T], src Source) (Result[T], error) {
	return toResult(parseFrom(ctx, s, src, Sync))
}

// ParseNodeFrom is ParseFrom for type-erased schemas.
func ParseNodeFrom(ctx context.Context, n Node, src Source, mode Mode) (any, error) {
	v, err := src.Decode()
	if err != nil {
		return nil, DecodeIssues(err)
	}
	return ParseNode(ctx, n, v, mode)
}

func parseFrom[T any](ctx context.Context, s Schema[T], src Source, mode Mode) (T, error) {
	var zero T
	v, err := src.Decode()
	if err != nil {
		return zero, DecodeIssues(err)
	}
	return s.Run(ctx, v, mode)
}

// DecodeIssues reports a Source decoding failure as a single parse_error issue.
// An error that already is an Issues batch is returned as is.
func DecodeIssues(err error) Issues {
	if ii, ok := AsIssues(err); ok {
		return ii
	}
	return AppendIssues(nil, Issue{
		Code:    CodeParseError,
		Message: i18n.T(CodeParseError, map[string]string{"detail": err.Error()}),
	})
}
