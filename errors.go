package gosift

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention).
// Codes are dotted "<category>.<rule>" strings except for the core codes.
const (
	CodeInvalidType = "invalid_type"    // Reserved for type-narrowing failures.
	CodeValidator   = "validator_error" // Ad-hoc validators that report no code.
	CodeParseError  = "parse_error"     // Source decoding failures.
	CodeRequired    = "required"        // Conditional presence rules.

	CodeStringNonEmpty = "string.non_empty"
	CodeStringMin      = "string.min"
	CodeStringMax      = "string.max"
	CodeStringLength   = "string.length"
	CodeStringRegex    = "string.regex"
	CodeStringEmail    = "string.email"
	CodeStringURL      = "string.url"
	CodeStringUUID     = "string.uuid"

	CodeNumberMin         = "number.min"
	CodeNumberMax         = "number.max"
	CodeNumberInteger     = "number.integer"
	CodeNumberPositive    = "number.positive"
	CodeNumberNegative    = "number.negative"
	CodeNumberSafeInteger = "number.safe_integer"
	CodeNumberStep        = "number.step"

	CodeIntMin      = "int.min"
	CodeIntMax      = "int.max"
	CodeIntPositive = "int.positive"
	CodeIntNegative = "int.negative"

	CodeBigintMin      = "bigint.min"
	CodeBigintMax      = "bigint.max"
	CodeBigintPositive = "bigint.positive"
	CodeBigintNegative = "bigint.negative"

	CodeDateMin = "date.min"
	CodeDateMax = "date.max"

	CodeFileMin  = "file.min"
	CodeFileMax  = "file.max"
	CodeFileMime = "file.mime"

	CodeArrayNonEmpty = "array.non_empty"
	CodeArrayMin      = "array.min"
	CodeArrayMax      = "array.max"
	CodeArrayUnique   = "array.unique"
)

// Issue represents a single violation located by Path relative to the schema
// that produced it.
type Issue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    Path   `json:"path"`
}

// WithPrefix returns a copy of the issue whose path starts with seg.
func (it Issue) WithPrefix(seg Segment) Issue {
	it.Path = it.Path.Prepend(seg)
	return it
}

// Issues is a batch of violations that implements error. It is the only error
// kind a fallback intercepts and SafeParse converts into a Result.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. string.min at /tags/0
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path.Pointer())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// WithPrefix returns a new batch with seg prepended to every issue path.
func (iss Issues) WithPrefix(seg Segment) Issues {
	out := make(Issues, len(iss))
	for i, it := range iss {
		out[i] = it.WithPrefix(seg)
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// ErrAsyncStage reports that a synchronous parse reached a stage that can only
// complete asynchronously. It is a programming error, not a data error: it is
// never converted into Issues and never replaced by a fallback.
var ErrAsyncStage = errors.New("gosift: async stage must be parsed with an async parser")

// AsyncStageError wraps ErrAsyncStage with the name of the offending stage.
func AsyncStageError(stage string) error {
	return fmt.Errorf("%w (%s)", ErrAsyncStage, stage)
}
