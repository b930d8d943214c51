package dsl

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/reoring/gosift"
	"github.com/reoring/gosift/formats"
)

// StringSchema accepts Go strings. Length rules count runes.
type StringSchema struct {
	*gosift.Pipeline[string, *StringSchema]
	msg string
}

// String returns a string schema. msg optionally replaces the invalid-type
// message.
func String(msg ...string) *StringSchema {
	s := &StringSchema{msg: first(msg)}
	s.Pipeline = gosift.NewPipeline[string, *StringSchema](s, "string", s.narrow, s.clone)
	return s
}

func (s *StringSchema) narrow(_ context.Context, in any, _ gosift.Mode) (string, error) {
	v, ok := in.(string)
	if !ok {
		return "", invalidType("string", s.msg)
	}
	return v, nil
}

func (s *StringSchema) clone() *StringSchema {
	c := String(s.msg)
	c.Adopt(s.Pipeline)
	return c
}

// NonEmpty rejects strings that are empty or whitespace only.
func (s *StringSchema) NonEmpty(r ...gosift.Replacer) *StringSchema {
	return s.Validate(rule(gosift.CodeStringNonEmpty, nil, r, func(v string) bool {
		return strings.TrimSpace(v) == ""
	}))
}

// Min requires at least n characters.
func (s *StringSchema) Min(n int, r ...gosift.Replacer) *StringSchema {
	return s.Validate(rule(gosift.CodeStringMin, map[string]string{"min": itoa(n)}, r, func(v string) bool {
		return utf8.RuneCountInString(v) < n
	}))
}

// Max allows at most n characters.
func (s *StringSchema) Max(n int, r ...gosift.Replacer) *StringSchema {
	return s.Validate(rule(gosift.CodeStringMax, map[string]string{"max": itoa(n)}, r, func(v string) bool {
		return utf8.RuneCountInString(v) > n
	}))
}

// Length requires exactly n characters.
func (s *StringSchema) Length(n int, r ...gosift.Replacer) *StringSchema {
	return s.Validate(rule(gosift.CodeStringLength, map[string]string{"length": itoa(n)}, r, func(v string) bool {
		return utf8.RuneCountInString(v) != n
	}))
}

// Regex requires a match of re.
func (s *StringSchema) Regex(re *regexp.Regexp, r ...gosift.Replacer) *StringSchema {
	return s.Validate(rule(gosift.CodeStringRegex, nil, r, func(v string) bool {
		return !re.MatchString(v)
	}))
}

// Email requires an e-mail address (formats.IsEmail).
func (s *StringSchema) Email(r ...gosift.Replacer) *StringSchema {
	return s.Validate(rule(gosift.CodeStringEmail, nil, r, func(v string) bool {
		return !formats.IsEmail(v)
	}))
}

// URL requires an absolute URL.
func (s *StringSchema) URL(r ...gosift.Replacer) *StringSchema {
	return s.Validate(rule(gosift.CodeStringURL, nil, r, func(v string) bool {
		return !formats.IsURL(v)
	}))
}

// UUID requires a textual UUID.
func (s *StringSchema) UUID(r ...gosift.Replacer) *StringSchema {
	return s.Validate(rule(gosift.CodeStringUUID, nil, r, func(v string) bool {
		return !formats.IsUUID(v)
	}))
}
