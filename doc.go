// Package gosift provides:
//
// - Composable runtime validation: every schema runs default, preprocess,
// narrowing, validators and processors in order, with an optional fallback
// around the whole attempt
// - Sync and async parsing (Parse/ParseAsync, SafeParse/SafeParseAsync)
// - A stable error model via Issues (JSON Pointer path, code, message)
// - Decoding of JSON, YAML, TOML and MessagePack inputs via Source
//
// Design policy:
// - Keep the pipeline and the error model in the root package; the schema
// catalog lives under dsl/, rule helpers under rules/, codecs under codec/.
// - Builders configure a schema in place and return it for chaining; Clone
// gives an independent copy. Inputs are deep-copied at stage boundaries, so
// parsing never mutates caller data.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	s := dsl.Object(dsl.Field("name", dsl.String().Min(1)))
//	v, err := s.Parse(ctx, input)
//	v, err = gosift.ParseFrom[map[string]any](ctx, s, gosift.JSONBytes(data))
//
//	res, err := s.SafeParseAsync(ctx, input)
//	if err == nil && !res.Success {
//	    // res.Issues
//	}
package gosift
