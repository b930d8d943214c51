// Package dsl provides the schema catalog for gosift.
//
// Every schema embeds *gosift.Pipeline, so the pipeline builders (Validate,
// Process, Preprocess, Default, Fallback and their Func/Async variants) and
// the parse entry points (Parse, ParseAsync, SafeParse, SafeParseAsync) are
// available on all of them and return the concrete schema for chaining.
//
// Catalog
//   - Leaves: String, Number, Int, Bigint, Boolean, Booleanish, Date, File,
//     Literal, Enum, Undefined, Null, Any.
//   - Containers: Object (with Field), Array/ArrayOf, Tuple, Record/RecordOf.
//   - Combinators: Union, Intersection, Lazy/LazyNode, Mutate/MutateAsync.
//   - Wrappers: Optional, Nullable, Nullish.
//
// Constructors clone the child schemas they are given; changing a child after
// building a container does not affect the container.
//
// Example
//
//	user := dsl.Object(
//	    dsl.Field("name", dsl.String().Min(1)),
//	    dsl.Field("email", dsl.String().Email()),
//	    dsl.Field("age", dsl.Optional(dsl.Int().Min(0))),
//	    dsl.Field("tags", dsl.Array(dsl.String().Min(3)).Default([]string{})),
//	)
//
//	res, err := user.SafeParse(ctx, input)
//	if err != nil {
//	    // misuse, e.g. an async validator under the sync parser
//	}
//	if !res.Success {
//	    for _, it := range res.Issues {
//	        fmt.Println(it.Path.Pointer(), it.Code, it.Message)
//	    }
//	}
package dsl
