package codec_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/gosift"
	"github.com/reoring/gosift/codec"
	"github.com/reoring/gosift/dsl"
)

func TestNumberFromString(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		in   any
		want float64
		code string
	}{
		{in: "1.5", want: 1.5},
		{in: " -2 ", want: -2},
		{in: "1e3", want: 1000},
		{in: "abc", code: gosift.CodeInvalidType},
		{in: 1.5, code: gosift.CodeInvalidType},
	}
	for _, tt := range tests {
		got, err := codec.NumberFromString().Parse(ctx, tt.in)
		if tt.code == "" {
			require.NoError(t, err, "%v", tt.in)
			assert.Equal(t, tt.want, got)
			continue
		}
		assert.Equal(t, tt.code, issuesOf(t, err)[0].Code, "%v", tt.in)
	}
}

func TestNumberFromString_TargetRules(t *testing.T) {
	s := codec.NumberFromString(dsl.Number().Max(10))
	_, err := s.Parse(context.Background(), "11")
	assert.Equal(t, gosift.CodeNumberMax, issuesOf(t, err)[0].Code)
}

func TestIntFromString(t *testing.T) {
	ctx := context.Background()
	got, err := codec.IntFromString().Parse(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got)

	_, err = codec.IntFromString().Parse(ctx, "4.2")
	assert.Equal(t, "Invalid input type: integer string was expected", issuesOf(t, err)[0].Message)
}
