package utils_test

import (
	"testing"

	"github.com/alyssonw2/BD-AJ/utils"
	"github.com/stretchr/testify/require"
)

func Test_EqualAny(t *testing.T) {
	// Test cases
	tests := []struct {
		name string
		a    any
		b    any
		want bool
	}{
		{
			name: "float64",
			a:    float64(1),
			b:    float64(1),
			want: true,
		},
		{
			name: "mixed number widths",
			a:    float64(1721951931465),
			b:    int64(1721951931465),
			want: true,
		},
		{
			name: "uint8 from msgpack",
			a:    uint8(7),
			b:    float64(7),
			want: true,
		},
		{
			name: "string",
			a:    "a",
			b:    "a",
			want: true,
		},
		{
			name: "different types",
			a:    "1",
			b:    float64(1),
			want: false,
		},
		{
			name: "bool",
			a:    true,
			b:    true,
			want: true,
		},
		{
			name: "bool vs number",
			a:    true,
			b:    float64(1),
			want: false,
		},
		{
			name: "nil",
			a:    nil,
			b:    nil,
			want: true,
		},
		{
			name: "nil vs string",
			a:    nil,
			b:    "",
			want: false,
		},
		{
			name: "array",
			a:    []any{"a", float64(2)},
			b:    []any{"a", int64(2)},
			want: true,
		},
		{
			name: "array length",
			a:    []any{"a"},
			b:    []any{"a", "b"},
			want: false,
		},
		{
			name: "object",
			a:    map[string]any{"size": float64(3), "tags": []any{"x"}},
			b:    map[string]any{"size": float64(3), "tags": []any{"x"}},
			want: true,
		},
		{
			name: "object missing key",
			a:    map[string]any{"size": float64(3)},
			b:    map[string]any{"other": float64(3)},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, utils.EqualAny(tt.a, tt.b))
			require.Equal(t, tt.want, utils.EqualAny(tt.b, tt.a))
		})
	}
}

func Test_ToFloat(t *testing.T) {
	f, ok := utils.ToFloat(int16(-4))
	require.True(t, ok)
	require.Equal(t, float64(-4), f)
	_, ok = utils.ToFloat("4")
	require.False(t, ok)
	_, ok = utils.ToFloat(nil)
	require.False(t, ok)
}
