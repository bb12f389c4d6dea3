package money

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerce_Numbers(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"float64", 19.99, 19.99},
		{"float32", float32(2), 2},
		{"int", 42, 42},
		{"int64", int64(7), 7},
		{"uint", uint(3), 3},
		{"zero", 0.0, 0},
		{"negative", -1.5, -1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Coerce(tt.in)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoerce_Strings(t *testing.T) {
	got, ok := Coerce("199.99")
	assert.True(t, ok)
	assert.Equal(t, 199.99, got)

	got, ok = Coerce("  42 ")
	assert.True(t, ok)
	assert.Equal(t, 42.0, got)
}

func TestCoerce_JSONNumber(t *testing.T) {
	got, ok := Coerce(json.Number("12.5"))
	assert.True(t, ok)
	assert.Equal(t, 12.5, got)

	_, ok = Coerce(json.Number("not-a-number"))
	assert.False(t, ok)
}

func TestCoerce_Unresolvable(t *testing.T) {
	tests := []struct {
		name string
		in   any
	}{
		{"nil", nil},
		{"empty string", ""},
		{"whitespace string", "   "},
		{"word", "free"},
		{"bool", true},
		{"map", map[string]any{}},
		{"slice", []any{1}},
		{"NaN", math.NaN()},
		{"+Inf", math.Inf(1)},
		{"-Inf", math.Inf(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Coerce(tt.in)
			assert.False(t, ok)
			assert.Zero(t, got)
		})
	}
}
