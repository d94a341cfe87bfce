package match

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleKeys = []string{
	"b-wing/a.txt",
	"b-wing/b.log",
	"b-wing/report-2024.csv",
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		wantErr bool
	}{
		{name: "literal", expr: "report"},
		{name: "anchored", expr: `^b-wing/report`},
		{name: "escaped dot", expr: `\.log$`},
		{name: "empty matches everything", expr: ""},
		{name: "unclosed group", expr: "(abc", wantErr: true},
		{name: "unclosed class", expr: "[a-", wantErr: true},
		{name: "bad repetition", expr: "*abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.expr)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, p)

				var patErr *PatternError
				require.ErrorAs(t, err, &patErr)
				assert.Equal(t, tt.expr, patErr.Pattern)
				assert.True(t, errors.Is(err, ErrInvalidRegex))
				assert.Contains(t, err.Error(), "pattern "+tt.expr+": ")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expr, p.String())
		})
	}
}

func TestPattern_Filter(t *testing.T) {
	tests := []struct {
		name string
		expr string
		keys []string
		want []string
	}{
		{
			name: "suffix",
			expr: `\.log$`,
			keys: sampleKeys,
			want: []string{"b-wing/b.log"},
		},
		{
			name: "anchored prefix",
			expr: `^b-wing/report`,
			keys: sampleKeys,
			want: []string{"b-wing/report-2024.csv"},
		},
		{
			name: "search anywhere, not full match",
			expr: `2024`,
			keys: sampleKeys,
			want: []string{"b-wing/report-2024.csv"},
		},
		{
			name: "preserves input order",
			expr: `b-wing/`,
			keys: []string{"b-wing/z", "b-wing/a", "b-wing/m"},
			want: []string{"b-wing/z", "b-wing/a", "b-wing/m"},
		},
		{
			name: "no match is empty",
			expr: `\.parquet$`,
			keys: sampleKeys,
			want: []string{},
		},
		{
			name: "empty input",
			expr: `.*`,
			keys: nil,
			want: []string{},
		},
		{
			name: "unescaped dot matches any char",
			expr: `a.txt`,
			keys: []string{"b-wing/a.txt", "b-wing/aXtxt", "b-wing/atxt"},
			want: []string{"b-wing/a.txt", "b-wing/aXtxt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MustCompile(tt.expr).Filter(tt.keys)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilter_IsSubsetOfInput(t *testing.T) {
	keys := []string{"b-wing/1", "b-wing/22", "b-wing/333", "b-wing/4444"}
	for _, expr := range []string{`\d{2}`, `^b`, `4$`, `x`} {
		got, err := Filter(keys, expr)
		require.NoError(t, err)

		// Every result is an input key and order follows the input.
		idx := -1
		for _, g := range got {
			next := -1
			for i := idx + 1; i < len(keys); i++ {
				if keys[i] == g {
					next = i
					break
				}
			}
			require.NotEqual(t, -1, next, "key %q out of order or not in input", g)
			idx = next
		}

		// Every input key that matches is in the result.
		p := MustCompile(expr)
		for _, k := range keys {
			assert.Equal(t, p.Match(k), contains(got, k), "expr %q key %q", expr, k)
		}
	}
}

func TestFilter_InvalidPattern(t *testing.T) {
	got, err := Filter(sampleKeys, "(")
	require.Error(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrInvalidRegex)
}

func TestMustCompile_Panics(t *testing.T) {
	assert.Panics(t, func() { MustCompile("(") })
}

func contains(keys []string, k string) bool {
	for _, x := range keys {
		if x == k {
			return true
		}
	}
	return false
}
