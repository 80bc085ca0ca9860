package quill

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatementArgs(t *testing.T) {
	st := Statement{
		SQL: `SELECT * FROM "users" WHERE "age" > @p0 AND "name" = @p1`,
		Params: []Param{
			{Name: "p0", Value: 18},
			{Name: "p1", Value: "ada"},
		},
	}

	assert.Equal(t, []any{18, "ada"}, st.Args())
	assert.Equal(t, map[string]any{"p0": 18, "p1": "ada"}, st.ArgMap())
}

func TestStatementArgsEmpty(t *testing.T) {
	st := Statement{SQL: "SELECT 1"}
	assert.Nil(t, st.Args())
	assert.Empty(t, st.ArgMap())
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{&TemplateSyntaxError{Pos: 7, Token: "nonexistent"}, `quill: template syntax error at offset 7 near "nonexistent"`},
		{&ColumnResolutionError{Name: "salary"}, `quill: unknown column "salary"`},
		{&ParameterBindingError{Name: "predicate"}, `quill: cannot bind parameter "predicate"`},
		{&UnsupportedDialectFeatureError{Dialect: "sqlserver", Feature: "limit"}, "quill: dialect sqlserver does not support limit"},
		{&UnsupportedExpressionError{Construct: "function soundex"}, "quill: unsupported expression construct function soundex"},
	}
	for _, tt := range tests {
		assert.EqualError(t, tt.err, tt.expected)
	}
}
