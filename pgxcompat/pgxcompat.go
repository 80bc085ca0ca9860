// Package pgxcompat adapts compiled statements to pgx-based execution
// collaborators. The engine itself never executes anything; this package
// only reshapes a Statement into the forms pgx accepts.
package pgxcompat

import (
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/quillsql/quill"
)

// NamedArgs converts a statement's parameters to pgx named arguments. The
// SQL text already references parameters as @name, which pgx.NamedArgs
// rewrites to positional placeholders at execution time.
func NamedArgs(st quill.Statement) pgx.NamedArgs {
	args := make(pgx.NamedArgs, len(st.Params))
	for _, p := range st.Params {
		args[p.Name] = p.Value
	}
	return args
}

// Positional rewrites a statement's @name placeholders to $1..$n and returns
// the matching ordered argument slice, for callers binding positionally.
func Positional(st quill.Statement) (string, []any) {
	if len(st.Params) == 0 {
		return st.SQL, nil
	}

	ordinal := make(map[string]int, len(st.Params))
	args := make([]any, len(st.Params))
	for i, p := range st.Params {
		ordinal[p.Name] = i + 1
		args[i] = p.Value
	}

	var b strings.Builder
	b.Grow(len(st.SQL))
	text := st.SQL
	for {
		idx := strings.IndexByte(text, '@')
		if idx < 0 {
			b.WriteString(text)
			return b.String(), args
		}
		b.WriteString(text[:idx])
		rest := text[idx+1:]
		end := 0
		for end < len(rest) && isNameByte(rest[end]) {
			end++
		}
		name := rest[:end]
		if n, ok := ordinal[name]; ok {
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		} else {
			b.WriteByte('@')
			b.WriteString(name)
		}
		text = rest[end:]
	}
}

func isNameByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
