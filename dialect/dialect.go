// Package dialect captures the static, per-database-family SQL syntax facts
// the rest of the engine is polymorphic over: identifier quoting, parameter
// prefix, pagination form, boolean literals, string concatenation and
// function-name translation. Dialect values are immutable and safe to share.
package dialect

import (
	"fmt"

	"github.com/quillsql/quill"
)

// Pagination selects the syntactic form a dialect uses to bound result sets.
type Pagination int

const (
	// LimitOffset emits LIMIT n [OFFSET m] (SQLite, MySQL, Postgres).
	LimitOffset Pagination = iota
	// TopN rewrites the enclosing SELECT to SELECT TOP n (SQL Server
	// without an offset).
	TopN
	// OffsetFetch emits OFFSET m ROWS FETCH NEXT n ROWS ONLY (SQL Server
	// when an offset is present).
	OffsetFetch
)

// Dialect is the descriptor of one database family. All methods are pure.
type Dialect interface {
	Name() string

	// QuoteIdentifier wraps a table or column name in the dialect's quote
	// characters. Identifiers are never emitted bare.
	QuoteIdentifier(name string) string

	// ParamPrefix is the marker that introduces a named parameter in SQL
	// text, e.g. "@" for "@p0".
	ParamPrefix() string

	// Placeholder renders a named parameter reference.
	Placeholder(name string) string

	// Pagination reports which pagination syntax the dialect uses.
	Pagination() Pagination

	// NoLimit is the LIMIT argument meaning "unbounded", required when an
	// offset is requested without a limit (MySQL and SQLite reject a bare
	// OFFSET). Empty means the dialect accepts OFFSET on its own.
	NoLimit() string

	// BoolLiteral renders a boolean constant as SQL text.
	BoolLiteral(b bool) string

	// BoolValue converts a boolean into the value the dialect's drivers
	// bind for boolean columns (TRUE/FALSE dialects bind bool, 1/0
	// dialects bind an integer).
	BoolValue(b bool) any

	// Concat renders string concatenation over the given operand texts.
	Concat(args ...string) string

	// CurrentTimestamp is the dialect's now() expression.
	CurrentTimestamp() string

	// Function translates a canonical scalar function name (upper, lower,
	// trim, length, substring, abs, round, ceiling, floor, year, month)
	// into the dialect's spelling over the given argument texts.
	Function(name string, args ...string) (string, error)
}

// base carries the facts the four dialects share; each concrete dialect
// embeds it with its own values filled in.
type base struct {
	name       string
	quoteOpen  string
	quoteClose string
	pagination Pagination
	noLimit    string
	boolAsInt  bool
	concatFn   bool // CONCAT(...) instead of the || operator
	now        string
	funcs      map[string]string // canonical name -> fmt pattern over args
}

func (b base) Name() string { return b.name }

func (b base) QuoteIdentifier(name string) string {
	return b.quoteOpen + name + b.quoteClose
}

func (b base) ParamPrefix() string { return "@" }

func (b base) Placeholder(name string) string { return "@" + name }

func (b base) Pagination() Pagination { return b.pagination }

func (b base) NoLimit() string { return b.noLimit }

func (b base) BoolLiteral(v bool) string {
	if b.boolAsInt {
		if v {
			return "1"
		}
		return "0"
	}
	if v {
		return "TRUE"
	}
	return "FALSE"
}

func (b base) BoolValue(v bool) any {
	if b.boolAsInt {
		if v {
			return int64(1)
		}
		return int64(0)
	}
	return v
}

func (b base) Concat(args ...string) string {
	if len(args) == 1 {
		return args[0]
	}
	if b.concatFn {
		return "CONCAT(" + join(args, ", ") + ")"
	}
	return join(args, " || ")
}

func (b base) CurrentTimestamp() string { return b.now }

func (b base) Function(name string, args ...string) (string, error) {
	pattern, ok := b.funcs[name]
	if !ok {
		return "", &quill.UnsupportedDialectFeatureError{Dialect: b.name, Feature: name}
	}
	anys := make([]any, len(args))
	for i, a := range args {
		anys[i] = a
	}
	return fmt.Sprintf(pattern, anys...), nil
}

func join(parts []string, sep string) string {
	out := parts[0]
	for _, p := range parts[1:] {
		out += sep + p
	}
	return out
}
