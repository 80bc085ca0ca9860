// Package schema holds the immutable metadata the engine compiles against:
// per-column facts and the TableContext that groups them. A TableContext is
// built once per repository, either explicitly or by introspecting a struct
// type, and is only ever read afterwards.
package schema

import "github.com/quillsql/quill/utils"

// Column describes one table column as the engine needs to know it.
type Column struct {
	// Name is the database column name.
	Name string
	// Field is the Go-side field name the column maps to, when known.
	Field string
	// Type is the host type tag: int, uint, float, string, bool, time,
	// bytes.
	Type string
	// Nullable marks columns that accept NULL.
	Nullable bool
	// Ordinal is the zero-based position of the column in catalog order.
	Ordinal int
	// Generator, when set, produces a value for the column if the caller
	// supplies none (identifier columns, typically).
	Generator IDGenerator
}

// IsBool reports whether the column holds a boolean, which several dialects
// spell differently in literals and bind values.
func (c Column) IsBool() bool { return c.Type == "bool" }

// TableContext is the catalog one repository compiles its statements
// against: a table name, an optional alias, and the ordered column list.
type TableContext struct {
	Table   string
	Alias   string
	columns []Column
	byName  map[string]int
	fp      uint64
}

// NewTableContext builds a context from an explicit column list. Ordinals
// are assigned in argument order.
func NewTableContext(table string, cols ...Column) *TableContext {
	ctx := &TableContext{
		Table:   table,
		columns: make([]Column, len(cols)),
		byName:  make(map[string]int, len(cols)),
	}
	for i, c := range cols {
		c.Ordinal = i
		ctx.columns[i] = c
		ctx.byName[c.Name] = i
	}

	fp := utils.FingerprintString(table)
	for _, c := range ctx.columns {
		fp = utils.Mix64(fp, utils.FingerprintString(c.Name+":"+c.Type))
	}
	ctx.fp = fp
	return ctx
}

// Fingerprint identifies the catalog (table plus column names and types) for
// cache keying.
func (t *TableContext) Fingerprint() uint64 {
	fp := t.fp
	if t.Alias != "" {
		fp = utils.Mix64(fp, utils.FingerprintString("as:"+t.Alias))
	}
	return fp
}

// WithAlias returns a copy of the context carrying a table alias. The
// receiver is not modified.
func (t *TableContext) WithAlias(alias string) *TableContext {
	dup := *t
	dup.Alias = alias
	return &dup
}

// Columns returns the ordered column list. Callers must not mutate it.
func (t *TableContext) Columns() []Column { return t.columns }

// Column looks a column up by database name.
func (t *TableContext) Column(name string) (Column, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Column{}, false
	}
	return t.columns[i], true
}

// Has reports whether the catalog contains the named column.
func (t *TableContext) Has(name string) bool {
	_, ok := t.byName[name]
	return ok
}
