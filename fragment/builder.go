// Package fragment accumulates SQL text and parameters during the
// construction of one statement: raw segments, value-interpolated segments
// (auto-parameterized), rendered templates and nested sub-builders. Builders
// are pooled; Build freezes the fragment and returns the builder to the
// pool.
package fragment

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/quillsql/quill"
	"github.com/quillsql/quill/dialect"
	"github.com/quillsql/quill/schema"
	"github.com/quillsql/quill/template"
)

var builderPool = sync.Pool{
	New: func() any {
		return &Builder{
			sb:     &strings.Builder{},
			params: make([]quill.Param, 0, 8),
		}
	},
}

// Builder is a growable (text, parameter list) pair. It is owned by a single
// goroutine for the duration of one statement build.
type Builder struct {
	sb     *strings.Builder
	params []quill.Param
	d      dialect.Dialect
	n      int // next sequential parameter ordinal
	err    error
}

// New fetches a builder for the given dialect from the pool.
func New(d dialect.Dialect) *Builder {
	b := builderPool.Get().(*Builder)
	b.sb.Reset()
	b.params = b.params[:0]
	b.d = d
	b.n = 0
	b.err = nil
	return b
}

// Raw appends verbatim SQL text. No escaping is applied; the caller
// guarantees the text is a static, safe fragment.
func (b *Builder) Raw(text string) *Builder {
	b.check()
	b.sb.WriteString(text)
	return b
}

// Append appends text in which every ? hole becomes a new sequentially named
// parameter bound to the corresponding value. Values are never concatenated
// into the SQL text.
func (b *Builder) Append(text string, values ...any) *Builder {
	b.check()
	if b.err != nil {
		return b
	}
	if strings.Count(text, "?") != len(values) {
		b.err = fmt.Errorf("fragment: %d ? holes, %d values", strings.Count(text, "?"), len(values))
		return b
	}

	next := 0
	for {
		idx := strings.IndexByte(text, '?')
		if idx < 0 {
			b.sb.WriteString(text)
			break
		}
		b.sb.WriteString(text[:idx])
		name := b.nextName()
		b.sb.WriteString(b.d.Placeholder(name))
		b.params = append(b.params, quill.Param{Name: name, Value: values[next]})
		next++
		text = text[idx+1:]
	}
	return b
}

// AppendTemplate compiles (or fetches from cache) a placeholder template,
// renders it with the given arguments and splices the result in, renaming
// its parameters to avoid collisions.
func (b *Builder) AppendTemplate(text string, ctx *schema.TableContext, args map[string]any) *Builder {
	b.check()
	if b.err != nil {
		return b
	}
	compiled, err := template.Compile(text, ctx, b.d)
	if err != nil {
		b.err = err
		return b
	}
	st, err := compiled.Render(args)
	if err != nil {
		b.err = err
		return b
	}
	b.splice(st.SQL, st.Params)
	return b
}

// AppendStatement splices an already compiled statement (for example the
// output of the expression compiler), renaming parameters as needed.
func (b *Builder) AppendStatement(st quill.Statement) *Builder {
	b.check()
	if b.err == nil {
		b.splice(st.SQL, st.Params)
	}
	return b
}

// AppendSubquery splices another builder's unfinished fragment as a
// parenthesized subquery, renaming its parameters away from names already
// present. The inner builder stays usable and owned by the caller.
func (b *Builder) AppendSubquery(inner *Builder) *Builder {
	b.check()
	inner.check()
	if b.err != nil {
		return b
	}
	if inner.err != nil {
		b.err = inner.err
		return b
	}
	b.sb.WriteByte('(')
	b.splice(inner.sb.String(), inner.params)
	b.sb.WriteByte(')')
	return b
}

// Build freezes the fragment into a statement and returns the builder to
// the pool. The builder must not be used afterwards.
func (b *Builder) Build() (quill.Statement, error) {
	b.check()
	err := b.err

	var st quill.Statement
	if err == nil {
		params := make([]quill.Param, len(b.params))
		copy(params, b.params)
		st = quill.Statement{SQL: b.sb.String(), Params: params}
	}

	b.sb.Reset()
	b.params = b.params[:0]
	b.d = nil
	b.err = nil
	builderPool.Put(b)
	return st, err
}

func (b *Builder) check() {
	if b.d == nil {
		panic("fragment: builder used after Build")
	}
}

func (b *Builder) nextName() string {
	for {
		name := "p" + strconv.Itoa(b.n)
		b.n++
		if !b.has(name) {
			return name
		}
	}
}

func (b *Builder) has(name string) bool {
	for _, p := range b.params {
		if p.Name == name {
			return true
		}
	}
	return false
}

// splice appends foreign SQL text and parameters, renaming any parameter
// whose name is already taken and rewriting its placeholders in the text.
func (b *Builder) splice(text string, params []quill.Param) {
	if len(params) == 0 {
		b.sb.WriteString(text)
		return
	}

	renames := make(map[string]string, len(params))
	for _, p := range params {
		name := p.Name
		if b.has(name) {
			name = b.nextName()
		}
		renames[p.Name] = name
		b.params = append(b.params, quill.Param{Name: name, Value: p.Value})
	}

	prefix := b.d.ParamPrefix()
	for {
		idx := strings.Index(text, prefix)
		if idx < 0 {
			b.sb.WriteString(text)
			return
		}
		b.sb.WriteString(text[:idx])
		rest := text[idx+len(prefix):]
		end := 0
		for end < len(rest) && isNameByte(rest[end]) {
			end++
		}
		old := rest[:end]
		if renamed, ok := renames[old]; ok {
			b.sb.WriteString(b.d.Placeholder(renamed))
		} else {
			b.sb.WriteString(prefix)
			b.sb.WriteString(old)
		}
		text = rest[end:]
	}
}

func isNameByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
