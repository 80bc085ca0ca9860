package template

import (
	"strings"
	"sync"

	"github.com/quillsql/quill"
)

var renderBufPool = sync.Pool{
	New: func() any { return &strings.Builder{} },
}

// Render fills the template's dynamic holes from a name->value map and
// produces the final statement. Every declared hole must be supplied; every
// supplied name must match a declared hole or, when the template carries an
// auto directive ({{where:auto}}, {{set}}, {{values}}), a catalog column.
func (t *CompiledTemplate) Render(args map[string]any) (quill.Statement, error) {
	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	lookup := func(name string) (any, bool) {
		v, ok := args[name]
		return v, ok
	}
	return t.render(lookup, names)
}

// RenderArgs is the pair-form fast path: semantically identical to Render
// with the equivalent map, but the one- and two-pair cases build no map at
// all. Arguments alternate name, value.
func (t *CompiledTemplate) RenderArgs(name string, value any, more ...any) (quill.Statement, error) {
	if len(more)%2 != 0 {
		return quill.Statement{}, &quill.ParameterBindingError{Name: name}
	}

	if len(more) <= 2 {
		var names [2]string
		var values [2]any
		names[0], values[0] = name, value
		n := 1
		if len(more) == 2 {
			second, ok := more[0].(string)
			if !ok {
				return quill.Statement{}, &quill.ParameterBindingError{Name: name}
			}
			names[1], values[1] = second, more[1]
			n = 2
		}
		lookup := func(k string) (any, bool) {
			for i := 0; i < n; i++ {
				if names[i] == k {
					return values[i], true
				}
			}
			return nil, false
		}
		return t.render(lookup, names[:n])
	}

	args := make(map[string]any, 1+len(more)/2)
	args[name] = value
	for i := 0; i < len(more); i += 2 {
		k, ok := more[i].(string)
		if !ok {
			return quill.Statement{}, &quill.ParameterBindingError{Name: name}
		}
		args[k] = more[i+1]
	}
	return t.Render(args)
}

func (t *CompiledTemplate) render(lookup func(string) (any, bool), supplied []string) (quill.Statement, error) {
	sb := renderBufPool.Get().(*strings.Builder)
	defer func() {
		sb.Reset()
		renderBufPool.Put(sb)
	}()
	sb.Reset()

	var params []quill.Param

	for _, nd := range t.nodes {
		switch nd.kind {
		case nodeText:
			sb.WriteString(nd.text)

		case nodeHole:
			v, ok := lookup(nd.name)
			if !ok {
				return quill.Statement{}, &quill.ParameterBindingError{Name: nd.name}
			}
			s, ok := v.(string)
			if !ok {
				return quill.Statement{}, &quill.ParameterBindingError{Name: nd.name}
			}
			if s != "" {
				sb.WriteByte(' ')
				sb.WriteString(nd.keyword)
				sb.WriteByte(' ')
				sb.WriteString(s)
			}

		case nodeAutoWhere:
			wrote := false
			for _, col := range t.ctx.Columns() {
				// A declared hole owns its name outright, even when a
				// column shares it.
				if t.isHole(col.Name) {
					continue
				}
				v, ok := lookup(col.Name)
				if !ok {
					continue
				}
				if wrote {
					sb.WriteString(" AND ")
				} else {
					sb.WriteString(" WHERE ")
				}
				sb.WriteString(t.dialect.QuoteIdentifier(col.Name))
				sb.WriteString(" = ")
				params = t.bindAuto(sb, params, col.Name, col.IsBool(), v)
				wrote = true
			}

		case nodeAutoSet:
			wrote := false
			for _, col := range t.ctx.Columns() {
				if t.isHole(col.Name) {
					continue
				}
				v, ok := lookup(col.Name)
				if !ok {
					continue
				}
				if wrote {
					sb.WriteString(", ")
				} else {
					sb.WriteString(" SET ")
				}
				sb.WriteString(t.dialect.QuoteIdentifier(col.Name))
				sb.WriteString(" = ")
				params = t.bindAuto(sb, params, col.Name, col.IsBool(), v)
				wrote = true
			}

		case nodeAutoValues:
			wrote := false
			for _, col := range t.ctx.Columns() {
				if t.isHole(col.Name) {
					continue
				}
				v, ok := lookup(col.Name)
				if !ok {
					continue
				}
				if wrote {
					sb.WriteString(", ")
				} else {
					sb.WriteString(" VALUES (")
				}
				params = t.bindAuto(sb, params, col.Name, col.IsBool(), v)
				wrote = true
			}
			if wrote {
				sb.WriteByte(')')
			}
		}
	}

	for _, name := range supplied {
		if t.isHole(name) {
			continue
		}
		if t.hasAuto && t.ctx.Has(name) {
			continue
		}
		return quill.Statement{}, &quill.ParameterBindingError{Name: name}
	}

	return quill.Statement{SQL: sb.String(), Params: params}, nil
}

// bindAuto writes the placeholder for a column-derived parameter and records
// its value, reusing the existing binding when another auto directive
// already bound the same name.
func (t *CompiledTemplate) bindAuto(sb *strings.Builder, params []quill.Param, name string, isBool bool, v any) []quill.Param {
	sb.WriteString(t.dialect.Placeholder(name))
	for _, p := range params {
		if p.Name == name {
			return params
		}
	}
	if b, ok := v.(bool); ok && isBool {
		v = t.dialect.BoolValue(b)
	}
	return append(params, quill.Param{Name: name, Value: v})
}

func (t *CompiledTemplate) isHole(name string) bool {
	for _, h := range t.holes {
		if h == name {
			return true
		}
	}
	return false
}
