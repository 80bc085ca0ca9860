package schema

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"
)

// contextCache holds one *TableContext per struct type. Shapes are finite,
// so entries are never evicted; racing goroutines recompute identical
// metadata and the last write wins.
var contextCache sync.Map // map[reflect.Type]*TableContext

var timeType = reflect.TypeOf(time.Time{})

// TableNamer lets a struct override its derived table name.
type TableNamer interface {
	TableName() string
}

// Introspect builds (or fetches) the TableContext for a struct type. Column
// names come from `db` tags, falling back to snake_case of the field name;
// `db:"-"` skips a field. Supported tag options are "null" and "gen=<name>".
func Introspect(model any) (*TableContext, error) {
	return IntrospectType(reflect.TypeOf(model))
}

// IntrospectType is Introspect for an already-reflected type.
func IntrospectType(t reflect.Type) (*TableContext, error) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema: invalid model type %s (expected struct)", t.Kind())
	}

	if cached, ok := contextCache.Load(t); ok {
		return cached.(*TableContext), nil
	}

	ctx, err := buildContext(t)
	if err != nil {
		return nil, err
	}
	contextCache.Store(t, ctx)
	return ctx, nil
}

func buildContext(t reflect.Type) (*TableContext, error) {
	table := tableNameFor(t.Name())
	if tn, ok := reflect.New(t).Interface().(TableNamer); ok {
		table = tn.TableName()
	}

	cols := make([]Column, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Anonymous {
			continue
		}

		col, skip, err := parseFieldTag(f)
		if err != nil {
			return nil, err
		}
		if skip {
			continue
		}

		typ, nullable, ok := typeTagFor(f.Type)
		if !ok {
			continue
		}
		col.Type = typ
		col.Nullable = col.Nullable || nullable
		cols = append(cols, col)
	}

	return NewTableContext(table, cols...), nil
}

// parseFieldTag reads the `db` struct tag: `db:"name,opt,..."`. An empty
// leading segment keeps the derived snake_case name.
func parseFieldTag(f reflect.StructField) (Column, bool, error) {
	col := Column{Field: f.Name, Name: toSnakeCase(f.Name)}

	tag, ok := f.Tag.Lookup("db")
	if !ok {
		return col, false, nil
	}
	if tag == "-" {
		return col, true, nil
	}

	parts := strings.Split(tag, ",")
	if parts[0] != "" {
		col.Name = parts[0]
	}
	for _, opt := range parts[1:] {
		switch {
		case opt == "null":
			col.Nullable = true
		case strings.HasPrefix(opt, "gen="):
			name := strings.TrimPrefix(opt, "gen=")
			gen, ok := defaultRegistry.Get(name)
			if !ok {
				return col, false, fmt.Errorf("schema: field %s: unknown generator %q", f.Name, name)
			}
			col.Generator = gen
		case opt == "":
		default:
			return col, false, fmt.Errorf("schema: field %s: unknown tag option %q", f.Name, opt)
		}
	}
	return col, false, nil
}

func typeTagFor(t reflect.Type) (typ string, nullable bool, ok bool) {
	if t.Kind() == reflect.Ptr {
		nullable = true
		t = t.Elem()
	}

	switch {
	case t == timeType:
		return "time", nullable, true
	case t.Kind() == reflect.Bool:
		return "bool", nullable, true
	case t.Kind() >= reflect.Int && t.Kind() <= reflect.Int64:
		return "int", nullable, true
	case t.Kind() >= reflect.Uint && t.Kind() <= reflect.Uint64:
		return "uint", nullable, true
	case t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64:
		return "float", nullable, true
	case t.Kind() == reflect.String:
		return "string", nullable, true
	case t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8:
		return "bytes", nullable, true
	default:
		return "", false, false
	}
}
