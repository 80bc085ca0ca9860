// Package params turns named value bags — explicit pairs, maps, or structs —
// into ordered parameter bindings. Struct shapes are introspected once and
// the compiled accessor is cached per type, so repeated materialization of
// the same shape does no tag parsing or name derivation.
package params

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/quillsql/quill"
	"github.com/quillsql/quill/schema"
)

type accessor struct {
	name  string
	index []int
	gen   schema.IDGenerator
}

type shape struct {
	fields []accessor
}

// shapeCache maps struct types to compiled accessors. Shapes are finite per
// program; a populate race recomputes the same accessor and the last write
// wins.
var shapeCache sync.Map // map[reflect.Type]*shape

func shapeOf(t reflect.Type) (*shape, error) {
	if cached, ok := shapeCache.Load(t); ok {
		return cached.(*shape), nil
	}

	ctx, err := schema.IntrospectType(t)
	if err != nil {
		return nil, err
	}

	s := &shape{fields: make([]accessor, 0, len(ctx.Columns()))}
	for _, col := range ctx.Columns() {
		f, ok := t.FieldByName(col.Field)
		if !ok {
			return nil, fmt.Errorf("params: field %s vanished from %s", col.Field, t)
		}
		s.fields = append(s.fields, accessor{name: col.Name, index: f.Index, gen: col.Generator})
	}

	shapeCache.Store(t, s)
	return s, nil
}

// Single binds one named value without building a bag.
func Single(name string, value any) []quill.Param {
	return []quill.Param{{Name: name, Value: value}}
}

// Double binds two named values without building a bag.
func Double(name1 string, value1 any, name2 string, value2 any) []quill.Param {
	return []quill.Param{{Name: name1, Value: value1}, {Name: name2, Value: value2}}
}

// FromPairs binds alternating name, value arguments in the order given.
func FromPairs(pairs ...any) ([]quill.Param, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("params: odd argument count %d", len(pairs))
	}
	out := make([]quill.Param, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		name, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("params: argument %d is %T, want string name", i, pairs[i])
		}
		out = append(out, quill.Param{Name: name, Value: pairs[i+1]})
	}
	return out, nil
}

// FromMap binds a map in sorted-name order so the result is deterministic.
func FromMap(m map[string]any) []quill.Param {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]quill.Param, len(names))
	for i, name := range names {
		out[i] = quill.Param{Name: name, Value: m[name]}
	}
	return out
}

// FromStruct binds every mapped field of a struct, in catalog (field) order,
// named by db tag or derived column name.
func FromStruct(bag any) ([]quill.Param, error) {
	v, s, err := valueAndShape(bag)
	if err != nil {
		return nil, err
	}
	out := make([]quill.Param, len(s.fields))
	for i, f := range s.fields {
		out[i] = quill.Param{Name: f.name, Value: v.FieldByIndex(f.index).Interface()}
	}
	return out, nil
}

// FromStructWithDefaults is FromStruct plus generator support: a column with
// a configured generator whose field holds the zero value is bound to a
// freshly generated value instead.
func FromStructWithDefaults(bag any) ([]quill.Param, error) {
	v, s, err := valueAndShape(bag)
	if err != nil {
		return nil, err
	}
	out := make([]quill.Param, len(s.fields))
	for i, f := range s.fields {
		fv := v.FieldByIndex(f.index)
		if f.gen != nil && fv.IsZero() {
			generated, err := f.gen.Generate()
			if err != nil {
				return nil, err
			}
			out[i] = quill.Param{Name: f.name, Value: generated}
			continue
		}
		out[i] = quill.Param{Name: f.name, Value: fv.Interface()}
	}
	return out, nil
}

// ToMap materializes a struct bag into the map form the template engine
// renders from.
func ToMap(bag any) (map[string]any, error) {
	pairs, err := FromStruct(bag)
	if err != nil {
		return nil, err
	}
	m := make(map[string]any, len(pairs))
	for _, p := range pairs {
		m[p.Name] = p.Value
	}
	return m, nil
}

func valueAndShape(bag any) (reflect.Value, *shape, error) {
	v := reflect.ValueOf(bag)
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, nil, fmt.Errorf("params: bag must be a struct, got %T", bag)
	}
	s, err := shapeOf(v.Type())
	if err != nil {
		return reflect.Value{}, nil, err
	}
	return v, s, nil
}
