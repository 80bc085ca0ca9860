// Package quill turns declarative descriptions of SQL statements — placeholder
// templates or typed predicate trees — into dialect-correct, fully
// parameterized SQL plus an ordered parameter list. It never opens a
// connection or executes anything; execution belongs to the repository layer
// that consumes the compiled output.
package quill

// Param is one named parameter binding of a compiled statement. Names are
// unique within a statement and assigned in left-to-right occurrence order
// unless the caller pinned them explicitly.
type Param struct {
	Name  string
	Value any
}

// Statement is the frozen output of the engine: final SQL text plus its
// ordered parameter list. It is created fresh per call and handed to the
// execution collaborator.
type Statement struct {
	SQL    string
	Params []Param
}

// Args returns the parameter values in order, the shape positional drivers
// expect.
func (s Statement) Args() []any {
	if len(s.Params) == 0 {
		return nil
	}
	args := make([]any, len(s.Params))
	for i, p := range s.Params {
		args[i] = p.Value
	}
	return args
}

// ArgMap returns the parameters as a name-keyed map for named-binding APIs.
func (s Statement) ArgMap() map[string]any {
	m := make(map[string]any, len(s.Params))
	for _, p := range s.Params {
		m[p.Name] = p.Value
	}
	return m
}
