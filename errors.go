package quill

import "fmt"

// TemplateSyntaxError reports malformed {{...}} grammar in a template, with
// the byte offset of the offending token in the original template text.
type TemplateSyntaxError struct {
	Pos   int
	Token string
}

func (e *TemplateSyntaxError) Error() string {
	return fmt.Sprintf("quill: template syntax error at offset %d near %q", e.Pos, e.Token)
}

// ColumnResolutionError reports a placeholder or expression referencing a
// column absent from the table context it was compiled against.
type ColumnResolutionError struct {
	Name string
}

func (e *ColumnResolutionError) Error() string {
	return fmt.Sprintf("quill: unknown column %q", e.Name)
}

// ParameterBindingError reports a render-time argument mismatch: a required
// dynamic hole was not supplied, or an argument name matches neither a
// declared hole nor a catalog column consumed by the template.
type ParameterBindingError struct {
	Name string
}

func (e *ParameterBindingError) Error() string {
	return fmt.Sprintf("quill: cannot bind parameter %q", e.Name)
}

// UnsupportedDialectFeatureError reports a requested placeholder or function
// that has no mapping for the active dialect.
type UnsupportedDialectFeatureError struct {
	Dialect string
	Feature string
}

func (e *UnsupportedDialectFeatureError) Error() string {
	return fmt.Sprintf("quill: dialect %s does not support %s", e.Dialect, e.Feature)
}

// UnsupportedExpressionError reports a predicate-tree construct the compiler
// does not translate. The engine fails fast rather than approximating.
type UnsupportedExpressionError struct {
	Construct string
}

func (e *UnsupportedExpressionError) Error() string {
	return fmt.Sprintf("quill: unsupported expression construct %s", e.Construct)
}
