package expr

import (
	"strconv"
	"strings"
	"sync"

	"github.com/quillsql/quill"
	"github.com/quillsql/quill/dialect"
	"github.com/quillsql/quill/schema"
)

var compilerPool = sync.Pool{
	New: func() any {
		return &Compiler{
			sb:     &strings.Builder{},
			params: make([]quill.Param, 0, 8),
		}
	},
}

// Compiler translates predicate trees and query specs into dialect-correct
// SQL with ordered @pN parameters. Compilers are pooled; one compiler serves
// one statement build and must be released afterwards.
type Compiler struct {
	sb      *strings.Builder
	params  []quill.Param
	dialect dialect.Dialect
	ctx     *schema.TableContext
}

func NewCompiler(d dialect.Dialect, ctx *schema.TableContext) *Compiler {
	c := compilerPool.Get().(*Compiler)
	c.dialect = d
	c.ctx = ctx
	c.sb.Reset()
	c.params = c.params[:0]
	return c
}

func (c *Compiler) Release() {
	c.dialect = nil
	c.ctx = nil
	c.sb.Reset()
	c.params = c.params[:0]
	compilerPool.Put(c)
}

// CompilePredicate compiles a bare predicate tree, e.g. for splicing into a
// fragment builder.
func (c *Compiler) CompilePredicate(pred Node) (quill.Statement, error) {
	c.sb.Reset()
	c.params = c.params[:0]

	if err := c.acceptBool(pred); err != nil {
		return quill.Statement{}, err
	}
	return c.freeze(), nil
}

// Compile compiles a full query spec to SELECT ... FROM ... [WHERE ...]
// [ORDER BY ...] with dialect-correct pagination.
func (c *Compiler) Compile(spec *QuerySpec) (quill.Statement, error) {
	c.sb.Reset()
	c.params = c.params[:0]
	// The spec's source context is the catalog of record for the whole
	// build: column validation and alias prefixing come from it.
	c.ctx = spec.From

	c.sb.WriteString("SELECT ")

	// SQL Server bounds result sets with TOP unless an offset forces the
	// OFFSET ... FETCH form.
	useTop := c.dialect.Pagination() == dialect.TopN && spec.Take != nil && spec.Skip == nil
	if useTop {
		c.sb.WriteString("TOP ")
		c.sb.WriteString(strconv.Itoa(*spec.Take))
		c.sb.WriteByte(' ')
	}

	cols := spec.Projection
	if len(cols) == 0 {
		cols = make([]string, 0, len(spec.From.Columns()))
		for _, col := range spec.From.Columns() {
			cols = append(cols, col.Name)
		}
	}
	for i, name := range cols {
		if i > 0 {
			c.sb.WriteString(", ")
		}
		if err := c.writeColumnRef(name); err != nil {
			return quill.Statement{}, err
		}
	}

	c.sb.WriteString(" FROM ")
	c.sb.WriteString(c.dialect.QuoteIdentifier(spec.From.Table))
	if spec.From.Alias != "" {
		c.sb.WriteString(" AS ")
		c.sb.WriteString(c.dialect.QuoteIdentifier(spec.From.Alias))
	}

	if spec.Where != nil {
		c.sb.WriteString(" WHERE ")
		if err := c.acceptBool(spec.Where); err != nil {
			return quill.Statement{}, err
		}
	}

	if len(spec.OrderBy) > 0 {
		c.sb.WriteString(" ORDER BY ")
		for i, ord := range spec.OrderBy {
			if i > 0 {
				c.sb.WriteString(", ")
			}
			if err := c.writeColumnRef(ord.Column); err != nil {
				return quill.Statement{}, err
			}
			if ord.Desc {
				c.sb.WriteString(" DESC")
			} else {
				c.sb.WriteString(" ASC")
			}
		}
	}

	if err := c.writePagination(spec, useTop); err != nil {
		return quill.Statement{}, err
	}

	return c.freeze(), nil
}

func (c *Compiler) writePagination(spec *QuerySpec, topApplied bool) error {
	if spec.Skip == nil && spec.Take == nil {
		return nil
	}

	if c.dialect.Pagination() == dialect.TopN {
		if topApplied {
			return nil
		}
		// Offset present: OFFSET ... FETCH, which SQL Server only
		// accepts under an ORDER BY.
		if len(spec.OrderBy) == 0 {
			return &quill.UnsupportedDialectFeatureError{
				Dialect: c.dialect.Name(),
				Feature: "offset without order by",
			}
		}
		c.sb.WriteString(" OFFSET ")
		c.sb.WriteString(strconv.Itoa(*spec.Skip))
		c.sb.WriteString(" ROWS")
		if spec.Take != nil {
			c.sb.WriteString(" FETCH NEXT ")
			c.sb.WriteString(strconv.Itoa(*spec.Take))
			c.sb.WriteString(" ROWS ONLY")
		}
		return nil
	}

	if spec.Take != nil {
		c.sb.WriteString(" LIMIT ")
		c.sb.WriteString(strconv.Itoa(*spec.Take))
	} else if nl := c.dialect.NoLimit(); nl != "" {
		// MySQL and SQLite reject OFFSET without a LIMIT clause.
		c.sb.WriteString(" LIMIT ")
		c.sb.WriteString(nl)
	}
	if spec.Skip != nil {
		c.sb.WriteString(" OFFSET ")
		c.sb.WriteString(strconv.Itoa(*spec.Skip))
	}
	return nil
}

func (c *Compiler) freeze() quill.Statement {
	params := make([]quill.Param, len(c.params))
	copy(params, c.params)
	return quill.Statement{SQL: c.sb.String(), Params: params}
}

// addParam appends a value under the next sequential name and writes its
// placeholder.
func (c *Compiler) addParam(value any) {
	name := "p" + strconv.Itoa(len(c.params))
	c.params = append(c.params, quill.Param{Name: name, Value: value})
	c.sb.WriteString(c.dialect.Placeholder(name))
}

// acceptBool compiles a node in boolean position: a bare boolean column
// becomes an equality against the dialect's true value.
func (c *Compiler) acceptBool(n Node) error {
	if col, ok := n.(*Column); ok {
		if meta, found := c.lookup(col.Name); found && meta.IsBool() {
			eq := &Comparison{Op: OpEqual, Left: col, Right: &Value{Val: true}}
			return eq.Accept(c)
		}
	}
	return n.Accept(c)
}

func (c *Compiler) lookup(name string) (schema.Column, bool) {
	if c.ctx == nil {
		return schema.Column{}, false
	}
	return c.ctx.Column(name)
}

func (c *Compiler) writeColumnRef(name string) error {
	if c.ctx != nil && !c.ctx.Has(name) {
		return &quill.ColumnResolutionError{Name: name}
	}
	if c.ctx != nil && c.ctx.Alias != "" {
		c.sb.WriteString(c.dialect.QuoteIdentifier(c.ctx.Alias))
		c.sb.WriteByte('.')
	}
	c.sb.WriteString(c.dialect.QuoteIdentifier(name))
	return nil
}

// exprText compiles a subtree into detached text, keeping any parameters it
// binds in left-to-right order.
func (c *Compiler) exprText(n Node) (string, error) {
	outer := c.sb
	c.sb = &strings.Builder{}
	err := n.Accept(c)
	text := c.sb.String()
	c.sb = outer
	if err != nil {
		return "", err
	}
	return text, nil
}

func (c *Compiler) VisitColumn(col *Column) error {
	return c.writeColumnRef(col.Name)
}

func (c *Compiler) VisitValue(v *Value) error {
	val := v.Val
	if b, ok := val.(bool); ok {
		val = c.dialect.BoolValue(b)
	}
	c.addParam(val)
	return nil
}

func (c *Compiler) VisitComparison(cmp *Comparison) error {
	switch cmp.Op {
	case OpEqual, OpNotEqual, OpLessThan, OpLessThanOrEqual,
		OpGreaterThan, OpGreaterThanOrEqual:
	default:
		return &quill.UnsupportedExpressionError{Construct: "operator " + cmp.Op}
	}

	if err := cmp.Left.Accept(c); err != nil {
		return err
	}
	c.sb.WriteByte(' ')
	c.sb.WriteString(cmp.Op)
	c.sb.WriteByte(' ')
	return cmp.Right.Accept(c)
}

func (c *Compiler) VisitLogical(l *Logical) error {
	if l.Op != OpAnd && l.Op != OpOr {
		return &quill.UnsupportedExpressionError{Construct: "connective " + l.Op}
	}
	if len(l.Operands) == 0 {
		return &quill.UnsupportedExpressionError{Construct: "empty " + l.Op}
	}

	c.sb.WriteByte('(')
	for i, op := range l.Operands {
		if i > 0 {
			c.sb.WriteByte(' ')
			c.sb.WriteString(l.Op)
			c.sb.WriteByte(' ')
		}
		if err := c.acceptBool(op); err != nil {
			return err
		}
	}
	c.sb.WriteByte(')')
	return nil
}

func (c *Compiler) VisitNot(n *Not) error {
	c.sb.WriteString("NOT (")
	if err := c.acceptBool(n.Operand); err != nil {
		return err
	}
	c.sb.WriteByte(')')
	return nil
}

func (c *Compiler) VisitCall(call *Call) error {
	switch call.Name {
	case "contains", "startswith", "endswith":
		return c.visitLike(call)
	case "concat":
		texts := make([]string, len(call.Args))
		for i, arg := range call.Args {
			t, err := c.exprText(arg)
			if err != nil {
				return err
			}
			texts[i] = t
		}
		c.sb.WriteString(c.dialect.Concat(texts...))
		return nil
	case "upper", "lower", "trim", "length", "substring",
		"abs", "round", "ceiling", "floor", "year", "month":
		texts := make([]string, len(call.Args))
		for i, arg := range call.Args {
			t, err := c.exprText(arg)
			if err != nil {
				return err
			}
			texts[i] = t
		}
		rendered, err := c.dialect.Function(call.Name, texts...)
		if err != nil {
			return err
		}
		c.sb.WriteString(rendered)
		return nil
	default:
		return &quill.UnsupportedExpressionError{Construct: "function " + call.Name}
	}
}

// visitLike renders contains/startswith/endswith as LIKE with the wildcards
// folded into the bound value, never into the SQL text.
func (c *Compiler) visitLike(call *Call) error {
	if len(call.Args) != 2 {
		return &quill.UnsupportedExpressionError{Construct: call.Name + " arity"}
	}
	val, ok := call.Args[1].(*Value)
	if !ok {
		return &quill.UnsupportedExpressionError{Construct: call.Name + " with non-literal pattern"}
	}
	s, ok := val.Val.(string)
	if !ok {
		return &quill.UnsupportedExpressionError{Construct: call.Name + " with non-string pattern"}
	}

	if err := call.Args[0].Accept(c); err != nil {
		return err
	}
	c.sb.WriteString(" LIKE ")

	switch call.Name {
	case "contains":
		s = "%" + s + "%"
	case "startswith":
		s = s + "%"
	case "endswith":
		s = "%" + s
	}
	c.addParam(s)
	return nil
}

func (c *Compiler) VisitConditional(cond *Conditional) error {
	c.sb.WriteString("CASE WHEN ")
	if err := c.acceptBool(cond.Test); err != nil {
		return err
	}
	c.sb.WriteString(" THEN ")
	if err := cond.Then.Accept(c); err != nil {
		return err
	}
	c.sb.WriteString(" ELSE ")
	if err := cond.Else.Accept(c); err != nil {
		return err
	}
	c.sb.WriteString(" END")
	return nil
}

func (c *Compiler) VisitCoalesce(co *Coalesce) error {
	c.sb.WriteString("COALESCE(")
	for i, op := range co.Operands {
		if i > 0 {
			c.sb.WriteString(", ")
		}
		if err := op.Accept(c); err != nil {
			return err
		}
	}
	c.sb.WriteByte(')')
	return nil
}
