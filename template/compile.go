// Package template compiles placeholder-bearing SQL templates against a
// table context and a dialect. Static placeholders ({{table}}, {{columns}},
// aggregates, scalar functions, pagination) are fully expanded at compile
// time; dynamic placeholders ({{where --param name}}, {{where:auto}},
// {{set}}, {{values}}) remain as named holes filled per render call.
package template

import (
	"strconv"
	"strings"

	"github.com/quillsql/quill"
	"github.com/quillsql/quill/dialect"
	"github.com/quillsql/quill/schema"
	"github.com/quillsql/quill/utils"
)

type nodeKind int

const (
	nodeText nodeKind = iota
	nodeHole          // named raw-SQL hole with a clause keyword prefix
	nodeAutoWhere
	nodeAutoSet
	nodeAutoValues
)

type node struct {
	kind    nodeKind
	text    string // nodeText: literal SQL
	name    string // nodeHole: hole name
	keyword string // nodeHole: clause keyword emitted before non-empty content
}

// CompiledTemplate is the parsed, dialect-expanded form of a template. It is
// immutable and safe for concurrent rendering.
type CompiledTemplate struct {
	dialect     dialect.Dialect
	ctx         *schema.TableContext
	nodes       []node
	holes       []string
	hasAuto     bool
	fingerprint uint64
}

// Holes returns the declared dynamic hole names in source order.
func (t *CompiledTemplate) Holes() []string { return t.holes }

// Fingerprint identifies (template text, table context, dialect) and doubles
// as the cache key.
func (t *CompiledTemplate) Fingerprint() uint64 { return t.fingerprint }

// Compile parses and expands a template. Results are cached process-wide
// keyed by (template text, table context, dialect name); compiling the same
// template twice returns the same compiled value.
func Compile(text string, ctx *schema.TableContext, d dialect.Dialect) (*CompiledTemplate, error) {
	key := utils.Mix64(utils.FingerprintString(text), utils.FingerprintString(d.Name()))
	key = utils.Mix64(key, ctx.Fingerprint())
	if cached, ok := templateCache.Get(key); ok {
		return cached, nil
	}
	compiled, err := compile(text, ctx, d)
	if err != nil {
		return nil, err
	}
	compiled.fingerprint = key
	templateCache.Add(key, compiled)
	return compiled, nil
}

type compiler struct {
	d     dialect.Dialect
	ctx   *schema.TableContext
	nodes []node
	holes []string
	auto  bool
	take  *int // {{limit:N}}, emitted once the whole template is expanded
	skip  *int // {{offset:N}}
}

func compile(text string, ctx *schema.TableContext, d dialect.Dialect) (*CompiledTemplate, error) {
	c := &compiler{d: d, ctx: ctx}

	rest := text
	base := 0
	for {
		open := strings.Index(rest, "{{")
		if open < 0 {
			c.pushText(rest)
			break
		}
		c.pushText(rest[:open])

		close := strings.Index(rest[open+2:], "}}")
		if close < 0 {
			return nil, &quill.TemplateSyntaxError{Pos: base + open, Token: "{{"}
		}
		content := rest[open+2 : open+2+close]

		dir, offset, err := parseDirective(content)
		if err != nil {
			return nil, &quill.TemplateSyntaxError{
				Pos:   base + open + 2 + offset,
				Token: strings.TrimSpace(content),
			}
		}
		if err := c.resolve(dir, base+open); err != nil {
			return nil, err
		}

		advance := open + 2 + close + 2
		base += advance
		rest = rest[advance:]
	}

	if err := c.finishPagination(); err != nil {
		return nil, err
	}

	return &CompiledTemplate{
		dialect: d,
		ctx:     ctx,
		nodes:   c.nodes,
		holes:   c.holes,
		hasAuto: c.auto,
	}, nil
}

// pushText appends literal SQL, merging with a preceding text node.
func (c *compiler) pushText(s string) {
	if s == "" {
		return
	}
	if n := len(c.nodes); n > 0 && c.nodes[n-1].kind == nodeText {
		c.nodes[n-1].text += s
		return
	}
	c.nodes = append(c.nodes, node{kind: nodeText, text: s})
}

// resolve expands one directive. pos is the offset of its {{ in the source
// text, used for error reporting.
func (c *compiler) resolve(dir directive, pos int) error {
	syntaxErr := func() error {
		return &quill.TemplateSyntaxError{Pos: pos, Token: dir.name}
	}

	switch dir.name {
	case "table":
		c.pushText(c.tableRef())
		return nil

	case "columns":
		prefix := ""
		if alias, ok := dir.opts["table"]; ok {
			prefix = c.d.QuoteIdentifier(alias) + "."
		}
		var b strings.Builder
		for i, col := range c.ctx.Columns() {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(prefix)
			b.WriteString(c.d.QuoteIdentifier(col.Name))
		}
		c.pushText(b.String())
		return nil

	case "where":
		if len(dir.args) == 1 && dir.args[0] == "auto" {
			c.stripTrailingKeyword("WHERE")
			c.nodes = append(c.nodes, node{kind: nodeAutoWhere})
			c.auto = true
			return nil
		}
		if name, ok := dir.flags["param"]; ok && name != "" && len(dir.args) == 0 {
			c.stripTrailingKeyword("WHERE")
			c.nodes = append(c.nodes, node{kind: nodeHole, name: name, keyword: "WHERE"})
			c.holes = append(c.holes, name)
			return nil
		}
		return syntaxErr()

	case "set":
		if len(dir.args) != 0 {
			return syntaxErr()
		}
		c.stripTrailingKeyword("SET")
		c.nodes = append(c.nodes, node{kind: nodeAutoSet})
		c.auto = true
		return nil

	case "values":
		if len(dir.args) != 0 {
			return syntaxErr()
		}
		c.stripTrailingKeyword("VALUES")
		c.nodes = append(c.nodes, node{kind: nodeAutoValues})
		c.auto = true
		return nil

	case "orderby":
		if len(dir.args) == 0 {
			return syntaxErr()
		}
		_, desc := dir.flags["desc"]
		var b strings.Builder
		b.WriteString(" ORDER BY ")
		for i, arg := range dir.args {
			if i > 0 {
				b.WriteString(", ")
			}
			ref, err := c.columnRef(arg)
			if err != nil {
				return err
			}
			b.WriteString(ref)
		}
		if desc {
			b.WriteString(" DESC")
		}
		c.stripTrailingKeyword("ORDER", "BY")
		c.pushText(b.String())
		return nil

	case "limit":
		if len(dir.args) != 1 {
			return syntaxErr()
		}
		n, err := strconv.Atoi(dir.args[0])
		if err != nil || n < 0 {
			return syntaxErr()
		}
		c.stripTrailingKeyword("LIMIT")
		c.take = &n
		return nil

	case "offset":
		if len(dir.args) != 1 {
			return syntaxErr()
		}
		n, err := strconv.Atoi(dir.args[0])
		if err != nil || n < 0 {
			return syntaxErr()
		}
		c.stripTrailingKeyword("OFFSET")
		c.skip = &n
		return nil

	case "count", "sum", "avg", "max", "min":
		if len(dir.args) != 1 {
			return syntaxErr()
		}
		arg := dir.args[0]
		if arg == "*" {
			if dir.name != "count" {
				return syntaxErr()
			}
			c.pushText("COUNT(*)")
			return nil
		}
		ref, err := c.columnRef(arg)
		if err != nil {
			return err
		}
		c.pushText(strings.ToUpper(dir.name) + "(" + ref + ")")
		return nil

	case "upper", "lower", "trim", "length", "abs", "ceiling", "floor", "year", "month":
		if len(dir.args) != 1 {
			return syntaxErr()
		}
		ref, err := c.columnRef(dir.args[0])
		if err != nil {
			return err
		}
		rendered, err := c.d.Function(dir.name, ref)
		if err != nil {
			return err
		}
		c.pushText(rendered)
		return nil

	case "substring":
		if len(dir.args) != 3 {
			return syntaxErr()
		}
		ref, err := c.columnRef(dir.args[0])
		if err != nil {
			return err
		}
		rendered, err := c.d.Function("substring", ref, dir.args[1], dir.args[2])
		if err != nil {
			return err
		}
		c.pushText(rendered)
		return nil

	case "round":
		if len(dir.args) != 2 {
			return syntaxErr()
		}
		ref, err := c.columnRef(dir.args[0])
		if err != nil {
			return err
		}
		rendered, err := c.d.Function("round", ref, dir.args[1])
		if err != nil {
			return err
		}
		c.pushText(rendered)
		return nil

	case "concat":
		if len(dir.args) < 2 {
			return syntaxErr()
		}
		refs := make([]string, len(dir.args))
		for i, arg := range dir.args {
			ref, err := c.columnRef(arg)
			if err != nil {
				return err
			}
			refs[i] = ref
		}
		c.pushText(c.d.Concat(refs...))
		return nil

	case "current_timestamp":
		if len(dir.args) != 0 {
			return syntaxErr()
		}
		c.pushText(c.d.CurrentTimestamp())
		return nil

	default:
		return syntaxErr()
	}
}

func (c *compiler) tableRef() string {
	ref := c.d.QuoteIdentifier(c.ctx.Table)
	if c.ctx.Alias != "" {
		ref += " AS " + c.d.QuoteIdentifier(c.ctx.Alias)
	}
	return ref
}

func (c *compiler) columnRef(name string) (string, error) {
	if !c.ctx.Has(name) {
		return "", &quill.ColumnResolutionError{Name: name}
	}
	return c.d.QuoteIdentifier(name), nil
}

// stripTrailingKeyword removes the given keyword sequence (plus surrounding
// whitespace) from the end of the preceding literal text, so clause
// directives own their clause keyword whether or not the template author
// spelled it out: "... LIMIT {{limit:10}}" and "... {{limit:10}}" compile
// identically.
func (c *compiler) stripTrailingKeyword(words ...string) {
	n := len(c.nodes)
	if n == 0 || c.nodes[n-1].kind != nodeText {
		return
	}
	text := strings.TrimRight(c.nodes[n-1].text, " \t\n")

	for i := len(words) - 1; i >= 0; i-- {
		w := words[i]
		if len(text) < len(w) || !strings.EqualFold(text[len(text)-len(w):], w) {
			c.nodes[n-1].text = strings.TrimRight(c.nodes[n-1].text, " \t\n")
			return
		}
		cut := len(text) - len(w)
		if cut > 0 && isWordByte(text[cut-1]) {
			// Not a standalone keyword; leave the text alone.
			c.nodes[n-1].text = strings.TrimRight(c.nodes[n-1].text, " \t\n")
			return
		}
		text = strings.TrimRight(text[:cut], " \t\n")
	}
	c.nodes[n-1].text = text
}

// finishPagination emits the recorded limit/offset once the whole template
// is expanded, so the two directives combine correctly per dialect:
// LIMIT [OFFSET], a TOP rewrite, or OFFSET ... FETCH when SQL Server pages
// with an offset (TOP cannot combine with OFFSET). An offset without a
// limit carries the dialect's unbounded-LIMIT spelling where a bare OFFSET
// is invalid.
func (c *compiler) finishPagination() error {
	if c.take == nil && c.skip == nil {
		return nil
	}

	if c.d.Pagination() == dialect.TopN {
		if c.skip == nil {
			return c.injectTop(*c.take)
		}
		c.pushText(" OFFSET " + strconv.Itoa(*c.skip) + " ROWS")
		if c.take != nil {
			c.pushText(" FETCH NEXT " + strconv.Itoa(*c.take) + " ROWS ONLY")
		}
		return nil
	}

	if c.take != nil {
		c.pushText(" LIMIT " + strconv.Itoa(*c.take))
	} else if nl := c.d.NoLimit(); nl != "" {
		c.pushText(" LIMIT " + nl)
	}
	if c.skip != nil {
		c.pushText(" OFFSET " + strconv.Itoa(*c.skip))
	}
	return nil
}

// injectTop rewrites the nearest preceding SELECT to SELECT TOP n for
// dialects without LIMIT.
func (c *compiler) injectTop(n int) error {
	for i := len(c.nodes) - 1; i >= 0; i-- {
		if c.nodes[i].kind != nodeText {
			continue
		}
		text := c.nodes[i].text
		idx := lastKeywordIndex(text, "SELECT")
		if idx < 0 {
			continue
		}
		after := idx + len("SELECT")
		c.nodes[i].text = text[:after] + " TOP " + strconv.Itoa(n) + text[after:]
		return nil
	}
	return &quill.UnsupportedDialectFeatureError{Dialect: c.d.Name(), Feature: "limit"}
}

// lastKeywordIndex finds the rightmost standalone, case-insensitive
// occurrence of a keyword.
func lastKeywordIndex(text, keyword string) int {
	upper := strings.ToUpper(text)
	for from := len(upper); from > 0; {
		idx := strings.LastIndex(upper[:from], keyword)
		if idx < 0 {
			return -1
		}
		end := idx + len(keyword)
		leftOK := idx == 0 || !isWordByte(text[idx-1])
		rightOK := end == len(text) || !isWordByte(text[end])
		if leftOK && rightOK {
			return idx
		}
		from = idx
	}
	return -1
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
