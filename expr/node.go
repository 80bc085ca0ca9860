// Package expr is the typed predicate and query representation the engine
// compiles instead of host-language closures. Trees are built through the
// combinator constructors, are owned by a single statement build, and are
// compiled to dialect-correct SQL by Compiler.
package expr

import (
	"fmt"
	"hash/fnv"

	"github.com/quillsql/quill/utils"
)

type Kind int

const (
	KindColumn Kind = iota
	KindValue
	KindComparison
	KindLogical
	KindNot
	KindCall
	KindConditional
	KindCoalesce
)

type Node interface {
	Kind() Kind
	Accept(v Visitor) error
	Fingerprint() uint64
}

// Visitor walks a predicate tree. Compiler is the SQL-producing
// implementation.
type Visitor interface {
	VisitColumn(*Column) error
	VisitValue(*Value) error
	VisitComparison(*Comparison) error
	VisitLogical(*Logical) error
	VisitNot(*Not) error
	VisitCall(*Call) error
	VisitConditional(*Conditional) error
	VisitCoalesce(*Coalesce) error
}

// Column references a catalog column by database name.
type Column struct {
	Name string
}

func (c *Column) Kind() Kind             { return KindColumn }
func (c *Column) Accept(v Visitor) error { return v.VisitColumn(c) }
func (c *Column) Fingerprint() uint64    { return utils.FingerprintString("col:" + c.Name) }

// Value is a literal that compiles to a bound parameter.
type Value struct {
	Val any
}

func (v *Value) Kind() Kind               { return KindValue }
func (v *Value) Accept(vis Visitor) error { return vis.VisitValue(v) }
func (v *Value) Fingerprint() uint64 {
	return utils.FingerprintString(fmt.Sprintf("val:%T:%v", v.Val, v.Val))
}

// Comparison is a binary comparison: =, <>, <, <=, >, >=.
type Comparison struct {
	Op    string
	Left  Node
	Right Node
}

func (c *Comparison) Kind() Kind             { return KindComparison }
func (c *Comparison) Accept(v Visitor) error { return v.VisitComparison(c) }
func (c *Comparison) Fingerprint() uint64 {
	h := fnv.New64a()
	h.Write([]byte("cmp:" + c.Op))
	h.Write(utils.U64ToBytes(c.Left.Fingerprint()))
	h.Write(utils.U64ToBytes(c.Right.Fingerprint()))
	return h.Sum64()
}

// Logical connects operands with AND or OR. The compiled group is always
// parenthesized; no implicit precedence is relied upon.
type Logical struct {
	Op       string
	Operands []Node
}

func (l *Logical) Kind() Kind             { return KindLogical }
func (l *Logical) Accept(v Visitor) error { return v.VisitLogical(l) }
func (l *Logical) Fingerprint() uint64 {
	h := fnv.New64a()
	h.Write([]byte("logic:" + l.Op))
	for _, op := range l.Operands {
		h.Write(utils.U64ToBytes(op.Fingerprint()))
	}
	return h.Sum64()
}

// Not negates its operand, compiled as NOT (...).
type Not struct {
	Operand Node
}

func (n *Not) Kind() Kind             { return KindNot }
func (n *Not) Accept(v Visitor) error { return v.VisitNot(n) }
func (n *Not) Fingerprint() uint64 {
	return utils.Mix64(utils.FingerprintString("not"), n.Operand.Fingerprint())
}

// Call is a supported function application: contains, startswith, endswith,
// upper, lower, trim, length, concat, substring, abs, round, ceiling, floor,
// year, month. Anything else fails compilation.
type Call struct {
	Name string
	Args []Node
}

func (c *Call) Kind() Kind             { return KindCall }
func (c *Call) Accept(v Visitor) error { return v.VisitCall(c) }
func (c *Call) Fingerprint() uint64 {
	h := fnv.New64a()
	h.Write([]byte("call:" + c.Name))
	for _, a := range c.Args {
		h.Write(utils.U64ToBytes(a.Fingerprint()))
	}
	return h.Sum64()
}

// Conditional compiles to CASE WHEN test THEN then ELSE else END.
type Conditional struct {
	Test Node
	Then Node
	Else Node
}

func (c *Conditional) Kind() Kind             { return KindConditional }
func (c *Conditional) Accept(v Visitor) error { return v.VisitConditional(c) }
func (c *Conditional) Fingerprint() uint64 {
	h := fnv.New64a()
	h.Write([]byte("cond:"))
	h.Write(utils.U64ToBytes(c.Test.Fingerprint()))
	h.Write(utils.U64ToBytes(c.Then.Fingerprint()))
	h.Write(utils.U64ToBytes(c.Else.Fingerprint()))
	return h.Sum64()
}

// Coalesce compiles to COALESCE(a, b, ...).
type Coalesce struct {
	Operands []Node
}

func (c *Coalesce) Kind() Kind             { return KindCoalesce }
func (c *Coalesce) Accept(v Visitor) error { return v.VisitCoalesce(c) }
func (c *Coalesce) Fingerprint() uint64 {
	h := fnv.New64a()
	h.Write([]byte("coalesce:"))
	for _, op := range c.Operands {
		h.Write(utils.U64ToBytes(op.Fingerprint()))
	}
	return h.Sum64()
}
