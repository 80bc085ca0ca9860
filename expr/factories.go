package expr

// Combinator constructors for predicate trees.

const (
	OpEqual              = "="
	OpNotEqual           = "<>"
	OpLessThan           = "<"
	OpLessThanOrEqual    = "<="
	OpGreaterThan        = ">"
	OpGreaterThanOrEqual = ">="

	OpAnd = "AND"
	OpOr  = "OR"
)

func Col(name string) *Column { return &Column{Name: name} }

func Val(v any) *Value { return &Value{Val: v} }

// lift lets comparison builders accept columns, nodes, or raw Go values.
func lift(v any) Node {
	if n, ok := v.(Node); ok {
		return n
	}
	return &Value{Val: v}
}

func Eq(left, right any) *Comparison {
	return &Comparison{Op: OpEqual, Left: lift(left), Right: lift(right)}
}

func Ne(left, right any) *Comparison {
	return &Comparison{Op: OpNotEqual, Left: lift(left), Right: lift(right)}
}

func Lt(left, right any) *Comparison {
	return &Comparison{Op: OpLessThan, Left: lift(left), Right: lift(right)}
}

func Le(left, right any) *Comparison {
	return &Comparison{Op: OpLessThanOrEqual, Left: lift(left), Right: lift(right)}
}

func Gt(left, right any) *Comparison {
	return &Comparison{Op: OpGreaterThan, Left: lift(left), Right: lift(right)}
}

func Ge(left, right any) *Comparison {
	return &Comparison{Op: OpGreaterThanOrEqual, Left: lift(left), Right: lift(right)}
}

func And(operands ...Node) *Logical { return &Logical{Op: OpAnd, Operands: operands} }

func Or(operands ...Node) *Logical { return &Logical{Op: OpOr, Operands: operands} }

func Negate(operand Node) *Not { return &Not{Operand: operand} }

// Contains compiles to LIKE '%value%' (parameterized, wildcards in the bound
// value). StartsWith and EndsWith anchor the pattern accordingly.
func Contains(col string, value string) *Call {
	return &Call{Name: "contains", Args: []Node{Col(col), Val(value)}}
}

func StartsWith(col string, value string) *Call {
	return &Call{Name: "startswith", Args: []Node{Col(col), Val(value)}}
}

func EndsWith(col string, value string) *Call {
	return &Call{Name: "endswith", Args: []Node{Col(col), Val(value)}}
}

func Upper(operand any) *Call { return &Call{Name: "upper", Args: []Node{lift(operand)}} }

func Lower(operand any) *Call { return &Call{Name: "lower", Args: []Node{lift(operand)}} }

func Trim(operand any) *Call { return &Call{Name: "trim", Args: []Node{lift(operand)}} }

func Length(operand any) *Call { return &Call{Name: "length", Args: []Node{lift(operand)}} }

func Abs(operand any) *Call { return &Call{Name: "abs", Args: []Node{lift(operand)}} }

func Round(operand any, digits int) *Call {
	return &Call{Name: "round", Args: []Node{lift(operand), Val(digits)}}
}

func Ceiling(operand any) *Call { return &Call{Name: "ceiling", Args: []Node{lift(operand)}} }

func Floor(operand any) *Call { return &Call{Name: "floor", Args: []Node{lift(operand)}} }

func Year(operand any) *Call { return &Call{Name: "year", Args: []Node{lift(operand)}} }

func Month(operand any) *Call { return &Call{Name: "month", Args: []Node{lift(operand)}} }

func Concat(operands ...any) *Call {
	args := make([]Node, len(operands))
	for i, op := range operands {
		args[i] = lift(op)
	}
	return &Call{Name: "concat", Args: args}
}

func If(test, then, els Node) *Conditional {
	return &Conditional{Test: test, Then: then, Else: els}
}

func CoalesceOf(operands ...any) *Coalesce {
	args := make([]Node, len(operands))
	for i, op := range operands {
		args[i] = lift(op)
	}
	return &Coalesce{Operands: args}
}
