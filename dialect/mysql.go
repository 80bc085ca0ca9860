package dialect

// MySQL quotes with backticks, paginates with LIMIT/OFFSET and concatenates
// through CONCAT() since || is logical OR under default sql_mode.
type MySQL struct{ base }

func NewMySQLDialect() Dialect {
	return MySQL{base{
		name:       "mysql",
		quoteOpen:  "`",
		quoteClose: "`",
		pagination: LimitOffset,
		noLimit:    "18446744073709551615",
		boolAsInt:  false,
		concatFn:   true,
		now:        "NOW()",
		funcs: map[string]string{
			"upper":     "UPPER(%s)",
			"lower":     "LOWER(%s)",
			"trim":      "TRIM(%s)",
			"length":    "LENGTH(%s)",
			"substring": "SUBSTRING(%s, %s, %s)",
			"abs":       "ABS(%s)",
			"round":     "ROUND(%s, %s)",
			"ceiling":   "CEILING(%s)",
			"floor":     "FLOOR(%s)",
			"year":      "YEAR(%s)",
			"month":     "MONTH(%s)",
		},
	}}
}
