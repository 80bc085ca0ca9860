package dialect

// Postgres quotes with double quotes, paginates with LIMIT/OFFSET and
// extracts date parts with EXTRACT.
type Postgres struct{ base }

func NewPostgresDialect() Dialect {
	return Postgres{base{
		name:       "postgres",
		quoteOpen:  `"`,
		quoteClose: `"`,
		pagination: LimitOffset,
		boolAsInt:  false,
		concatFn:   false,
		now:        "NOW()",
		funcs: map[string]string{
			"upper":     "UPPER(%s)",
			"lower":     "LOWER(%s)",
			"trim":      "TRIM(%s)",
			"length":    "LENGTH(%s)",
			"substring": "SUBSTR(%s, %s, %s)",
			"abs":       "ABS(%s)",
			"round":     "ROUND(%s, %s)",
			"ceiling":   "CEILING(%s)",
			"floor":     "FLOOR(%s)",
			"year":      "EXTRACT(YEAR FROM %s)",
			"month":     "EXTRACT(MONTH FROM %s)",
		},
	}}
}
