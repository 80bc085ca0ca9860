package dialect

// SQLite quotes with double quotes, paginates with LIMIT/OFFSET and spells
// booleans as 1/0. Date parts go through strftime.
type SQLite struct{ base }

func NewSQLiteDialect() Dialect {
	return SQLite{base{
		name:       "sqlite",
		quoteOpen:  `"`,
		quoteClose: `"`,
		pagination: LimitOffset,
		noLimit:    "-1",
		boolAsInt:  true,
		concatFn:   false,
		now:        "CURRENT_TIMESTAMP",
		funcs: map[string]string{
			"upper":     "UPPER(%s)",
			"lower":     "LOWER(%s)",
			"trim":      "TRIM(%s)",
			"length":    "LENGTH(%s)",
			"substring": "SUBSTR(%s, %s, %s)",
			"abs":       "ABS(%s)",
			"round":     "ROUND(%s, %s)",
			"ceiling":   "CEIL(%s)",
			"floor":     "FLOOR(%s)",
			"year":      "CAST(STRFTIME('%%Y', %s) AS INTEGER)",
			"month":     "CAST(STRFTIME('%%m', %s) AS INTEGER)",
		},
	}}
}
