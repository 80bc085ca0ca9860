package dialect

// SQLServer quotes with brackets, spells booleans as the BIT values 1/0 and
// paginates by rewriting SELECT to SELECT TOP n, or with OFFSET ... FETCH
// when an offset is involved.
type SQLServer struct{ base }

func NewSQLServerDialect() Dialect {
	return SQLServer{base{
		name:       "sqlserver",
		quoteOpen:  "[",
		quoteClose: "]",
		pagination: TopN,
		boolAsInt:  true,
		concatFn:   true,
		now:        "GETDATE()",
		funcs: map[string]string{
			"upper":     "UPPER(%s)",
			"lower":     "LOWER(%s)",
			"trim":      "TRIM(%s)",
			"length":    "LEN(%s)",
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
