package expr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillsql/quill"
	"github.com/quillsql/quill/dialect"
	"github.com/quillsql/quill/schema"
)

func usersContext() *schema.TableContext {
	return schema.NewTableContext("users",
		schema.Column{Name: "id", Type: "int"},
		schema.Column{Name: "name", Type: "string"},
		schema.Column{Name: "age", Type: "int"},
		schema.Column{Name: "is_active", Type: "bool"},
		schema.Column{Name: "nickname", Type: "string", Nullable: true},
		schema.Column{Name: "created_at", Type: "time"},
	)
}

func compilePredicate(t *testing.T, d dialect.Dialect, pred Node) quill.Statement {
	t.Helper()
	c := NewCompiler(d, usersContext())
	defer c.Release()
	st, err := c.CompilePredicate(pred)
	require.NoError(t, err)
	return st
}

func TestPredicateAgeAndActive(t *testing.T) {
	pred := And(Ge(Col("age"), 18), Col("is_active"))

	t.Run("sqlite binds bool as int", func(t *testing.T) {
		st := compilePredicate(t, dialect.NewSQLiteDialect(), pred)
		assert.Equal(t, `("age" >= @p0 AND "is_active" = @p1)`, st.SQL)
		require.Len(t, st.Params, 2)
		assert.Equal(t, quill.Param{Name: "p0", Value: 18}, st.Params[0])
		assert.Equal(t, quill.Param{Name: "p1", Value: int64(1)}, st.Params[1])
	})

	t.Run("postgres binds bool as bool", func(t *testing.T) {
		st := compilePredicate(t, dialect.NewPostgresDialect(), pred)
		assert.Equal(t, `("age" >= @p0 AND "is_active" = @p1)`, st.SQL)
		require.Len(t, st.Params, 2)
		assert.Equal(t, quill.Param{Name: "p1", Value: true}, st.Params[1])
	})
}

func TestComparisons(t *testing.T) {
	d := dialect.NewPostgresDialect()
	tests := []struct {
		pred     Node
		expected string
	}{
		{Eq(Col("name"), "ada"), `"name" = @p0`},
		{Ne(Col("age"), 0), `"age" <> @p0`},
		{Lt(Col("age"), 65), `"age" < @p0`},
		{Le(Col("age"), 65), `"age" <= @p0`},
		{Gt(Col("age"), 18), `"age" > @p0`},
	}
	for _, tt := range tests {
		st := compilePredicate(t, d, tt.pred)
		assert.Equal(t, tt.expected, st.SQL)
		assert.Len(t, st.Params, 1)
	}
}

func TestLogicalGrouping(t *testing.T) {
	d := dialect.NewPostgresDialect()

	pred := Or(
		And(Ge(Col("age"), 18), Lt(Col("age"), 65)),
		Eq(Col("name"), "ada"),
	)
	st := compilePredicate(t, d, pred)
	assert.Equal(t, `(("age" >= @p0 AND "age" < @p1) OR "name" = @p2)`, st.SQL)
	require.Len(t, st.Params, 3)
	assert.Equal(t, "p0", st.Params[0].Name)
	assert.Equal(t, "p1", st.Params[1].Name)
	assert.Equal(t, "p2", st.Params[2].Name)
}

func TestNegation(t *testing.T) {
	st := compilePredicate(t, dialect.NewPostgresDialect(), Negate(Col("is_active")))
	assert.Equal(t, `NOT ("is_active" = @p0)`, st.SQL)
	require.Len(t, st.Params, 1)
	assert.Equal(t, true, st.Params[0].Value)
}

func TestLikeFoldsWildcardsIntoValue(t *testing.T) {
	d := dialect.NewPostgresDialect()

	tests := []struct {
		pred    Node
		pattern string
	}{
		{Contains("name", "ad"), "%ad%"},
		{StartsWith("name", "ad"), "ad%"},
		{EndsWith("name", "da"), "%da"},
	}
	for _, tt := range tests {
		st := compilePredicate(t, d, tt.pred)
		assert.Equal(t, `"name" LIKE @p0`, st.SQL)
		require.Len(t, st.Params, 1)
		assert.Equal(t, tt.pattern, st.Params[0].Value)
	}
}

func TestScalarCalls(t *testing.T) {
	tests := []struct {
		dialect  dialect.Dialect
		pred     Node
		expected string
	}{
		{dialect.NewPostgresDialect(), Eq(Upper(Col("name")), "ADA"), `UPPER("name") = @p0`},
		{dialect.NewSQLiteDialect(), Gt(Length(Col("name")), 3), `LENGTH("name") > @p0`},
		{dialect.NewSQLServerDialect(), Gt(Length(Col("name")), 3), `LEN([name]) > @p0`},
		{dialect.NewPostgresDialect(), Eq(Year(Col("created_at")), 2024), `EXTRACT(YEAR FROM "created_at") = @p0`},
		{dialect.NewPostgresDialect(), Eq(Concat(Col("name"), Col("nickname")), "x"), `"name" || "nickname" = @p0`},
		{dialect.NewMySQLDialect(), Eq(Concat(Col("name"), Col("nickname")), "x"), "CONCAT(`name`, `nickname`) = @p0"},
	}
	for _, tt := range tests {
		t.Run(tt.dialect.Name()+"/"+tt.expected, func(t *testing.T) {
			st := compilePredicate(t, tt.dialect, tt.pred)
			assert.Equal(t, tt.expected, st.SQL)
		})
	}
}

func TestConditionalAndCoalesce(t *testing.T) {
	d := dialect.NewPostgresDialect()

	st := compilePredicate(t, d, Eq(If(Col("is_active"), Val("yes"), Val("no")), "yes"))
	assert.Equal(t, `CASE WHEN "is_active" = @p0 THEN @p1 ELSE @p2 END = @p3`, st.SQL)
	require.Len(t, st.Params, 4)

	st = compilePredicate(t, d, Eq(CoalesceOf(Col("nickname"), Col("name")), "ada"))
	assert.Equal(t, `COALESCE("nickname", "name") = @p0`, st.SQL)
}

func TestUnsupportedConstructs(t *testing.T) {
	c := NewCompiler(dialect.NewPostgresDialect(), usersContext())
	defer c.Release()

	_, err := c.CompilePredicate(&Call{Name: "soundex", Args: []Node{Col("name")}})
	var unsupported *quill.UnsupportedExpressionError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "function soundex", unsupported.Construct)

	_, err = c.CompilePredicate(&Comparison{Op: "~", Left: Col("name"), Right: Val("x")})
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "operator ~", unsupported.Construct)
}

func TestUnknownColumn(t *testing.T) {
	c := NewCompiler(dialect.NewPostgresDialect(), usersContext())
	defer c.Release()

	_, err := c.CompilePredicate(Eq(Col("salary"), 1))
	var colErr *quill.ColumnResolutionError
	require.True(t, errors.As(err, &colErr))
	assert.Equal(t, "salary", colErr.Name)
}

func TestQuerySpecDefaults(t *testing.T) {
	c := NewCompiler(dialect.NewPostgresDialect(), usersContext())
	defer c.Release()

	st, err := c.Compile(Query(usersContext()))
	require.NoError(t, err)
	assert.Equal(t, `SELECT "id", "name", "age", "is_active", "nickname", "created_at" FROM "users"`, st.SQL)
	assert.Empty(t, st.Params)
}

func TestQuerySpecFull(t *testing.T) {
	spec := Query(usersContext()).
		Select("id", "name").
		Filter(And(Ge(Col("age"), 21), Col("is_active"))).
		OrderDesc("created_at").
		OrderAsc("name").
		Limit(25).
		Offset(50)

	c := NewCompiler(dialect.NewPostgresDialect(), usersContext())
	defer c.Release()

	st, err := c.Compile(spec)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "id", "name" FROM "users" WHERE ("age" >= @p0 AND "is_active" = @p1) ORDER BY "created_at" DESC, "name" ASC LIMIT 25 OFFSET 50`,
		st.SQL)
	require.Len(t, st.Params, 2)
}

func TestQuerySpecTopN(t *testing.T) {
	c := NewCompiler(dialect.NewSQLServerDialect(), usersContext())
	defer c.Release()

	st, err := c.Compile(Query(usersContext()).Select("id").Limit(10))
	require.NoError(t, err)
	assert.Equal(t, `SELECT TOP 10 [id] FROM [users]`, st.SQL)
}

func TestQuerySpecOffsetFetch(t *testing.T) {
	c := NewCompiler(dialect.NewSQLServerDialect(), usersContext())
	defer c.Release()

	st, err := c.Compile(Query(usersContext()).Select("id").OrderAsc("id").Limit(10).Offset(20))
	require.NoError(t, err)
	assert.Equal(t, `SELECT [id] FROM [users] ORDER BY [id] ASC OFFSET 20 ROWS FETCH NEXT 10 ROWS ONLY`, st.SQL)
}

func TestQuerySpecOffsetWithoutLimit(t *testing.T) {
	tests := []struct {
		dialect  dialect.Dialect
		expected string
	}{
		// MySQL and SQLite reject a bare OFFSET; the unbounded LIMIT
		// spelling goes with it.
		{dialect.NewMySQLDialect(), "SELECT `id` FROM `users` LIMIT 18446744073709551615 OFFSET 20"},
		{dialect.NewSQLiteDialect(), `SELECT "id" FROM "users" LIMIT -1 OFFSET 20`},
		{dialect.NewPostgresDialect(), `SELECT "id" FROM "users" OFFSET 20`},
	}
	for _, tt := range tests {
		t.Run(tt.dialect.Name(), func(t *testing.T) {
			c := NewCompiler(tt.dialect, usersContext())
			defer c.Release()

			st, err := c.Compile(Query(usersContext()).Select("id").Offset(20))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, st.SQL)
		})
	}
}

func TestQuerySpecOffsetRequiresOrderBy(t *testing.T) {
	c := NewCompiler(dialect.NewSQLServerDialect(), usersContext())
	defer c.Release()

	_, err := c.Compile(Query(usersContext()).Select("id").Offset(20))
	var unsupported *quill.UnsupportedDialectFeatureError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "sqlserver", unsupported.Dialect)
}

func TestQuerySpecAlias(t *testing.T) {
	ctx := usersContext().WithAlias("u")
	c := NewCompiler(dialect.NewPostgresDialect(), ctx)
	defer c.Release()

	st, err := c.Compile(Query(ctx).Select("id").Filter(Gt(Col("age"), 18)))
	require.NoError(t, err)
	assert.Equal(t, `SELECT "u"."id" FROM "users" AS "u" WHERE "u"."age" > @p0`, st.SQL)
}

func TestCompileUsesSpecContext(t *testing.T) {
	orders := schema.NewTableContext("orders",
		schema.Column{Name: "id", Type: "int"},
		schema.Column{Name: "total", Type: "float"},
	)

	// The compiler was fetched against a different catalog; the spec's
	// source context governs validation and emission.
	c := NewCompiler(dialect.NewPostgresDialect(), usersContext())
	defer c.Release()

	st, err := c.Compile(Query(orders).Select("total").Filter(Gt(Col("total"), 100)))
	require.NoError(t, err)
	assert.Equal(t, `SELECT "total" FROM "orders" WHERE "total" > @p0`, st.SQL)
}

func TestFingerprintStability(t *testing.T) {
	a := And(Ge(Col("age"), 18), Col("is_active"))
	b := And(Ge(Col("age"), 18), Col("is_active"))
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	c := And(Ge(Col("age"), 21), Col("is_active"))
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func BenchmarkCompilePredicate(b *testing.B) {
	d := dialect.NewPostgresDialect()
	ctx := usersContext()
	pred := And(Ge(Col("age"), 18), Col("is_active"), Contains("name", "ad"))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c := NewCompiler(d, ctx)
		if _, err := c.CompilePredicate(pred); err != nil {
			b.Fatal(err)
		}
		c.Release()
	}
}
