package params

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillsql/quill"
)

type signup struct {
	ID    string `db:"id,gen=uuid"`
	Name  string
	Email string `db:"email_address"`
	Age   int
}

func TestSingleAndDouble(t *testing.T) {
	assert.Equal(t, []quill.Param{{Name: "age", Value: 18}}, Single("age", 18))
	assert.Equal(t,
		[]quill.Param{{Name: "age", Value: 18}, {Name: "name", Value: "ada"}},
		Double("age", 18, "name", "ada"))
}

func TestFromPairs(t *testing.T) {
	out, err := FromPairs("age", 18, "name", "ada")
	require.NoError(t, err)
	assert.Equal(t, []quill.Param{{Name: "age", Value: 18}, {Name: "name", Value: "ada"}}, out)

	_, err = FromPairs("age", 18, "name")
	require.Error(t, err)

	_, err = FromPairs(18, "age")
	require.Error(t, err)
}

func TestFromMapIsDeterministic(t *testing.T) {
	m := map[string]any{"b": 2, "a": 1, "c": 3}
	for i := 0; i < 20; i++ {
		out := FromMap(m)
		assert.Equal(t, []quill.Param{
			{Name: "a", Value: 1},
			{Name: "b", Value: 2},
			{Name: "c", Value: 3},
		}, out)
	}
}

func TestFromStruct(t *testing.T) {
	out, err := FromStruct(signup{ID: "x", Name: "ada", Email: "a@b.c", Age: 36})
	require.NoError(t, err)
	assert.Equal(t, []quill.Param{
		{Name: "id", Value: "x"},
		{Name: "name", Value: "ada"},
		{Name: "email_address", Value: "a@b.c"},
		{Name: "age", Value: 36},
	}, out)

	// Pointers to bags work too.
	viaPtr, err := FromStruct(&signup{ID: "x", Name: "ada", Email: "a@b.c", Age: 36})
	require.NoError(t, err)
	assert.Equal(t, out, viaPtr)
}

func TestFromStructRejectsNonStruct(t *testing.T) {
	_, err := FromStruct(42)
	require.Error(t, err)
	_, err = FromStruct(map[string]any{"a": 1})
	require.Error(t, err)
}

func TestFromStructWithDefaults(t *testing.T) {
	out, err := FromStructWithDefaults(signup{Name: "ada", Email: "a@b.c", Age: 36})
	require.NoError(t, err)
	require.Len(t, out, 4)

	// The zero-valued generated column is filled in.
	assert.Equal(t, "id", out[0].Name)
	generated, ok := out[0].Value.(string)
	require.True(t, ok)
	_, err = uuid.Parse(generated)
	require.NoError(t, err)

	// A caller-supplied value is left alone.
	out, err = FromStructWithDefaults(signup{ID: "explicit", Name: "ada"})
	require.NoError(t, err)
	assert.Equal(t, "explicit", out[0].Value)
}

func TestToMap(t *testing.T) {
	m, err := ToMap(signup{Name: "ada", Age: 36})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"id":            "",
		"name":          "ada",
		"email_address": "",
		"age":           36,
	}, m)
}

func TestShapeIsCachedPerType(t *testing.T) {
	// Prime the cache, then confirm the same shape value is reused.
	_, err := FromStruct(signup{})
	require.NoError(t, err)

	a, err := shapeOf(reflect.TypeOf(signup{}))
	require.NoError(t, err)
	b, err := shapeOf(reflect.TypeOf(signup{}))
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func BenchmarkFromStruct(b *testing.B) {
	bag := signup{ID: "x", Name: "ada", Email: "a@b.c", Age: 36}
	if _, err := FromStruct(bag); err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := FromStruct(bag); err != nil {
			b.Fatal(err)
		}
	}
}
