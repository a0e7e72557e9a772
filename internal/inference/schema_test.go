package inference

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datafile-loader/internal/parser"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		value    string
		expected Category
	}{
		// Integers: digits only, no sign
		{"0", CategoryInteger},
		{"42", CategoryInteger},
		{"1234567890123", CategoryInteger},
		{"-42", CategoryText},
		{"+42", CategoryText},

		// Floats: digits with exactly one decimal point
		{"3.14", CategoryFloat},
		{"0.0", CategoryFloat},
		{"123.456", CategoryFloat},
		{"-3.14", CategoryText},
		{".5", CategoryText},
		{"5.", CategoryText},
		{"1.2.3", CategoryText},
		{"1e10", CategoryText},

		// Dates: YYYY-MM-DD with century 18/19/20
		{"2023-01-15", CategoryDate},
		{"1899-12-31", CategoryDate},
		{"1800-01-01", CategoryDate},
		{"2099-12-31", CategoryDate},
		// Month/day ranges are checked independently, not cross-validated
		{"2024-02-31", CategoryDate},
		{"2023-13-01", CategoryText},
		{"2023-00-15", CategoryText},
		{"2023-01-32", CategoryText},
		{"2023-01-00", CategoryText},
		{"1699-01-15", CategoryText},
		{"2100-01-15", CategoryText},
		{"2023/01/15", CategoryText},
		{"23-01-15", CategoryText},

		// Everything else
		{"abc", CategoryText},
		{"12a", CategoryText},
		{"true", CategoryText},
		{" 42", CategoryText},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.expected, classify(tt.value), "classify(%q)", tt.value)
		})
	}
}

func TestSchemaObserve(t *testing.T) {
	tests := []struct {
		name         string
		values       []string
		wantCategory Category
		wantMaxLen   int
	}{
		{
			name:         "all integers",
			values:       []string{"1", "22", "333"},
			wantCategory: CategoryInteger,
			wantMaxLen:   3,
		},
		{
			name:         "float then text downgrades",
			values:       []string{"3.14", "abc"},
			wantCategory: CategoryText,
			wantMaxLen:   4,
		},
		{
			name:         "date then invalid date downgrades",
			values:       []string{"2023-01-15", "2023-13-40"},
			wantCategory: CategoryText,
			wantMaxLen:   10,
		},
		{
			name:         "integer then float downgrades",
			values:       []string{"42", "3.14"},
			wantCategory: CategoryText,
			wantMaxLen:   4,
		},
		{
			name:         "text is absorbing",
			values:       []string{"abc", "42", "3.14", "2023-01-15"},
			wantCategory: CategoryText,
			wantMaxLen:   10,
		},
		{
			name:         "no values stays unset",
			values:       nil,
			wantCategory: CategoryUnset,
			wantMaxLen:   noLength,
		},
		{
			name:         "multibyte values count characters not bytes",
			values:       []string{"héllo", "日本語"},
			wantCategory: CategoryText,
			wantMaxLen:   5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema := NewSchema("t", []string{"col"})
			for _, v := range tt.values {
				schema.Observe(parser.Row{"col": v})
			}

			state := schema.State("col")
			require.NotNil(t, state)
			assert.Equal(t, tt.wantCategory, state.Category)
			assert.Equal(t, tt.wantMaxLen, state.MaxLen)
		})
	}
}

// The final category depends only on the set of values seen, not their
// order, whenever at least two conflicting values are present.
func TestObserveOrderInvariance(t *testing.T) {
	valueSets := [][]string{
		{"3.14", "abc"},
		{"42", "abc", "2023-01-15"},
		{"2023-01-15", "17"},
		{"1.5", "2"},
	}

	for _, values := range valueSets {
		t.Run(strings.Join(values, ","), func(t *testing.T) {
			forward := NewSchema("t", []string{"col"})
			for _, v := range values {
				forward.Observe(parser.Row{"col": v})
			}

			backward := NewSchema("t", []string{"col"})
			for i := len(values) - 1; i >= 0; i-- {
				backward.Observe(parser.Row{"col": values[i]})
			}

			assert.Equal(t, forward.State("col").Category, backward.State("col").Category)
			assert.Equal(t, forward.State("col").MaxLen, backward.State("col").MaxLen)
		})
	}
}

// Once a column degrades to text, no later value can change its category
func TestDowngradeIsPermanent(t *testing.T) {
	schema := NewSchema("t", []string{"col"})
	schema.Observe(parser.Row{"col": "42"})
	schema.Observe(parser.Row{"col": "abc"})
	require.Equal(t, CategoryText, schema.State("col").Category)

	// A long run of clean integers must not re-upgrade the column
	for i := 0; i < 100; i++ {
		schema.Observe(parser.Row{"col": "7"})
	}
	assert.Equal(t, CategoryText, schema.State("col").Category)
}

// Null fields (absent or empty) never touch category or max length
func TestNullValuesIgnored(t *testing.T) {
	schema := NewSchema("t", []string{"a", "b"})
	schema.Observe(parser.Row{"a": "42"})
	schema.Observe(parser.Row{"a": "", "b": ""})
	schema.Observe(parser.Row{})

	assert.Equal(t, CategoryInteger, schema.State("a").Category)
	assert.Equal(t, 2, schema.State("a").MaxLen)
	assert.Equal(t, CategoryUnset, schema.State("b").Category)
	assert.Equal(t, noLength, schema.State("b").MaxLen)
}

// Observation must never panic and resolution must always produce a
// concrete type, whatever the input looks like
func TestNeverFails(t *testing.T) {
	values := []string{
		"",
		" ",
		"\t",
		"null",
		"NaN",
		"日本語のテキスト",
		"\"quoted\"",
		strings.Repeat("x", 10000),
		strings.Repeat("9", 1000),
		"\x00\x01\x02",
	}

	schema := NewSchema("t", []string{"col"})
	for _, v := range values {
		schema.Observe(parser.Row{"col": v})
	}

	resolved := schema.Resolve()
	require.Len(t, resolved, 1)
	assert.NotEmpty(t, resolved[0].SQLType)
}

func TestResolveIntegerWidths(t *testing.T) {
	tests := []struct {
		value   string
		sqlType string
	}{
		{"7", "TINYINT"},            // 1 char
		{"42", "SMALLINT"},          // 2 chars
		{"123", "INTEGER"},          // 3 chars
		{"1234567890", "INTEGER"},   // 10 chars
		{"12345678901", "BIGINT"},   // 11 chars
		{"1234567890123", "BIGINT"}, // 13 chars
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			schema := NewSchema("t", []string{"n"})
			schema.Observe(parser.Row{"n": tt.value})

			resolved := schema.Resolve()
			require.Len(t, resolved, 1)
			assert.Equal(t, tt.sqlType, resolved[0].SQLType)
		})
	}
}

func TestResolveTextBounds(t *testing.T) {
	tests := []struct {
		length  int
		sqlType string
	}{
		{1, "VARCHAR(10)"},
		{10, "VARCHAR(10)"},
		{11, "VARCHAR(50)"},
		{50, "VARCHAR(50)"},
		{51, "VARCHAR(255)"},
		{255, "VARCHAR(255)"},
		{256, "VARCHAR(500)"},
		{500, "VARCHAR(500)"},
		{501, "TEXT"},
		{10000, "TEXT"},
	}

	for _, tt := range tests {
		t.Run(tt.sqlType, func(t *testing.T) {
			schema := NewSchema("t", []string{"s"})
			schema.Observe(parser.Row{"s": strings.Repeat("a", tt.length)})

			resolved := schema.Resolve()
			require.Len(t, resolved, 1)
			assert.Equal(t, tt.sqlType, resolved[0].SQLType)
		})
	}
}

func TestResolveSimpleTypes(t *testing.T) {
	schema := NewSchema("t", []string{"f", "d", "empty"})
	schema.Observe(parser.Row{"f": "3.14", "d": "2023-01-15"})

	resolved := schema.Resolve()
	require.Len(t, resolved, 3)
	assert.Equal(t, "FLOAT", resolved[0].SQLType)
	assert.Equal(t, "DATE", resolved[1].SQLType)
	// A column that never saw a value resolves to unbounded text
	assert.Equal(t, "TEXT", resolved[2].SQLType)
}

func TestResolvePreservesColumnOrder(t *testing.T) {
	columns := []string{"zeta", "alpha", "mid"}
	schema := NewSchema("t", columns)
	schema.Observe(parser.Row{"zeta": "1", "alpha": "x", "mid": "2.5"})

	resolved := schema.Resolve()
	require.Len(t, resolved, 3)
	assert.Equal(t, "zeta", resolved[0].Name)
	assert.Equal(t, "alpha", resolved[1].Name)
	assert.Equal(t, "mid", resolved[2].Name)
}

func TestCreateTableSQL(t *testing.T) {
	schema := NewSchema("users", []string{"id", "name", "Signup Date"})
	schema.Observe(parser.Row{"id": "1", "name": "Alice", "Signup Date": "2023-01-15"})
	schema.Observe(parser.Row{"id": "2", "name": "Bob", "Signup Date": "2023-02-20"})

	sql := schema.CreateTableSQL()
	assert.Contains(t, sql, "CREATE TABLE users")
	assert.Contains(t, sql, "id TINYINT")
	assert.Contains(t, sql, "name VARCHAR(10)")
	assert.Contains(t, sql, "signup_date DATE")

	assert.Equal(t, "DROP TABLE IF EXISTS users", schema.DropTableSQL())
}

func TestSanitizeIdentifier(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"name", "name"},
		{"First Name", "first_name"},
		{"created-at", "created_at"},
		{"a.b/c\\d", "a_b_c_d"},
		{"2024data", "col_2024data"},
		{"", "unnamed_column"},
		{"UPPER", "upper"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeIdentifier(tt.in), "SanitizeIdentifier(%q)", tt.in)
	}
}
