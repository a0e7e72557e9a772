// Package inference implements per-column type inference for delimited data
// files. For each column it keeps a running candidate category and the
// maximum observed value length, then resolves both into a concrete SQL
// storage type. Values that contradict the candidate never fail the run:
// the column degrades to a general text type instead.
package inference

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"datafile-loader/internal/parser"
)

// Category is the running classification of a column's values
type Category int

const (
	// CategoryUnset means no non-null value has been observed yet
	CategoryUnset Category = iota
	CategoryInteger
	CategoryFloat
	CategoryDate
	// CategoryText is absorbing: once a column degrades to text it stays text
	CategoryText
)

// String returns the string representation of Category
func (c Category) String() string {
	switch c {
	case CategoryInteger:
		return "INTEGER"
	case CategoryFloat:
		return "FLOAT"
	case CategoryDate:
		return "DATE"
	case CategoryText:
		return "TEXT"
	default:
		return "UNSET"
	}
}

var (
	floatPattern = regexp.MustCompile(`^\d+\.\d+$`)
	intPattern   = regexp.MustCompile(`^\d+$`)
	// Calendar dates between 1800 and 2099. Month and day ranges are checked
	// independently, so 2024-02-31 passes.
	datePattern = regexp.MustCompile(`^(18|19|20)\d\d-(0[1-9]|1[0-2])-(0[1-9]|[12]\d|3[01])$`)
)

// classifiers pairs each value pattern with its category, in priority order.
// The float check runs before the integer check: the integer pattern cannot
// match a decimal point anyway, but keeping the order explicit preserves the
// tie-break if the patterns are ever widened.
var classifiers = []struct {
	pattern  *regexp.Regexp
	category Category
}{
	{floatPattern, CategoryFloat},
	{intPattern, CategoryInteger},
	{datePattern, CategoryDate},
}

// classify returns the most specific category for a single non-null value
func classify(value string) Category {
	for _, c := range classifiers {
		if c.pattern.MatchString(value) {
			return c.category
		}
	}
	return CategoryText
}

// noLength is the MaxLen sentinel before any non-null value is observed
const noLength = -1

// ColumnState holds the running statistics for one column
type ColumnState struct {
	Category Category

	// MaxLen is the character count of the longest non-null value observed.
	// It doubles as a magnitude proxy for integer columns after resolution:
	// width classes are chosen by the textual length of the largest value,
	// not its numeric range.
	MaxLen int
}

// observe folds one non-null value into the column state
func (s *ColumnState) observe(value string) {
	switch {
	case s.Category == CategoryUnset:
		s.Category = classify(value)
	case s.Category == CategoryText:
		// Absorbing, nothing to validate
	default:
		if classify(value) != s.Category {
			s.Category = CategoryText
		}
	}

	if n := utf8.RuneCountInString(value); n > s.MaxLen {
		s.MaxLen = n
	}
}

// Schema accumulates column statistics for a single data file and resolves
// them into a table definition. Each file gets its own Schema; state is never
// shared across files.
type Schema struct {
	Table   string
	Columns []string

	states map[string]*ColumnState
}

// NewSchema creates the per-file inference context for the given table name
// and ordered column names
func NewSchema(table string, columns []string) *Schema {
	states := make(map[string]*ColumnState, len(columns))
	for _, name := range columns {
		states[name] = &ColumnState{Category: CategoryUnset, MaxLen: noLength}
	}
	return &Schema{
		Table:   table,
		Columns: columns,
		states:  states,
	}
}

// Observe updates every column's running statistics with one row.
// Null fields (absent or empty) leave their column untouched. Observe never
// fails: a value that does not fit a column's candidate category downgrades
// the column to text.
func (s *Schema) Observe(row parser.Row) {
	for _, name := range s.Columns {
		if row.IsNull(name) {
			continue
		}
		s.states[name].observe(row[name])
	}
}

// State returns the running statistics for the named column, or nil if the
// column is unknown
func (s *Schema) State(column string) *ColumnState {
	return s.states[column]
}

// ResolvedColumn is a finalized (name, storage type) pair
type ResolvedColumn struct {
	Name    string
	SQLType string
}

// integerWidths maps the textual length of the longest integer value to a
// storage width, checked largest threshold first
var integerWidths = []struct {
	minLen  int
	sqlType string
}{
	{11, "BIGINT"},
	{3, "INTEGER"},
	{2, "SMALLINT"},
	{0, "TINYINT"},
}

// varcharBounds maps the longest text value to the smallest bounded type
// that fits, checked smallest bound first
var varcharBounds = []struct {
	maxLen  int
	sqlType string
}{
	{10, "VARCHAR(10)"},
	{50, "VARCHAR(50)"},
	{255, "VARCHAR(255)"},
	{500, "VARCHAR(500)"},
}

// resolveType converts one finalized column state into a storage type
func resolveType(state *ColumnState) string {
	switch state.Category {
	case CategoryInteger:
		for _, w := range integerWidths {
			if state.MaxLen >= w.minLen {
				return w.sqlType
			}
		}
		return "TINYINT"
	case CategoryFloat:
		return "FLOAT"
	case CategoryDate:
		return "DATE"
	case CategoryText:
		for _, b := range varcharBounds {
			if state.MaxLen <= b.maxLen {
				return b.sqlType
			}
		}
		return "TEXT"
	default:
		// Column never saw a non-null value
		return "TEXT"
	}
}

// Resolve finalizes every column's statistics into a storage type, in the
// original column order. Names are sanitized into SQL identifiers.
func (s *Schema) Resolve() []ResolvedColumn {
	resolved := make([]ResolvedColumn, len(s.Columns))
	for i, name := range s.Columns {
		resolved[i] = ResolvedColumn{
			Name:    SanitizeIdentifier(name),
			SQLType: resolveType(s.states[name]),
		}
	}
	return resolved
}

// CreateTableSQL generates the CREATE TABLE statement for the resolved schema
func (s *Schema) CreateTableSQL() string {
	resolved := s.Resolve()
	columns := make([]string, len(resolved))
	for i, col := range resolved {
		columns[i] = fmt.Sprintf("%s %s", col.Name, col.SQLType)
	}
	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n)",
		SanitizeIdentifier(s.Table),
		strings.Join(columns, ",\n  "))
}

// DropTableSQL generates the statement that removes a pre-existing table
// with this schema's name
func (s *Schema) DropTableSQL() string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", SanitizeIdentifier(s.Table))
}

// SanitizeIdentifier cleans up a column or table name to be SQL-safe
func SanitizeIdentifier(name string) string {
	// Replace spaces and special characters with underscores
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")
	name = strings.ReplaceAll(name, ".", "_")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")

	name = strings.ToLower(name)

	// Ensure it doesn't start with a number
	if len(name) > 0 && name[0] >= '0' && name[0] <= '9' {
		name = "col_" + name
	}

	// Ensure it's not empty
	if name == "" {
		name = "unnamed_column"
	}

	return name
}
