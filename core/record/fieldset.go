package record

import (
	"strings"

	"github.com/trezcool/elimu/core"
)

// ErrNoFields rejects update requests whose supplied field set is empty
// after trimming; no statement is ever issued for such a request.
var ErrNoFields = core.NewBadRequestError("no fields provided to update")

// FieldSet is an ordered column/value list used to build insert and
// partial-update statements. It replaces merge-by-mutation of fetched
// rows: callers build a fresh set from the supplied fields and the store
// binds every value as a parameter.
type FieldSet struct {
	fields []string
	values []interface{}
}

func NewFieldSet() *FieldSet {
	return &FieldSet{}
}

// Set appends a column/value pair, replacing any previous value for the column.
func (fs *FieldSet) Set(field string, value interface{}) *FieldSet {
	for i, f := range fs.fields {
		if f == field {
			fs.values[i] = value
			return fs
		}
	}
	fs.fields = append(fs.fields, field)
	fs.values = append(fs.values, value)
	return fs
}

// SetString trims the value and appends it; blank-after-trim values are
// skipped so an all-blank request resolves to an empty set.
func (fs *FieldSet) SetString(field, value string, lower ...bool) *FieldSet {
	v := core.CleanString(value, lower...)
	if v == "" {
		return fs
	}
	return fs.Set(field, v)
}

// SetInt appends the value when non-zero.
func (fs *FieldSet) SetInt(field string, value int) *FieldSet {
	if value == 0 {
		return fs
	}
	return fs.Set(field, value)
}

func (fs *FieldSet) Get(field string) (interface{}, bool) {
	for i, f := range fs.fields {
		if f == field {
			return fs.values[i], true
		}
	}
	return nil, false
}

func (fs *FieldSet) Has(field string) bool {
	_, ok := fs.Get(field)
	return ok
}

// GetString returns the value under field as a string; "" when absent.
func (fs *FieldSet) GetString(field string) string {
	if v, ok := fs.Get(field); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetInt returns the value under field as an int; 0 when absent.
func (fs *FieldSet) GetInt(field string) int {
	if v, ok := fs.Get(field); ok {
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		}
	}
	return 0
}

func (fs *FieldSet) Fields() []string      { return fs.fields }
func (fs *FieldSet) Values() []interface{} { return fs.values }
func (fs *FieldSet) Len() int              { return len(fs.fields) }
func (fs *FieldSet) IsEmpty() bool         { return len(fs.fields) == 0 }

// CheckColumns validates every field name against the table's column
// allow-list before the set may reach a statement builder.
func (fs *FieldSet) CheckColumns(table Table) error {
	for _, f := range fs.fields {
		if !table.HasColumn(f) {
			return core.NewBadRequestError("unknown column %q for table %s", f, table)
		}
	}
	return nil
}

// MergedWith overlays the set on an existing row and returns the combined
// view used by update-time validation; neither input is mutated.
func (fs *FieldSet) MergedWith(existing Row) Row {
	merged := make(Row, len(existing)+len(fs.fields))
	for k, v := range existing {
		merged[k] = v
	}
	for i, f := range fs.fields {
		merged[f] = fs.values[i]
	}
	return merged
}

// String renders the field names for error messages; values never appear.
func (fs *FieldSet) String() string {
	return strings.Join(fs.fields, ", ")
}
