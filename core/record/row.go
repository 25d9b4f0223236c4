package record

import (
	"strconv"
	"time"
)

// Row is a materialized table row keyed by column name. Values carry
// whatever the driver returned; the typed accessors below normalize the
// common cases (sqlite returns int64, postgres returns []byte for some
// column types).
type Row map[string]interface{}

// Int returns the row value under key coerced to int; 0 when absent or NULL.
func (r Row) Int(key string) int {
	switch v := r[key].(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float64:
		return int(v)
	case []byte:
		n, _ := strconv.Atoi(string(v))
		return n
	case string:
		n, _ := strconv.Atoi(v)
		return n
	}
	return 0
}

// String returns the row value under key coerced to string; "" when absent or NULL.
func (r Row) String(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339)
	}
	return ""
}

// Bool returns the row value under key coerced to bool.
func (r Row) Bool(key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v
	case int:
		return v != 0
	case int64:
		return v != 0
	case []byte:
		return string(v) == "1" || string(v) == "true" || string(v) == "t"
	case string:
		return v == "1" || v == "true" || v == "t"
	}
	return false
}

// IsNull reports whether the column is absent or holds NULL.
func (r Row) IsNull(key string) bool {
	v, ok := r[key]
	return !ok || v == nil
}

// Sanitized returns a copy of the row with the password hash stripped.
// Resolver results are sensitive until passed through here.
func (r Row) Sanitized() Row {
	out := make(Row, len(r))
	for k, v := range r {
		if k == "password" {
			continue
		}
		out[k] = v
	}
	return out
}

// SanitizeRows strips the password hash off every row.
func SanitizeRows(rows []Row) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Sanitized())
	}
	return out
}
