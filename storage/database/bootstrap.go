package database

import (
	_ "embed"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

//go:embed schema.sql
var schemaSQL string

// Bootstrap applies the schema, translating to the SQLite dialect when the
// connection uses the sqlite3 driver (tests run on in-memory SQLite).
func Bootstrap(db *sqlx.DB) error {
	schema := schemaSQL
	if db.DriverName() == "sqlite3" {
		schema = translateToSQLite(schema)
	}
	if _, err := db.Exec(schema); err != nil {
		return errors.Wrap(err, "applying schema")
	}
	return nil
}

// translateToSQLite converts the Postgres schema to SQLite dialect.
func translateToSQLite(sql string) string {
	replacements := []struct{ from, to string }{
		{"BIGSERIAL PRIMARY KEY", "INTEGER PRIMARY KEY AUTOINCREMENT"},
		{"BIGSERIAL", "INTEGER"},
		{"BIGINT", "INTEGER"},
		{"DEFAULT TRUE", "DEFAULT 1"},
		{"DEFAULT FALSE", "DEFAULT 0"},
	}
	for _, r := range replacements {
		sql = strings.ReplaceAll(sql, r.from, r.to)
	}
	return sql
}
