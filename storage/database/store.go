package database

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/core/record"
)

// Store is the sqlx-backed record.Store. Table and column identifiers
// only ever come from the record package's allow-lists; every value is a
// bound parameter.
type Store struct {
	db *sqlx.DB
}

var _ record.Store = (*Store)(nil) // interface compliance check

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func quote(ident string) string {
	return `"` + ident + `"`
}

func (s *Store) FetchByID(ctx context.Context, table record.Table, id, schoolID int) (record.Row, error) {
	if _, err := record.ParseTable(table.String()); err != nil {
		return nil, err
	}

	query := `SELECT * FROM ` + quote(table.String()) + ` WHERE "id" = ?`
	args := []interface{}{id}
	if schoolID != 0 {
		query += ` AND "school_id" = ?`
		args = append(args, schoolID)
	}

	rows, err := s.queryRows(ctx, query, args)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %s by id", table)
	}
	if len(rows) == 0 {
		return nil, record.ErrNotFound
	}
	return rows[0], nil
}

func (s *Store) FetchAll(ctx context.Context, table record.Table, schoolID int) ([]record.Row, error) {
	if _, err := record.ParseTable(table.String()); err != nil {
		return nil, err
	}

	query := `SELECT * FROM ` + quote(table.String())
	var args []interface{}
	if schoolID != 0 {
		query += ` WHERE "school_id" = ?`
		args = append(args, schoolID)
	}
	query += ` ORDER BY "id"`

	rows, err := s.queryRows(ctx, query, args)
	return rows, errors.Wrapf(err, "fetching all %s", table)
}

func (s *Store) FetchWhere(ctx context.Context, table record.Table, filters *record.FieldSet) ([]record.Row, error) {
	if _, err := record.ParseTable(table.String()); err != nil {
		return nil, err
	}
	if err := filters.CheckColumns(table); err != nil {
		return nil, err
	}

	query := `SELECT * FROM ` + quote(table.String())
	if !filters.IsEmpty() {
		conds := make([]string, 0, filters.Len())
		for _, f := range filters.Fields() {
			conds = append(conds, quote(f)+` = ?`)
		}
		query += ` WHERE ` + strings.Join(conds, ` AND `)
	}
	query += ` ORDER BY "id"`

	rows, err := s.queryRows(ctx, query, filters.Values())
	return rows, errors.Wrapf(err, "filtering %s", table)
}

func (s *Store) Insert(ctx context.Context, table record.Table, fs *record.FieldSet) (record.Row, error) {
	if _, err := record.ParseTable(table.String()); err != nil {
		return nil, err
	}
	if err := fs.CheckColumns(table); err != nil {
		return nil, err
	}
	if fs.IsEmpty() {
		return nil, record.ErrNoFields
	}

	cols := make([]string, 0, fs.Len())
	marks := make([]string, 0, fs.Len())
	for _, f := range fs.Fields() {
		cols = append(cols, quote(f))
		marks = append(marks, "?")
	}
	query := `INSERT INTO ` + quote(table.String()) +
		` (` + strings.Join(cols, ", ") + `) VALUES (` + strings.Join(marks, ", ") + `)`

	var id int64
	if s.db.DriverName() == "postgres" {
		query += ` RETURNING "id"`
		err := s.db.QueryRowxContext(ctx, s.db.Rebind(query), fs.Values()...).Scan(&id)
		if err != nil {
			return nil, trapStoreErr(err, "inserting into "+table.String())
		}
	} else {
		res, err := s.db.ExecContext(ctx, s.db.Rebind(query), fs.Values()...)
		if err != nil {
			return nil, trapStoreErr(err, "inserting into "+table.String())
		}
		if id, err = res.LastInsertId(); err != nil {
			return nil, errors.Wrap(err, "reading generated id")
		}
	}

	// re-select so callers see server-generated defaults, not client state
	return s.FetchByID(ctx, table, int(id), 0)
}

func (s *Store) Update(ctx context.Context, table record.Table, id, schoolID int, fs *record.FieldSet) error {
	if _, err := record.ParseTable(table.String()); err != nil {
		return err
	}
	if err := fs.CheckColumns(table); err != nil {
		return err
	}
	if fs.IsEmpty() {
		return record.ErrNoFields
	}

	sets := make([]string, 0, fs.Len()+1)
	for _, f := range fs.Fields() {
		sets = append(sets, quote(f)+` = ?`)
	}
	sets = append(sets, `"updatedAt" = CURRENT_TIMESTAMP`)

	query := `UPDATE ` + quote(table.String()) + ` SET ` + strings.Join(sets, ", ") + ` WHERE "id" = ?`
	args := append(fs.Values(), id)
	if schoolID != 0 {
		query += ` AND "school_id" = ?`
		args = append(args, schoolID)
	}

	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return trapStoreErr(err, "updating "+table.String())
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "reading affected rows")
	}
	if n == 0 {
		// existence was validated before the update; a vanished row is a
		// lost race, surfaced rather than silently ignored
		return core.NewInternalError("updating %s %d affected no rows", table, id)
	}
	return nil
}

func (s *Store) DeleteByID(ctx context.Context, table record.Table, id, schoolID int) error {
	if _, err := record.ParseTable(table.String()); err != nil {
		return err
	}

	query := `DELETE FROM ` + quote(table.String()) + ` WHERE "id" = ?`
	args := []interface{}{id}
	if schoolID != 0 {
		query += ` AND "school_id" = ?`
		args = append(args, schoolID)
	}

	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return errors.Wrapf(err, "deleting from %s", table)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "reading affected rows")
	}
	if n == 0 {
		return record.ErrNotFound
	}
	return nil
}

func (s *Store) queryRows(ctx context.Context, query string, args []interface{}) ([]record.Row, error) {
	rows, err := s.db.QueryxContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []record.Row
	for rows.Next() {
		row := make(map[string]interface{})
		if err = rows.MapScan(row); err != nil {
			return nil, err
		}
		out = append(out, normalizeRow(row))
	}
	return out, rows.Err()
}

// normalizeRow coerces driver byte slices to strings so rows marshal as
// text, not base64.
func normalizeRow(row map[string]interface{}) record.Row {
	out := make(record.Row, len(row))
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			out[k] = string(b)
		} else {
			out[k] = v
		}
	}
	return out
}

// trapStoreErr maps driver unique-violation errors to the same Conflict
// the pre-insert check raises; the unique indexes are the race backstop.
func trapStoreErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrNoRows {
		return record.ErrNotFound
	}
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return core.NewConflictError("record already exists")
	}
	if sqErr, ok := err.(sqlite3.Error); ok && sqErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return core.NewConflictError("record already exists")
	}
	return errors.Wrap(err, msg)
}
