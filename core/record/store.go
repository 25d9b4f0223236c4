package record

import (
	"context"

	"github.com/trezcool/elimu/core"
)

// ErrNotFound covers both genuinely absent rows and rows outside the
// caller's tenant: cross-tenant access must be indistinguishable from
// absence.
var ErrNotFound = core.NewNotFoundError("record not found")

// Store is the tenant-scoped accessor over the whitelisted tables.
// A schoolID of 0 skips the tenant filter; only the identity resolver's
// bootstrap paths (admin signup, tenant-less login) may use it.
type Store interface {
	// FetchByID returns the row or ErrNotFound.
	FetchByID(ctx context.Context, table Table, id, schoolID int) (Row, error)
	// FetchAll returns every row of the table within the tenant.
	FetchAll(ctx context.Context, table Table, schoolID int) ([]Row, error)
	// FetchWhere applies equality AND filters over whitelisted columns.
	FetchWhere(ctx context.Context, table Table, filters *FieldSet) ([]Row, error)
	// Insert creates the row and re-selects it by generated id so callers
	// never assume client-supplied defaults match server state.
	Insert(ctx context.Context, table Table, fs *FieldSet) (Row, error)
	// Update applies the field set to one row; affecting zero rows after a
	// validated existence check reports an internal failure, not success.
	Update(ctx context.Context, table Table, id, schoolID int, fs *FieldSet) error
	// DeleteByID removes the row physically; ErrNotFound when absent or
	// cross-tenant.
	DeleteByID(ctx context.Context, table Table, id, schoolID int) error
}
