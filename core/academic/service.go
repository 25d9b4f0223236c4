package academic

import (
	"context"

	"github.com/trezcool/elimu/core/record"
)

// Service manages academic entities generically: a table plus a field set
// in, validated against the table's schema, always within one school.
type Service struct {
	store record.Store
}

func NewService(store record.Store) *Service {
	return &Service{store: store}
}

// Create validates fs against the table's schema and inserts the record
// under the given school.
func (svc *Service) Create(ctx context.Context, table record.Table, schoolID int, fs *record.FieldSet) (record.Row, error) {
	schema, ok := SchemaFor(table)
	if !ok {
		return nil, record.ErrInvalidTable(string(table))
	}
	if err := schema.ValidateCreate(ctx, svc.store, schoolID, fs); err != nil {
		return nil, err
	}
	fs.Set("school_id", schoolID)
	return svc.store.Insert(ctx, table, fs)
}

// Update merges fs over the existing record, re-validates the merged shape
// and applies only the supplied fields. The record must belong to the
// school; anything else reads as not found.
func (svc *Service) Update(ctx context.Context, table record.Table, id, schoolID int, fs *record.FieldSet) (record.Row, error) {
	schema, ok := SchemaFor(table)
	if !ok {
		return nil, record.ErrInvalidTable(string(table))
	}
	existing, err := svc.store.FetchByID(ctx, table, id, schoolID)
	if err != nil {
		return nil, err
	}
	if err = schema.ValidateUpdate(ctx, svc.store, schoolID, id, existing, fs); err != nil {
		return nil, err
	}
	if err = svc.store.Update(ctx, table, id, schoolID, fs); err != nil {
		return nil, err
	}
	return svc.store.FetchByID(ctx, table, id, schoolID)
}

// Query lists all records of the table within a school. schoolID 0 lists
// across schools (superadmin only).
func (svc *Service) Query(ctx context.Context, table record.Table, schoolID int) ([]record.Row, error) {
	if _, ok := SchemaFor(table); !ok {
		return nil, record.ErrInvalidTable(string(table))
	}
	return svc.store.FetchAll(ctx, table, schoolID)
}

// Get fetches one record of the table within a school.
func (svc *Service) Get(ctx context.Context, table record.Table, id, schoolID int) (record.Row, error) {
	if _, ok := SchemaFor(table); !ok {
		return nil, record.ErrInvalidTable(string(table))
	}
	return svc.store.FetchByID(ctx, table, id, schoolID)
}

// Delete removes one record of the table within a school.
func (svc *Service) Delete(ctx context.Context, table record.Table, id, schoolID int) error {
	if _, ok := SchemaFor(table); !ok {
		return record.ErrInvalidTable(string(table))
	}
	return svc.store.DeleteByID(ctx, table, id, schoolID)
}
