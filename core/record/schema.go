package record

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/elimu/core"
)

type (
	// Ref declares a foreign id field and the table it must resolve in,
	// within the caller's tenant.
	Ref struct {
		Field string
		Table Table
		Label string
	}

	// OrderRule declares a strictly-ordered field pair. Date (YYYY-MM-DD)
	// and time (HH:mm) strings compare correctly as plain strings.
	OrderRule struct {
		Start string
		End   string
		Text  string
	}

	// Schema is the declarative rule set for one entity, interpreted by
	// Validate* below. Rules run in a fixed order, failing fast:
	// required, format, ordering, referential, exclusivity, uniqueness.
	Schema struct {
		Table    Table
		Label    string
		Required []string
		Dates    []string
		Times    []string
		Weekdays []string
		Orders   []OrderRule
		Refs     []Ref
		// Exclusive names a field pair of which exactly one must be set.
		Exclusive [2]string
		// UniqueKey is a column unique per school.
		UniqueKey string
	}
)

// ValidateCreate checks the supplied field set against every schema rule.
func (s Schema) ValidateCreate(ctx context.Context, store Store, schoolID int, fs *FieldSet) error {
	if err := fs.CheckColumns(s.Table); err != nil {
		return err
	}
	return s.validate(ctx, store, schoolID, 0, fs.MergedWith(nil))
}

// ValidateUpdate checks the merged (existing + supplied) field set; the
// uniqueness scan excludes the record's own id.
func (s Schema) ValidateUpdate(ctx context.Context, store Store, schoolID, id int, existing Row, fs *FieldSet) error {
	if fs.IsEmpty() {
		return ErrNoFields
	}
	if err := fs.CheckColumns(s.Table); err != nil {
		return err
	}
	return s.validate(ctx, store, schoolID, id, fs.MergedWith(existing))
}

func (s Schema) validate(ctx context.Context, store Store, schoolID, selfID int, merged Row) error {
	for _, f := range s.Required {
		if !present(merged, f) {
			return core.NewBadRequestError("%s is required", f)
		}
	}

	for _, f := range s.Dates {
		if present(merged, f) && !core.DateRegex.MatchString(merged.String(f)) {
			return core.NewBadRequestError("%s must be a date in YYYY-MM-DD format", f)
		}
	}
	for _, f := range s.Times {
		if present(merged, f) && !core.TimeRegex.MatchString(merged.String(f)) {
			return core.NewBadRequestError("%s must be a time in HH:mm format", f)
		}
	}
	for _, f := range s.Weekdays {
		if present(merged, f) && !core.IsWeekday(merged.String(f)) {
			return core.NewBadRequestError("invalid %s; allowed values: Monday-Saturday", f)
		}
	}

	for _, ord := range s.Orders {
		if present(merged, ord.Start) && present(merged, ord.End) {
			if merged.String(ord.Start) >= merged.String(ord.End) {
				return core.NewBadRequestError("%s", ord.Text)
			}
		}
	}

	for _, ref := range s.Refs {
		if !present(merged, ref.Field) {
			continue
		}
		id := merged.Int(ref.Field)
		if id == 0 {
			continue
		}
		if _, err := store.FetchByID(ctx, ref.Table, id, schoolID); err != nil {
			if core.ErrKind(err) == core.KindNotFound {
				return core.NewNotFoundError("%s %d not found", ref.Label, id)
			}
			return errors.Wrapf(err, "resolving %s", ref.Field)
		}
	}

	if s.Exclusive[0] != "" {
		a, b := s.Exclusive[0], s.Exclusive[1]
		aSet := present(merged, a) && merged.Int(a) != 0
		bSet := present(merged, b) && merged.Int(b) != 0
		if aSet && bSet {
			return core.NewBadRequestError("both %s and %s cannot be provided", a, b)
		}
		if !aSet && !bSet {
			return core.NewBadRequestError("either %s or %s is required", a, b)
		}
	}

	if s.UniqueKey != "" && present(merged, s.UniqueKey) {
		filters := NewFieldSet().Set(s.UniqueKey, merged[s.UniqueKey])
		if schoolID != 0 {
			filters.Set("school_id", schoolID)
		}
		rows, err := store.FetchWhere(ctx, s.Table, filters)
		if err != nil {
			return errors.Wrapf(err, "checking %s uniqueness", s.UniqueKey)
		}
		for _, row := range rows {
			if row.Int("id") != selfID {
				return core.NewConflictError("%s %s already exists", s.Label, s.UniqueKey)
			}
		}
	}

	return nil
}

func present(row Row, field string) bool {
	if row.IsNull(field) {
		return false
	}
	if s, ok := row[field].(string); ok {
		return core.CleanString(s) != ""
	}
	return true
}
