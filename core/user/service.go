package user

import (
	"context"

	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/core/record"
)

// Service manages accounts across the role tables.
type Service struct {
	store record.Store
}

func NewService(store record.Store) *Service {
	return &Service{store: store}
}

// FindCredential resolves a username and/or email to an account row.
// With an empty table it scans every role table in a fixed order (admin,
// teacher, parent, student) and the first match wins. schoolID 0 searches
// across schools; only the login and admin-signup paths may do so.
func (svc *Service) FindCredential(ctx context.Context, table record.Table, schoolID int, username, email string) (record.Row, record.Table, error) {
	username = core.CleanString(username, true /* lower */)
	email = core.CleanString(email, true /* lower */)
	if username == "" && email == "" {
		return nil, "", core.NewBadRequestError("a username or email is required")
	}

	tables := record.UserTables
	if table != "" {
		if !table.IsUserTable() {
			return nil, "", record.ErrInvalidTable(string(table))
		}
		tables = []record.Table{table}
	}

	for _, tbl := range tables {
		for _, field := range []string{"username", "email"} {
			value := username
			if field == "email" {
				value = email
			}
			if value == "" {
				continue
			}
			filters := record.NewFieldSet().SetString(field, value)
			if schoolID > 0 {
				filters.SetInt("school_id", schoolID)
			}
			rows, err := svc.store.FetchWhere(ctx, tbl, filters)
			if err != nil {
				return nil, "", err
			}
			if len(rows) > 0 {
				return rows[0], tbl, nil
			}
		}
	}
	return nil, "", record.ErrNotFound
}

// Authenticate checks a credential pair against all role tables.
// Unknown accounts and wrong passwords are indistinguishable to the caller.
func (svc *Service) Authenticate(ctx context.Context, username, email, password string) (record.Row, record.Table, error) {
	if password == "" {
		return nil, "", core.NewBadRequestError("a password is required")
	}
	usr, tbl, err := svc.FindCredential(ctx, "", 0, username, email)
	if err != nil {
		if core.ErrKind(err) == core.KindNotFound {
			return nil, "", core.NewUnauthorizedError("invalid credentials")
		}
		return nil, "", err
	}
	if err = CheckPassword(usr.String("password"), password); err != nil {
		return nil, "", err
	}
	return usr, tbl, nil
}

// CreateAdmin registers an admin and anchors a new school on the created
// row: the row's own id becomes its school_id, the tenant key every record
// created under this admin will carry.
func (svc *Service) CreateAdmin(ctx context.Context, d AdminSignup) (record.Row, error) {
	// admins are unique across all schools
	if _, _, err := svc.FindCredential(ctx, record.TableAdmin, 0, d.Username, d.Email); err == nil {
		return nil, core.NewConflictError("an admin with this username or email already exists")
	} else if core.ErrKind(err) != core.KindNotFound {
		return nil, err
	}

	hash, err := HashPassword(d.Password)
	if err != nil {
		return nil, err
	}
	fs := d.FieldSet().Set("password", hash)

	usr, err := svc.store.Insert(ctx, record.TableAdmin, fs)
	if err != nil {
		return nil, err
	}
	id := usr.Int("id")
	pin := record.NewFieldSet().Set("school_id", id)
	if err = svc.store.Update(ctx, record.TableAdmin, id, 0, pin); err != nil {
		return nil, err
	}
	return svc.store.FetchByID(ctx, record.TableAdmin, id, 0)
}

// CreateTeacher creates a teacher account under the given school.
func (svc *Service) CreateTeacher(ctx context.Context, schoolID int, d NewTeacher) (record.Row, error) {
	return svc.createAccount(ctx, record.TableTeacher, schoolID, d.Username, d.Email, d.Password, d.FieldSet())
}

// CreateParent creates a parent account under the given school.
func (svc *Service) CreateParent(ctx context.Context, schoolID int, d NewParent) (record.Row, error) {
	return svc.createAccount(ctx, record.TableParent, schoolID, d.Username, d.Email, d.Password, d.FieldSet())
}

// CreateStudent creates a student account under the given school, resolving
// its parent, class and grade references within that school only.
func (svc *Service) CreateStudent(ctx context.Context, schoolID int, d NewStudent) (record.Row, error) {
	fs := d.FieldSet()

	parentID := d.ParentID
	if d.ParentUsername != "" {
		parent, _, err := svc.FindCredential(ctx, record.TableParent, schoolID, d.ParentUsername, "")
		if err != nil {
			if core.ErrKind(err) == core.KindNotFound {
				return nil, core.NewNotFoundError("parent %q not found", d.ParentUsername)
			}
			return nil, err
		}
		parentID = parent.Int("id")
	}
	if parentID > 0 {
		if _, err := svc.store.FetchByID(ctx, record.TableParent, parentID, schoolID); err != nil {
			if core.ErrKind(err) == core.KindNotFound {
				return nil, core.NewNotFoundError("parent %d not found", parentID)
			}
			return nil, err
		}
		fs.SetInt("parentId", parentID)
	}
	fs.SetInt("classId", d.ClassID).SetInt("gradeId", d.GradeID)
	if err := svc.checkPlacement(ctx, schoolID, fs); err != nil {
		return nil, err
	}
	return svc.createAccount(ctx, record.TableStudent, schoolID, d.Username, d.Email, d.Password, fs)
}

func (svc *Service) createAccount(ctx context.Context, table record.Table, schoolID int, username, email, password string, fs *record.FieldSet) (record.Row, error) {
	if schoolID <= 0 {
		return nil, core.NewForbiddenError("no school to create this account under")
	}
	// uniqueness is scoped to the school; the same username may exist
	// under another school
	if _, _, err := svc.FindCredential(ctx, table, schoolID, username, email); err == nil {
		return nil, core.NewConflictError("a %s with this username or email already exists", table)
	} else if core.ErrKind(err) != core.KindNotFound {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	fs.Set("password", hash).Set("school_id", schoolID)
	return svc.store.Insert(ctx, table, fs)
}

// checkPlacement verifies that any classId/gradeId in fs resolve within
// the school.
func (svc *Service) checkPlacement(ctx context.Context, schoolID int, fs *record.FieldSet) error {
	refs := []struct {
		field string
		table record.Table
		label string
	}{
		{"classId", record.TableClass, "class"},
		{"gradeId", record.TableGrade, "grade"},
	}
	for _, ref := range refs {
		id := fs.GetInt(ref.field)
		if id <= 0 {
			continue
		}
		if _, err := svc.store.FetchByID(ctx, ref.table, id, schoolID); err != nil {
			if core.ErrKind(err) == core.KindNotFound {
				return core.NewNotFoundError("%s %d not found", ref.label, id)
			}
			return err
		}
	}
	return nil
}

// Update applies a sparse update to an account. A password change requires
// the current password; username/email changes are re-checked for
// uniqueness against the account's own school, excluding itself.
func (svc *Service) Update(ctx context.Context, table record.Table, id, schoolID int, d UpdateAccount) (record.Row, error) {
	existing, err := svc.store.FetchByID(ctx, table, id, schoolID)
	if err != nil {
		return nil, err
	}

	fs := d.FieldSet(table)
	if d.Password != "" {
		if d.OldPassword == "" {
			return nil, core.NewBadRequestError("the old password is required to set a new one")
		}
		if err = CheckPassword(existing.String("password"), d.OldPassword); err != nil {
			return nil, core.NewUnauthorizedError("the old password does not match")
		}
		hash, herr := HashPassword(d.Password)
		if herr != nil {
			return nil, herr
		}
		fs.Set("password", hash)
	}
	if fs.IsEmpty() {
		return nil, record.ErrNoFields
	}

	ownSchool := existing.Int("school_id")
	if table == record.TableStudent {
		if err = svc.checkStudentRefs(ctx, ownSchool, fs); err != nil {
			return nil, err
		}
	}
	if err = svc.checkTaken(ctx, table, id, ownSchool, existing, fs); err != nil {
		return nil, err
	}

	if err = svc.store.Update(ctx, table, id, schoolID, fs); err != nil {
		return nil, err
	}
	return svc.store.FetchByID(ctx, table, id, schoolID)
}

func (svc *Service) checkStudentRefs(ctx context.Context, schoolID int, fs *record.FieldSet) error {
	if pid := fs.GetInt("parentId"); pid > 0 {
		if _, err := svc.store.FetchByID(ctx, record.TableParent, pid, schoolID); err != nil {
			if core.ErrKind(err) == core.KindNotFound {
				return core.NewNotFoundError("parent %d not found", pid)
			}
			return err
		}
	}
	return svc.checkPlacement(ctx, schoolID, fs)
}

// checkTaken rejects a username/email change that would collide with
// another account of the same role in the same school.
func (svc *Service) checkTaken(ctx context.Context, table record.Table, selfID, schoolID int, existing record.Row, fs *record.FieldSet) error {
	for _, field := range []string{"username", "email"} {
		value := fs.GetString(field)
		if value == "" || value == existing.String(field) {
			continue
		}
		filters := record.NewFieldSet().SetString(field, value)
		if table != record.TableAdmin {
			filters.SetInt("school_id", schoolID)
		}
		rows, err := svc.store.FetchWhere(ctx, table, filters)
		if err != nil {
			return err
		}
		for _, row := range rows {
			if row.Int("id") != selfID {
				return core.NewConflictError("a %s with this %s already exists", table, field)
			}
		}
	}
	return nil
}

// Query lists all accounts of a role within a school. schoolID 0 lists
// across schools (superadmin only).
func (svc *Service) Query(ctx context.Context, table record.Table, schoolID int) ([]record.Row, error) {
	if !table.IsUserTable() {
		return nil, record.ErrInvalidTable(string(table))
	}
	rows, err := svc.store.FetchAll(ctx, table, schoolID)
	if err != nil {
		return nil, err
	}
	return record.SanitizeRows(rows), nil
}

// Get fetches one account of a known role within a school.
func (svc *Service) Get(ctx context.Context, table record.Table, id, schoolID int) (record.Row, error) {
	if !table.IsUserTable() {
		return nil, record.ErrInvalidTable(string(table))
	}
	return svc.store.FetchByID(ctx, table, id, schoolID)
}

// GetAnyRole finds an account by id regardless of role, scanning the role
// tables in the usual order.
func (svc *Service) GetAnyRole(ctx context.Context, id, schoolID int) (record.Row, record.Table, error) {
	for _, tbl := range record.UserTables {
		usr, err := svc.store.FetchByID(ctx, tbl, id, schoolID)
		if err == nil {
			return usr, tbl, nil
		}
		if core.ErrKind(err) != core.KindNotFound {
			return nil, "", err
		}
	}
	return nil, "", record.ErrNotFound
}

// Delete removes an account of a known role within a school.
func (svc *Service) Delete(ctx context.Context, table record.Table, id, schoolID int) error {
	if !table.IsUserTable() {
		return record.ErrInvalidTable(string(table))
	}
	return svc.store.DeleteByID(ctx, table, id, schoolID)
}
