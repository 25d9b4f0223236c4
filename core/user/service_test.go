package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/core/record"
	"github.com/trezcool/elimu/core/user"
	"github.com/trezcool/elimu/storage/database"
	testutil "github.com/trezcool/elimu/tests"
)

func newService(t *testing.T) (*user.Service, record.Store) {
	t.Helper()
	store := database.NewStore(testutil.OpenDB(t))
	return user.NewService(store), store
}

func newSignup(uname string) user.AdminSignup {
	return user.AdminSignup{
		Username:            uname,
		Password:            "secret123",
		Email:               uname + "@test.sc",
		FullName:            "Admin " + uname,
		PhoneNumber:         "0700000000",
		SchoolName:          uname + " School",
		SchoolAddress:       "1 School Rd",
		SchoolContactNumber: "0700000001",
		SchoolEmail:         "office@" + uname + ".sc",
		SchoolRegisterID:    "REG-" + uname,
		GovernmentID:        "GOV-" + uname,
		AgreementToTerms:    true,
	}
}

func TestCreateAdminAnchorsSchool(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	usr, err := svc.CreateAdmin(ctx, newSignup("head"))
	require.NoError(t, err)
	assert.Greater(t, usr.Int("id"), 0)
	assert.Equal(t, usr.Int("id"), usr.Int("school_id"))

	// admins are unique across schools
	_, err = svc.CreateAdmin(ctx, newSignup("head"))
	assert.Equal(t, core.KindConflict, core.ErrKind(err))
}

func TestFindCredentialScanOrder(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	schoolID := testutil.CreateAdmin(t, store, "order", "order@test.sc", "secret123").Int("school_id")
	// the same username in two role tables resolves to the earlier table
	testutil.CreateAccount(t, store, record.TableParent, schoolID, "shared", "secret123")
	testutil.CreateAccount(t, store, record.TableTeacher, schoolID, "shared", "secret123")

	_, tbl, err := svc.FindCredential(ctx, "", 0, "shared", "")
	require.NoError(t, err)
	assert.Equal(t, record.TableTeacher, tbl)

	// a role narrows the scan
	_, tbl, err = svc.FindCredential(ctx, record.TableParent, schoolID, "shared", "")
	require.NoError(t, err)
	assert.Equal(t, record.TableParent, tbl)

	_, _, err = svc.FindCredential(ctx, "", 0, "", "")
	assert.Equal(t, core.KindBadRequest, core.ErrKind(err))
}

func TestAuthenticate(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	testutil.CreateAdmin(t, store, "auth", "auth@test.sc", "secret123")

	usr, tbl, err := svc.Authenticate(ctx, "auth", "", "secret123")
	require.NoError(t, err)
	assert.Equal(t, record.TableAdmin, tbl)
	assert.Equal(t, "auth", usr.String("username"))

	// by email too
	_, _, err = svc.Authenticate(ctx, "", "auth@test.sc", "secret123")
	assert.NoError(t, err)

	_, _, err = svc.Authenticate(ctx, "auth", "", "wrongpass")
	assert.Equal(t, core.KindUnauthorized, core.ErrKind(err))

	// unknown account is indistinguishable from a wrong password
	_, _, err = svc.Authenticate(ctx, "ghost", "", "secret123")
	assert.Equal(t, core.KindUnauthorized, core.ErrKind(err))
}

func TestCreateTeacherScopedUniqueness(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	schoolA := testutil.CreateAdmin(t, store, "uniqa", "uniqa@test.sc", "secret123").Int("school_id")
	schoolB := testutil.CreateAdmin(t, store, "uniqb", "uniqb@test.sc", "secret123").Int("school_id")

	data := user.NewTeacher{
		Username:  "mwalimu",
		Password:  "secret123",
		Name:      "M",
		Surname:   "W",
		Email:     "mwalimu@test.sc",
		Phone:     "0700000002",
		Address:   "2 Test St",
		BloodType: "O+",
		Sex:       "female",
		Birthday:  "1990-01-15",
	}
	_, err := svc.CreateTeacher(ctx, schoolA, data)
	require.NoError(t, err)

	// same username under a different school is fine
	_, err = svc.CreateTeacher(ctx, schoolB, data)
	assert.NoError(t, err)

	// same school collides
	_, err = svc.CreateTeacher(ctx, schoolA, data)
	assert.Equal(t, core.KindConflict, core.ErrKind(err))
}

func TestCreateStudentResolvesParent(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	schoolA := testutil.CreateAdmin(t, store, "stua", "stua@test.sc", "secret123").Int("school_id")
	schoolB := testutil.CreateAdmin(t, store, "stub", "stub@test.sc", "secret123").Int("school_id")
	parent := testutil.CreateAccount(t, store, record.TableParent, schoolA, "mzazi", "secret123")
	grade := testutil.CreateGrade(t, store, schoolA, 3)

	data := user.NewStudent{
		Username:       "mtoto",
		Password:       "secret123",
		Name:           "M",
		Surname:        "T",
		Email:          "mtoto@test.sc",
		Phone:          "0700000003",
		Address:        "3 Test St",
		BloodType:      "A+",
		Sex:            "male",
		Birthday:       "2015-06-01",
		ParentUsername: "mzazi",
		GradeID:        grade.Int("id"),
	}
	usr, err := svc.CreateStudent(ctx, schoolA, data)
	require.NoError(t, err)
	assert.Equal(t, parent.Int("id"), usr.Int("parentId"))

	// the parent does not exist under school B
	data.Username = "mtoto2"
	data.Email = "mtoto2@test.sc"
	data.GradeID = 0
	_, err = svc.CreateStudent(ctx, schoolB, data)
	assert.Equal(t, core.KindNotFound, core.ErrKind(err))
}

func TestUpdatePasswordGating(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	admin := testutil.CreateAdmin(t, store, "gated", "gated@test.sc", "oldpass123")
	id, schoolID := admin.Int("id"), admin.Int("school_id")

	// a new password without the old one is rejected
	_, err := svc.Update(ctx, record.TableAdmin, id, schoolID, user.UpdateAccount{Password: "newpass123"})
	assert.Equal(t, core.KindBadRequest, core.ErrKind(err))

	// a wrong old password is rejected and the hash is unchanged
	_, err = svc.Update(ctx, record.TableAdmin, id, schoolID, user.UpdateAccount{
		OldPassword: "wrong", Password: "newpass123",
	})
	assert.Equal(t, core.KindUnauthorized, core.ErrKind(err))
	_, _, err = svc.Authenticate(ctx, "gated", "", "oldpass123")
	assert.NoError(t, err)

	// the matching old password goes through
	_, err = svc.Update(ctx, record.TableAdmin, id, schoolID, user.UpdateAccount{
		OldPassword: "oldpass123", Password: "newpass123",
	})
	require.NoError(t, err)
	_, _, err = svc.Authenticate(ctx, "gated", "", "newpass123")
	assert.NoError(t, err)
}

func TestUpdateNoFields(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	admin := testutil.CreateAdmin(t, store, "noop", "noop@test.sc", "secret123")

	_, err := svc.Update(ctx, record.TableAdmin, admin.Int("id"), admin.Int("school_id"), user.UpdateAccount{
		Username: "   ", // blank after trim
	})
	assert.Equal(t, core.KindBadRequest, core.ErrKind(err))
}

func TestUpdateUsernameTaken(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	schoolID := testutil.CreateAdmin(t, store, "taken", "taken@test.sc", "secret123").Int("school_id")
	testutil.CreateAccount(t, store, record.TableTeacher, schoolID, "first", "secret123")
	second := testutil.CreateAccount(t, store, record.TableTeacher, schoolID, "second", "secret123")

	_, err := svc.Update(ctx, record.TableTeacher, second.Int("id"), schoolID, user.UpdateAccount{Username: "first"})
	assert.Equal(t, core.KindConflict, core.ErrKind(err))

	// re-submitting the current username is not a collision
	got, err := svc.Update(ctx, record.TableTeacher, second.Int("id"), schoolID, user.UpdateAccount{
		Username: "second", Name: "Renamed",
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.String("name"))
}

func TestQuerySanitizesPasswords(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	schoolID := testutil.CreateAdmin(t, store, "sanit", "sanit@test.sc", "secret123").Int("school_id")
	testutil.CreateAccount(t, store, record.TableTeacher, schoolID, "hidden", "secret123")

	rows, err := svc.Query(ctx, record.TableTeacher, schoolID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].IsNull("password"))
}

func TestGetAnyRole(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	schoolID := testutil.CreateAdmin(t, store, "anyrole", "anyrole@test.sc", "secret123").Int("school_id")
	// ids are per-table; skip past the admin's id so the scan lands on the
	// parent table unambiguously
	testutil.CreateAccount(t, store, record.TableParent, schoolID, "filler", "secret123")
	parent := testutil.CreateAccount(t, store, record.TableParent, schoolID, "found", "secret123")

	_, tbl, err := svc.GetAnyRole(ctx, parent.Int("id"), schoolID)
	require.NoError(t, err)
	assert.Equal(t, record.TableParent, tbl)

	_, _, err = svc.GetAnyRole(ctx, 9999, schoolID)
	assert.Equal(t, core.KindNotFound, core.ErrKind(err))
}
