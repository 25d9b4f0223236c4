package testutil

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/elimu/core/record"
	"github.com/trezcool/elimu/core/user"
	"github.com/trezcool/elimu/storage/database"
)

// OpenDB opens a fresh in-memory database with the schema applied and
// closes it when the test finishes.
func OpenDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// CreateAdmin inserts an admin row anchoring its own school (school_id = id).
func CreateAdmin(t *testing.T, store record.Store, uname, email, pwd string) record.Row {
	t.Helper()
	ctx := context.Background()

	hash, err := user.HashPassword(pwd)
	if err != nil {
		t.Fatalf("CreateAdmin() failed: %v", err)
	}
	fs := record.NewFieldSet().
		SetString("username", uname).
		SetString("email", email).
		Set("password", hash).
		SetString("fullName", "Admin "+uname).
		SetString("phoneNumber", "0700000000").
		SetString("schoolName", uname+" School").
		SetString("schoolAddress", "1 School Rd").
		SetString("schoolContactNumber", "0700000001").
		SetString("schoolEmail", "office@"+uname+".sc").
		SetString("schoolRegisterId", "REG-"+uname).
		SetString("governmentId", "GOV-"+uname).
		Set("agreementToTerms", true)

	usr, err := store.Insert(ctx, record.TableAdmin, fs)
	if err != nil {
		t.Fatalf("CreateAdmin() failed: %v", err)
	}
	id := usr.Int("id")
	if err = store.Update(ctx, record.TableAdmin, id, 0, record.NewFieldSet().Set("school_id", id)); err != nil {
		t.Fatalf("CreateAdmin() failed: %v", err)
	}
	usr, err = store.FetchByID(ctx, record.TableAdmin, id, 0)
	if err != nil {
		t.Fatalf("CreateAdmin() failed: %v", err)
	}
	return usr
}

// CreateAccount inserts a minimal teacher/parent/student row under a school.
func CreateAccount(t *testing.T, store record.Store, table record.Table, schoolID int, uname, pwd string) record.Row {
	t.Helper()

	hash, err := user.HashPassword(pwd)
	if err != nil {
		t.Fatalf("CreateAccount() failed: %v", err)
	}
	fs := record.NewFieldSet().
		SetString("username", uname).
		Set("password", hash).
		SetString("name", uname).
		SetString("surname", "Tester").
		SetString("email", uname+"@test.sc").
		SetString("phone", "0700000002").
		SetString("address", "2 Test St").
		Set("school_id", schoolID)
	if table == record.TableTeacher || table == record.TableStudent {
		fs.SetString("bloodType", "O+").
			SetString("sex", "female").
			SetString("birthday", "1990-01-15")
	}

	usr, err := store.Insert(context.Background(), table, fs)
	if err != nil {
		t.Fatalf("CreateAccount(%s) failed: %v", table, err)
	}
	return usr
}

// CreateGrade inserts a grade row.
func CreateGrade(t *testing.T, store record.Store, schoolID, level int) record.Row {
	t.Helper()
	fs := record.NewFieldSet().
		SetInt("level", level).
		Set("school_id", schoolID)
	row, err := store.Insert(context.Background(), record.TableGrade, fs)
	if err != nil {
		t.Fatalf("CreateGrade() failed: %v", err)
	}
	return row
}

// CreateClass inserts a class row under a grade.
func CreateClass(t *testing.T, store record.Store, schoolID, gradeID int, name string) record.Row {
	t.Helper()
	fs := record.NewFieldSet().
		SetString("name", name).
		Set("capacity", 30).
		SetInt("gradeId", gradeID).
		Set("school_id", schoolID)
	row, err := store.Insert(context.Background(), record.TableClass, fs)
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return row
}

// CreateSubject inserts a subject row.
func CreateSubject(t *testing.T, store record.Store, schoolID int, name string) record.Row {
	t.Helper()
	fs := record.NewFieldSet().
		SetString("name", name).
		Set("school_id", schoolID)
	row, err := store.Insert(context.Background(), record.TableSubject, fs)
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return row
}

// CreateLesson inserts a lesson row wiring subject, class and teacher.
func CreateLesson(t *testing.T, store record.Store, schoolID, subjectID, classID, teacherID int, name string) record.Row {
	t.Helper()
	fs := record.NewFieldSet().
		SetString("name", name).
		SetString("day", "Monday").
		SetString("startTime", "08:00").
		SetString("endTime", "09:00").
		SetInt("subjectId", subjectID).
		SetInt("classId", classID).
		SetInt("teacherId", teacherID).
		Set("school_id", schoolID)
	row, err := store.Insert(context.Background(), record.TableLesson, fs)
	if err != nil {
		t.Fatalf("CreateLesson() failed: %v", err)
	}
	return row
}
