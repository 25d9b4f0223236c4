package academic_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/core/academic"
	"github.com/trezcool/elimu/core/record"
	"github.com/trezcool/elimu/storage/database"
	testutil "github.com/trezcool/elimu/tests"
)

func newService(t *testing.T) (*academic.Service, record.Store) {
	t.Helper()
	store := database.NewStore(testutil.OpenDB(t))
	return academic.NewService(store), store
}

func TestGradeUniquenessScoping(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	schoolA := testutil.CreateAdmin(t, store, "gradea", "gradea@test.sc", "secret123").Int("school_id")
	schoolB := testutil.CreateAdmin(t, store, "gradeb", "gradeb@test.sc", "secret123").Int("school_id")

	a, err := svc.Create(ctx, record.TableGrade, schoolA, academic.GradeData{Level: 10}.FieldSet())
	require.NoError(t, err)

	// same level under another school is an independent row
	b, err := svc.Create(ctx, record.TableGrade, schoolB, academic.GradeData{Level: 10}.FieldSet())
	require.NoError(t, err)
	assert.NotEqual(t, a.Int("id"), b.Int("id"))

	// same level under the same school collides
	_, err = svc.Create(ctx, record.TableGrade, schoolA, academic.GradeData{Level: 10}.FieldSet())
	assert.Equal(t, core.KindConflict, core.ErrKind(err))

	// the other school cannot see school A's row
	_, err = svc.Get(ctx, record.TableGrade, a.Int("id"), schoolB)
	assert.Equal(t, core.KindNotFound, core.ErrKind(err))
}

func TestTenantIsolationOnMutation(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	schoolA := testutil.CreateAdmin(t, store, "isoa", "isoa@test.sc", "secret123").Int("school_id")
	schoolB := testutil.CreateAdmin(t, store, "isob", "isob@test.sc", "secret123").Int("school_id")
	grade := testutil.CreateGrade(t, store, schoolA, 5)

	_, err := svc.Update(ctx, record.TableGrade, grade.Int("id"), schoolB, academic.GradeData{Level: 6}.FieldSet())
	assert.Equal(t, core.KindNotFound, core.ErrKind(err))

	err = svc.Delete(ctx, record.TableGrade, grade.Int("id"), schoolB)
	assert.Equal(t, core.KindNotFound, core.ErrKind(err))

	got, err := store.FetchByID(ctx, record.TableGrade, grade.Int("id"), schoolA)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Int("level"))
}

func TestResultExclusivity(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	schoolID := testutil.CreateAdmin(t, store, "excl", "excl@test.sc", "secret123").Int("school_id")
	teacher := testutil.CreateAccount(t, store, record.TableTeacher, schoolID, "exteacher", "secret123")
	student := testutil.CreateAccount(t, store, record.TableStudent, schoolID, "exstudent", "secret123")
	grade := testutil.CreateGrade(t, store, schoolID, 8)
	class := testutil.CreateClass(t, store, schoolID, grade.Int("id"), "8A")
	subject := testutil.CreateSubject(t, store, schoolID, "Math")
	lesson := testutil.CreateLesson(t, store, schoolID, subject.Int("id"), class.Int("id"), teacher.Int("id"), "Algebra")

	exam, err := svc.Create(ctx, record.TableExam, schoolID, academic.ExamData{
		Title: "Midterm", Date: "2026-09-10", StartTime: "09:00", EndTime: "11:00", LessonID: lesson.Int("id"),
	}.FieldSet())
	require.NoError(t, err)
	assignment, err := svc.Create(ctx, record.TableAssignment, schoolID, academic.AssignmentData{
		Title: "Homework", StartDate: "2026-09-01", DueDate: "2026-09-08", LessonID: lesson.Int("id"),
	}.FieldSet())
	require.NoError(t, err)

	score := 85
	// both targets set
	_, err = svc.Create(ctx, record.TableResult, schoolID, academic.ResultData{
		Score: &score, ExamID: exam.Int("id"), AssignmentID: assignment.Int("id"), StudentID: student.Int("id"),
	}.FieldSet())
	assert.Equal(t, core.KindBadRequest, core.ErrKind(err))

	// neither set
	_, err = svc.Create(ctx, record.TableResult, schoolID, academic.ResultData{
		Score: &score, StudentID: student.Int("id"),
	}.FieldSet())
	assert.Equal(t, core.KindBadRequest, core.ErrKind(err))

	// exactly one, but dangling
	_, err = svc.Create(ctx, record.TableResult, schoolID, academic.ResultData{
		Score: &score, ExamID: 9999, StudentID: student.Int("id"),
	}.FieldSet())
	assert.Equal(t, core.KindNotFound, core.ErrKind(err))

	// exactly one, resolving
	res, err := svc.Create(ctx, record.TableResult, schoolID, academic.ResultData{
		Score: &score, ExamID: exam.Int("id"), StudentID: student.Int("id"),
	}.FieldSet())
	require.NoError(t, err)
	assert.Equal(t, 85, res.Int("score"))

	// a zero score is a real score
	zero := 0
	_, err = svc.Create(ctx, record.TableResult, schoolID, academic.ResultData{
		Score: &zero, AssignmentID: assignment.Int("id"), StudentID: student.Int("id"),
	}.FieldSet())
	assert.NoError(t, err)
}

func TestLessonValidation(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	schoolA := testutil.CreateAdmin(t, store, "lesa", "lesa@test.sc", "secret123").Int("school_id")
	schoolB := testutil.CreateAdmin(t, store, "lesb", "lesb@test.sc", "secret123").Int("school_id")
	teacher := testutil.CreateAccount(t, store, record.TableTeacher, schoolA, "lteacher", "secret123")
	grade := testutil.CreateGrade(t, store, schoolA, 6)
	class := testutil.CreateClass(t, store, schoolA, grade.Int("id"), "6A")
	subject := testutil.CreateSubject(t, store, schoolA, "Physics")

	valid := academic.LessonData{
		Name: "Mechanics", Day: "Tuesday", StartTime: "10:00", EndTime: "11:30",
		SubjectID: subject.Int("id"), ClassID: class.Int("id"), TeacherID: teacher.Int("id"),
	}

	// missing required field
	missing := valid
	missing.Name = ""
	_, err := svc.Create(ctx, record.TableLesson, schoolA, missing.FieldSet())
	assert.Equal(t, core.KindBadRequest, core.ErrKind(err))

	// day outside Monday-Saturday
	badDay := valid
	badDay.Day = "Sunday"
	_, err = svc.Create(ctx, record.TableLesson, schoolA, badDay.FieldSet())
	assert.Equal(t, core.KindBadRequest, core.ErrKind(err))

	// malformed time
	badTime := valid
	badTime.StartTime = "25:99"
	_, err = svc.Create(ctx, record.TableLesson, schoolA, badTime.FieldSet())
	assert.Equal(t, core.KindBadRequest, core.ErrKind(err))

	// start not strictly before end
	inverted := valid
	inverted.StartTime, inverted.EndTime = "12:00", "12:00"
	_, err = svc.Create(ctx, record.TableLesson, schoolA, inverted.FieldSet())
	assert.Equal(t, core.KindBadRequest, core.ErrKind(err))

	// the subject exists, but not under school B
	_, err = svc.Create(ctx, record.TableLesson, schoolB, valid.FieldSet())
	assert.Equal(t, core.KindNotFound, core.ErrKind(err))
	assert.Contains(t, err.Error(), "Subject")

	_, err = svc.Create(ctx, record.TableLesson, schoolA, valid.FieldSet())
	assert.NoError(t, err)
}

func TestUpdateMergesExistingState(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	schoolID := testutil.CreateAdmin(t, store, "merge", "merge@test.sc", "secret123").Int("school_id")
	teacher := testutil.CreateAccount(t, store, record.TableTeacher, schoolID, "mteacher", "secret123")
	grade := testutil.CreateGrade(t, store, schoolID, 9)
	class := testutil.CreateClass(t, store, schoolID, grade.Int("id"), "9A")
	subject := testutil.CreateSubject(t, store, schoolID, "Chemistry")
	lesson := testutil.CreateLesson(t, store, schoolID, subject.Int("id"), class.Int("id"), teacher.Int("id"), "Organic")

	exam, err := svc.Create(ctx, record.TableExam, schoolID, academic.ExamData{
		Title: "Final", Date: "2026-11-20", StartTime: "09:00", EndTime: "12:00", LessonID: lesson.Int("id"),
	}.FieldSet())
	require.NoError(t, err)

	// a partial update keeps untouched fields
	got, err := svc.Update(ctx, record.TableExam, exam.Int("id"), schoolID,
		academic.ExamData{Title: "Final (moved)"}.FieldSet())
	require.NoError(t, err)
	assert.Equal(t, "Final (moved)", got.String("title"))
	assert.Equal(t, "2026-11-20", got.String("date"))

	// ordering is checked against the merged state
	_, err = svc.Update(ctx, record.TableExam, exam.Int("id"), schoolID,
		academic.ExamData{EndTime: "08:00"}.FieldSet())
	assert.Equal(t, core.KindBadRequest, core.ErrKind(err))

	// an empty set never reaches the store
	_, err = svc.Update(ctx, record.TableExam, exam.Int("id"), schoolID,
		academic.ExamData{Title: "   "}.FieldSet())
	assert.Equal(t, core.KindBadRequest, core.ErrKind(err))
}

func TestEventDateOrdering(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	schoolID := testutil.CreateAdmin(t, store, "event", "event@test.sc", "secret123").Int("school_id")

	_, err := svc.Create(ctx, record.TableEvent, schoolID, academic.EventData{
		Title: "Sports Day", Description: "Annual games", StartDate: "2026-10-02", EndDate: "2026-10-01",
	}.FieldSet())
	assert.Equal(t, core.KindBadRequest, core.ErrKind(err))

	_, err = svc.Create(ctx, record.TableEvent, schoolID, academic.EventData{
		Title: "Sports Day", Description: "Annual games", StartDate: "2026-10-01", EndDate: "2026-10-02",
	}.FieldSet())
	assert.NoError(t, err)

	// a malformed date never passes
	_, err = svc.Create(ctx, record.TableAnnouncement, schoolID, academic.AnnouncementData{
		Title: "Note", Description: "x", Date: "2026-13-40",
	}.FieldSet())
	assert.Equal(t, core.KindBadRequest, core.ErrKind(err))
}

func TestAttendanceRequiresPresentFlag(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	schoolID := testutil.CreateAdmin(t, store, "att", "att@test.sc", "secret123").Int("school_id")
	teacher := testutil.CreateAccount(t, store, record.TableTeacher, schoolID, "ateacher", "secret123")
	student := testutil.CreateAccount(t, store, record.TableStudent, schoolID, "astudent", "secret123")
	grade := testutil.CreateGrade(t, store, schoolID, 2)
	class := testutil.CreateClass(t, store, schoolID, grade.Int("id"), "2A")
	subject := testutil.CreateSubject(t, store, schoolID, "Reading")
	lesson := testutil.CreateLesson(t, store, schoolID, subject.Int("id"), class.Int("id"), teacher.Int("id"), "Phonics")

	// present flag omitted
	_, err := svc.Create(ctx, record.TableAttendance, schoolID, academic.AttendanceData{
		Date: "2026-09-01", StudentID: student.Int("id"), LessonID: lesson.Int("id"),
	}.FieldSet())
	assert.Equal(t, core.KindBadRequest, core.ErrKind(err))

	absent := false
	row, err := svc.Create(ctx, record.TableAttendance, schoolID, academic.AttendanceData{
		Date: "2026-09-01", Present: &absent, StudentID: student.Int("id"), LessonID: lesson.Int("id"),
	}.FieldSet())
	require.NoError(t, err)
	assert.False(t, row.Bool("present"))
}

func TestInvalidTable(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, record.Table("admin"), 1, record.NewFieldSet().SetString("username", "x"))
	assert.Equal(t, core.KindBadRequest, core.ErrKind(err))

	_, err = svc.Query(ctx, record.Table("nope"), 1)
	assert.Equal(t, core.KindBadRequest, core.ErrKind(err))
}
