package record

import (
	"github.com/trezcool/elimu/core"
)

// Table identifies one of the whitelisted relational tables. Only values
// declared here may ever reach a query's identifier position; free-form
// strings are rejected by the Parse functions.
type Table string

const (
	TableAdmin   Table = "admin"
	TableTeacher Table = "teacher"
	TableParent  Table = "parent"
	TableStudent Table = "student"

	TableGrade        Table = "grade"
	TableClass        Table = "class"
	TableSubject      Table = "subject"
	TableLesson       Table = "lesson"
	TableExam         Table = "exam"
	TableAssignment   Table = "assignment"
	TableResult       Table = "result"
	TableAttendance   Table = "attendance"
	TableEvent        Table = "event"
	TableAnnouncement Table = "announcement"
)

var (
	// UserTables is the credential lookup order: a username colliding across
	// role tables resolves to the earliest-declared role.
	UserTables = []Table{TableAdmin, TableTeacher, TableParent, TableStudent}

	// AcademicTables are the entity tables reachable through the generic
	// record endpoints.
	AcademicTables = []Table{
		TableGrade, TableClass, TableSubject, TableLesson, TableExam,
		TableAssignment, TableResult, TableAttendance, TableEvent, TableAnnouncement,
	}

	tableColumns = map[Table][]string{
		TableAdmin: {
			"id", "username", "password", "fullName", "email", "phoneNumber",
			"schoolName", "schoolAddress", "schoolContactNumber", "schoolEmail",
			"schoolRegisterId", "governmentId", "agreementToTerms", "schoolEstablished",
			"profilePicture", "schoolLogo", "role", "school_id", "createdAt", "updatedAt",
		},
		TableTeacher: {
			"id", "username", "password", "name", "surname", "email", "phone",
			"address", "bloodType", "sex", "birthday", "profile", "school_id",
			"createdAt", "updatedAt",
		},
		TableParent: {
			"id", "username", "password", "name", "surname", "email", "phone",
			"address", "school_id", "createdAt", "updatedAt",
		},
		TableStudent: {
			"id", "username", "password", "name", "surname", "email", "phone",
			"address", "bloodType", "sex", "birthday", "profile", "parentId",
			"classId", "gradeId", "school_id", "createdAt", "updatedAt",
		},
		TableGrade: {"id", "level", "school_id", "createdAt", "updatedAt"},
		TableClass: {
			"id", "name", "capacity", "supervisorId", "gradeId", "school_id",
			"createdAt", "updatedAt",
		},
		TableSubject: {"id", "name", "school_id", "createdAt", "updatedAt"},
		TableLesson: {
			"id", "name", "day", "startTime", "endTime", "subjectId", "classId",
			"teacherId", "school_id", "createdAt", "updatedAt",
		},
		TableExam: {
			"id", "title", "date", "startTime", "endTime", "lessonId", "school_id",
			"createdAt", "updatedAt",
		},
		TableAssignment: {
			"id", "title", "startDate", "dueDate", "lessonId", "school_id",
			"createdAt", "updatedAt",
		},
		TableResult: {
			"id", "score", "examId", "assignmentId", "studentId", "school_id",
			"createdAt", "updatedAt",
		},
		TableAttendance: {
			"id", "date", "present", "studentId", "lessonId", "school_id",
			"createdAt", "updatedAt",
		},
		TableEvent: {
			"id", "title", "description", "startDate", "endDate", "classId",
			"school_id", "createdAt", "updatedAt",
		},
		TableAnnouncement: {
			"id", "title", "description", "date", "classId", "school_id",
			"createdAt", "updatedAt",
		},
	}
)

// ErrInvalidTable rejects any table name outside the allow-list.
func ErrInvalidTable(name string) error {
	return core.NewBadRequestError("invalid table name: %s", name)
}

// ParseTable validates name against the full allow-list.
func ParseTable(name string) (Table, error) {
	t := Table(name)
	if _, ok := tableColumns[t]; !ok {
		return "", ErrInvalidTable(name)
	}
	return t, nil
}

// ParseUserTable validates name against the role tables.
func ParseUserTable(name string) (Table, error) {
	for _, t := range UserTables {
		if string(t) == name {
			return t, nil
		}
	}
	return "", ErrInvalidTable(name)
}

// ParseAcademicTable validates name against the academic entity tables.
func ParseAcademicTable(name string) (Table, error) {
	for _, t := range AcademicTables {
		if string(t) == name {
			return t, nil
		}
	}
	return "", ErrInvalidTable(name)
}

func (t Table) String() string { return string(t) }

// Columns returns the column allow-list for the table.
func (t Table) Columns() []string { return tableColumns[t] }

// HasColumn reports whether col is a whitelisted column of the table.
func (t Table) HasColumn(col string) bool {
	for _, c := range tableColumns[t] {
		if c == col {
			return true
		}
	}
	return false
}

// IsUserTable reports whether the table holds credentialed accounts.
func (t Table) IsUserTable() bool {
	for _, u := range UserTables {
		if u == t {
			return true
		}
	}
	return false
}
