package academic

import (
	"github.com/trezcool/elimu/core/record"
)

// schemas is the single source of truth for entity validation. Every rule
// the handlers used to enforce by hand lives here; Service interprets them.
var schemas = map[record.Table]record.Schema{
	record.TableGrade: {
		Table:     record.TableGrade,
		Label:     "Grade",
		Required:  []string{"level"},
		UniqueKey: "level",
	},
	record.TableClass: {
		Table:     record.TableClass,
		Label:     "Class",
		Required:  []string{"name", "capacity", "gradeId"},
		UniqueKey: "name",
		Refs: []record.Ref{
			{Field: "supervisorId", Table: record.TableTeacher, Label: "Teacher"},
			{Field: "gradeId", Table: record.TableGrade, Label: "Grade"},
		},
	},
	record.TableSubject: {
		Table:     record.TableSubject,
		Label:     "Subject",
		Required:  []string{"name"},
		UniqueKey: "name",
	},
	record.TableLesson: {
		Table:    record.TableLesson,
		Label:    "Lesson",
		Required: []string{"name", "day", "startTime", "endTime", "subjectId", "classId", "teacherId"},
		Times:    []string{"startTime", "endTime"},
		Weekdays: []string{"day"},
		Orders: []record.OrderRule{
			{Start: "startTime", End: "endTime", Text: "startTime must be before endTime"},
		},
		Refs: []record.Ref{
			{Field: "subjectId", Table: record.TableSubject, Label: "Subject"},
			{Field: "classId", Table: record.TableClass, Label: "Class"},
			{Field: "teacherId", Table: record.TableTeacher, Label: "Teacher"},
		},
	},
	record.TableExam: {
		Table:    record.TableExam,
		Label:    "Exam",
		Required: []string{"title", "date", "startTime", "endTime", "lessonId"},
		Dates:    []string{"date"},
		Times:    []string{"startTime", "endTime"},
		Orders: []record.OrderRule{
			{Start: "startTime", End: "endTime", Text: "startTime must be before endTime"},
		},
		Refs: []record.Ref{
			{Field: "lessonId", Table: record.TableLesson, Label: "Lesson"},
		},
	},
	record.TableAssignment: {
		Table:    record.TableAssignment,
		Label:    "Assignment",
		Required: []string{"title", "startDate", "dueDate", "lessonId"},
		Dates:    []string{"startDate", "dueDate"},
		Orders: []record.OrderRule{
			{Start: "startDate", End: "dueDate", Text: "startDate must be before dueDate"},
		},
		Refs: []record.Ref{
			{Field: "lessonId", Table: record.TableLesson, Label: "Lesson"},
		},
	},
	record.TableResult: {
		Table:     record.TableResult,
		Label:     "Result",
		Required:  []string{"score", "studentId"},
		Exclusive: [2]string{"examId", "assignmentId"},
		Refs: []record.Ref{
			{Field: "examId", Table: record.TableExam, Label: "Exam"},
			{Field: "assignmentId", Table: record.TableAssignment, Label: "Assignment"},
			{Field: "studentId", Table: record.TableStudent, Label: "Student"},
		},
	},
	record.TableAttendance: {
		Table:    record.TableAttendance,
		Label:    "Attendance",
		Required: []string{"date", "present", "studentId", "lessonId"},
		Dates:    []string{"date"},
		Refs: []record.Ref{
			{Field: "studentId", Table: record.TableStudent, Label: "Student"},
			{Field: "lessonId", Table: record.TableLesson, Label: "Lesson"},
		},
	},
	record.TableEvent: {
		Table:    record.TableEvent,
		Label:    "Event",
		Required: []string{"title", "description", "startDate", "endDate"},
		Dates:    []string{"startDate", "endDate"},
		Orders: []record.OrderRule{
			{Start: "startDate", End: "endDate", Text: "startDate must be before endDate"},
		},
		Refs: []record.Ref{
			{Field: "classId", Table: record.TableClass, Label: "Class"},
		},
	},
	record.TableAnnouncement: {
		Table:    record.TableAnnouncement,
		Label:    "Announcement",
		Required: []string{"title", "description", "date"},
		Dates:    []string{"date"},
		Refs: []record.Ref{
			{Field: "classId", Table: record.TableClass, Label: "Class"},
		},
	},
}

// SchemaFor returns the validation schema for an academic table.
func SchemaFor(table record.Table) (record.Schema, bool) {
	s, ok := schemas[table]
	return s, ok
}
