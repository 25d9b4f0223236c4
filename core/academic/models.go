package academic

import (
	"github.com/trezcool/elimu/core"
	"github.com/trezcool/elimu/core/record"
)

// Entity payloads bind the boundary JSON and convert to sparse field sets;
// all rule checking happens in the table schemas. The same payload serves
// create and update: on update, absent fields are simply not applied.

type GradeData struct {
	Level int `json:"level" form:"level"`
}

func (d GradeData) FieldSet() *record.FieldSet {
	return record.NewFieldSet().SetInt("level", d.Level)
}

type ClassData struct {
	Name         string `json:"name" form:"name"`
	Capacity     int    `json:"capacity" form:"capacity"`
	SupervisorID int    `json:"supervisorId" form:"supervisorId"`
	GradeID      int    `json:"gradeId" form:"gradeId"`
}

func (d ClassData) FieldSet() *record.FieldSet {
	return record.NewFieldSet().
		SetString("name", d.Name).
		SetInt("capacity", d.Capacity).
		SetInt("supervisorId", d.SupervisorID).
		SetInt("gradeId", d.GradeID)
}

type SubjectData struct {
	Name string `json:"name" form:"name"`
}

func (d SubjectData) FieldSet() *record.FieldSet {
	return record.NewFieldSet().SetString("name", d.Name)
}

type LessonData struct {
	Name      string `json:"name" form:"name"`
	Day       string `json:"day" form:"day"`
	StartTime string `json:"startTime" form:"startTime"`
	EndTime   string `json:"endTime" form:"endTime"`
	SubjectID int    `json:"subjectId" form:"subjectId"`
	ClassID   int    `json:"classId" form:"classId"`
	TeacherID int    `json:"teacherId" form:"teacherId"`
}

func (d *LessonData) Clean() {
	d.Day = core.CleanString(d.Day)
}

func (d LessonData) FieldSet() *record.FieldSet {
	return record.NewFieldSet().
		SetString("name", d.Name).
		SetString("day", d.Day).
		SetString("startTime", d.StartTime).
		SetString("endTime", d.EndTime).
		SetInt("subjectId", d.SubjectID).
		SetInt("classId", d.ClassID).
		SetInt("teacherId", d.TeacherID)
}

type ExamData struct {
	Title     string `json:"title" form:"title"`
	Date      string `json:"date" form:"date"`
	StartTime string `json:"startTime" form:"startTime"`
	EndTime   string `json:"endTime" form:"endTime"`
	LessonID  int    `json:"lessonId" form:"lessonId"`
}

func (d ExamData) FieldSet() *record.FieldSet {
	return record.NewFieldSet().
		SetString("title", d.Title).
		SetString("date", d.Date).
		SetString("startTime", d.StartTime).
		SetString("endTime", d.EndTime).
		SetInt("lessonId", d.LessonID)
}

type AssignmentData struct {
	Title     string `json:"title" form:"title"`
	StartDate string `json:"startDate" form:"startDate"`
	DueDate   string `json:"dueDate" form:"dueDate"`
	LessonID  int    `json:"lessonId" form:"lessonId"`
}

func (d AssignmentData) FieldSet() *record.FieldSet {
	return record.NewFieldSet().
		SetString("title", d.Title).
		SetString("startDate", d.StartDate).
		SetString("dueDate", d.DueDate).
		SetInt("lessonId", d.LessonID)
}

// ResultData scores a student on exactly one of an exam or an assignment.
// Score is a pointer since zero is a real score.
type ResultData struct {
	Score        *int `json:"score" form:"score"`
	ExamID       int  `json:"examId" form:"examId"`
	AssignmentID int  `json:"assignmentId" form:"assignmentId"`
	StudentID    int  `json:"studentId" form:"studentId"`
}

func (d ResultData) FieldSet() *record.FieldSet {
	fs := record.NewFieldSet().
		SetInt("examId", d.ExamID).
		SetInt("assignmentId", d.AssignmentID).
		SetInt("studentId", d.StudentID)
	if d.Score != nil {
		fs.Set("score", *d.Score)
	}
	return fs
}

type AttendanceData struct {
	Date      string `json:"date" form:"date"`
	Present   *bool  `json:"present" form:"present"`
	StudentID int    `json:"studentId" form:"studentId"`
	LessonID  int    `json:"lessonId" form:"lessonId"`
}

func (d AttendanceData) FieldSet() *record.FieldSet {
	fs := record.NewFieldSet().
		SetString("date", d.Date).
		SetInt("studentId", d.StudentID).
		SetInt("lessonId", d.LessonID)
	if d.Present != nil {
		fs.Set("present", *d.Present)
	}
	return fs
}

type EventData struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	StartDate   string `json:"startDate" form:"startDate"`
	EndDate     string `json:"endDate" form:"endDate"`
	ClassID     int    `json:"classId" form:"classId"`
}

func (d EventData) FieldSet() *record.FieldSet {
	return record.NewFieldSet().
		SetString("title", d.Title).
		SetString("description", d.Description).
		SetString("startDate", d.StartDate).
		SetString("endDate", d.EndDate).
		SetInt("classId", d.ClassID)
}

type AnnouncementData struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Date        string `json:"date" form:"date"`
	ClassID     int    `json:"classId" form:"classId"`
}

func (d AnnouncementData) FieldSet() *record.FieldSet {
	return record.NewFieldSet().
		SetString("title", d.Title).
		SetString("description", d.Description).
		SetString("date", d.Date).
		SetInt("classId", d.ClassID)
}
