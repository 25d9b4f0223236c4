package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldSetSetString(t *testing.T) {
	fs := NewFieldSet().
		SetString("name", "  Math  ").
		SetString("email", " ADMIN@Test.SC ", true /* lower */).
		SetString("blank", "   ")

	assert.Equal(t, 2, fs.Len())
	assert.Equal(t, "Math", fs.GetString("name"))
	assert.Equal(t, "admin@test.sc", fs.GetString("email"))
	assert.False(t, fs.Has("blank"))
}

func TestFieldSetReplaceOnDuplicate(t *testing.T) {
	fs := NewFieldSet().Set("level", 1).Set("level", 2)
	assert.Equal(t, 1, fs.Len())
	assert.Equal(t, 2, fs.GetInt("level"))
}

func TestFieldSetSetIntSkipsZero(t *testing.T) {
	fs := NewFieldSet().SetInt("classId", 0).SetInt("gradeId", 3)
	assert.False(t, fs.Has("classId"))
	assert.Equal(t, 3, fs.GetInt("gradeId"))
}

func TestFieldSetMergedWith(t *testing.T) {
	existing := Row{"title": "Old", "date": "2026-01-01", "lessonId": 5}
	fs := NewFieldSet().SetString("title", "New")

	merged := fs.MergedWith(existing)
	assert.Equal(t, "New", merged.String("title"))
	assert.Equal(t, "2026-01-01", merged.String("date"))
	assert.Equal(t, 5, merged.Int("lessonId"))
	// inputs untouched
	assert.Equal(t, "Old", existing.String("title"))
}

func TestFieldSetCheckColumns(t *testing.T) {
	ok := NewFieldSet().SetInt("level", 1).Set("school_id", 2)
	assert.NoError(t, ok.CheckColumns(TableGrade))

	bad := NewFieldSet().SetString("level\" = 0 --", "x")
	assert.Error(t, bad.CheckColumns(TableGrade))
}

func TestParseTables(t *testing.T) {
	tbl, err := ParseTable("lesson")
	assert.NoError(t, err)
	assert.Equal(t, TableLesson, tbl)

	_, err = ParseTable("unknown")
	assert.Error(t, err)

	_, err = ParseAcademicTable("teacher")
	assert.Error(t, err)

	_, err = ParseUserTable("grade")
	assert.Error(t, err)

	// credential lookup order is fixed
	assert.Equal(t, []Table{TableAdmin, TableTeacher, TableParent, TableStudent}, UserTables)
}
