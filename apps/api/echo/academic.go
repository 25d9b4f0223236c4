package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/elimu/core/academic"
	"github.com/trezcool/elimu/core/record"
)

type academicApi struct {
	opts *Options
}

type fieldSetter interface {
	FieldSet() *record.FieldSet
}

func registerAcademicAPI(g *echo.Group, auth echo.MiddlewareFunc, opts *Options) {
	api := academicApi{opts: opts}

	ag := g.Group("", auth)
	mg := ag.Group("", adminMiddleware())

	entities := []struct {
		table  record.Table
		plural string
		data   func() fieldSetter
	}{
		{record.TableGrade, "grades", func() fieldSetter { return new(academic.GradeData) }},
		{record.TableClass, "classes", func() fieldSetter { return new(academic.ClassData) }},
		{record.TableSubject, "subjects", func() fieldSetter { return new(academic.SubjectData) }},
		{record.TableLesson, "lessons", func() fieldSetter { return new(academic.LessonData) }},
		{record.TableExam, "exams", func() fieldSetter { return new(academic.ExamData) }},
		{record.TableAssignment, "assignments", func() fieldSetter { return new(academic.AssignmentData) }},
		{record.TableResult, "results", func() fieldSetter { return new(academic.ResultData) }},
		{record.TableAttendance, "attendances", func() fieldSetter { return new(academic.AttendanceData) }},
		{record.TableEvent, "events", func() fieldSetter { return new(academic.EventData) }},
		{record.TableAnnouncement, "announcements", func() fieldSetter { return new(academic.AnnouncementData) }},
	}
	for _, e := range entities {
		mg.POST("/create-"+e.table.String(), api.create(e.table, e.data))
		mg.PUT("/update-"+e.table.String()+"/:id", api.update(e.table, e.data))
		ag.GET("/get-"+e.plural, api.query(e.table))
	}

	ag.GET("/get-record/:table/:id", api.getRecord)
	mg.DELETE("/delete-record/:table/:id", api.deleteRecord)
}

// Handlers

func (api *academicApi) create(table record.Table, newData func() fieldSetter) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context claims")
		}
		schoolID, err := requireSchool(claims)
		if err != nil {
			return err
		}

		fs, err := bindData(ctx, newData)
		if err != nil {
			return err
		}
		row, err := api.opts.AcademicSvc.Create(ctx.Request().Context(), table, schoolID, fs)
		if err != nil {
			return errors.Wrapf(err, "creating %s", table)
		}
		return ctx.JSON(http.StatusCreated, row)
	}
}

func (api *academicApi) update(table record.Table, newData func() fieldSetter) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context claims")
		}
		schoolID, err := requireSchool(claims)
		if err != nil {
			return err
		}
		id, err := pathID(ctx)
		if err != nil {
			return err
		}

		fs, err := bindData(ctx, newData)
		if err != nil {
			return err
		}
		row, err := api.opts.AcademicSvc.Update(ctx.Request().Context(), table, id, schoolID, fs)
		if err != nil {
			return errors.Wrapf(err, "updating %s", table)
		}
		return ctx.JSON(http.StatusOK, row)
	}
}

func (api *academicApi) query(table record.Table) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context claims")
		}
		schoolID, err := requireSchool(claims)
		if err != nil {
			return err
		}

		rows, err := api.opts.AcademicSvc.Query(ctx.Request().Context(), table, schoolID)
		if err != nil {
			return errors.Wrapf(err, "querying %ss", table)
		}
		if rows == nil {
			rows = []record.Row{}
		}
		return ctx.JSON(http.StatusOK, rows)
	}
}

func (api *academicApi) getRecord(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	schoolID, err := requireSchool(claims)
	if err != nil {
		return err
	}
	table, err := record.ParseAcademicTable(ctx.Param("table"))
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	row, err := api.opts.AcademicSvc.Get(ctx.Request().Context(), table, id, schoolID)
	if err != nil {
		return errors.Wrapf(err, "finding %s", table)
	}
	return ctx.JSON(http.StatusOK, row)
}

func (api *academicApi) deleteRecord(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	schoolID, err := requireSchool(claims)
	if err != nil {
		return err
	}
	table, err := record.ParseAcademicTable(ctx.Param("table"))
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	if err = api.opts.AcademicSvc.Delete(ctx.Request().Context(), table, id, schoolID); err != nil {
		return errors.Wrapf(err, "deleting %s", table)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func bindData(ctx echo.Context, newData func() fieldSetter) (*record.FieldSet, error) {
	data := newData()
	if err := ctx.Bind(data); err != nil {
		return nil, errors.Wrap(err, "binding request")
	}
	if c, ok := data.(interface{ Clean() }); ok {
		c.Clean()
	}
	return data.FieldSet(), nil
}
