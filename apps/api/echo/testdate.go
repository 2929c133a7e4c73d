package echoapi

import (
	"fmt"
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/examcenter/backend/core"
	"github.com/examcenter/backend/core/testdate"
)

type testDateApi struct {
	svc      testdate.Service
	validate *validator.Validate
	logger   core.Logger
}

func registerTestDateAPI(public, admin *echo.Group, svc testdate.Service, validate *validator.Validate, logger core.Logger) {
	api := testDateApi{svc: svc, validate: validate, logger: logger}

	public.GET("/test-dates/:exam", api.calendar)

	g := admin.Group("/test-dates")
	g.GET("", api.query)
	g.POST("", api.create)
	g.POST("/bulk", api.generate)
	g.PATCH("/:exam/:date", api.update)
	g.DELETE("/:exam/:date", api.destroy)
}

// BulkErrorResponse reports the days applied before a bulk generation failed.
type BulkErrorResponse struct {
	Error string `json:"error"`
	testdate.BulkResult
}

func pathExam(ctx echo.Context) (testdate.ExamType, error) {
	exam, err := testdate.ParseExamType(ctx.Param("exam"))
	if err != nil {
		return "", invalidParam("exam", err.Error())
	}
	return exam, nil
}

func pathDate(ctx echo.Context) (civil.Date, error) {
	raw := ctx.Param("date")
	if !core.IsISODate(raw) {
		return civil.Date{}, invalidParam("date", "date must be a valid date in YYYY-MM-DD format")
	}
	d, _ := civil.ParseDate(raw)
	return d, nil
}

// Handlers

func (api *testDateApi) calendar(ctx echo.Context) error {
	exam, err := pathExam(ctx)
	if err != nil {
		return err
	}
	var dr DateRange
	if err = dr.Bind(ctx); err != nil {
		return err
	}

	dates, err := api.svc.Calendar(ctx.Request().Context(), exam, dr.From, dr.To)
	if err != nil {
		return errors.Wrap(err, "querying calendar")
	}
	return ctx.JSON(http.StatusOK, dates)
}

func (api *testDateApi) query(ctx echo.Context) error {
	exam, err := testdate.ParseExamType(ctx.QueryParam("exam"))
	if err != nil {
		return invalidParam("exam", err.Error())
	}
	filter := testdate.QueryFilter{Exam: exam}

	var dr DateRange
	if err = dr.Bind(ctx); err != nil {
		return err
	}
	filter.From, filter.To = dr.From, dr.To
	if filter.ActiveOnly, err = queryBool(ctx, "active", false); err != nil {
		return err
	}
	if filter.IncludeDeleted, err = queryBool(ctx, "deleted", false); err != nil {
		return err
	}

	dates, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying test dates")
	}
	return ctx.JSON(http.StatusOK, dates)
}

func (api *testDateApi) create(ctx echo.Context) error {
	var data testdate.NewTestDate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTestDate")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	created, err := api.svc.Create(ctx.Request().Context(), data, contextActor(ctx))
	if err != nil {
		return errors.Wrap(err, "creating test date")
	}
	if !created {
		return ctx.JSON(http.StatusOK, CreatedResponse{Message: "test date already exists"})
	}
	return ctx.JSON(http.StatusCreated, CreatedResponse{Created: true})
}

func (api *testDateApi) generate(ctx echo.Context) error {
	var data testdate.BulkTestDates
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BulkTestDates")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.Generate(ctx.Request().Context(), data, contextActor(ctx))
	if err != nil {
		if _, ok := errors.Cause(err).(*core.ValidationError); ok {
			return err
		}
		// days applied before the failure stay applied: report them
		code, msg := http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
		if core.IsUnavailable(err) {
			code, msg = errHttpUnavailable.Code, errHttpUnavailable.Message.(string)
		}
		api.logger.Error(fmt.Sprintf("generating test dates: partial result %+v", res), err, contextAdmin(ctx))
		return ctx.JSON(code, BulkErrorResponse{Error: msg, BulkResult: res})
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *testDateApi) update(ctx echo.Context) error {
	exam, err := pathExam(ctx)
	if err != nil {
		return err
	}
	date, err := pathDate(ctx)
	if err != nil {
		return err
	}

	var data testdate.Update
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to testdate.Update")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	td, err := api.svc.Update(ctx.Request().Context(), exam, date, data, contextActor(ctx))
	if err != nil {
		return notFoundOr(err, testdate.ErrNotFound, "updating test date")
	}
	return ctx.JSON(http.StatusOK, td)
}

func (api *testDateApi) destroy(ctx echo.Context) error {
	exam, err := pathExam(ctx)
	if err != nil {
		return err
	}
	date, err := pathDate(ctx)
	if err != nil {
		return err
	}

	if err = api.svc.Delete(ctx.Request().Context(), exam, date, contextActor(ctx)); err != nil {
		return notFoundOr(err, testdate.ErrNotFound, "deleting test date")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// notFoundOr maps notFound to a 404 and wraps any other error with msg.
func notFoundOr(err, notFound error, msg string) error {
	if errors.Cause(err) == notFound {
		return errHttpNotFound
	}
	return errors.Wrap(err, msg)
}
