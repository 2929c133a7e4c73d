package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/examcenter/backend/core/course"
)

var errCourseNotFoundInCtx = errors.New("course object not found in echo.Context")

type courseApi struct {
	svc      course.Service
	validate *validator.Validate
}

func registerCourseAPI(public, admin *echo.Group, svc course.Service, validate *validator.Validate) {
	api := courseApi{svc: svc, validate: validate}

	public.GET("/courses", api.listings)

	g := admin.Group("/courses")
	g.GET("", api.query)
	g.POST("", api.create)

	dg := g.Group("/:id", objectMiddleware(func(ctx echo.Context, id string) (interface{}, error) {
		return api.svc.GetByID(ctx.Request().Context(), id)
	}, course.ErrNotFound))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

func contextCourse(ctx echo.Context) (course.Course, error) {
	c, ok := ctx.Get(contextObjectKey).(course.Course)
	if !ok {
		return course.Course{}, errors.Wrap(errCourseNotFoundInCtx, "retrieving object from context")
	}
	return c, nil
}

// Handlers

func (api *courseApi) listings(ctx echo.Context) error {
	listings, err := api.svc.Listings(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing courses")
	}
	return ctx.JSON(http.StatusOK, listings)
}

func (api *courseApi) query(ctx echo.Context) error {
	courses, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	c, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	c, err := contextCourse(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) update(ctx echo.Context) error {
	orig, err := contextCourse(ctx)
	if err != nil {
		return err
	}

	var data course.UpdateCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err = data.Validate(api.validate, orig); err != nil {
		return err
	}

	c, err := api.svc.Update(ctx.Request().Context(), orig, data)
	if err != nil {
		return notFoundOr(err, course.ErrNotFound, "updating course")
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	c, err := contextCourse(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), c.ID); err != nil {
		return notFoundOr(err, course.ErrNotFound, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}
