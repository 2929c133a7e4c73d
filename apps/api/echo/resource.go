package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/examcenter/backend/core/resource"
)

var errResourceNotFoundInCtx = errors.New("resource object not found in echo.Context")

type resourceApi struct {
	svc      resource.Service
	validate *validator.Validate
}

func registerResourceAPI(public, admin *echo.Group, svc resource.Service, validate *validator.Validate) {
	api := resourceApi{svc: svc, validate: validate}

	public.GET("/resources", api.queryActive)
	public.GET("/resources/latest", api.latest)

	g := admin.Group("/resources")
	g.GET("", api.query)
	g.POST("", api.create)

	dg := g.Group("/:id", objectMiddleware(func(ctx echo.Context, id string) (interface{}, error) {
		return api.svc.GetByID(ctx.Request().Context(), id)
	}, resource.ErrNotFound))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

func contextResource(ctx echo.Context) (resource.Resource, error) {
	r, ok := ctx.Get(contextObjectKey).(resource.Resource)
	if !ok {
		return resource.Resource{}, errors.Wrap(errResourceNotFoundInCtx, "retrieving object from context")
	}
	return r, nil
}

// Handlers

func (api *resourceApi) queryActive(ctx echo.Context) error {
	resources, err := api.svc.Query(ctx.Request().Context(), true /* activeOnly */)
	if err != nil {
		return errors.Wrap(err, "querying active resources")
	}
	return ctx.JSON(http.StatusOK, resources)
}

func (api *resourceApi) latest(ctx echo.Context) error {
	latest, err := api.svc.Latest(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "finding latest resources")
	}
	return ctx.JSON(http.StatusOK, latest)
}

func (api *resourceApi) query(ctx echo.Context) error {
	resources, err := api.svc.Query(ctx.Request().Context(), false /* activeOnly */)
	if err != nil {
		return errors.Wrap(err, "querying resources")
	}
	return ctx.JSON(http.StatusOK, resources)
}

func (api *resourceApi) create(ctx echo.Context) error {
	var data resource.NewResource
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewResource")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	r, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating resource")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *resourceApi) retrieve(ctx echo.Context) error {
	r, err := contextResource(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *resourceApi) update(ctx echo.Context) error {
	orig, err := contextResource(ctx)
	if err != nil {
		return err
	}

	var data resource.UpdateResource
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateResource")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	r, err := api.svc.Update(ctx.Request().Context(), orig, data)
	if err != nil {
		return notFoundOr(err, resource.ErrNotFound, "updating resource")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *resourceApi) destroy(ctx echo.Context) error {
	r, err := contextResource(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), r.ID); err != nil {
		return notFoundOr(err, resource.ErrNotFound, "deleting resource")
	}
	return ctx.NoContent(http.StatusNoContent)
}
