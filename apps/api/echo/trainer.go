package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/examcenter/backend/core/trainer"
)

var errTrainerNotFoundInCtx = errors.New("trainer object not found in echo.Context")

type trainerApi struct {
	svc      trainer.Service
	validate *validator.Validate
}

func registerTrainerAPI(public, admin *echo.Group, svc trainer.Service, validate *validator.Validate) {
	api := trainerApi{svc: svc, validate: validate}

	public.GET("/trainers", api.queryActive)

	g := admin.Group("/trainers")
	g.GET("", api.query)
	g.POST("", api.create)

	dg := g.Group("/:id", objectMiddleware(func(ctx echo.Context, id string) (interface{}, error) {
		return api.svc.GetByID(ctx.Request().Context(), id)
	}, trainer.ErrNotFound))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

func contextTrainer(ctx echo.Context) (trainer.Trainer, error) {
	t, ok := ctx.Get(contextObjectKey).(trainer.Trainer)
	if !ok {
		return trainer.Trainer{}, errors.Wrap(errTrainerNotFoundInCtx, "retrieving object from context")
	}
	return t, nil
}

// Handlers

func (api *trainerApi) queryActive(ctx echo.Context) error {
	trainers, err := api.svc.Query(ctx.Request().Context(), true /* activeOnly */)
	if err != nil {
		return errors.Wrap(err, "querying active trainers")
	}
	return ctx.JSON(http.StatusOK, trainers)
}

func (api *trainerApi) query(ctx echo.Context) error {
	trainers, err := api.svc.Query(ctx.Request().Context(), false /* activeOnly */)
	if err != nil {
		return errors.Wrap(err, "querying trainers")
	}
	return ctx.JSON(http.StatusOK, trainers)
}

func (api *trainerApi) create(ctx echo.Context) error {
	var data trainer.NewTrainer
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTrainer")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	t, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating trainer")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *trainerApi) retrieve(ctx echo.Context) error {
	t, err := contextTrainer(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *trainerApi) update(ctx echo.Context) error {
	orig, err := contextTrainer(ctx)
	if err != nil {
		return err
	}

	var data trainer.UpdateTrainer
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTrainer")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	t, err := api.svc.Update(ctx.Request().Context(), orig, data)
	if err != nil {
		return notFoundOr(err, trainer.ErrNotFound, "updating trainer")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *trainerApi) destroy(ctx echo.Context) error {
	t, err := contextTrainer(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), t.ID); err != nil {
		return notFoundOr(err, trainer.ErrNotFound, "deleting trainer")
	}
	return ctx.NoContent(http.StatusNoContent)
}
