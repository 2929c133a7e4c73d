package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/examcenter/backend/core/contact"
)

type contactApi struct {
	svc      contact.Service
	validate *validator.Validate
}

func registerContactAPI(g *echo.Group, svc contact.Service, validate *validator.Validate) {
	api := contactApi{svc: svc, validate: validate}
	g.POST("/contact", api.submit)
}

type SuccessResponse struct {
	Success string `json:"success"`
}

func (api *contactApi) submit(ctx echo.Context) error {
	var data contact.Message
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to contact.Message")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.Submit(ctx.Request().Context(), data, ctx.RealIP()); err != nil {
		return errors.Wrap(err, "submitting contact message")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Thank you, we will get back to you shortly."})
}
