package echoapi

import (
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/labstack/echo/v4"

	"github.com/examcenter/backend/core"
)

const contextObjectKey = "object"

// DateRange reads the optional from/to query params. Missing params leave the bound zero.
type DateRange struct {
	From civil.Date
	To   civil.Date
}

func (dr *DateRange) Bind(ctx echo.Context) error {
	var err error
	if dr.From, err = queryDate(ctx, "from"); err != nil {
		return err
	}
	dr.To, err = queryDate(ctx, "to")
	return err
}

func queryDate(ctx echo.Context, param string) (civil.Date, error) {
	raw := core.CleanString(ctx.QueryParam(param))
	if raw == "" {
		return civil.Date{}, nil
	}
	if !core.IsISODate(raw) {
		return civil.Date{}, invalidParam(param, param+" must be a valid date in YYYY-MM-DD format")
	}
	d, _ := civil.ParseDate(raw)
	return d, nil
}

// queryBool reads a boolean query param, defaulting to def when absent.
func queryBool(ctx echo.Context, param string, def bool) (bool, error) {
	raw := core.CleanString(ctx.QueryParam(param))
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, invalidParam(param, param+" must be a boolean")
	}
	return b, nil
}

func invalidParam(field, msg string) error {
	return core.NewValidationError(nil, core.FieldError{Field: field, Error: msg})
}

type (
	CreatedResponse struct {
		Created bool   `json:"created"`
		Message string `json:"message,omitempty"`
	}
)
