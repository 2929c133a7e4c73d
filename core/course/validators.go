package course

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/examcenter/backend/core"
)

var (
	deadlineTag  = "deadline"
	deadlineText = "{0} must be a date in YYYY-MM-DD format or TBD"

	statusTag  = "coursestatus"
	statusText = "{0} must be one of: Open, Closed, Applications open soon"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(deadlineTag, deadlineValidation)
	core.RegisterCustomTranslation(validate, translator, deadlineTag, deadlineText)

	_ = validate.RegisterValidation(statusTag, statusValidation)
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)
}

// deadlineValidation accepts an ISO date or the TBD marker.
func deadlineValidation(fl validator.FieldLevel) bool {
	s := strings.TrimSpace(fl.Field().String())
	return strings.EqualFold(s, DeadlineTBD) || core.IsISODate(s)
}

func statusValidation(fl validator.FieldLevel) bool {
	return Status(fl.Field().String()).IsValid()
}
