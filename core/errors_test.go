package core

import (
	"errors"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestValidationError_unwrap(t *testing.T) {
	errBad := errors.New("bad input")
	err := pkgerrors.Wrap(NewValidationError(errBad, FieldError{Field: "date", Error: "bad input"}), "creating")

	_, ok := pkgerrors.Cause(err).(*ValidationError)
	assert.True(t, ok, "Cause() = %T, want *ValidationError", pkgerrors.Cause(err))
	assert.True(t, errors.Is(err, errBad))
}

func TestIsUnavailable(t *testing.T) {
	err := pkgerrors.Wrap(NewUnavailableError(errors.New("reset"), "querying"), "listing")
	assert.True(t, IsUnavailable(err))
	assert.False(t, IsUnavailable(NewValidationError(errors.New("bad"))))
}
