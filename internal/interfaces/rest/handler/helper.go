package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pot-code/focus-tracker/internal/infrastructure/validate"
)

const acceptLanguage = "Accept-Language"

// bindAndValidate binds the body into form and validates it, a non-nil response error
// means the reply was already written
func bindAndValidate(c echo.Context, v validate.Validator, form interface{}) (bool, error) {
	if err := c.Bind(form); err != nil {
		detail := err.Error()
		var he *echo.HTTPError
		if errors.As(err, &he) && he.Internal != nil {
			detail = he.Internal.Error()
		}
		return false, c.JSON(http.StatusUnprocessableEntity,
			NewRESTStandardError(http.StatusUnprocessableEntity, "Failed to bind request body").SetDetail(detail))
	}
	if errs := v.StructLocale(c.Request().Header.Get(acceptLanguage), form); errs != nil {
		return false, c.JSON(http.StatusBadRequest,
			NewRESTValidationError(http.StatusBadRequest, "Failed to validate fields", errs))
	}
	return true, nil
}

func invalidParam(c echo.Context, name, reason string) error {
	return c.JSON(http.StatusBadRequest, NewRESTValidationError(http.StatusBadRequest, "Failed to validate params",
		[]*validate.FieldError{validate.NewFieldError(name, reason)}))
}

func standardError(c echo.Context, code int, err error) error {
	return c.JSON(code, NewRESTStandardError(code, err.Error()))
}
