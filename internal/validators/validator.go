package validators

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// CustomValidator adapts go-playground/validator to echo.Validator.
type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New(validator.WithRequiredStructEnabled())}
}

type FieldError struct {
	Field string
	Tag   string
}

// FieldErrors is the message of the 400 returned by Validate.
type FieldErrors []FieldError

// Fields lists the failures as "Field failed on 'tag'", comma separated.
func (fe FieldErrors) Fields() string {
	parts := make([]string, len(fe))
	for i, f := range fe {
		parts[i] = f.Field + " failed on '" + f.Tag + "'"
	}
	return strings.Join(parts, ", ")
}

func (fe FieldErrors) Error() string {
	return "validation failed: " + fe.Fields()
}

// Validate returns a 400 HTTPError carrying FieldErrors for every failed field.
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		fields := make(FieldErrors, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, FieldError{Field: fe.Field(), Tag: fe.Tag()})
		}
		return echo.NewHTTPError(http.StatusBadRequest, fields)
	}
	return nil
}
