package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/poppy/pkg/tracing"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by the name the form submits them under
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// BindForm binds the submitted form into T and validates it
func BindForm[T any](c echo.Context) (T, error) {
	var v T

	if err := c.Bind(&v); err != nil {
		return v, httperror.NewHTTPError(http.StatusBadRequest, "Invalid form submission: identifiers must be whole numbers.")
	}

	if err := validate.Struct(v); err != nil {
		return v, validationError(err)
	}

	return v, nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return BadRequest(err.Error())
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return BadRequest(fmt.Sprintf("Invalid value for %s: must be a positive integer.", strings.Join(fields, ", ")))
}

// ParseID parses a positive integer identifier from a path parameter
func ParseID(c echo.Context, param string) (int64, error) {
	idStr := c.Param(param)
	if idStr == "" {
		return 0, BadRequest("missing " + param)
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return 0, httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid %s: must be a positive integer", param)
	}

	return id, nil
}

// optionalID parses a select value where an empty or "NULL" choice means none
func optionalID(value, field string) (*int64, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "NULL" {
		return nil, nil
	}

	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return nil, BadRequest(fmt.Sprintf("Invalid value for %s: must be a positive integer.", field))
	}
	return &id, nil
}

// Render renders a page, hiding template failures behind a generic message
func Render(c echo.Context, page string, data echo.Map) error {
	if err := c.Render(http.StatusOK, page, data); err != nil {
		if span := tracing.GetActiveSpan(c.Request().Context()); span != nil {
			span.RecordError(err)
		}
		return httperror.NewHTTPError(http.StatusInternalServerError, "An error occurred while rendering the page.")
	}
	return nil
}

// SeeOther redirects the browser back to a page after a form post
func SeeOther(c echo.Context, path string) error {
	return c.Redirect(http.StatusSeeOther, path)
}

// SuccessResponse returns a 200 OK with data
func SuccessResponse(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, data)
}

// BadRequest returns a 400 Bad Request error
func BadRequest(message string) error {
	return httperror.NewHTTPError(http.StatusBadRequest, message)
}
