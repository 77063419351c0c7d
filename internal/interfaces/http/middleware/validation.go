package middleware

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var setupOnce sync.Once

// SetupValidator makes validation errors report json field names.
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
	})
}

// BindingError converts a gin binding error into an APIError: field
// validation failures become a 422, anything else a 400.
func BindingError(err error) *shared.APIError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return shared.NewBadRequest("Request body is not valid JSON.", nil)
	}
	fields := make(map[string]string, len(verrs))
	for _, e := range verrs {
		fields[shared.CamelToSnake(e.Field())] = validationMessage(e)
	}
	return shared.NewValidation("Please check the highlighted fields.", fields)
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		if e.Kind() == reflect.String {
			return "Must be at least " + e.Param() + " characters"
		}
		return "Must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "oneof":
		return "Must be one of: " + e.Param()
	case "gt":
		return "Must be greater than " + e.Param()
	case "gte":
		return "Must be greater than or equal to " + e.Param()
	case "url":
		return "Invalid URL format"
	default:
		return "Invalid value"
	}
}
