package api

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/bookshelf-api/internal/api/shared"
	"github.com/phrazzld/bookshelf-api/internal/domain"
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeRequest decodes the body into dst and, when v is not nil, validates
// it. Failures are returned as *domain.ValidationError.
func decodeRequest(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst any) error {
	if err := shared.DecodeJSON(w, r, dst); err != nil {
		return domain.NewValidationError("Invalid request body", err)
	}
	if v == nil {
		return nil
	}
	if err := v.Struct(dst); err != nil {
		return domain.NewValidationError(validationMessage(err), err)
	}
	return nil
}

// validationMessage describes the first failed field of a validator error.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "max":
		return fmt.Sprintf("%s is too long", fe.Field())
	case "min":
		return fmt.Sprintf("%s is too short", fe.Field())
	case "required":
		return fmt.Sprintf("%s can't be blank", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
