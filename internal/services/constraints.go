package services

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"reactgram/internal/apperrors"

	"github.com/go-playground/validator/v10"
)

// Length limits shared with the web client.
const (
	NameMaxLength     = 70
	UsernameMaxLength = 70
	PasswordMinLength = 6
	PasswordMaxLength = 100
	BioMaxLength      = 160
	LocationMaxLength = 30
	PostTextMaxLength = 280
)

var personNamePattern = regexp.MustCompile(`^[a-zA-Z ,.'-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Tag names double as the field names used in error messages.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := f.Tag.Get("field")
		if name == "" {
			return strings.ToLower(f.Name)
		}
		return name
	})
	_ = v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return personNamePattern.MatchString(fl.Field().String())
	})
	return v
}

// validateStruct runs struct tag validation and turns the first failure into an
// ErrInvalidInput carrying a short client-facing message.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "invalid input", err)
	}
	return apperrors.New(apperrors.ErrInvalidInput, fieldMessage(verrs[0]))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: required", fe.Field())
	case "min":
		return fmt.Sprintf("%s: minimum length of %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s: maximum length of %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("invalid %s", fe.Field())
	}
}
