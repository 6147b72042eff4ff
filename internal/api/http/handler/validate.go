package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type structValidator struct {
	v *validator.Validate
}

// NewValidator plugs go-playground/validator into fiber's Bind().
func NewValidator() fiber.StructValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &structValidator{v: v}
}

func (s *structValidator) Validate(out any) error {
	return s.v.Struct(out)
}

// bindJSON decodes and validates the body. It writes the 400 itself and
// reports whether the handler should continue.
func bindJSON(c fiber.Ctx, out any) (bool, error) {
	err := c.Bind().JSON(out)
	if err == nil {
		return true, nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return false, badRequest(c, describe(verrs[0]))
	}
	return false, badRequest(c, "invalid request body")
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "email":
		return fe.Field() + " must be a valid email"
	case "uuid":
		return fe.Field() + " must be a valid id"
	}
	return fe.Field() + " is invalid"
}
