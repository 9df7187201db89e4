package api

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/classboard/internal/services"
)

const notBlankTag = "notblank"

var validate = newValidator()

func newValidator() *validator.Validate {
	instance := validator.New(validator.WithRequiredStructEnabled())
	instance.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = instance.RegisterValidation(notBlankTag, func(field validator.FieldLevel) bool {
		return strings.TrimSpace(field.Field().String()) != ""
	})
	return instance
}

// parseInput decodes the JSON body into dst and checks its validate tags.
func parseInput(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return errInvalidBody
	}
	return validationError(validate.Struct(dst))
}

// validationError turns validator output into the service error a client
// would get for the same mistake further down.
func validationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}

	for _, fieldErr := range fieldErrors {
		switch fieldErr.Tag() {
		case "required", notBlankTag:
			return services.ErrRequiredFieldsMissing
		}
	}
	for _, fieldErr := range fieldErrors {
		switch fieldErr.Tag() {
		case "max":
			return services.ErrContentTooLong
		case "email":
			return services.ErrEmailInvalid
		}
	}
	return services.ErrValidation
}
