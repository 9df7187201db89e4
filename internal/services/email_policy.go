package services

import "github.com/go-playground/validator/v10"

var emailValidator = validator.New()

// ValidateEmail checks an already normalized address.
func ValidateEmail(email string) error {
	if err := emailValidator.Var(email, "required,email,max=254"); err != nil {
		return ErrEmailInvalid
	}
	return nil
}
