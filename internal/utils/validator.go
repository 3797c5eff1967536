// internal/utils/validator.go
package utils

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("strong_password", validateStrongPassword)
	validate.RegisterValidation("education_level", validateEducationLevel)
	validate.RegisterValidation("student_type", validateStudentType)
	validate.RegisterValidation("order_kind", validateOrderKind)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateStrongPassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()

	if len(password) < 8 {
		return false
	}

	var hasUpper, hasLower, hasNumber bool

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	return hasUpper && hasLower && hasNumber
}

func validateEducationLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "preschool", "elementary", "junior_high", "senior_high", "college":
		return true
	}
	return false
}

func validateStudentType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "new", "old":
		return true
	}
	return false
}

func validateOrderKind(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "regular", "pre_order":
		return true
	}
	return false
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "strong_password":
		return "Password must contain at least 8 characters with uppercase, lowercase and number"
	case "education_level":
		return "Education level must be one of: preschool, elementary, junior_high, senior_high, college"
	case "student_type":
		return "Student type must be new or old"
	case "order_kind":
		return "Order kind must be regular or pre_order"
	default:
		return e.Field() + " is invalid"
	}
}
