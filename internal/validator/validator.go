package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/cinex-booking/internal/domain"
)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})

	validator.RegisterValidation("seat", validateSeat)
	validator.RegisterValidation("ticket_type", validateTicketType)
	validator.RegisterValidation("promo_code", validatePromoCode)

	return validator
}

func validateSeat(fl validator.FieldLevel) bool {
	_, err := domain.ParseSeatID(fl.Field().String())
	return err == nil
}

func validateTicketType(fl validator.FieldLevel) bool {
	switch domain.TicketType(fl.Field().String()) {
	case domain.TicketAdult, domain.TicketChild, domain.TicketSenior:
		return true
	default:
		return false
	}
}

func validatePromoCode(fl validator.FieldLevel) bool {
	code := strings.TrimSpace(fl.Field().String())
	if len(code) > 32 {
		return false
	}

	for _, ch := range code {
		isAlnum := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
		if !isAlnum && ch != '-' && ch != '_' {
			return false
		}
	}

	return true
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		if err.Kind().String() == "slice" {
			return fmt.Sprintf("must contain at least %s items", err.Param())
		}
		return fmt.Sprintf("must be at least %s characters long", err.Param())
	case "max":
		if err.Kind().String() == "slice" {
			return fmt.Sprintf("must contain at most %s items", err.Param())
		}
		return fmt.Sprintf("must be at most %s characters long", err.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", err.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "seat":
		return "must be a seat label such as A1"
	case "ticket_type":
		return "must be one of adult, child, senior"
	case "promo_code":
		return "must contain only letters, digits, '-' or '_' and be at most 32 characters long"
	default:
		return "is invalid"
	}
}
