package ws

import (
	"github.com/go-playground/validator/v10"

	"github.com/ASHISH-KUMAR-PANDEY/tambola-backend-sub001/internal/domain"
)

// newValidator builds the payload validator with the game-specific tags
// registered
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("category", validateCategory)
	return v
}

// validateCategory checks enum membership of a claimed win category
func validateCategory(fl validator.FieldLevel) bool {
	return domain.IsValidCategory(fl.Field().String())
}
