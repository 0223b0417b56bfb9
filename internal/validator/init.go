package validator

import (
	"ctchen222/tictactoe/internal/game"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	// Initialize validation
	validate = validator.New(validator.WithRequiredStructEnabled())
	if err := validate.RegisterValidation("cell", validateCell); err != nil {
		panic(err)
	}
}

// validateCell accepts board indices 0 through 8.
func validateCell(fl validator.FieldLevel) bool {
	v := fl.Field().Int()
	return v >= 0 && v < game.BoardSize
}

func GetValidator() *validator.Validate {
	return validate
}
