package vault

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/marmos91/pdmvault/pkg/vault/errors"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// validateStruct runs struct tag validation on a request, converting
// validator errors into Validation errors from the vault taxonomy.
func validateStruct(req any) error {
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return errors.NewValidationError(fmt.Sprintf(
				"%s failed on '%s' rule", strings.ToLower(e.Field()), e.Tag()))
		}
	}
	return errors.NewValidationError(err.Error())
}
