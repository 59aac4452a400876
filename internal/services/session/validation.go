package session

import (
	"errors"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/knowyourrights/internal/models"
)

var fieldMessages = map[string]map[string]string{
	"Email": {
		"required": "Email is required",
		"email":    "Email is invalid",
	},
	"Password": {
		"required": "Password is required",
		"min":      "Password must be at least 6 characters",
	},
}

var fieldNames = map[string]string{
	"Email":    "email",
	"Password": "password",
}

// validateCredentials проверяет форму входа. При регистрации дополнительно
// проверяется подтверждение пароля.
func validateCredentials(v *validator.Validate, creds models.Credentials, signUp bool) error {
	fields := make(map[string]string)

	if err := v.Struct(creds); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			name, ok := fieldNames[fe.StructField()]
			if !ok {
				continue
			}
			if _, seen := fields[name]; seen {
				continue
			}
			msg, ok := fieldMessages[fe.StructField()][fe.Tag()]
			if !ok {
				msg = "Invalid value"
			}
			fields[name] = msg
		}
	}

	mismatch := false
	if signUp {
		switch {
		case creds.ConfirmPassword == "":
			fields["confirm_password"] = "Please confirm your password"
		case creds.ConfirmPassword != creds.Password:
			mismatch = true
		}
	}

	if len(fields) == 0 {
		if mismatch {
			return models.NewConfirmationMismatch()
		}
		return nil
	}
	if mismatch {
		fields["confirm_password"] = models.NewConfirmationMismatch().Fields["confirm_password"]
	}
	return &models.ValidationError{Fields: fields}
}
