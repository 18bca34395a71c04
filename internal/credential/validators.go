package credential

import "github.com/go-playground/validator/v10"

// StrongPassword is the validator counterpart of ValidateStrength.
func StrongPassword(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return ValidateStrength(val)
}

// RegisterValidators adds the credential tags to v.
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("strongpwd", StrongPassword)
}
