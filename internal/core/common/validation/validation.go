package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	errors "github.com/user/blog-platform/internal"
)

type ValidatorFunc func(interface{}) *errors.AppError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

type ValidationBuilder struct {
	fields []FieldValidator
	errors []errors.ValidationError
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{
		fields: make([]FieldValidator, 0),
		errors: make([]errors.ValidationError, 0),
	}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := FieldValidator{
		FieldName:  name,
		Value:      value,
		Validators: make([]ValidatorFunc, 0),
	}
	v.fields = append(v.fields, fv)
	return &v.fields[len(v.fields)-1]
}

func (fv *FieldValidator) Required() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		switch v := value.(type) {
		case string:
			if strings.TrimSpace(v) == "" {
				return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s is required", fv.FieldName), errors.ErrCodeValidationFailed)
			}
		case int64:
			if v == 0 {
				return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s is required", fv.FieldName), errors.ErrCodeValidationFailed)
			}
		case *string:
			if v == nil || *v == "" {
				return errors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s is required", fv.FieldName), errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MinLength(min int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok {
			if len(strings.TrimSpace(v)) < min {
				message := fmt.Sprintf("%s must be at least %d characters", fv.FieldName, min)
				return errors.NewValidationFieldError(fv.FieldName, message, errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MaxLength(max int) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok {
			if len(strings.TrimSpace(v)) > max {
				message := fmt.Sprintf("%s must not exceed %d characters", fv.FieldName, max)
				return errors.NewValidationFieldError(fv.FieldName, message, errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func (fv *FieldValidator) Email() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok && v != "" {
			if !emailPattern.MatchString(v) {
				return errors.NewValidationFieldError(fv.FieldName, "must be a valid email address", errors.ErrCodeInvalidEmail)
			}
		}
		return nil
	})
	return fv
}

// Password enforces the account-creation strength rules: at least 8
// characters with an upper-case letter, a lower-case letter and a digit.
func (fv *FieldValidator) Password() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		v, ok := value.(string)
		if !ok || v == "" {
			return nil
		}
		if len(v) < 8 {
			return errors.NewValidationFieldError(fv.FieldName, "password must be at least 8 characters long", errors.ErrCodeInvalidPassword)
		}
		var hasUpper, hasLower, hasDigit bool
		for _, r := range v {
			switch {
			case unicode.IsUpper(r):
				hasUpper = true
			case unicode.IsLower(r):
				hasLower = true
			case unicode.IsDigit(r):
				hasDigit = true
			}
		}
		if !hasUpper || !hasLower || !hasDigit {
			return errors.NewValidationFieldError(fv.FieldName,
				"password must contain at least one uppercase letter, one lowercase letter, and one number",
				errors.ErrCodeInvalidPassword)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) OneOf(allowed []string, code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(string); ok && v != "" {
			for _, a := range allowed {
				if v == a {
					return nil
				}
			}
			message := fmt.Sprintf("%s must be one of: %s", fv.FieldName, strings.Join(allowed, ", "))
			return errors.NewValidationFieldError(fv.FieldName, message, code)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) NotFuture() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *errors.AppError {
		if v, ok := value.(time.Time); ok {
			if v.After(time.Now()) {
				message := fmt.Sprintf("%s cannot be in the future", fv.FieldName)
				return errors.NewValidationFieldError(fv.FieldName, message, errors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Custom(validator func(interface{}) *errors.AppError) *FieldValidator {
	fv.Validators = append(fv.Validators, validator)
	return fv
}

func (v *ValidationBuilder) Validate() *errors.AppError {
	var validationErrors []errors.ValidationError

	for _, field := range v.fields {
		for _, validator := range field.Validators {
			if err := validator(field.Value); err != nil {
				if appErr, ok := errors.IsAppError(err); ok {
					if details, ok := appErr.Details.(errors.ValidationErrors); ok {
						validationErrors = append(validationErrors, details.Errors...)
					} else {
						validationErrors = append(validationErrors, errors.ValidationError{
							Field:   field.FieldName,
							Message: appErr.Message,
							Code:    string(appErr.Code),
						})
					}
				}
			}
		}
	}

	if len(validationErrors) > 0 {
		return errors.NewValidationError("Validation failed", errors.ErrCodeValidationFailed).
			WithDetails(errors.ValidationErrors{Errors: validationErrors})
	}

	return nil
}

// SanitizeInput trims whitespace and strips script tags from free-text
// fields before they are stored.
var scriptPattern = regexp.MustCompile(`(?is)<script\b.*?</script>`)

func SanitizeInput(input string) string {
	return scriptPattern.ReplaceAllString(strings.TrimSpace(input), "")
}
