package domain

import (
	"errors"
	"fmt"
	"html"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

var (
	validatorOnce sync.Once
	validatorInst *validator.Validate
)

// getValidator lazily initializes and returns a shared validator instance with
// the job enumerations registered as custom rules.
func getValidator() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInst = validator.New()
		validatorInst.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = validatorInst.RegisterValidation("industry", func(fl validator.FieldLevel) bool {
			return ValidIndustries[Industry(fl.Field().String())]
		})
		_ = validatorInst.RegisterValidation("job_type", func(fl validator.FieldLevel) bool {
			return ValidJobTypes[JobType(fl.Field().String())]
		})
		_ = validatorInst.RegisterValidation("education", func(fl validator.FieldLevel) bool {
			return ValidEducationLevels[EducationLevel(fl.Field().String())]
		})
		_ = validatorInst.RegisterValidation("experience", func(fl validator.FieldLevel) bool {
			return ValidExperienceBands[ExperienceBand(fl.Field().String())]
		})
	})
	return validatorInst
}

// ValidateStruct validates a struct using go-playground/validator and maps
// errors into ValidationErrors.
func ValidateStruct(model interface{}) error {
	err := getValidator().Struct(model)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	mapped := make(ValidationErrors, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		mapped = append(mapped, ValidationError{
			Field:   fieldErr.Field(),
			Message: formatValidationMessage(fieldErr),
			Tag:     fieldErr.Tag(),
		})
	}
	return mapped
}

func formatValidationMessage(err validator.FieldError) string {
	field := err.Field()
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("Please enter %s", strings.ToLower(field))
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters", field, err.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, err.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, err.Param())
	case "email":
		return "Please add a valid email address"
	case "industry":
		return "Please select correct options for industry"
	case "job_type":
		return "Please select correct options for job type"
	case "education":
		return "Please select correct options for education"
	case "experience":
		return "Please select correct options for experience"
	default:
		return err.Error()
	}
}

// Validate checks the job against its schema constraints.
func (j *Job) Validate() error {
	return ValidateStruct(j)
}

// SecuritySanitizer provides HTML sanitization helpers.
type SecuritySanitizer struct {
	policy *bluemonday.Policy
}

func NewSecuritySanitizer() *SecuritySanitizer {
	return &SecuritySanitizer{policy: bluemonday.StrictPolicy()}
}

func NewUGCSanitizer() *SecuritySanitizer {
	return &SecuritySanitizer{policy: bluemonday.UGCPolicy()}
}

func (s *SecuritySanitizer) SanitizeString(input string) string {
	return s.policy.Sanitize(input)
}

var (
	strictSanitizer = NewSecuritySanitizer()
	ugcSanitizer    = NewUGCSanitizer()
)

// SanitizePlain strips all markup and surrounding whitespace. The result is
// plain text, so the entities the policy emits are decoded again.
func SanitizePlain(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictSanitizer.SanitizeString(s)))
}

// SanitizeRich keeps safe formatting markup only.
func SanitizeRich(s string) string {
	return strings.TrimSpace(ugcSanitizer.SanitizeString(s))
}

// Sanitize strips markup from plain-text fields and unsafe markup from the
// description. It runs once on caller input, never on stored values.
func (j *Job) Sanitize() {
	j.Title = SanitizePlain(j.Title)
	j.Company = SanitizePlain(j.Company)
	j.Address = SanitizePlain(j.Address)
	j.Email = strings.TrimSpace(j.Email)
	j.Description = SanitizeRich(j.Description)
}
