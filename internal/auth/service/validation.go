package service

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// MinimumAge is the youngest a user may be when registering.
const MinimumAge = 13

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// ValidationError reports request fields that failed validation, keyed by
// their JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "validation failed: " + strings.Join(names, ", ")
}

// NewValidator builds the request validator with the custom rules used by
// the auth endpoints. now is used by the age check.
func NewValidator(now func() time.Time) *validator.Validate {
	if now == nil {
		now = time.Now
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})

	_ = v.RegisterValidation("strongpwd", func(fl validator.FieldLevel) bool {
		var hasLower, hasUpper, hasDigit bool
		for _, r := range fl.Field().String() {
			switch {
			case unicode.IsLower(r):
				hasLower = true
			case unicode.IsUpper(r):
				hasUpper = true
			case unicode.IsDigit(r):
				hasDigit = true
			}
		}
		return hasLower && hasUpper && hasDigit
	})

	_ = v.RegisterValidation("dob", func(fl validator.FieldLevel) bool {
		_, err := ParseDateOfBirth(fl.Field().String())
		return err == nil
	})

	_ = v.RegisterValidation("minage", func(fl validator.FieldLevel) bool {
		years, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		dob, err := ParseDateOfBirth(fl.Field().String())
		if err != nil {
			return false
		}
		return AgeAt(dob, now()) >= years
	})

	return v
}

// ParseDateOfBirth accepts an RFC 3339 timestamp or a plain YYYY-MM-DD date.
func ParseDateOfBirth(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.New("invalid date of birth")
	}
	return t.UTC(), nil
}

// AgeAt returns the number of whole years between dob and now.
func AgeAt(dob, now time.Time) int {
	now = now.UTC()
	dob = dob.UTC()

	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}

// validateStruct runs v over in and converts failures into a
// *ValidationError with one human readable message per field.
func validateStruct(v *validator.Validate, in any) error {
	err := v.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "username":
		return "can only contain letters, numbers and underscores"
	case "strongpwd":
		return "must contain a lowercase letter, an uppercase letter and a number"
	case "dob":
		return "must be a date (YYYY-MM-DD)"
	case "minage":
		return "you must be at least " + fe.Param() + " years old"
	default:
		return "is invalid"
	}
}
