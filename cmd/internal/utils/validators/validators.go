package validators

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
)

var (
	hasSpaces  = regexp.MustCompile(`\s+`)
	looseEmail = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// New returns a validator with the custom tags registered and field names
// reported by their json name.
func New() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(jsonName)

	_ = validate.RegisterValidation("notblank", NotBlank)
	_ = validate.RegisterValidation("nospaces", NoWhiteSpaces)
	_ = validate.RegisterValidation("emailorblank", EmailOrBlank, true)
	return validate
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// NotBlank rejects strings that are empty or whitespace only.
func NotBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			return false
		}
		field = field.Elem()
	}
	if field.Kind() != reflect.String {
		log.Warnf("validator 'notblank' applied to non-string type: %s", field.Kind().String())
		return false
	}
	return strings.TrimSpace(field.String()) != ""
}

// NoWhiteSpaces returns false if the string contains any whitespace (rejecting the user input).
func NoWhiteSpaces(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}

	str := field.String()
	return !hasSpaces.MatchString(str)
}

// EmailOrBlank accepts an empty string, which clears the email, or a
// loosely shaped address (something@something.tld).
func EmailOrBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			return true
		}
		field = field.Elem()
	}
	if field.Kind() != reflect.String {
		log.Warnf("validator 'emailorblank' applied to non-string type: %s", field.Kind().String())
		return false
	}

	str := strings.TrimSpace(field.String())
	return str == "" || looseEmail.MatchString(str)
}
