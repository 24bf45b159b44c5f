package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

// embeddedSegment names anonymous struct fields in validator namespaces so
// they can be dropped from issue paths.
const embeddedSegment = "_"

// StructSchema validates structs through their `validate` tags.
type StructSchema struct {
	validate *validator.Validate
	trans    ut.Translator
}

// NewStructSchema builds a schema with English messages, json/form names in
// paths and the custom "password" rule.
func NewStructSchema() (*StructSchema, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)

	locale := en.New()
	trans, _ := ut.New(locale, locale).GetTranslator("en")
	if err := entranslations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, fmt.Errorf("register translations: %w", err)
	}
	if err := registerPassword(v, trans); err != nil {
		return nil, err
	}
	return &StructSchema{validate: v, trans: trans}, nil
}

// SafeParse checks a struct or pointer to struct. Anything else is misuse and
// comes back as an error.
func (s *StructSchema) SafeParse(data any) (Issues, error) {
	err := s.validate.Struct(data)
	if err == nil {
		return nil, nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, err
	}
	issues := make(Issues, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		issues = append(issues, Issue{
			Message: fe.Translate(s.trans),
			Path:    namespacePath(fe.Namespace()),
		})
	}
	return issues, nil
}

func fieldName(f reflect.StructField) string {
	if f.Anonymous {
		return embeddedSegment
	}
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

// namespacePath turns "Req.items[0].name" into ["items", "0", "name"].
func namespacePath(ns string) []string {
	segments := strings.Split(ns, ".")
	if len(segments) > 0 {
		segments = segments[1:] // root type name
	}
	path := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg == embeddedSegment {
			continue
		}
		name, rest, indexed := strings.Cut(seg, "[")
		if name != "" {
			path = append(path, name)
		}
		for indexed {
			var key string
			key, rest, _ = strings.Cut(rest, "]")
			path = append(path, key)
			_, rest, indexed = strings.Cut(rest, "[")
		}
	}
	return path
}

func registerPassword(v *validator.Validate, trans ut.Translator) error {
	if err := v.RegisterValidation("password", strongPassword); err != nil {
		return fmt.Errorf("register password rule: %w", err)
	}
	return v.RegisterTranslation("password", trans,
		func(t ut.Translator) error {
			return t.Add("password", "{0} must be at least 8 characters and mix upper case, lower case, digits and symbols", true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T("password", fe.Field())
			return msg
		},
	)
}

func strongPassword(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if utf8.RuneCountInString(s) < 8 {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}
