// Package validation holds the form policies the dashboards apply before a
// payload is sent to the CRM. The CRM remains authoritative.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/spec-kit/incident-portal/internal/domain"
	apperrors "github.com/spec-kit/incident-portal/pkg/util"
)

const defaultMinPasswordLength = 8

// Policy bundles the configurable rules.
type Policy struct {
	AllowedEmailDomain string
	MinPasswordLength  int
}

// Validator runs `validate` struct tags and single-field rules under one
// Policy. Besides the built-in tags it understands:
//
//	notblank      non-empty after trimming
//	emaildomain   address ends with the policy's domain (any domain when unset)
//	password      at least the policy's minimum number of characters
//	category, severity, status, role, availability
//	              a value the domain parsers accept
type Validator struct {
	validate *validator.Validate
	policy   Policy
}

// Rule checks one value against a tag expression, reported under Field.
type Rule struct {
	Field string
	Value any
	Tag   string
}

// FieldErrors maps field names to readable messages.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+e[field])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Details converts the errors into DomainError details.
func (e FieldErrors) Details() map[string]any {
	details := make(map[string]any, len(e))
	for field, msg := range e {
		details[field] = msg
	}
	return details
}

// AsDomainError converts FieldErrors into a VALIDATION_FAILED error. Any
// other error is treated as internal.
func AsDomainError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs FieldErrors
	if errors.As(err, &fieldErrs) {
		return apperrors.NewValidationError("validation failed", fieldErrs.Details())
	}
	return apperrors.NewInternalError(err)
}

// New builds a Validator for policy.
func New(policy Policy) *Validator {
	if policy.MinPasswordLength <= 0 {
		policy.MinPasswordLength = defaultMinPasswordLength
	}
	policy.AllowedEmailDomain = normalizeDomain(policy.AllowedEmailDomain)

	v := &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		policy:   policy,
	}
	v.validate.RegisterTagNameFunc(fieldName)

	must(v.validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}))
	must(v.validate.RegisterValidation("emaildomain", func(fl validator.FieldLevel) bool {
		if v.policy.AllowedEmailDomain == "" {
			return true
		}
		return strings.HasSuffix(strings.ToLower(strings.TrimSpace(fl.Field().String())), v.policy.AllowedEmailDomain)
	}))
	must(v.validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return utf8.RuneCountInString(fl.Field().String()) >= v.policy.MinPasswordLength
	}))
	registerParser(v.validate, "category", func(s string) error { _, err := domain.ParseCategory(s); return err })
	registerParser(v.validate, "severity", func(s string) error { _, err := domain.ParseSeverity(s); return err })
	registerParser(v.validate, "status", func(s string) error { _, err := domain.ParseStatus(s); return err })
	registerParser(v.validate, "role", func(s string) error { _, err := domain.ParseRole(s); return err })
	registerParser(v.validate, "availability", func(s string) error { _, err := domain.ParseAvailability(s); return err })
	return v
}

// Struct validates the tags of s. It returns FieldErrors, or nil.
func (v *Validator) Struct(s any) error {
	return v.translate(v.validate.Struct(s), "")
}

// Fields checks each rule and collects every failure.
func (v *Validator) Fields(rules ...Rule) error {
	errs := FieldErrors{}
	for _, rule := range rules {
		err := v.translate(v.validate.Var(rule.Value, rule.Tag), rule.Field)
		var fieldErrs FieldErrors
		switch {
		case err == nil:
		case errors.As(err, &fieldErrs):
			for field, msg := range fieldErrs {
				errs[field] = msg
			}
		default:
			return err
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Policy returns the rules the validator was built with.
func (v *Validator) Policy() Policy {
	return v.policy
}

func (v *Validator) translate(err error, field string) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	errs := FieldErrors{}
	for _, fe := range verrs {
		name := field
		if name == "" {
			name = fe.Field()
			if i := strings.IndexByte(name, '['); i >= 0 {
				name = name[:i]
			}
		}
		if _, seen := errs[name]; !seen {
			errs[name] = v.message(fe)
		}
	}
	return errs
}

func (v *Validator) message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "emaildomain":
		return "must end with " + v.policy.AllowedEmailDomain
	case "password":
		return fmt.Sprintf("must be at least %d characters", v.policy.MinPasswordLength)
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at least %s entries", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "category", "severity", "status", "role", "availability":
		return fmt.Sprintf("unknown %s %q", fe.Tag(), fe.Value())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		return "is invalid"
	}
}

func registerParser(v *validator.Validate, tag string, parse func(string) error) {
	must(v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return parse(fl.Field().String()) == nil
	}))
}

// fieldName reports json or query tag names, falling back to snake_case.
func fieldName(f reflect.StructField) string {
	for _, key := range []string{"json", "query"} {
		name := strings.Split(f.Tag.Get(key), ",")[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return snakeCase(f.Name)
}

func snakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func normalizeDomain(suffix string) string {
	suffix = strings.ToLower(strings.TrimSpace(suffix))
	if suffix != "" && !strings.HasPrefix(suffix, "@") {
		suffix = "@" + suffix
	}
	return suffix
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
