// Package validation turns raw request input into typed values or a list of
// field errors. Rules are declared with `validate` struct tags and checked by
// go-playground/validator; fields are reported by their JSON or form names.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// Errors is returned when any input rule is violated. It lists every
// violation, not just the first one.
type Errors struct {
	Fields []FieldError
}

func (e *Errors) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *Errors) add(field, rule, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Rule: rule, Message: message})
}

func (e *Errors) has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

func (e *Errors) orNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

var (
	validate   = newValidator()
	digitsOnly = regexp.MustCompile(`^\d+$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	if err := v.RegisterValidation("positive_int", positiveInt); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("bcrypt_len", bcryptLen); err != nil {
		panic(err)
	}
	return v
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// positiveInt accepts digit-only strings whose value is at least 1.
func positiveInt(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !digitsOnly.MatchString(s) {
		return false
	}
	n, err := strconv.ParseInt(s, 10, 32)
	return err == nil && n >= 1
}

// MaxPasswordBytes is the longest input bcrypt hashes; it counts bytes, not
// characters.
const MaxPasswordBytes = 72

func bcryptLen(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxPasswordBytes
}

// Struct checks v against its validate tags.
func Struct(v any) error {
	errs := &Errors{}
	collect(errs, validate.Struct(v))
	return errs.orNil()
}

func collect(errs *Errors, err error) {
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.add("body", "invalid", err.Error())
		return
	}
	for _, fe := range verrs {
		field := fe.Field()
		if errs.has(field) {
			continue
		}
		errs.add(field, fe.Tag(), message(fe))
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "datetime":
		return "must be an ISO-8601 date-time"
	case "positive_int":
		return "must be a positive integer"
	case "bcrypt_len":
		return fmt.Sprintf("must be at most %d bytes", MaxPasswordBytes)
	default:
		return "is invalid"
	}
}

// Presence records which top-level keys a JSON object carried, so that an
// absent field can be told apart from an explicit null.
type Presence map[string]json.RawMessage

func (p Presence) Has(key string) bool {
	_, ok := p[key]
	return ok
}

func (p Presence) IsNull(key string) bool {
	raw, ok := p[key]
	return ok && bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// DecodeJSON decodes a JSON object body into dst and validates it. Fields
// listed in nonNullable are rejected when sent as an explicit null. An empty
// body is treated as an empty object.
func DecodeJSON(body []byte, dst any, nonNullable ...string) (Presence, error) {
	errs := &Errors{}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		body = []byte("{}")
	}

	var presence Presence
	if err := json.Unmarshal(body, &presence); err != nil || presence == nil {
		errs.add("body", "json", "must be a valid JSON object")
		return nil, errs
	}

	for _, key := range nonNullable {
		if presence.IsNull(key) {
			errs.add(key, "nullable", "must not be null")
		}
	}

	if err := json.Unmarshal(body, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			errs.add("body", "json", "must be a valid JSON object")
			return nil, errs
		}
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		errs.add(field, "type", "must be of type "+jsonType(typeErr.Type))
		return presence, errs
	}

	collect(errs, validate.Struct(dst))
	return presence, errs.orNil()
}

func jsonType(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Struct, reflect.Map:
		return "object"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "number"
	default:
		return t.String()
	}
}
