// Package validation turns validator struct-tag failures into per-field messages
// that forms can render next to the offending input.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Errors maps a form field (its JSON name) to a human readable message.
type Errors struct {
	Fields map[string]string
}

func (e *Errors) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a message for field, keeping the first message per field.
func (e *Errors) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

// Err returns nil when no field failed.
func (e *Errors) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Struct validates s and returns *Errors (or nil).
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate %T: %w", s, err)
	}
	out := &Errors{}
	for _, fe := range fieldErrs {
		out.Add(fe.Field(), Message(fe.StructField(), fe.Tag(), fe.Param()))
	}
	return out
}

// Message renders the message for one failed tag.
func Message(label, tag, param string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", label)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", label, param)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", label, param)
	case "url", "datauri", "url|datauri":
		return fmt.Sprintf("%s must be a URL or a data URL", label)
	case "e164":
		return fmt.Sprintf("%s must be a phone number in international format", label)
	default:
		return fmt.Sprintf("Field '%s' failed on the '%s' tag", label, tag)
	}
}

// As unwraps err into *Errors.
func As(err error) (*Errors, bool) {
	var ve *Errors
	ok := errors.As(err, &ve)
	return ve, ok
}
