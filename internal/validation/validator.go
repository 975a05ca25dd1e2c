// Odyssey - Collaborative Travel Mapping Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/odyssey

package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/odyssey/internal/models"
)

// CodeValidation is the APIError code for every validation failure.
const CodeValidation = "VALIDATION_ERROR"

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is one failed constraint.
type FieldError struct {
	Field   string      `json:"field"`
	Tag     string      `json:"tag"`
	Param   string      `json:"param,omitempty"`
	Value   interface{} `json:"value,omitempty"`
	Message string      `json:"message"`
}

// RequestValidationError lists every failed constraint of one struct.
type RequestValidationError struct {
	Fields []FieldError
}

// Error joins the field messages.
func (ve *RequestValidationError) Error() string {
	if len(ve.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(ve.Fields))
	for i, f := range ve.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

// ToAPIError flattens the failure for the preview server. A single failure
// keeps its message; several are prefixed with their field names.
func (ve *RequestValidationError) ToAPIError() *models.APIError {
	switch len(ve.Fields) {
	case 0:
		return &models.APIError{Code: CodeValidation, Message: "Validation failed"}
	case 1:
		f := ve.Fields[0]
		return &models.APIError{
			Code:    CodeValidation,
			Message: f.Message,
			Details: map[string]interface{}{"field": f.Field, "tag": f.Tag, "value": f.Value},
		}
	}

	msgs := make([]string, len(ve.Fields))
	for i, f := range ve.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return &models.APIError{
		Code:    CodeValidation,
		Message: strings.Join(msgs, "; "),
		Details: map[string]interface{}{"fields": ve.Fields},
	}
}

// GetValidator returns the shared validator with the custom tags registered.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Registration only fails for empty tags or nil funcs.
		_ = validate.RegisterValidation("maptype", func(fl validator.FieldLevel) bool {
			return models.MapType(fl.Field().String()).Valid()
		})
		_ = validate.RegisterValidation("category", func(fl validator.FieldLevel) bool {
			_, ok := models.ParseCategory(fl.Field().String())
			return ok
		})
		_ = validate.RegisterValidation("sortkey", oneOf(SortKeys...))
		_ = validate.RegisterValidation("sortorder", oneOf("asc", "desc"))
	})
	return validate
}

// SortKeys are the list sort keys accepted by the paginated points endpoint.
var SortKeys = []string{"date", "city", "country"}

func oneOf(allowed ...string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		for _, a := range allowed {
			if v == a {
				return true
			}
		}
		return false
	}
}

// ValidateStruct returns nil or the struct's failed constraints.
func ValidateStruct(s interface{}) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &RequestValidationError{Fields: []FieldError{{Field: "unknown", Tag: "unknown", Message: err.Error()}}}
	}

	out := &RequestValidationError{Fields: make([]FieldError, len(fieldErrs))}
	for i, fe := range fieldErrs {
		out.Fields[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Value:   fe.Value(),
			Message: message(fe),
		}
	}
	return out
}

// messages holds per-tag templates; {f} is the field and {p} the tag param.
var messages = map[string]string{
	"required":  "{f} is required",
	"latitude":  "{f} must be a valid latitude (-90 to 90)",
	"longitude": "{f} must be a valid longitude (-180 to 180)",
	"hexcolor":  "{f} must be a hex color such as #3B82F6",
	"maptype":   "{f} must be one of: Collaborative, Competitive, Personal",
	"category":  "{f} must be a known point category",
	"sortkey":   "{f} must be one of: date, city, country",
	"sortorder": "{f} must be asc or desc",
	"oneof":     "{f} must be one of: {p}",
	"gte":       "{f} must be greater than or equal to {p}",
	"lte":       "{f} must be less than or equal to {p}",
	"gt":        "{f} must be greater than {p}",
	"lt":        "{f} must be less than {p}",
	"nefield":   "{f} must be different from {p}",
	"min":       "{f} must be at least {p}",
	"max":       "{f} must be at most {p}",
}

func message(fe validator.FieldError) string {
	tmpl, ok := messages[fe.Tag()]
	if !ok {
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
	if (fe.Tag() == "min" || fe.Tag() == "max") && fe.Kind().String() == "string" {
		tmpl += " characters"
	}
	return strings.NewReplacer("{f}", fe.Field(), "{p}", fe.Param()).Replace(tmpl)
}
