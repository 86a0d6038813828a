// Sparkify - Song Play Star Schema ETL
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sparkify

// Package validation provides struct validation using go-playground/validator v10.
//
// It holds a thread-safe singleton validator configured to report field names
// by their json (or koanf) tag, so a missing catalog key is reported as
// "artist_name" rather than the Go field name. It is used for field-presence
// checks on decoded input records and for configuration validation.
//
//	type rawSong struct {
//	    SongID *string `json:"song_id" validate:"required"`
//	}
//
//	if err := validation.ValidateStruct(&raw); err != nil {
//	    logging.Warn().Strs("missing", err.Fields()).Msg("Malformed record")
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is a single failed validation rule.
type FieldError struct {
	field   string
	tag     string
	param   string
	message string
}

// Field returns the tag name of the field that failed validation.
func (e *FieldError) Field() string {
	return e.field
}

// Tag returns the validation tag that failed.
func (e *FieldError) Tag() string {
	return e.tag
}

// Param returns the parameter for the validation tag (e.g., "abort" for "oneof=continue abort").
func (e *FieldError) Param() string {
	return e.param
}

// Error returns a human-readable error message.
func (e *FieldError) Error() string {
	return e.message
}

// StructError collects every failed rule for one struct.
type StructError struct {
	errors []FieldError
}

// Errors returns the individual field errors.
func (se *StructError) Errors() []FieldError {
	return se.errors
}

// Fields returns the names of all fields that failed, in validation order.
func (se *StructError) Fields() []string {
	fields := make([]string, len(se.errors))
	for i := range se.errors {
		fields[i] = se.errors[i].field
	}
	return fields
}

// Error implements the error interface.
func (se *StructError) Error() string {
	if len(se.errors) == 0 {
		return "validation failed"
	}

	messages := make([]string, len(se.errors))
	for i := range se.errors {
		messages[i] = se.errors[i].message
	}
	return strings.Join(messages, "; ")
}

// GetValidator returns the singleton validator instance.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(tagName)
	})

	return validate
}

// tagName reports a field by its json tag, then its koanf tag, then its Go name.
func tagName(fld reflect.StructField) string {
	for _, key := range []string{"json", "koanf"} {
		name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

// ValidateStruct validates s using the singleton validator.
// Returns nil if validation passes.
func ValidateStruct(s interface{}) *StructError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &StructError{
			errors: []FieldError{{field: "unknown", tag: "unknown", message: err.Error()}},
		}
	}

	fieldErrors := make([]FieldError, len(validationErrs))
	for i, fieldErr := range validationErrs {
		fieldErrors[i] = FieldError{
			field:   fieldErr.Field(),
			tag:     fieldErr.Tag(),
			param:   fieldErr.Param(),
			message: translateError(fieldErr),
		}
	}

	return &StructError{errors: fieldErrors}
}

// errorMessageTemplates maps validation tags to message templates.
var errorMessageTemplates = map[string]string{
	"required":  "%s is required",
	"latitude":  "%s must be a valid latitude (-90 to 90)",
	"longitude": "%s must be a valid longitude (-180 to 180)",
	"url":       "%s must be a valid URL",
}

// errorMessageWithParam maps validation tags to templates that include the param.
var errorMessageWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"min":   "%s must be at least %s",
	"max":   "%s must be at most %s",
}

// translateError converts a validator.FieldError to a human-readable message.
func translateError(fe validator.FieldError) string {
	if template, ok := errorMessageTemplates[fe.Tag()]; ok {
		return fmt.Sprintf(template, fe.Field())
	}
	if template, ok := errorMessageWithParam[fe.Tag()]; ok {
		return fmt.Sprintf(template, fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}
