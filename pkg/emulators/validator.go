// ESide
// Copyright (c) 2026 The ESide Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of ESide.
//
// ESide is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// ESide is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with ESide.  If not, see <http://www.gnu.org/licenses/>.

package emulators

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator checks built definitions using struct tags.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("regex", validateRegex)
	_ = v.RegisterValidation("glob", validateGlob)

	return &Validator{validate: v}
}

var DefaultValidator = NewValidator()

// Validate returns a *ValidationError listing every failed field.
func (v *Validator) Validate(def *Definition) error {
	if err := v.validate.Struct(def); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return NewValidationError(verrs)
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

func validateRegex(fl validator.FieldLevel) bool {
	_, err := regexp.Compile(fl.Field().String())
	return err == nil
}

func validateGlob(fl validator.FieldLevel) bool {
	_, err := path.Match(fl.Field().String(), "")
	return err == nil
}

// ValidationError wraps validator errors with readable messages.
type ValidationError struct {
	Fields []FieldError
}

type FieldError struct {
	Value   any
	Field   string
	Tag     string
	Message string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.Fields))
	for i, fe := range e.Fields {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, "; ")
}

func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	ve := &ValidationError{Fields: make([]FieldError, len(errs))}
	for i, fe := range errs {
		ve.Fields[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Value:   fe.Value(),
			Message: formatFieldError(fe),
		}
	}
	return ve
}

var fieldKeys = map[string]string{
	"ID":            "section name",
	"SystemName":    "system_name",
	"InfoURL":       "info_url",
	"GUIRunPattern": "gui_run_pattern",
	"ExePaths":      "exe_paths",
	"GUIExePaths":   "gui_exe_paths",
	"RomsPaths":     "roms_paths",
	"NameRemovers":  "rom_name_remove",
	"Ignore":        "roms_ignore",
	"Template":      "run_pattern",
	"Extensions":    "roms_extensions",
}

// formatFieldError names the config key rather than the Go field.
func formatFieldError(fe validator.FieldError) string {
	field := fe.Field()
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = field[:i]
	}
	if key, ok := fieldKeys[field]; ok {
		field = key
	}

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must have at least " + fe.Param() + " item"
	case "url":
		return field + " must be a valid URL"
	case "regex":
		return fmt.Sprintf("%s: invalid regular expression %q", field, fe.Value())
	case "glob":
		return fmt.Sprintf("%s: invalid glob %q", field, fe.Value())
	case "excludesall":
		return field + " must not contain path separators"
	default:
		return field + " failed " + fe.Tag() + " validation"
	}
}
