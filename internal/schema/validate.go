package schema

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/electrovir/itunes-library-migration-assistant/internal/apperr"
	"github.com/electrovir/itunes-library-migration-assistant/internal/models"
)

// Check validates a decoded library dictionary and returns a single
// *apperr.ValidationErrors listing every violation, or nil.
// rootName labels the root of every reported path, usually the file name.
func Check(value any, rootName string) error {
	if rootName == "" {
		rootName = "whole library"
	}
	errs := Validate(value, LibrarySchema, []string{rootName})
	if len(errs) > 0 {
		return &apperr.ValidationErrors{Errors: errs}
	}
	return nil
}

// Validate walks value against the named schema and accumulates every
// violation. path holds the field names leading to value, value's own label
// included. Validate never stops at the first problem.
func Validate(value any, schemaName string, path []string) []apperr.PathError {
	label := "value"
	if len(path) > 0 {
		label = path[len(path)-1]
	}

	s, ok := Lookup(schemaName)
	if !ok {
		return []apperr.PathError{{
			Message: fmt.Sprintf("No schema registered under %q for %s", schemaName, label),
			Path:    path,
		}}
	}

	if value == nil {
		return []apperr.PathError{{Message: label + " does not exist.", Path: path}}
	}
	dict, ok := value.(map[string]any)
	if !ok {
		return []apperr.PathError{{
			Message: fmt.Sprintf("%s is not an object: %v", label, value),
			Path:    path,
		}}
	}

	var (
		errs         []apperr.PathError
		invalid      []string
		unregistered []string
		missing      []string
	)

	for _, key := range slices.Sorted(maps.Keys(dict)) {
		v := dict[key]
		field, known := s.Fields[key]
		if !known {
			unregistered = append(unregistered, key)
			continue
		}
		if !matches(field.Kind, v) {
			invalid = append(invalid, fmt.Sprintf("%s: expected %s, got %s", key, field.Kind, kindOf(v)))
			continue
		}
		if field.Kind != Object {
			continue
		}
		child, ok := s.Children[key]
		if !ok {
			errs = append(errs, apperr.PathError{
				Message: fmt.Sprintf("Missing validation basis for %s key in %s", key, label),
				Path:    path,
			})
			continue
		}
		errs = append(errs, validateElements(v, child, slices.Concat(path, []string{key}))...)
	}

	for _, key := range slices.Sorted(maps.Keys(s.Fields)) {
		if _, present := dict[key]; !present && s.Fields[key].Required {
			missing = append(missing, key)
		}
	}

	var sections []string
	if len(invalid) > 0 {
		sections = append(sections, fmt.Sprintf("Invalid %s keys:\n\t\t%s", s.Name, strings.Join(invalid, "\n\t\t")))
	}
	if len(missing) > 0 {
		sections = append(sections, fmt.Sprintf("Missing %s keys:\n\t\t%s", s.Name, strings.Join(missing, ", ")))
	}
	if len(unregistered) > 0 {
		sections = append(sections, fmt.Sprintf("Missing %s validation for keys:\n\t\t%s", s.Name, strings.Join(unregistered, ", ")))
	}
	if len(sections) > 0 {
		subject := label
		if name, ok := dict["Name"].(string); ok && name != "" {
			subject = fmt.Sprintf("%s (%s)", label, name)
		}
		errs = append(errs, apperr.PathError{
			Message: fmt.Sprintf("%s errors:\n\t%s", subject, strings.Join(sections, "\n\t")),
			Path:    path,
		})
	}

	return errs
}

// validateElements applies the child schema to every element of a dictionary
// or array value.
func validateElements(v any, child string, path []string) []apperr.PathError {
	var errs []apperr.PathError
	switch c := v.(type) {
	case map[string]any:
		for _, k := range slices.Sorted(maps.Keys(c)) {
			errs = append(errs, Validate(c[k], child, slices.Concat(path, []string{k}))...)
		}
	case []any:
		for i, elem := range c {
			errs = append(errs, Validate(elem, child, slices.Concat(path, []string{strconv.Itoa(i)}))...)
		}
	}
	return errs
}

func matches(k Kind, v any) bool {
	switch k {
	case String:
		_, ok := v.(string)
		return ok
	case Number:
		_, ok := models.AsNumber(v)
		return ok
	case Boolean:
		_, ok := v.(bool)
		return ok
	case Object:
		switch v.(type) {
		case map[string]any, []any:
			return true
		}
		return false
	case Date:
		_, ok := v.(time.Time)
		return ok
	case Data:
		_, ok := v.([]byte)
		return ok
	}
	return false
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "undefined"
	case string:
		return String.String()
	case bool:
		return Boolean.String()
	case time.Time:
		return Date.String()
	case []byte:
		return Data.String()
	case map[string]any, []any:
		return Object.String()
	}
	if _, ok := models.AsNumber(v); ok {
		return Number.String()
	}
	return fmt.Sprintf("%T", v)
}
