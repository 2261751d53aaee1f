package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/electrovir/itunes-library-migration-assistant/internal/apperr"
	"github.com/electrovir/itunes-library-migration-assistant/internal/migration"
)

// ValidateInput checks the boundary preconditions of Migrate. The first
// failing property is returned as an *apperr.InputError.
func ValidateInput(in Input) error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.LibraryFilePath,
			validation.Required.Error("Missing path."),
			validation.By(fileExists),
		),
		validation.Field(&in.ReplacePaths,
			validation.Required.Error("No paths given."),
			validation.By(wellFormedRules),
		),
		validation.Field(&in.OutputType,
			validation.By(func(v any) error {
				if k := in.OutputType; k != "" && !k.Valid() {
					return fmt.Errorf("Unrecognized value: %s", k)
				}
				return nil
			}),
		),
	)
	if err == nil {
		return nil
	}

	var fields validation.Errors
	if !errors.As(err, &fields) {
		return err
	}
	// Report properties in the order a caller fills them in.
	order := []string{"libraryFilePath", "replacePaths", "outputType"}
	for _, name := range slices.Concat(order, slices.Sorted(maps.Keys(fields))) {
		if ferr, ok := fields[name]; ok {
			return &apperr.InputError{Property: name, Reason: ferr.Error()}
		}
	}
	return err
}

func fileExists(v any) error {
	path, _ := v.(string)
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("File does not exist: %q.", path)
	}
	if info.IsDir() {
		return fmt.Errorf("Path is a directory: %q.", path)
	}
	return nil
}

func wellFormedRules(v any) error {
	rules, _ := v.([]migration.RawRule)
	var invalid []migration.RawRule
	for _, r := range rules {
		if r.Validate() != nil {
			invalid = append(invalid, r)
		}
	}
	if len(invalid) == 0 {
		return nil
	}
	data, err := json.MarshalIndent(invalid, "", "    ")
	if err != nil {
		return err
	}
	return errors.New("Invalid paths encountered:\n" + strings.TrimSpace(string(data)))
}
