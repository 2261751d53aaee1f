// Package library reads library files into models.Library values and emits
// migrated libraries in one of the supported output shapes.
package library

import (
	"fmt"
	"log/slog"

	"github.com/electrovir/itunes-library-migration-assistant/internal/apperr"
	"github.com/electrovir/itunes-library-migration-assistant/internal/codec"
	"github.com/electrovir/itunes-library-migration-assistant/internal/models"
	"github.com/electrovir/itunes-library-migration-assistant/internal/schema"
	"github.com/electrovir/itunes-library-migration-assistant/internal/storage"
)

// ReadOptions controls how a library is read.
type ReadOptions struct {
	// Validate runs the schema validator before the value is accepted.
	Validate bool
	// Name labels the root of validation error paths.
	Name   string
	Logger *slog.Logger
}

// DefaultReadOptions returns options with validation enabled.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{Validate: true}
}

func (o ReadOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// ReadString parses and optionally validates a serialized library.
func ReadString(text string, opts ReadOptions) (*models.Library, error) {
	logger := opts.logger()

	logger.Info("Parsing started...")
	value, err := codec.Parse(text)
	if err != nil {
		return nil, &apperr.ParseError{Cause: err}
	}
	logger.Info("Parsing finished")

	if opts.Validate {
		logger.Info("Validation started...")
		if err := schema.Check(value, opts.Name); err != nil {
			return nil, err
		}
		logger.Info("Validation finished")
	}

	dict, ok := value.(map[string]any)
	if !ok {
		return nil, &apperr.ParseError{Cause: fmt.Errorf("root element is %T, not a dictionary", value)}
	}
	return models.FromDict(dict), nil
}

// ReadFile reads the library stored at path. Validation errors are rooted at
// the file's base name.
func ReadFile(path string, opts ReadOptions) (*models.Library, error) {
	store, name, err := storage.ForFile(path)
	if err != nil {
		return nil, &apperr.ParseError{Cause: err}
	}
	data, err := store.Read(name)
	if err != nil {
		return nil, &apperr.ParseError{Cause: err}
	}
	if opts.Name == "" {
		opts.Name = name
	}
	return ReadString(string(data), opts)
}
