// Package api is the single entry point of the migration pipeline: it checks
// the input, reads the library, rewrites it and emits the result.
package api

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/electrovir/itunes-library-migration-assistant/internal/library"
	"github.com/electrovir/itunes-library-migration-assistant/internal/migration"
	"github.com/electrovir/itunes-library-migration-assistant/internal/models"
	"github.com/electrovir/itunes-library-migration-assistant/internal/storage"
)

// Service runs migrations with a shared logger and file checker.
type Service struct {
	logger *slog.Logger
	files  migration.FileChecker
	store  storage.Provider
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithFiles replaces the checker used when checkFiles is enabled.
func WithFiles(files migration.FileChecker) ServiceOption {
	return func(s *Service) { s.files = files }
}

// WithStore replaces the storage migrated files are written to.
func WithStore(store storage.Provider) ServiceOption {
	return func(s *Service) { s.store = store }
}

// NewService creates a service logging to logger, or to slog.Default when nil.
func NewService(logger *slog.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{logger: logger, files: migration.OSFiles{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Migrate runs the pipeline with a default service.
func Migrate(ctx context.Context, in Input) (*Result, error) {
	return NewService(nil).Migrate(ctx, in)
}

// Migrate validates in, reads and migrates the library and emits it in the
// requested shape. Every failure is terminal.
func (s *Service) Migrate(ctx context.Context, in Input) (*Result, error) {
	if err := ValidateInput(in); err != nil {
		return nil, err
	}
	settings := in.Options.Resolve()
	logger := s.loggerFor(settings)

	kind := in.OutputType
	if kind == "" {
		kind = library.WriteToFile
	}

	rules, err := migration.ParseRules(in.ReplacePaths)
	if err != nil {
		return nil, err
	}

	lib, err := s.read(in.LibraryFilePath, settings, logger)
	if err != nil {
		return nil, err
	}

	mopts := migration.DefaultOptions()
	mopts.CheckReplacementPaths = settings.CheckReplacementPaths
	mopts.CheckFiles = settings.CheckFiles
	mopts.Files = s.files
	mopts.ExtraTrackProcessing = in.ExtraTrackProcessing
	mopts.Logger = logger

	res, err := migration.Migrate(ctx, lib, rules, mopts)
	if err != nil {
		return nil, err
	}

	out, err := library.Emit(res.Library, kind, library.EmitOptions{
		LibraryPath: in.LibraryFilePath,
		Store:       s.store,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}
	return &Result{Output: out, Diagnostics: res.Diagnostics}, nil
}

// Validate reads the library at path and reports every schema violation.
func (s *Service) Validate(_ context.Context, path string) (*models.Library, error) {
	return s.read(path, DefaultSettings(), s.logger)
}

func (s *Service) read(path string, settings Settings, logger *slog.Logger) (*models.Library, error) {
	opts := library.DefaultReadOptions()
	opts.Validate = settings.ValidationEnabled
	opts.Logger = logger
	lib, err := library.ReadFile(path, opts)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lib, nil
}

func (s *Service) loggerFor(settings Settings) *slog.Logger {
	if !settings.LoggingEnabled {
		return slog.New(slog.DiscardHandler)
	}
	return s.logger
}
