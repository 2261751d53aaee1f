package internal

import (
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/electrovir/itunes-library-migration-assistant/internal/api"
	"github.com/electrovir/itunes-library-migration-assistant/internal/library"
	"github.com/electrovir/itunes-library-migration-assistant/internal/migration"
	pkgconfig "github.com/electrovir/itunes-library-migration-assistant/pkg/config"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config represents the application configuration.
type Config struct {
	Log       LogConfig           `yaml:"log" toml:"log" json:"log"`
	Migration MigrationConfig     `yaml:"migration" toml:"migration" json:"migration"`
	Rules     []migration.RawRule `yaml:"rules" toml:"rules" json:"rules"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if err := c.Migration.Validate(); err != nil {
		return fmt.Errorf("migration: %w", err)
	}
	return validation.Validate(c.Rules)
}

// Input converts the configuration into a migration request.
func (c *Config) Input() api.Input {
	m := c.Migration
	return api.Input{
		LibraryFilePath: m.Library,
		ReplacePaths:    c.Rules,
		OutputType:      m.Output,
		Options: &api.Options{
			ValidationEnabled:     api.Bool(m.Validate),
			LoggingEnabled:        api.Bool(!m.Quiet),
			CheckReplacementPaths: api.Bool(m.CheckReplacementPaths),
			CheckFiles:            api.Bool(m.CheckFiles),
		},
	}
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  slog.Level `yaml:"level" toml:"level" json:"level"`
	Format string     `yaml:"format" toml:"format" json:"format"`
}

// Validate validates the logging configuration.
func (c *LogConfig) Validate() error {
	if c.Format == "" {
		c.Format = LogFormatText
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Format, validation.In(LogFormatText, LogFormatJSON)),
	)
}

// MigrationConfig describes which library to migrate and how.
type MigrationConfig struct {
	Library               string             `yaml:"library" toml:"library" json:"library"`
	Output                library.OutputKind `yaml:"output" toml:"output" json:"output"`
	Validate              bool               `yaml:"validate" toml:"validate" json:"validate"`
	Quiet                 bool               `yaml:"quiet" toml:"quiet" json:"quiet"`
	CheckReplacementPaths bool               `yaml:"check_replacement_paths" toml:"check_replacement_paths" json:"check_replacement_paths"`
	CheckFiles            bool               `yaml:"check_files" toml:"check_files" json:"check_files"`
	// Watch re-runs the migration whenever the library file changes.
	Watch bool `yaml:"watch" toml:"watch" json:"watch"`
}

// Validate validates the migration configuration. The library path and the
// rules are checked by the migration itself so flags can still fill them in.
func (c *MigrationConfig) Validate() error {
	if c.Output == "" {
		c.Output = library.WriteToFile
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Output, validation.By(func(any) error {
			if !c.Output.Valid() {
				return fmt.Errorf("must be one of %v", library.OutputKinds)
			}
			return nil
		})),
	)
}

// RulesFile is the layout of a standalone rules file.
type RulesFile struct {
	Rules []migration.RawRule `yaml:"rules" toml:"rules" json:"rules"`
}

// Validate requires at least one well-formed rule.
func (f *RulesFile) Validate() error {
	return validation.ValidateStruct(f,
		validation.Field(&f.Rules, validation.Required),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  slog.LevelInfo,
			Format: LogFormatText,
		},
		Migration: MigrationConfig{
			Output:                library.WriteToFile,
			Validate:              true,
			CheckReplacementPaths: true,
		},
	}
}

// LoadRules reads a YAML, TOML or JSON rules file. Rules are taken literally:
// locations may contain $.
func LoadRules(path string) ([]migration.RawRule, error) {
	var f RulesFile
	if err := pkgconfig.LoadRaw(path, &f); err != nil {
		return nil, err
	}
	return f.Rules, nil
}
