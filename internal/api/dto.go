package api

import (
	"github.com/electrovir/itunes-library-migration-assistant/internal/library"
	"github.com/electrovir/itunes-library-migration-assistant/internal/migration"
	"github.com/electrovir/itunes-library-migration-assistant/internal/models"
)

// Input is the request accepted by Migrate.
type Input struct {
	LibraryFilePath string              `json:"libraryFilePath"`
	ReplacePaths    []migration.RawRule `json:"replacePaths"`
	// OutputType defaults to write-to-file.
	OutputType library.OutputKind `json:"outputType,omitempty"`
	Options    *Options           `json:"options,omitempty"`
	// ExtraTrackProcessing runs on every surviving track after its location was rewritten.
	ExtraTrackProcessing func(models.Track) models.Track `json:"-"`
}

// Options are merged over the defaults; nil fields keep the default.
type Options struct {
	ValidationEnabled     *bool `json:"validationEnabled,omitempty"`
	LoggingEnabled        *bool `json:"loggingEnabled,omitempty"`
	CheckReplacementPaths *bool `json:"checkReplacementPaths,omitempty"`
	CheckFiles            *bool `json:"checkFiles,omitempty"`
}

// Settings is Options with every default applied.
type Settings struct {
	ValidationEnabled     bool
	LoggingEnabled        bool
	CheckReplacementPaths bool
	CheckFiles            bool
}

// DefaultSettings enables everything except file existence checks.
func DefaultSettings() Settings {
	return Settings{
		ValidationEnabled:     true,
		LoggingEnabled:        true,
		CheckReplacementPaths: true,
	}
}

// Resolve merges o over the defaults.
func (o *Options) Resolve() Settings {
	s := DefaultSettings()
	if o == nil {
		return s
	}
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&s.ValidationEnabled, o.ValidationEnabled)
	set(&s.LoggingEnabled, o.LoggingEnabled)
	set(&s.CheckReplacementPaths, o.CheckReplacementPaths)
	set(&s.CheckFiles, o.CheckFiles)
	return s
}

// Bool returns a pointer to v, for filling Options.
func Bool(v bool) *bool { return &v }

// Result is the emitted output plus the bookkeeping of the migration.
type Result struct {
	*library.Output
	Diagnostics migration.Diagnostics
}
