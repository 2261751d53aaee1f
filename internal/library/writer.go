package library

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/electrovir/itunes-library-migration-assistant/internal/apperr"
	"github.com/electrovir/itunes-library-migration-assistant/internal/codec"
	"github.com/electrovir/itunes-library-migration-assistant/internal/models"
	"github.com/electrovir/itunes-library-migration-assistant/internal/storage"
)

// OutputKind selects the shape Emit produces.
type OutputKind string

const (
	WriteToFile OutputKind = "write-to-file"
	JSONObject  OutputKind = "json-object"
	PlistString OutputKind = "plist-string"
)

// OutputKinds lists every supported output kind.
var OutputKinds = []OutputKind{WriteToFile, JSONObject, PlistString}

// Valid reports whether k is a supported output kind.
func (k OutputKind) Valid() bool {
	switch k {
	case WriteToFile, JSONObject, PlistString:
		return true
	}
	return false
}

// ParseOutputKind converts a user supplied name into an OutputKind.
func ParseOutputKind(s string) (OutputKind, error) {
	k := OutputKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", apperr.ErrUnsupportedOutput, s)
	}
	return k, nil
}

// Output is the result of Emit. Library is always set; Plist and FilePath
// are filled for the matching Kind.
type Output struct {
	Kind     OutputKind
	Library  *models.Library
	Plist    string
	FilePath string
	// Checksum is the SHA-256 of the serialized library; empty for json-object.
	Checksum string
}

// EmitOptions configures Emit.
type EmitOptions struct {
	// LibraryPath is the file the library was read from. The migrated file is
	// written next to it.
	LibraryPath string
	// Store overrides the storage used for write-to-file output.
	Store  storage.Provider
	Logger *slog.Logger
}

// Emit renders lib in the requested shape. The original library file is
// never written.
func Emit(lib *models.Library, kind OutputKind, opts EmitOptions) (*Output, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", apperr.ErrUnsupportedOutput, kind)
	}

	if kind == JSONObject {
		logger.Info("Returned object representation of library")
		return &Output{Kind: kind, Library: lib}, nil
	}

	logger.Info("Building plist of new library...")
	text, err := codec.Build(lib.Dict())
	if err != nil {
		return nil, fmt.Errorf("build library: %w", err)
	}
	sum := storage.Checksum([]byte(text))
	logger.Info("Building finished", slog.String("checksum", sum))

	if kind == PlistString {
		logger.Info("Returned plist string of library")
		return &Output{Kind: kind, Library: lib, Plist: text, Checksum: sum}, nil
	}

	if opts.LibraryPath == "" {
		return nil, &apperr.InputError{Property: "libraryFilePath", Reason: "Missing path."}
	}
	newPath := MigratedPath(opts.LibraryPath)
	store := opts.Store
	if store == nil {
		fs, _, err := storage.ForFile(newPath)
		if err != nil {
			return nil, fmt.Errorf("open output dir: %w", err)
		}
		store = fs
	}

	logger.Info("Writing new library file...")
	if err := store.Write(filepath.Base(newPath), []byte(text)); err != nil {
		return nil, fmt.Errorf("write library: %w", err)
	}
	logger.Info("New library written", slog.String("path", newPath))
	return &Output{Kind: kind, Library: lib, FilePath: newPath, Checksum: sum}, nil
}

// MigratedPath inserts ".migrated" before the extension of path, or appends it
// when path has no extension.
func MigratedPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".migrated" + ext
}

// ToJSON renders lib as indented JSON, keyed the way the library file is.
func ToJSON(lib *models.Library) ([]byte, error) {
	data, err := json.MarshalIndent(lib.Dict(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode library json: %w", err)
	}
	return data, nil
}
