// Package config loads YAML, TOML or JSON configuration files, optionally
// expanding ${VAR} references from the environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

// Format is a supported configuration file syntax.
type Format string

const (
	YAML Format = "yaml"
	TOML Format = "toml"
	JSON Format = "json"
)

// FormatOf picks the format from the file extension. Unknown extensions are read as YAML.
func FormatOf(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		return TOML
	case ".json":
		return JSON
	}
	return YAML
}

// Decode unmarshals data in the given format into target.
func Decode(format Format, data []byte, target any) error {
	switch format {
	case TOML:
		return toml.Unmarshal(data, target)
	case JSON:
		return json.Unmarshal(data, target)
	case YAML:
		return yaml.Unmarshal(data, target)
	}
	return fmt.Errorf("unsupported config format %q", format)
}

// Load loads configuration from a file, expanding ${VAR} references from the
// environment. A bare $ is kept as is.
func Load[T any](filename string, target *T) error {
	return load(filename, target, true)
}

// LoadRaw loads configuration from a file without environment expansion.
func LoadRaw[T any](filename string, target *T) error {
	return load(filename, target, false)
}

func load[T any](filename string, target *T, expand bool) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	if expand {
		data = []byte(expandBraced(string(data)))
	}

	if err := Decode(FormatOf(filename), data, target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}

	return nil
}

// expandBraced replaces ${VAR} with the variable's value and leaves every
// other $ untouched, so paths like /Music/Ke$ha/ survive.
func expandBraced(s string) string {
	var b strings.Builder
	for {
		start := strings.Index(s, "${")
		if start < 0 {
			break
		}
		end := strings.IndexByte(s[start:], '}')
		if end < 0 {
			break
		}
		b.WriteString(s[:start])
		b.WriteString(os.Getenv(s[start+2 : start+end]))
		s = s[start+end+1:]
	}
	b.WriteString(s)
	return b.String()
}
