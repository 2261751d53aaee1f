package migration

import (
	"errors"
	"io/fs"
	"os"
)

// FileChecker reports whether a decoded location exists.
type FileChecker interface {
	Exists(path string) (bool, error)
}

// OSFiles checks the local file system.
type OSFiles struct{}

func (OSFiles) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
