// Package storage reads library files and writes migrated output next to them.
package storage

// Provider is the interface for library file operations.
type Provider interface {
	// Read returns the raw bytes of the file at path (relative to the root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the root) while
	// holding an exclusive lock on it.
	Write(path string, content []byte) error
}
