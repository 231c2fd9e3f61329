// Package storage manages documents in the data directory: export backups
// and snapshot files dropped into the import inbox.
package storage

import "github.com/grapebaby/grape/internal/models"

// Provider is the interface for data-directory file operations. All paths
// are relative to the data root.
type Provider interface {
	// List returns metadata for every document file directly inside dir,
	// sorted by path. Hidden files and subdirectories are skipped.
	List(dir string) ([]models.FileMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
	// Abs resolves path to an absolute path under the data root.
	Abs(path string) (string, error)
}
