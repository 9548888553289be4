package filesystem

import (
	"io"
	"io/fs"
)

// FileInfo is an alias for fs.FileInfo from the standard library.
type FileInfo = fs.FileInfo

// FileSystemProvider gives read/write access to individual files.
type FileSystemProvider interface {
	// Open opens a file for streaming reads. The caller must Close it.
	Open(path string) (io.ReadCloser, error)

	// ReadFile reads a whole file.
	ReadFile(path string) ([]byte, error)

	// WriteFile creates or truncates a file.
	WriteFile(path string, data []byte) error

	// Stat returns file information for the given path
	Stat(path string) (FileInfo, error)
}
