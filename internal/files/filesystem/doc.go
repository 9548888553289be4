// Package filesystem provides a small file access abstraction.
//
// The loader and the table definition reader go through FileSystemProvider
// so they can be exercised against MemoryFileSystem in unit tests while
// production code uses OSFileSystem.
//
// Missing files are reported with errors satisfying errors.Is(err, fs.ErrNotExist)
// in both implementations.
package filesystem
