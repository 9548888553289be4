package filesystem

import (
	"bytes"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"sync"
	"time"
)

// memoryFileInfo implements fs.FileInfo for in-memory files
type memoryFileInfo struct {
	name    string
	size    int64
	modTime time.Time
}

func (f *memoryFileInfo) Name() string       { return f.name }
func (f *memoryFileInfo) Size() int64        { return f.size }
func (f *memoryFileInfo) Mode() fs.FileMode  { return 0644 }
func (f *memoryFileInfo) ModTime() time.Time { return f.modTime }
func (f *memoryFileInfo) IsDir() bool        { return false }
func (f *memoryFileInfo) Sys() interface{}   { return nil }

type memoryFile struct {
	content []byte
	modTime time.Time
}

// MemoryFileSystem implements FileSystemProvider for in-memory testing.
// Paths are normalized to forward slashes.
type MemoryFileSystem struct {
	mu    sync.RWMutex
	files map[string]*memoryFile
}

// NewMemoryFileSystem creates an empty in-memory filesystem.
func NewMemoryFileSystem() *MemoryFileSystem {
	return &MemoryFileSystem{files: make(map[string]*memoryFile)}
}

func normalize(p string) string {
	return path.Clean(filepath.ToSlash(p))
}

// AddFile adds a text file.
func (m *MemoryFileSystem) AddFile(filePath string, content string) {
	m.AddBytes(filePath, []byte(content))
}

// AddBytes adds a file with binary content, e.g. a gzip stream.
func (m *MemoryFileSystem) AddBytes(filePath string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[normalize(filePath)] = &memoryFile{
		content: append([]byte(nil), content...),
		modTime: time.Now(),
	}
}

func (m *MemoryFileSystem) lookup(op, filePath string) (*memoryFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[normalize(filePath)]
	if !ok {
		return nil, &fs.PathError{Op: op, Path: filePath, Err: fs.ErrNotExist}
	}
	return f, nil
}

func (m *MemoryFileSystem) Open(filePath string) (io.ReadCloser, error) {
	f, err := m.lookup("open", filePath)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(f.content)), nil
}

func (m *MemoryFileSystem) ReadFile(filePath string) ([]byte, error) {
	f, err := m.lookup("read", filePath)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), f.content...), nil
}

func (m *MemoryFileSystem) WriteFile(filePath string, data []byte) error {
	m.AddBytes(filePath, data)
	return nil
}

func (m *MemoryFileSystem) Stat(filePath string) (FileInfo, error) {
	f, err := m.lookup("stat", filePath)
	if err != nil {
		return nil, err
	}
	return &memoryFileInfo{
		name:    path.Base(normalize(filePath)),
		size:    int64(len(f.content)),
		modTime: f.modTime,
	}, nil
}

var _ FileSystemProvider = (*MemoryFileSystem)(nil)
