package tabledef

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/sdss/catalogdb/internal/files/filesystem"
	"github.com/sdss/catalogdb/pkg/catalogdb"
)

const commentPrefix = "#"

var bracketStripper = strings.NewReplacer("[", "", "]", "")

// ReadFile reads a definition file from the OS filesystem.
func ReadFile(path string) ([]string, error) {
	return Read(filesystem.NewOSFileSystem(), path)
}

// Read reads the definition file at path and returns one column definition
// per meaningful line, in file order.
// A missing file yields an error matching catalogdb.ErrNotFound.
func Read(fsys filesystem.FileSystemProvider, path string) ([]string, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, catalogdb.WrapError(catalogdb.KindNotFound, fmt.Sprintf("table definition %s does not exist", path), err)
		}
		return nil, fmt.Errorf("failed to read table definition %s: %w", path, err)
	}
	return Parse(data)
}

// Parse extracts column definitions from the contents of a definition file.
func Parse(data []byte) ([]string, error) {
	columns := []string{}

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, commentPrefix) {
			continue
		}
		// Trim again: a bracket may have hugged the whitespace, e.g. "flags int [ ]".
		columns = append(columns, strings.TrimSpace(bracketStripper.Replace(line)))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan table definition: %w", err)
	}

	return columns, nil
}

// Write stores columns one per line so Read returns them unchanged.
func Write(fsys filesystem.FileSystemProvider, path string, columns []string) error {
	var buf bytes.Buffer
	for _, col := range columns {
		buf.WriteString(col)
		buf.WriteByte('\n')
	}
	if err := fsys.WriteFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write table definition %s: %w", path, err)
	}
	return nil
}

// ColumnNames returns the first whitespace-separated token of each definition.
func ColumnNames(columns []string) []string {
	names := make([]string, 0, len(columns))
	for _, col := range columns {
		fields := strings.Fields(col)
		if len(fields) == 0 {
			continue
		}
		names = append(names, fields[0])
	}
	return names
}
