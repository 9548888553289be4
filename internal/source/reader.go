package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/sdss/catalogdb/internal/files/filesystem"
	"github.com/sdss/catalogdb/pkg/catalogdb"
)

// Reader streams the decoded content of a source file.
// Close releases the decoder and the underlying file.
type Reader struct {
	*bufio.Reader

	compression Compression
	raw         *digestReader
	closers     []func() error
}

// Open opens path, detects its compression and returns a reader over the
// decoded content. A missing file yields an error matching catalogdb.ErrNotFound.
func Open(fsys filesystem.FileSystemProvider, path string) (*Reader, error) {
	f, err := fsys.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, catalogdb.WrapError(catalogdb.KindNotFound, fmt.Sprintf("source file %s does not exist", path), err)
		}
		return nil, fmt.Errorf("failed to open source file %s: %w", path, err)
	}

	raw := newDigestReader(f)
	buffered := bufio.NewReader(raw)
	r := &Reader{raw: raw, closers: []func() error{f.Close}}

	head, err := buffered.Peek(magicLen)
	if err != nil && !errors.Is(err, io.EOF) {
		r.Close()
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	r.compression = DetectMagic(head)

	switch r.compression {
	case CompressionGzip:
		zr, err := gzip.NewReader(buffered)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("failed to open gzip stream %s: %w", path, err)
		}
		r.closers = append(r.closers, zr.Close)
		r.Reader = bufio.NewReader(zr)
	case CompressionZstd:
		zr, err := zstd.NewReader(buffered)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("failed to open zstd stream %s: %w", path, err)
		}
		r.closers = append(r.closers, func() error { zr.Close(); return nil })
		r.Reader = bufio.NewReader(zr)
	default:
		r.Reader = buffered
	}

	return r, nil
}

// Compression reports the encoding detected when the file was opened.
func (r *Reader) Compression() Compression {
	return r.compression
}

// SkipLine discards everything up to and including the next newline.
// It returns false when the stream was already exhausted.
func (r *Reader) SkipLine() (bool, error) {
	for {
		_, isPrefix, err := r.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return false, nil
			}
			return false, err
		}
		if !isPrefix {
			return true, nil
		}
	}
}

// Digest reports the raw bytes consumed from disk so far.
func (r *Reader) Digest() Digest {
	return Digest{Bytes: r.raw.n, XXH3: r.raw.hasher.Sum64()}
}

// Close closes the decoder, then the file. Safe to call more than once.
func (r *Reader) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}
