package source

import (
	"bytes"
	"io"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/sdss/catalogdb/internal/files/filesystem"
	"github.com/sdss/catalogdb/pkg/catalogdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/xxh3"
)

const rows = "id,name\n1,alpha\n2,beta\n3,gamma\n"

func gzipBytes(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func zstdBytes(t *testing.T, s string) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	return enc.EncodeAll([]byte(s), nil)
}

func TestDetectMagic(t *testing.T) {
	tests := []struct {
		name string
		head []byte
		want Compression
	}{
		{"empty", nil, CompressionNone},
		{"one byte of gzip magic", []byte{0x1f}, CompressionNone},
		{"gzip", []byte{0x1f, 0x8b, 0x08, 0x00}, CompressionGzip},
		{"gzip two bytes", []byte{0x1f, 0x8b}, CompressionGzip},
		{"zstd", []byte{0x28, 0xb5, 0x2f, 0xfd}, CompressionZstd},
		{"truncated zstd", []byte{0x28, 0xb5, 0x2f}, CompressionNone},
		{"csv text", []byte("1,a\n"), CompressionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectMagic(tt.head))
		})
	}
}

func TestOpen_DecodesAllEncodingsIdentically(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem()
	mfs.AddFile("plain.csv", rows)
	mfs.AddBytes("rows.csv.gz", gzipBytes(t, rows))
	mfs.AddBytes("rows.csv.zst", zstdBytes(t, rows))
	// extension is irrelevant to detection
	mfs.AddBytes("misnamed.csv", gzipBytes(t, rows))

	tests := []struct {
		path string
		want Compression
	}{
		{"plain.csv", CompressionNone},
		{"rows.csv.gz", CompressionGzip},
		{"rows.csv.zst", CompressionZstd},
		{"misnamed.csv", CompressionGzip},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			r, err := Open(mfs, tt.path)
			require.NoError(t, err)
			defer r.Close()

			assert.Equal(t, tt.want, r.Compression())
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, rows, string(got))
		})
	}
}

func TestOpen_MissingFileIsNotFound(t *testing.T) {
	_, err := Open(filesystem.NewMemoryFileSystem(), "missing.csv")
	assert.ErrorIs(t, err, catalogdb.ErrNotFound)
}

func TestOpen_CorruptGzip(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem()
	mfs.AddBytes("bad.gz", []byte{0x1f, 0x8b, 0x00})

	_, err := Open(mfs, "bad.gz")
	assert.Error(t, err)
}

func TestOpen_EmptyFile(t *testing.T) {
	mfs := filesystem.NewMemoryFileSystem()
	mfs.AddFile("empty.csv", "")

	r, err := Open(mfs, "empty.csv")
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, CompressionNone, r.Compression())
	skipped, err := r.SkipLine()
	require.NoError(t, err)
	assert.False(t, skipped)
}

func TestOpen_ShorterThanMagic(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"one byte", "7"},
		{"newline", "\n"},
		{"three bytes", "1,2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mfs := filesystem.NewMemoryFileSystem()
			mfs.AddFile("short.csv", tt.content)

			r, err := Open(mfs, "short.csv")
			require.NoError(t, err)
			defer r.Close()

			assert.Equal(t, CompressionNone, r.Compression())
			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, tt.content, string(got))
		})
	}
}

func TestReader_SkipLine(t *testing.T) {
	tests := []struct {
		name    string
		content string
		rest    string
	}{
		{"header and rows", rows, "1,alpha\n2,beta\n3,gamma\n"},
		{"header only without newline", "id,name", ""},
		{"crlf header", "id,name\r\n1,a\r\n", "1,a\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mfs := filesystem.NewMemoryFileSystem()
			mfs.AddBytes("f.gz", gzipBytes(t, tt.content))

			r, err := Open(mfs, "f.gz")
			require.NoError(t, err)
			defer r.Close()

			skipped, err := r.SkipLine()
			require.NoError(t, err)
			assert.True(t, skipped)

			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, tt.rest, string(got))
		})
	}
}

func TestReader_SkipLineLongerThanBuffer(t *testing.T) {
	long := bytes.Repeat([]byte("x"), 10000)
	mfs := filesystem.NewMemoryFileSystem()
	mfs.AddBytes("wide.csv", append(append(long, '\n'), []byte("1,2\n")...))

	r, err := Open(mfs, "wide.csv")
	require.NoError(t, err)
	defer r.Close()

	skipped, err := r.SkipLine()
	require.NoError(t, err)
	assert.True(t, skipped)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "1,2\n", string(got))
}

func TestReader_DigestCoversRawBytes(t *testing.T) {
	compressed := gzipBytes(t, rows)
	mfs := filesystem.NewMemoryFileSystem()
	mfs.AddBytes("rows.csv.gz", compressed)

	r, err := Open(mfs, "rows.csv.gz")
	require.NoError(t, err)
	_, err = io.Copy(io.Discard, r)
	require.NoError(t, err)

	d := r.Digest()
	assert.Equal(t, int64(len(compressed)), d.Bytes)
	assert.Equal(t, xxh3.Hash(compressed), d.XXH3)
	assert.Contains(t, d.String(), "xxh3")

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
}

func TestCompression_String(t *testing.T) {
	assert.Equal(t, "gzip", CompressionGzip.String())
	assert.Equal(t, "none", CompressionNone.String())
	assert.Equal(t, "Compression(9)", Compression(9).String())
}
