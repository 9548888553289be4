// Package source opens delimited source files for a COPY.
//
// Compression is detected from the leading magic bytes, not from the file
// extension: gzip (1F 8B) and zstd (28 B5 2F FD). Anything else is streamed
// as plain text. The raw bytes read from disk are counted and hashed with
// xxh3 so a load can report what it consumed.
package source
