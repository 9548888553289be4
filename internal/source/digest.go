package source

import (
	"fmt"
	"io"

	"github.com/zeebo/xxh3"
)

// digestReader counts and hashes every byte read through it.
type digestReader struct {
	r      io.Reader
	hasher *xxh3.Hasher
	n      int64
}

func newDigestReader(r io.Reader) *digestReader {
	return &digestReader{r: r, hasher: xxh3.New()}
}

func (d *digestReader) Read(p []byte) (int, error) {
	n, err := d.r.Read(p)
	if n > 0 {
		d.n += int64(n)
		_, _ = d.hasher.Write(p[:n])
	}
	return n, err
}

// Digest summarizes the raw bytes consumed from a source file.
type Digest struct {
	Bytes int64
	XXH3  uint64
}

func (d Digest) String() string {
	return fmt.Sprintf("%d bytes, xxh3 %016x", d.Bytes, d.XXH3)
}
