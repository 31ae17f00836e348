package indexwriter

import (
	"compress/bzip2"
	"compress/lzw"
	"errors"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Compression selects the filter an index tar stream is written/read
// through: the classic repo-add -j/-J/-z/-Z choices plus zstd, the
// compression most modern pacman repositories also use for the index
// itself.
type Compression int

const (
	None Compression = iota
	Gzip
	Bzip2
	Xz
	LegacyCompress
	Zstd
)

// Ext is the filename suffix a compression appends after ".tar".
func (c Compression) Ext() string {
	switch c {
	case Gzip:
		return ".gz"
	case Bzip2:
		return ".bz2"
	case Xz:
		return ".xz"
	case LegacyCompress:
		return ".Z"
	case Zstd:
		return ".zst"
	default:
		return ""
	}
}

// ErrBzip2WriteUnsupported is returned by NewWriter(Bzip2, ...): compress/bzip2
// in the Go standard library is decode-only, and no maintained bzip2 encoder
// is available (see DESIGN.md). Callers should fall back to another
// compression or surface this to the user.
var ErrBzip2WriteUnsupported = errors.New("indexwriter: bzip2 compression has no available encoder; use gzip, xz, zstd, or compress")

// NewWriter wraps w with the filter for c. The caller must Close() the
// returned writer (and, for filters that flush through an inner writer,
// that inner writer too) to finish the stream.
func NewWriter(c Compression, w io.Writer) (io.WriteCloser, error) {
	switch c {
	case None:
		return nopWriteCloser{w}, nil
	case Gzip:
		return gzip.NewWriter(w), nil
	case Xz:
		return xz.NewWriter(w)
	case LegacyCompress:
		return lzw.NewWriter(w, lzw.MSB, 8), nil
	case Zstd:
		return zstd.NewWriter(w)
	case Bzip2:
		return nil, ErrBzip2WriteUnsupported
	default:
		return nil, errors.New("indexwriter: unknown compression")
	}
}

// NewReader wraps r with the decompressor for c.
func NewReader(c Compression, r io.Reader) (io.Reader, error) {
	switch c {
	case None:
		return r, nil
	case Gzip:
		return gzip.NewReader(r)
	case Bzip2:
		return bzip2.NewReader(r), nil
	case Xz:
		return xz.NewReader(r)
	case LegacyCompress:
		return lzw.NewReader(r, lzw.MSB, 8), nil
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr, nil
	default:
		return nil, errors.New("indexwriter: unknown compression")
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
