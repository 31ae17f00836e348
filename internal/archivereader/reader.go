// Package archivereader implements a streaming line reader over a
// decompressed tar entry, matching the block-cursor state machine of
// original_source/src/reader.c (archive_getline/archive_fgets) rather than
// wrapping the entry in a bufio.Scanner: a single NUL byte terminates a
// line exactly like '\n', which bufio.Scanner's default split functions do
// not support.
package archivereader

import (
	"bytes"
	"errors"
	"io"
)

// ErrRange is returned by Fgets when a line would not fit in the caller's
// buffer, mirroring archive_fgets' -ERANGE return.
var ErrRange = errors.New("archivereader: line too long for buffer")

// Reader reads newline- or NUL-terminated lines out of an io.Reader sourced
// from a single archive entry's decompressed data stream.
type Reader struct {
	src    io.Reader
	block  []byte
	offset int
	eof    bool
}

// New wraps src (typically a *tar.Reader positioned at an entry) for
// line-oriented reads.
func New(src io.Reader) *Reader {
	return &Reader{src: src, block: make([]byte, 0, 32*1024)}
}

func (r *Reader) fill() error {
	if r.eof {
		return io.EOF
	}
	n, err := r.src.Read(r.block[:cap(r.block)])
	if n > 0 {
		r.block = r.block[:n]
		r.offset = 0
		return nil
	}
	if err == nil {
		err = io.EOF
	}
	r.eof = true
	return err
}

func findEOL(b []byte) (idx int, found bool) {
	nl := bytes.IndexByte(b, '\n')
	nul := bytes.IndexByte(b, 0)

	switch {
	case nl < 0:
		return nul, nul >= 0
	case nul < 0:
		return nl, true
	case nul < nl:
		return nul, true
	default:
		return nl, true
	}
}

// Getline reads up to and including the next '\n' or '\0', returning the
// line without its terminator. It returns io.EOF when the entry ends
// cleanly at a line boundary (no partial line pending).
func (r *Reader) Getline() (string, error) {
	var buf []byte

	for {
		if r.offset >= len(r.block) {
			if err := r.fill(); err != nil {
				if err == io.EOF {
					if len(buf) == 0 {
						return "", io.EOF
					}
					return string(buf), nil
				}
				return "", err
			}
			continue
		}

		remaining := r.block[r.offset:]
		idx, found := findEOL(remaining)
		if found {
			buf = append(buf, remaining[:idx]...)
			r.offset += idx + 1
			return string(buf), nil
		}

		buf = append(buf, remaining...)
		r.offset = len(r.block)
	}
}

// Fgets behaves like Getline but copies into the caller-supplied buf,
// returning ErrRange if the line (plus NUL terminator) would overflow it.
func (r *Reader) Fgets(buf []byte) (int, error) {
	n := 0

	for {
		if r.offset >= len(r.block) {
			if err := r.fill(); err != nil {
				if err == io.EOF {
					if n == 0 {
						return 0, io.EOF
					}
					return n, nil
				}
				return 0, err
			}
			continue
		}

		remaining := r.block[r.offset:]
		idx, found := findEOL(remaining)
		length := len(remaining)
		if found {
			length = idx
		}

		if n+length+1 > len(buf) {
			return 0, ErrRange
		}
		n += copy(buf[n:], remaining[:length])

		if found {
			r.offset += length + 1
			return n, nil
		}
		r.offset = len(r.block)
	}
}
