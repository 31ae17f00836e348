package scanner

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
)

// Magic bytes used to fast-skip obvious non-packages (stray .sig/.db files,
// directories, dotfiles) before paying for a full tar-and-decompress parse
// attempt in pkginfo.ParsePackage.
var (
	zstdMagic  = []byte{0x28, 0xB5, 0x2F, 0xFD}
	xzMagic    = []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}
	gzipMagic  = []byte{0x1F, 0x8B}
	bzip2Magic = []byte("BZh")
)

// looksLikePackageArchive reports whether path is plausibly a pacman
// package archive (.pkg.tar, optionally gzip/xz/zstd/bzip2 compressed),
// judged by filename suffix and, where the suffix names a compression,
// confirmed against that compression's magic bytes.
func looksLikePackageArchive(path string) bool {
	name := filepath.Base(path)
	if !strings.Contains(name, ".pkg.tar") {
		return false
	}
	if strings.HasSuffix(name, ".sig") {
		return false
	}

	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	header := make([]byte, 6)
	n, _ := f.Read(header)
	header = header[:n]

	switch {
	case strings.HasSuffix(name, ".pkg.tar.zst"):
		return bytes.HasPrefix(header, zstdMagic)
	case strings.HasSuffix(name, ".pkg.tar.xz"):
		return bytes.HasPrefix(header, xzMagic)
	case strings.HasSuffix(name, ".pkg.tar.gz"):
		return bytes.HasPrefix(header, gzipMagic)
	case strings.HasSuffix(name, ".pkg.tar.bz2"):
		return bytes.HasPrefix(header, bzip2Magic)
	case strings.HasSuffix(name, ".pkg.tar"):
		return true
	default:
		return false
	}
}
