// Package pkginfo implements the PackageParser component: it locates
// .PKGINFO inside a pool package archive (a pacman-style .pkg.tar*, with
// gzip/xz/zstd/bzip2 compression or none) and fills a pkgmeta.Package from
// its key = value lines, with key handling generalised per
// original_source's package.c keyword table and line reading done through
// internal/archivereader instead of bufio.Scanner so that a lone NUL byte
// terminates a line exactly like the original archive_getline.
package pkginfo

import (
	"archive/tar"
	"compress/bzip2"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/repogen/repose/internal/archivereader"
	"github.com/repogen/repose/internal/pkgmeta"
	"github.com/ulikunitz/xz"
)

// metadataEntries are archive member names that never belong in a
// package's recorded file list.
var metadataEntries = map[string]bool{
	".PKGINFO":   true,
	".MTREE":     true,
	".INSTALL":   true,
	".CHANGELOG": true,
}

// openTar opens path and returns a *tar.Reader over its decompressed
// contents, dispatching on the pool filename's compression suffix the way
// extractPKGINFO does.
func openTar(f *os.File) (*tar.Reader, error) {
	name := f.Name()
	switch {
	case strings.HasSuffix(name, ".pkg.tar.zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, err
		}
		return tar.NewReader(zr), nil
	case strings.HasSuffix(name, ".pkg.tar.xz"):
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, err
		}
		return tar.NewReader(xr), nil
	case strings.HasSuffix(name, ".pkg.tar.gz"):
		gr, err := gzip.NewReader(f)
		if err != nil {
			return nil, err
		}
		return tar.NewReader(gr), nil
	case strings.HasSuffix(name, ".pkg.tar.bz2"):
		return tar.NewReader(bzip2.NewReader(f)), nil
	case strings.HasSuffix(name, ".pkg.tar"):
		return tar.NewReader(f), nil
	default:
		return nil, pkgmeta.Fatalf(name, errUnsupportedFormat(name))
	}
}

type errUnsupportedFormat string

func (e errUnsupportedFormat) Error() string {
	return "unsupported package archive format: " + filepath.Base(string(e))
}

// keyHandler applies one .PKGINFO "key = value" line to pkg.
type keyHandler func(pkg *pkgmeta.Package, value string)

// keyTable is the keyword-to-setter table from original_source/package.c,
// expressed as a table of setter closures rather than an if/else-if
// chain.
var keyTable = map[string]keyHandler{
	"pkgname": func(p *pkgmeta.Package, v string) { p.SetName(v) },
	"pkgbase": func(p *pkgmeta.Package, v string) { p.Base = v },
	"pkgver":  func(p *pkgmeta.Package, v string) { p.Version = v },
	"pkgdesc": func(p *pkgmeta.Package, v string) { p.Desc = v },
	"url":     func(p *pkgmeta.Package, v string) { p.URL = v },
	"builddate": func(p *pkgmeta.Package, v string) {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			p.BuildDate = n
		}
	},
	"packager": func(p *pkgmeta.Package, v string) { p.Packager = v },
	"size": func(p *pkgmeta.Package, v string) {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			p.ISize = n
		}
	},
	"arch":        func(p *pkgmeta.Package, v string) { p.Arch = v },
	"group":       func(p *pkgmeta.Package, v string) { p.Groups = append(p.Groups, v) },
	"license":     func(p *pkgmeta.Package, v string) { p.Licenses = append(p.Licenses, v) },
	"replaces":    func(p *pkgmeta.Package, v string) { p.Replaces = append(p.Replaces, v) },
	"depend":      func(p *pkgmeta.Package, v string) { p.Depends = append(p.Depends, v) },
	"conflict":    func(p *pkgmeta.Package, v string) { p.Conflicts = append(p.Conflicts, v) },
	"provides":    func(p *pkgmeta.Package, v string) { p.Provides = append(p.Provides, v) },
	"optdepend":   func(p *pkgmeta.Package, v string) { p.Optdepends = append(p.Optdepends, v) },
	"makedepend":  func(p *pkgmeta.Package, v string) { p.Makedepends = append(p.Makedepends, v) },
	"checkdepend": func(p *pkgmeta.Package, v string) { p.Checkdepends = append(p.Checkdepends, v) },
}

// ParsePackage opens the pool archive at path, extracts .PKGINFO, and
// returns a filled Package (Filename, Size left for the caller to set from
// the pool stat, see scanner.Load).
func ParsePackage(path string) (*pkgmeta.Package, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgmeta.Skipf(path, err)
	}
	defer f.Close()

	tr, err := openTar(f)
	if err != nil {
		return nil, pkgmeta.Skipf(path, err)
	}

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil, pkgmeta.Skipf(path, errNotAPackage)
		}
		if err != nil {
			return nil, pkgmeta.Skipf(path, err)
		}
		if hdr.Name == ".PKGINFO" {
			pkg := &pkgmeta.Package{}
			if err := parsePKGINFO(tr, pkg); err != nil {
				return nil, pkgmeta.Skipf(path, err)
			}
			return pkg, nil
		}
	}
}

var errNotAPackage = pkgNotAPackage{}

type pkgNotAPackage struct{}

func (pkgNotAPackage) Error() string { return "not a package: missing .PKGINFO" }

func parsePKGINFO(r io.Reader, pkg *pkgmeta.Package) error {
	lr := archivereader.New(r)
	for {
		line, err := lr.Getline()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if handler, ok := keyTable[key]; ok {
			handler(pkg, value)
		}
		// unknown keys are ignored silently, per spec
	}
}

// LoadPackageFiles re-scans the archive at path and records every entry
// name not in the metadata set into pkg.Files.
func LoadPackageFiles(pkg *pkgmeta.Package, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return pkgmeta.Skipf(path, err)
	}
	defer f.Close()

	tr, err := openTar(f)
	if err != nil {
		return pkgmeta.Skipf(path, err)
	}

	var files []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return pkgmeta.Skipf(path, err)
		}
		name := strings.TrimSuffix(hdr.Name, "/")
		if metadataEntries[hdr.Name] || metadataEntries[name] {
			continue
		}
		files = append(files, hdr.Name)
	}
	pkg.Files = files
	return nil
}

// LoadPackageSignature opens "<path>.sig" alongside the package archive at
// path, base64-encodes its bytes into pkg.Base64Sig, and raises pkg.MTime
// if the signature file is newer than it. A missing .sig is reported as
// pkgmeta.NotFound, distinct from any other I/O error.
func LoadPackageSignature(pkg *pkgmeta.Package, path string) error {
	sigPath := path + ".sig"
	info, err := os.Stat(sigPath)
	if err != nil {
		if os.IsNotExist(err) {
			return pkgmeta.NotFoundf(sigPath, err)
		}
		return pkgmeta.Fatalf(sigPath, err)
	}

	data, err := os.ReadFile(sigPath)
	if err != nil {
		return pkgmeta.Fatalf(sigPath, err)
	}

	pkg.Base64Sig = base64.StdEncoding.EncodeToString(data)
	if mt := info.ModTime(); mt.After(pkg.MTime) {
		pkg.MTime = mt
	}
	return nil
}
