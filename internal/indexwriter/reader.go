package indexwriter

import (
	"archive/tar"
	"fmt"
	"io"
	"os"

	"github.com/repogen/repose/internal/descparser"
	"github.com/repogen/repose/internal/pkgcache"
	"github.com/repogen/repose/internal/pkgmeta"
)

// LoadIndex reads an existing .db/.files archive at path into a fresh
// Cache, keyed by package name and populated in name-sorted order (mirroring
// load_database's use of pkghash_add_sorted). A missing file is reported as
// pkgmeta.NotFound rather than Fatal: an absent .files index just means the
// files feature was never turned on for this repository.
func LoadIndex(path string, c Compression) (*pkgcache.Cache, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pkgmeta.NotFoundf(path, err)
		}
		return nil, pkgmeta.Fatalf(path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, pkgmeta.Fatalf(path, err)
	}
	mtime := info.ModTime()

	r, err := NewReader(c, f)
	if err != nil {
		return nil, pkgmeta.Fatalf(path, err)
	}

	cache := pkgcache.New(256)
	tr := tar.NewReader(r)

	var likely *pkgmeta.Package

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, pkgmeta.Fatalf(path, err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		name, version, typ, ok := SplitEntryName(hdr.Name)
		if !ok {
			return nil, pkgmeta.Fatalf(path, fmt.Errorf("corrupt index entry name %q", hdr.Name))
		}
		if typ == "" {
			continue
		}
		if typ != "desc" && typ != "depends" && typ != "files" {
			continue
		}

		pkg := likely
		if pkg == nil || pkg.Name != name {
			pkg = cache.Find(name)
			if pkg == nil {
				pkg = &pkgmeta.Package{Version: version, MTime: mtime}
				pkg.SetName(name)
				cache.AddSorted(pkg)
			}
		}
		likely = pkg

		if err := descparser.ReadDesc(tr, pkg); err != nil {
			return nil, pkgmeta.Fatalf(hdr.Name, err)
		}
	}

	return cache, nil
}
