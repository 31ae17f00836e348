package scanner

import (
	"os"
	"path/filepath"

	"github.com/repogen/repose/internal/pkginfo"
	"github.com/repogen/repose/internal/pkgmeta"
)

// readPoolDir lists the regular-file entries of dir, the Go equivalent of
// the original's readdir loop filtering on DT_REG (directories, symlinks,
// and other non-regular entries are skipped rather than followed).
func readPoolDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil || info.Mode()&os.ModeType != 0 {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

func poolDirJoin(dir, name string) string {
	return filepath.Join(dir, name)
}

// loadFromPool parses a pool archive's .PKGINFO, fills in its recorded file
// size from the stat'd archive, and attaches any sibling .sig signature.
// Mirrors load_from_file in filecache.c.
func loadFromPool(path string) (*pkgmeta.Package, error) {
	pkg, err := pkginfo.ParsePackage(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, pkgmeta.Skipf(path, err)
	}
	pkg.Filename = filepath.Base(path)
	pkg.Size = info.Size()
	pkg.MTime = info.ModTime()

	if err := pkginfo.LoadPackageSignature(pkg, path); err != nil && !pkgmeta.IsNotFound(err) {
		return nil, err
	}

	return pkg, nil
}
