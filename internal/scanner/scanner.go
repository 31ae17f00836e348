// Package scanner implements the Filecache Scanner component: given a pool
// directory, it loads every package archive in it into a pkgcache.Cache,
// applying target and architecture filters and keeping only the newest
// version of each package name. Grounded on original_source/src/filecache.c
// (get_filecache/scan_for_targets/filecache_add).
package scanner

import (
	"github.com/sirupsen/logrus"

	"github.com/repogen/repose/internal/pkgcache"
	"github.com/repogen/repose/internal/pkgmeta"
	"github.com/repogen/repose/internal/vercmp"
)

// Options controls a Load call.
type Options struct {
	// Targets, if non-empty, restricts the scan to packages matching one
	// of these filename/name/glob patterns (see MatchTargets).
	Targets []string
	// Arch, if non-empty, restricts the scan to packages whose Arch field
	// equals Arch or "any".
	Arch string
}

// Load scans poolDir non-recursively (matching the original's single
// readdir pass, subdirectories are never descended into) and returns a
// cache containing the newest version of every matching package.
//
// A package archive that fails to parse is logged and skipped (pkgmeta.Skip
// semantics); it never aborts the scan.
func Load(poolDir string, opts Options) (*pkgcache.Cache, error) {
	entries, err := readPoolDir(poolDir)
	if err != nil {
		return nil, pkgmeta.Fatalf(poolDir, err)
	}

	cache := pkgcache.New(len(entries))

	for _, name := range entries {
		path := poolDirJoin(poolDir, name)
		if !looksLikePackageArchive(path) {
			continue
		}

		pkg, err := loadFromPool(path)
		if err != nil {
			if pkgmeta.IsNotFound(err) {
				continue
			}
			logrus.WithError(err).Warnf("skipping %s", path)
			continue
		}

		if len(opts.Targets) > 0 && !MatchTargets(pkg, opts.Targets) {
			continue
		}
		if opts.Arch != "" && !MatchArch(pkg, opts.Arch) {
			continue
		}

		addNewest(cache, pkg)
	}

	logrus.Infof("scanned %d packages from %s", cache.Len(), poolDir)
	return cache, nil
}

// addNewest implements filecache_add: a package replaces any cache entry
// of the same name whose version compares <= to it (vercmp 0 or 1), and is
// dropped silently if an existing entry is strictly newer.
func addNewest(cache *pkgcache.Cache, pkg *pkgmeta.Package) {
	old := cache.Find(pkg.Name)
	if old == nil {
		cache.Add(pkg)
		return
	}

	cmp := vercmp.Compare(pkg.Version, old.Version)
	if cmp == 0 || cmp == 1 {
		cache.Replace(pkg, old)
	}
}
