// Package reconciler implements the Reconciler component: given a repo's
// existing PackageCache (loaded from its .db/.files index) and a freshly
// scanned filecache, it computes the add/update/drop/reduce operations that
// bring the repo in line with the pool directory. Grounded on
// original_source/src/repose.c (drop_from_repo/reduce_repo/update_repo).
package reconciler

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/repogen/repose/internal/pkgcache"
	"github.com/repogen/repose/internal/pkgmeta"
	"github.com/repogen/repose/internal/scanner"
	"github.com/repogen/repose/internal/vercmp"
)

// Repo is the mutable state the reconciler operates on: a package cache and
// whether it has been changed since it was loaded.
type Repo struct {
	Cache *pkgcache.Cache
	Dirty bool

	// PoolDir is used by Reduce to check that a cached package's backing
	// archive still exists, and by Drop/Update to know which symlinks need
	// unlinking from RootDir (see internal/linker).
	PoolDir string
	RootDir string
}

// Drop removes every cached package matching one of targets (filenames,
// names, or globs, see scanner.MatchTargets) and unlinks its pool symlink
// from the root directory. Equivalent to drop_from_repo.
func Drop(repo *Repo, targets []string) {
	if len(targets) == 0 || repo.Cache == nil {
		return
	}

	for _, pkg := range repo.Cache.List() {
		if !scanner.MatchTargets(pkg, targets) {
			continue
		}
		logrus.Debugf("dropping %s", pkg.Name)
		repo.Cache.Remove(pkg)
		unlinkPkg(repo.RootDir, pkg)
		repo.Dirty = true
	}
}

// Reduce drops every cached package whose backing pool archive no longer
// exists. Equivalent to reduce_repo.
func Reduce(repo *Repo) {
	if repo.Cache == nil {
		return
	}

	for _, pkg := range repo.Cache.List() {
		path := filepath.Join(repo.PoolDir, pkg.Filename)
		if _, err := os.Stat(path); err != nil {
			if !os.IsNotExist(err) {
				logrus.WithError(err).Warnf("couldn't access package %s", pkg.Filename)
				continue
			}
			logrus.Debugf("dropping %s (missing from pool)", pkg.Name)
			repo.Cache.Remove(pkg)
			unlinkPkg(repo.RootDir, pkg)
			repo.Dirty = true
		}
	}
}

// Update merges src (the freshly scanned filecache) into repo.Cache,
// following the version/mtime/signature tie-break rules of update_repo:
// a name absent from the repo is added outright; a name present gets
// replaced when src's version is strictly newer, or when versions tie and
// src's file has a newer mtime, a newer builddate, or a signature the repo
// entry lacked.
func Update(repo *Repo, src *pkgcache.Cache) {
	if repo.Cache == nil {
		repo.Cache = pkgcache.New(src.Len())
	}

	for _, pkg := range src.List() {
		old := repo.Cache.Find(pkg.Name)
		if old == nil {
			logrus.Debugf("adding %s %s", pkg.Name, pkg.Version)
			repo.Cache.Add(pkg)
			repo.Dirty = true
			continue
		}

		if !shouldReplace(pkg, old) {
			continue
		}

		repo.Cache.Replace(pkg, old)
		unlinkPkg(repo.RootDir, old)
		repo.Dirty = true
	}
}

func shouldReplace(pkg, old *pkgmeta.Package) bool {
	switch vercmp.Compare(pkg.Version, old.Version) {
	case 1:
		return true
	case 0:
		if pkg.MTime.After(old.MTime) {
			return true
		}
		if pkg.BuildDate > old.BuildDate {
			return true
		}
		if old.Base64Sig == "" && pkg.Base64Sig != "" {
			return true
		}
		return false
	default:
		return false
	}
}

// unlinkPkg removes pkg's pool symlink from the repo root, if one exists.
// Mirrors unlink_pkg: a real file (as opposed to a symlink) is left alone,
// and a missing link is not an error.
func unlinkPkg(rootDir string, pkg *pkgmeta.Package) {
	if rootDir == "" {
		return
	}
	path := filepath.Join(rootDir, pkg.Filename)
	info, err := os.Lstat(path)
	if err != nil {
		return
	}
	if info.Mode()&os.ModeSymlink != 0 {
		os.Remove(path)
	}
}
