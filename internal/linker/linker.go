// Package linker implements the Linker adapter: it publishes pool packages
// into the repo root directory, either as symlinks to the pool copy or, with
// --reflink, as copy-on-write clones (Btrfs/XFS FICLONE). Grounded on
// original_source/src/repose.c (clone_pkg/symlink_pkg/link_pkg/link_db).
package linker

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"github.com/repogen/repose/internal/pkgcache"
	"github.com/repogen/repose/internal/pkgmeta"
)

// Options controls how LinkAll publishes packages into the repo root.
type Options struct {
	PoolDir string
	RootDir string
	// Reflink makes LinkAll attempt a copy-on-write clone instead of a
	// symlink. Unsupported filesystems fall back to a symlink.
	Reflink bool
}

// LinkAll publishes every package in cache into opts.RootDir. Equivalent to
// link_db: a no-op when PoolDir equals RootDir (packages already live where
// the repo root expects them).
func LinkAll(cache *pkgcache.Cache, opts Options) error {
	if opts.PoolDir == "" || opts.PoolDir == opts.RootDir {
		return nil
	}

	for _, pkg := range cache.List() {
		if err := linkPkg(pkg, opts); err != nil {
			return pkgmeta.Fatalf(pkg.Filename, err)
		}
	}
	return nil
}

func linkPkg(pkg *pkgmeta.Package, opts Options) error {
	if opts.Reflink {
		if err := clonePkg(pkg, opts); err == nil {
			return nil
		}
		// Fall through to a symlink on any clone failure (e.g. the
		// filesystem doesn't support FICLONE).
	}
	return symlinkPkg(pkg, opts)
}

// symlinkPkg creates rootDir/filename -> poolDir/filename. An existing link
// at that path is left alone (EEXIST is not an error).
func symlinkPkg(pkg *pkgmeta.Package, opts Options) error {
	target := filepath.Join(opts.PoolDir, pkg.Filename)
	link := filepath.Join(opts.RootDir, pkg.Filename)

	err := os.Symlink(target, link)
	if err != nil && os.IsExist(err) {
		return nil
	}
	return err
}

// clonePkg reflinks rootDir/filename from poolDir/filename via the FICLONE
// ioctl, truncating or creating the destination as needed.
func clonePkg(pkg *pkgmeta.Package, opts Options) error {
	src, err := os.Open(filepath.Join(opts.PoolDir, pkg.Filename))
	if err != nil {
		return fmt.Errorf("open pool package: %w", err)
	}
	defer src.Close()

	destPath := filepath.Join(opts.RootDir, pkg.Filename)
	dest, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0664)
	if err != nil {
		return fmt.Errorf("open repo package: %w", err)
	}
	defer dest.Close()

	if err := unix.IoctlFileClone(int(dest.Fd()), int(src.Fd())); err != nil {
		os.Remove(destPath)
		return err
	}
	return nil
}

// UnlinkPkg removes pkg's symlink from rootDir, if one exists. A regular
// file (as opposed to a symlink) is left alone, mirroring unlink_pkg.
func UnlinkPkg(rootDir string, pkg *pkgmeta.Package) error {
	path := filepath.Join(rootDir, pkg.Filename)
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return os.Remove(path)
	}
	return nil
}
