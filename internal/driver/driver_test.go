package driver

import (
	"archive/tar"
	"os"
	"path/filepath"
	"testing"

	"github.com/repogen/repose/internal/config"
	"github.com/repogen/repose/internal/indexwriter"
)

func writePoolPackage(t *testing.T, pool, filename, pkginfo string) {
	t.Helper()
	f, err := os.Create(filepath.Join(pool, filename))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	tw := tar.NewWriter(f)
	defer tw.Close()

	hdr := &tar.Header{Name: ".PKGINFO", Size: int64(len(pkginfo)), Mode: 0644}
	if err := tw.WriteHeader(hdr); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Write([]byte(pkginfo)); err != nil {
		t.Fatal(err)
	}
}

const fooPkginfo = `pkgname = foo
pkgbase = foo
pkgver = 1.0-1
pkgdesc = a test package
arch = any
`

func TestRunBuildsIndexAndPublishesPool(t *testing.T) {
	pool := t.TempDir()
	root := t.TempDir()
	writePoolPackage(t, pool, "foo-1.0-1-any.pkg.tar", fooPkginfo)

	cfg := config.Config{
		RepoName:    "core",
		Root:        root,
		Pool:        pool,
		Arch:        "any",
		Compression: indexwriter.None,
	}

	d := New(cfg, nil)
	if err := d.Run(); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	dbLink := filepath.Join(root, "core.db")
	info, err := os.Lstat(dbLink)
	if err != nil {
		t.Fatalf("expected core.db symlink: %v", err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Error("core.db should be a symlink to the compressed tar archive")
	}

	target, err := os.Readlink(dbLink)
	if err != nil {
		t.Fatal(err)
	}
	if target != "core.db.tar" {
		t.Errorf("core.db symlink target = %q, want core.db.tar", target)
	}

	if _, err := os.Stat(filepath.Join(root, "core.db.tar")); err != nil {
		t.Fatalf("core.db.tar should exist: %v", err)
	}

	pkgLink := filepath.Join(root, "foo-1.0-1-any.pkg.tar")
	pkgInfo, err := os.Lstat(pkgLink)
	if err != nil {
		t.Fatalf("expected package symlink in root: %v", err)
	}
	if pkgInfo.Mode()&os.ModeSymlink == 0 {
		t.Error("published package should be a symlink into the pool")
	}
}

func TestRunIsNoopOnSecondPassWithUnchangedPool(t *testing.T) {
	pool := t.TempDir()
	root := t.TempDir()
	writePoolPackage(t, pool, "foo-1.0-1-any.pkg.tar", fooPkginfo)

	cfg := config.Config{
		RepoName:    "core",
		Root:        root,
		Pool:        pool,
		Arch:        "any",
		Compression: indexwriter.None,
	}

	if err := New(cfg, nil).Run(); err != nil {
		t.Fatalf("first Run returned error: %v", err)
	}

	dbPath := filepath.Join(root, "core.db.tar")
	before, err := os.Stat(dbPath)
	if err != nil {
		t.Fatal(err)
	}

	if err := New(cfg, nil).Run(); err != nil {
		t.Fatalf("second Run returned error: %v", err)
	}

	after, err := os.Stat(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if before.ModTime() != after.ModTime() {
		t.Error("a second Run over an unchanged pool should not rewrite the index")
	}
}

func TestRunDropRemovesPackageFromIndex(t *testing.T) {
	pool := t.TempDir()
	root := t.TempDir()
	writePoolPackage(t, pool, "foo-1.0-1-any.pkg.tar", fooPkginfo)

	cfg := config.Config{
		RepoName:    "core",
		Root:        root,
		Pool:        pool,
		Arch:        "any",
		Compression: indexwriter.None,
	}
	if err := New(cfg, nil).Run(); err != nil {
		t.Fatalf("initial Run returned error: %v", err)
	}

	dropCfg := cfg
	dropCfg.Drop = true
	dropCfg.Targets = []string{"foo"}
	if err := New(dropCfg, nil).Run(); err != nil {
		t.Fatalf("drop Run returned error: %v", err)
	}

	cache, err := indexwriter.LoadIndex(filepath.Join(root, "core.db.tar"), indexwriter.None)
	if err != nil {
		t.Fatalf("LoadIndex after drop returned error: %v", err)
	}
	if cache.Find("foo") != nil {
		t.Error("foo should have been dropped from the index")
	}
}
