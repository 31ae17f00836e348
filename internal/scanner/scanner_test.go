package scanner

import (
	"archive/tar"
	"os"
	"path/filepath"
	"testing"

	"github.com/repogen/repose/internal/pkgmeta"
)

func writePkgArchive(t *testing.T, path, pkginfo string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()

	tw := tar.NewWriter(f)
	data := []byte(pkginfo)
	if err := tw.WriteHeader(&tar.Header{Name: ".PKGINFO", Mode: 0644, Size: int64(len(data))}); err != nil {
		t.Fatalf("write header: %v", err)
	}
	if _, err := tw.Write(data); err != nil {
		t.Fatalf("write data: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar: %v", err)
	}
}

func TestLoadKeepsNewestVersion(t *testing.T) {
	dir, err := os.MkdirTemp("", "repose-scanner-")
	if err != nil {
		t.Fatalf("mkdtemp: %v", err)
	}
	defer os.RemoveAll(dir)

	writePkgArchive(t, filepath.Join(dir, "foo-1.0-1-x86_64.pkg.tar"),
		"pkgname = foo\npkgver = 1.0-1\narch = x86_64\n")
	writePkgArchive(t, filepath.Join(dir, "foo-2.0-1-x86_64.pkg.tar"),
		"pkgname = foo\npkgver = 2.0-1\narch = x86_64\n")

	cache, err := Load(dir, Options{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cache.Len() != 1 {
		t.Fatalf("cache.Len() = %d, want 1", cache.Len())
	}
	got := cache.Find("foo")
	if got == nil {
		t.Fatal("missing foo in cache")
	}
	if got.Version != "2.0-1" {
		t.Errorf("version = %q, want 2.0-1 (newest)", got.Version)
	}
}

func TestLoadSkipsNonPackageFiles(t *testing.T) {
	dir, err := os.MkdirTemp("", "repose-scanner-skip-")
	if err != nil {
		t.Fatalf("mkdtemp: %v", err)
	}
	defer os.RemoveAll(dir)

	if err := os.WriteFile(filepath.Join(dir, "test-repo.db"), []byte("not a package"), 0644); err != nil {
		t.Fatalf("write stray file: %v", err)
	}
	writePkgArchive(t, filepath.Join(dir, "bar-1.0-1-any.pkg.tar"), "pkgname = bar\npkgver = 1.0-1\narch = any\n")

	cache, err := Load(dir, Options{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cache.Len() != 1 {
		t.Fatalf("cache.Len() = %d, want 1", cache.Len())
	}
}

func TestMatchTargets(t *testing.T) {
	pkg := &pkgmeta.Package{Name: "foo", Version: "1.0-1", Filename: "foo-1.0-1-x86_64.pkg.tar.zst"}

	cases := []struct {
		target string
		want   bool
	}{
		{"foo", true},
		{"foo-1.0-1-x86_64.pkg.tar.zst", true},
		{"foo-*", true},
		{"bar", false},
	}
	for _, c := range cases {
		if got := MatchTargets(pkg, []string{c.target}); got != c.want {
			t.Errorf("MatchTargets(%q) = %v, want %v", c.target, got, c.want)
		}
	}
}

func TestMatchArch(t *testing.T) {
	pkg := &pkgmeta.Package{Arch: "any"}
	if !MatchArch(pkg, "x86_64") {
		t.Error("arch \"any\" should match every filter")
	}
	pkg.Arch = "x86_64"
	if !MatchArch(pkg, "x86_64") {
		t.Error("exact arch match should succeed")
	}
	if MatchArch(pkg, "aarch64") {
		t.Error("mismatched arch should not match")
	}
}
