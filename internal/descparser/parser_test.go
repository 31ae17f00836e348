package descparser

import (
	"strings"
	"testing"

	"github.com/repogen/repose/internal/pkgmeta"
)

func TestReadDescScalarAndIntHeaders(t *testing.T) {
	entry := `%FILENAME%
pacman-6.1.0-1-x86_64.pkg.tar.zst

%NAME%
pacman

%VERSION%
6.1.0-1

%CSIZE%
5242880

%ISIZE%
12345000

%MD5SUM%
d41d8cd98f00b204e9800998ecf8427e

%ARCH%
x86_64
`
	pkg := &pkgmeta.Package{}
	if err := ReadDesc(strings.NewReader(entry), pkg); err != nil {
		t.Fatalf("ReadDesc returned error: %v", err)
	}

	if pkg.Name != "pacman" {
		t.Errorf("Name = %q, want pacman", pkg.Name)
	}
	if pkg.NameHash != pkgmeta.Sdbm("pacman") {
		t.Error("NameHash was not kept in sync with Name")
	}
	if pkg.Version != "6.1.0-1" {
		t.Errorf("Version = %q, want 6.1.0-1", pkg.Version)
	}
	if pkg.Size != 5242880 {
		t.Errorf("Size = %d, want 5242880", pkg.Size)
	}
	if pkg.ISize != 12345000 {
		t.Errorf("ISize = %d, want 12345000", pkg.ISize)
	}
	if pkg.MD5Sum != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Errorf("MD5Sum = %q, want the sample hash", pkg.MD5Sum)
	}
	if pkg.Arch != "x86_64" {
		t.Errorf("Arch = %q, want x86_64", pkg.Arch)
	}
}

func TestReadDescListHeaderAccumulates(t *testing.T) {
	entry := `%DEPENDS%
glibc
bash
libarchive.so=15-64

%NAME%
foo
`
	pkg := &pkgmeta.Package{}
	if err := ReadDesc(strings.NewReader(entry), pkg); err != nil {
		t.Fatalf("ReadDesc returned error: %v", err)
	}

	want := []string{"glibc", "bash", "libarchive.so=15-64"}
	if len(pkg.Depends) != len(want) {
		t.Fatalf("Depends = %v, want %v", pkg.Depends, want)
	}
	for i, v := range want {
		if pkg.Depends[i] != v {
			t.Errorf("Depends[%d] = %q, want %q", i, pkg.Depends[i], v)
		}
	}
	if pkg.Name != "foo" {
		t.Errorf("Name = %q, want foo (parsing must continue after a list header)", pkg.Name)
	}
}

func TestReadDescUnknownHeaderIsSkipped(t *testing.T) {
	entry := `%SOMETHINGNEW%
value one
value two

%NAME%
survives
`
	pkg := &pkgmeta.Package{}
	if err := ReadDesc(strings.NewReader(entry), pkg); err != nil {
		t.Fatalf("ReadDesc returned error: %v", err)
	}
	if pkg.Name != "survives" {
		t.Errorf("Name = %q, want survives", pkg.Name)
	}
}

func TestReadDescEmptyEntry(t *testing.T) {
	pkg := &pkgmeta.Package{}
	if err := ReadDesc(strings.NewReader(""), pkg); err != nil {
		t.Fatalf("ReadDesc on empty entry returned error: %v", err)
	}
	if pkg.Name != "" {
		t.Errorf("Name = %q, want empty", pkg.Name)
	}
}

func TestReadDescFilesSection(t *testing.T) {
	entry := `%FILES%
usr/bin/pacman
usr/share/man/man8/pacman.8

`
	pkg := &pkgmeta.Package{}
	if err := ReadDesc(strings.NewReader(entry), pkg); err != nil {
		t.Fatalf("ReadDesc returned error: %v", err)
	}
	want := []string{"usr/bin/pacman", "usr/share/man/man8/pacman.8"}
	if len(pkg.Files) != len(want) {
		t.Fatalf("Files = %v, want %v", pkg.Files, want)
	}
}
