package indexwriter

import (
	"fmt"
	"io"
	"strings"

	"github.com/repogen/repose/internal/pkgmeta"
)

// Contents selects which of the desc/depends/files sections a package
// directory gets: the .db index is desc+depends, the .files index is
// files alone.
type Contents int

const (
	ContentsDesc Contents = 1 << iota
	ContentsDepends
	ContentsFiles
)

const DBContents = ContentsDesc | ContentsDepends
const FilesContents = ContentsFiles

func writeString(w io.Writer, header, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(w, "%%%s%%\n%s\n\n", header, value)
}

func writeInt(w io.Writer, header string, value int64) {
	fmt.Fprintf(w, "%%%s%%\n%d\n\n", header, value)
}

func writeList(w io.Writer, header string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(w, "%%%s%%\n", header)
	for _, v := range values {
		fmt.Fprintf(w, "%s\n", v)
	}
	fmt.Fprint(w, "\n")
}

// WriteDescEntry writes the "desc" section in pacman's field order.
func WriteDescEntry(w io.Writer, pkg *pkgmeta.Package) {
	writeString(w, "FILENAME", pkg.Filename)
	writeString(w, "NAME", pkg.Name)
	writeString(w, "BASE", pkg.Base)
	writeString(w, "VERSION", pkg.Version)
	writeString(w, "DESC", pkg.Desc)
	writeList(w, "GROUPS", pkg.Groups)
	writeInt(w, "CSIZE", pkg.Size)
	writeInt(w, "ISIZE", pkg.ISize)
	writeString(w, "MD5SUM", pkg.MD5Sum)
	writeString(w, "SHA256SUM", pkg.SHA256Sum)
	writeString(w, "PGPSIG", pkg.Base64Sig)
	writeString(w, "URL", pkg.URL)
	writeList(w, "LICENSE", pkg.Licenses)
	writeString(w, "ARCH", pkg.Arch)
	writeInt(w, "BUILDDATE", pkg.BuildDate)
	writeString(w, "PACKAGER", pkg.Packager)
	writeList(w, "REPLACES", pkg.Replaces)
}

// WriteDependsEntry writes the "depends" section field order.
func WriteDependsEntry(w io.Writer, pkg *pkgmeta.Package) {
	writeList(w, "DEPENDS", pkg.Depends)
	writeList(w, "CONFLICTS", pkg.Conflicts)
	writeList(w, "PROVIDES", pkg.Provides)
	writeList(w, "OPTDEPENDS", pkg.Optdepends)
	writeList(w, "MAKEDEPENDS", pkg.Makedepends)
	writeList(w, "CHECKDEPENDS", pkg.Checkdepends)
}

// WriteFilesEntry writes the "files" section.
func WriteFilesEntry(w io.Writer, pkg *pkgmeta.Package) {
	writeList(w, "FILES", pkg.Files)
}

// EntryDir returns the "<name>-<version>/" directory a package's sections
// are stored under.
func EntryDir(pkg *pkgmeta.Package) string {
	return pkg.Name + "-" + pkg.Version + "/"
}

// SplitEntryName splits an index archive member path ("<name>-<version>/type")
// into name, version, and type. It returns ok=false if the directory
// component doesn't contain at least two dashes, since that means the
// name-version split is corrupt.
func SplitEntryName(pathname string) (name, version, typ string, ok bool) {
	slash := strings.IndexByte(pathname, '/')
	dir := pathname
	if slash >= 0 {
		dir = pathname[:slash]
		typ = pathname[slash+1:]
	}

	dash := strings.LastIndexByte(dir, '-')
	if dash < 0 {
		return "", "", "", false
	}
	dash2 := strings.LastIndexByte(dir[:dash], '-')
	if dash2 < 0 {
		return "", "", "", false
	}

	return dir[:dash2], dir[dash2+1 : dash], typ, true
}
