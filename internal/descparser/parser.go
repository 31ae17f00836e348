// Package descparser implements the DescParser component: it reads the
// desc/depends/files sections of an existing index archive entry and
// fills a pkgmeta.Package. Grounded on original_source/src/desc.c
// (read_desc), reading through internal/archivereader instead of
// bufio.Scanner so that a %HEADER% block's trailing blank line and an
// embedded NUL both terminate the way the original archive_fgets/
// archive_getline do.
package descparser

import (
	"io"
	"strconv"
	"strings"

	"github.com/repogen/repose/internal/archivereader"
	"github.com/repogen/repose/internal/pkgmeta"
)

type scalarSetter func(pkg *pkgmeta.Package, value string)
type listSetter func(pkg *pkgmeta.Package, value string)
type intSetter func(pkg *pkgmeta.Package, value int64)

var scalarHeaders = map[string]scalarSetter{
	"FILENAME":  func(p *pkgmeta.Package, v string) { p.Filename = v },
	"NAME":      func(p *pkgmeta.Package, v string) { p.SetName(v) },
	"BASE":      func(p *pkgmeta.Package, v string) { p.Base = v },
	"VERSION":   func(p *pkgmeta.Package, v string) { p.Version = v },
	"DESC":      func(p *pkgmeta.Package, v string) { p.Desc = v },
	"URL":       func(p *pkgmeta.Package, v string) { p.URL = v },
	"ARCH":      func(p *pkgmeta.Package, v string) { p.Arch = v },
	"PACKAGER":  func(p *pkgmeta.Package, v string) { p.Packager = v },
	"MD5SUM":    func(p *pkgmeta.Package, v string) { p.MD5Sum = v },
	"SHA256SUM": func(p *pkgmeta.Package, v string) { p.SHA256Sum = v },
	"PGPSIG":    func(p *pkgmeta.Package, v string) { p.Base64Sig = v },
}

var intHeaders = map[string]intSetter{
	"CSIZE":     func(p *pkgmeta.Package, v int64) { p.Size = v },
	"ISIZE":     func(p *pkgmeta.Package, v int64) { p.ISize = v },
	"BUILDDATE": func(p *pkgmeta.Package, v int64) { p.BuildDate = v },
}

var listHeaders = map[string]listSetter{
	"GROUPS":       func(p *pkgmeta.Package, v string) { p.Groups = append(p.Groups, v) },
	"LICENSE":      func(p *pkgmeta.Package, v string) { p.Licenses = append(p.Licenses, v) },
	"REPLACES":     func(p *pkgmeta.Package, v string) { p.Replaces = append(p.Replaces, v) },
	"DEPENDS":      func(p *pkgmeta.Package, v string) { p.Depends = append(p.Depends, v) },
	"CONFLICTS":    func(p *pkgmeta.Package, v string) { p.Conflicts = append(p.Conflicts, v) },
	"PROVIDES":     func(p *pkgmeta.Package, v string) { p.Provides = append(p.Provides, v) },
	"OPTDEPENDS":   func(p *pkgmeta.Package, v string) { p.Optdepends = append(p.Optdepends, v) },
	"MAKEDEPENDS":  func(p *pkgmeta.Package, v string) { p.Makedepends = append(p.Makedepends, v) },
	"CHECKDEPENDS": func(p *pkgmeta.Package, v string) { p.Checkdepends = append(p.Checkdepends, v) },
	"FILES":        func(p *pkgmeta.Package, v string) { p.Files = append(p.Files, v) },
}

// ReadDesc reads sections out of r (one of an index archive entry's
// desc/depends/files members) into pkg, until the entry is exhausted.
// Unknown %HEADER% blocks are consumed and discarded.
func ReadDesc(r io.Reader, pkg *pkgmeta.Package) error {
	lr := archivereader.New(r)

	for {
		header, err := lr.Getline()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if !strings.HasPrefix(header, "%") || !strings.HasSuffix(header, "%") {
			// Not a header line where one was expected; skip it and
			// keep scanning rather than aborting the whole entry.
			continue
		}
		name := strings.Trim(header, "%")

		if setter, ok := scalarHeaders[name]; ok {
			value, err := lr.Getline()
			if err != nil && err != io.EOF {
				return err
			}
			setter(pkg, value)
			continue
		}

		if setter, ok := intHeaders[name]; ok {
			value, err := lr.Getline()
			if err != nil && err != io.EOF {
				return err
			}
			n, _ := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
			setter(pkg, n)
			continue
		}

		if setter, ok := listHeaders[name]; ok {
			for {
				value, err := lr.Getline()
				if err != nil || value == "" {
					break
				}
				setter(pkg, value)
			}
			continue
		}

		// Unknown header: consume its block until the blank line.
		for {
			value, err := lr.Getline()
			if err != nil || value == "" {
				break
			}
		}
	}
}
