// Package indexwriter implements the IndexWriter component: it serialises a
// pkgcache.Cache into the desc/depends/files tar layout pacman repositories
// read, and deserialises that layout back. Grounded on
// original_source/src/database.c (save_database/load_database), built on
// archive/tar directly instead of libarchive's buffer-then-record calls.
package indexwriter

import (
	"archive/tar"
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"github.com/repogen/repose/internal/digest"
	"github.com/repogen/repose/internal/pkgcache"
	"github.com/repogen/repose/internal/pkginfo"
	"github.com/repogen/repose/internal/pkgmeta"
)

// Signer narrows signer.Signer to the one call the writer needs when a
// package's desc entry asks for a signature that was never loaded from a
// pool .sig file.
type Signer interface {
	SignDetachedBinaryFromFile(path string) ([]byte, error)
}

// Options controls a single WriteIndex call.
type Options struct {
	// PoolDir is the directory package archives live in, used to fill in
	// checksums/files/signatures that weren't already attached to the
	// Package by the scanner.
	PoolDir string
	// Compression selects the filter the tar stream is written through.
	Compression Compression
	// Contents selects which sections get written (DBContents or
	// FilesContents).
	Contents Contents
	// Signer, if non-nil, is consulted for a detached signature when a
	// package has none and Contents includes ContentsDesc. Leave nil to
	// skip signing entirely (an unsigned repository).
	Signer Signer
}

// WriteIndex serialises cache to path: a compressed tar stream containing
// one "<name>-<version>/{desc,depends,files}" entry set per package,
// selected by opts.Contents. The file is written to a temporary sibling and
// renamed into place so a reader never observes a partial index. The
// advisory exclusive lock is taken on that private temporary file only, so
// it does not serialise two writers on the same repository: each writes its
// own temporary file and the last rename wins.
func WriteIndex(path string, cache *pkgcache.Cache, opts Options) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".repogen-index-*")
	if err != nil {
		return pkgmeta.Fatalf(path, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := unix.Flock(int(tmp.Fd()), unix.LOCK_EX); err != nil {
		tmp.Close()
		return pkgmeta.Fatalf(path, fmt.Errorf("lock index for writing: %w", err))
	}

	if err := writeEntries(tmp, cache, opts); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return pkgmeta.Fatalf(path, err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return pkgmeta.Fatalf(path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return pkgmeta.Fatalf(path, err)
	}
	return nil
}

func writeEntries(dst io.Writer, cache *pkgcache.Cache, opts Options) error {
	cw, err := NewWriter(opts.Compression, dst)
	if err != nil {
		return pkgmeta.Fatalf("", err)
	}

	tw := tar.NewWriter(cw)

	for _, pkg := range cache.List() {
		if err := fillLazyFields(pkg, opts); err != nil {
			tw.Close()
			cw.Close()
			return err
		}

		dir := EntryDir(pkg)
		var buf bytes.Buffer

		if opts.Contents&ContentsDesc != 0 {
			buf.Reset()
			WriteDescEntry(&buf, pkg)
			if err := recordEntry(tw, dir+"desc", buf.Bytes()); err != nil {
				tw.Close()
				cw.Close()
				return pkgmeta.Fatalf(pkg.Name, err)
			}
		}
		if opts.Contents&ContentsDepends != 0 {
			buf.Reset()
			WriteDependsEntry(&buf, pkg)
			if err := recordEntry(tw, dir+"depends", buf.Bytes()); err != nil {
				tw.Close()
				cw.Close()
				return pkgmeta.Fatalf(pkg.Name, err)
			}
		}
		if opts.Contents&ContentsFiles != 0 {
			buf.Reset()
			WriteFilesEntry(&buf, pkg)
			if err := recordEntry(tw, dir+"files", buf.Bytes()); err != nil {
				tw.Close()
				cw.Close()
				return pkgmeta.Fatalf(pkg.Name, err)
			}
		}
	}

	if err := tw.Close(); err != nil {
		cw.Close()
		return pkgmeta.Fatalf("", err)
	}
	return cw.Close()
}

// fillLazyFields mirrors compile_desc_entry/compile_files_entry: checksums,
// signature, and file list are only computed the first time a package is
// written, then cached onto the Package so a later rewrite in the same run
// (e.g. .db then .files) doesn't redo the work.
func fillLazyFields(pkg *pkgmeta.Package, opts Options) error {
	needsDesc := opts.Contents&ContentsDesc != 0
	needsFiles := opts.Contents&ContentsFiles != 0

	poolPath := filepath.Join(opts.PoolDir, pkg.Filename)

	if needsDesc && (pkg.MD5Sum == "" || pkg.SHA256Sum == "") {
		sums, err := digest.ComputeFile(poolPath)
		if err != nil {
			return pkgmeta.Fatalf(pkg.Filename, fmt.Errorf("compute checksums: %w", err))
		}
		pkg.MD5Sum = sums.MD5
		pkg.SHA256Sum = sums.SHA256
	}

	if needsDesc && pkg.Base64Sig == "" && opts.Signer != nil {
		if err := pkginfo.LoadPackageSignature(pkg, poolPath); err != nil && !pkgmeta.IsNotFound(err) {
			return err
		}
		if pkg.Base64Sig == "" {
			sig, err := opts.Signer.SignDetachedBinaryFromFile(poolPath)
			if err != nil {
				return pkgmeta.Fatalf(pkg.Filename, fmt.Errorf("sign package: %w", err))
			}
			pkg.Base64Sig = signatureToBase64(sig)
		}
	}

	if needsFiles && pkg.Files == nil {
		if err := pkginfo.LoadPackageFiles(pkg, poolPath); err != nil {
			return err
		}
	}

	return nil
}

func recordEntry(tw *tar.Writer, name string, data []byte) error {
	now := time.Now()
	hdr := &tar.Header{
		Name:     name,
		Typeflag: tar.TypeReg,
		Mode:     0644,
		Size:     int64(len(data)),
		ModTime:  now,
		// pax_restricted format: omit uid/gid/uname/gname, matching the
		// archive_write_set_format_pax_restricted default identity fields.
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err := tw.Write(data)
	return err
}

func signatureToBase64(sig []byte) string {
	return base64.StdEncoding.EncodeToString(sig)
}
