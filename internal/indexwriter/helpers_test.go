package indexwriter

import (
	"archive/tar"
	"os"
)

// writeFakePackageArchive writes a minimal uncompressed pool archive
// containing one real file entry, for tests exercising the files-section
// lazy fill-in (pkginfo.LoadPackageFiles).
func writeFakePackageArchive(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	tw := tar.NewWriter(f)
	data := []byte("#!/bin/sh\necho hi\n")
	if err := tw.WriteHeader(&tar.Header{
		Name: "usr/bin/foo",
		Mode: 0755,
		Size: int64(len(data)),
	}); err != nil {
		return err
	}
	if _, err := tw.Write(data); err != nil {
		return err
	}
	return tw.Close()
}
