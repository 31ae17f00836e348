// Package digest computes the md5sum/sha256sum fields the IndexWriter fills
// in lazily when it first writes a package's desc entry. Only md5 and
// sha256 are computed: pacman dropped sha1/sha512 from its desc format long
// ago, so there is no need to hash a field the index never stores.
package digest

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// Sums is the pair of checksums recorded in a package's desc entry.
type Sums struct {
	MD5    string
	SHA256 string
}

// ComputeFile streams path through both hashes in a single pass.
func ComputeFile(path string) (Sums, error) {
	f, err := os.Open(path)
	if err != nil {
		return Sums{}, err
	}
	defer f.Close()

	md5h := md5.New()
	sha256h := sha256.New()

	if _, err := io.Copy(io.MultiWriter(md5h, sha256h), f); err != nil {
		return Sums{}, err
	}

	return Sums{
		MD5:    hex.EncodeToString(md5h.Sum(nil)),
		SHA256: hex.EncodeToString(sha256h.Sum(nil)),
	}, nil
}
