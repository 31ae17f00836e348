// Package signer implements the Signer/Verifier adapter over pacman's
// per-archive detached OpenPGP .sig files (binary, not ASCII-armored, unlike
// Debian's Release.gpg or RPM's repomd.xml.asc). Verification is grounded
// on original_source/src/signing.c's gpgme_verify.
package signer

// Signer creates and verifies the detached binary signatures pacman expects
// alongside each .db/.files/.pkg.tar* archive.
type Signer interface {
	// SignDetachedBinary creates a detached, non-armored signature over
	// data.
	SignDetachedBinary(data []byte) ([]byte, error)

	// SignDetachedBinaryFromFile creates a detached, non-armored signature
	// directly from the file at path, avoiding loading large package
	// archives into memory.
	SignDetachedBinaryFromFile(path string) ([]byte, error)

	// VerifyDetachedBinaryFromFile checks a detached signature file
	// against the data file it covers, returning an error if the
	// signature is missing, corrupt, or does not verify.
	VerifyDetachedBinaryFromFile(dataPath, sigPath string) error

	// GetPublicKey returns the public key in armored format.
	GetPublicKey() ([]byte, error)
}
