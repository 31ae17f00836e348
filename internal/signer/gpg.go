package signer

import (
	"bytes"
	"crypto"
	"fmt"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
)

// GPGSigner implements Signer using an in-memory OpenPGP entity loaded from
// a private key file.
type GPGSigner struct {
	entity *openpgp.Entity
}

// NewGPGSigner creates a new GPG signer from a private key file, accepting
// either an armored or binary keyring.
func NewGPGSigner(keyPath, passphrase string) (*GPGSigner, error) {
	if keyPath == "" {
		return nil, fmt.Errorf("key path is empty")
	}

	keyFile, err := os.Open(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open key file: %w", err)
	}
	defer keyFile.Close()

	entityList, err := openpgp.ReadArmoredKeyRing(keyFile)
	if err != nil {
		keyFile.Seek(0, 0)
		entityList, err = openpgp.ReadKeyRing(keyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read key: %w", err)
		}
	}

	if len(entityList) == 0 {
		return nil, fmt.Errorf("no keys found in key file")
	}

	entity := entityList[0]

	if passphrase != "" {
		if entity.PrivateKey != nil && entity.PrivateKey.Encrypted {
			if err := entity.PrivateKey.Decrypt([]byte(passphrase)); err != nil {
				return nil, fmt.Errorf("failed to decrypt private key: %w", err)
			}
		}
		for _, subkey := range entity.Subkeys {
			if subkey.PrivateKey != nil && subkey.PrivateKey.Encrypted {
				if err := subkey.PrivateKey.Decrypt([]byte(passphrase)); err != nil {
					return nil, fmt.Errorf("failed to decrypt subkey: %w", err)
				}
			}
		}
	}

	return &GPGSigner{entity: entity}, nil
}

// SignDetachedBinary creates a detached, non-armored signature over data,
// the format pacman's makepkg/repo-add write to a package's or database's
// .sig file.
func (s *GPGSigner) SignDetachedBinary(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	err := openpgp.DetachSign(&buf, s.entity, bytes.NewReader(data), &packet.Config{
		DefaultHash: crypto.SHA256,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create detached signature: %w", err)
	}
	return buf.Bytes(), nil
}

// SignDetachedBinaryFromFile streams the file at path through
// SignDetachedBinary without loading the whole package archive into memory
// up front.
func (s *GPGSigner) SignDetachedBinaryFromFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	err = openpgp.DetachSign(&buf, s.entity, f, &packet.Config{
		DefaultHash: crypto.SHA256,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sign %s: %w", path, err)
	}
	return buf.Bytes(), nil
}

// VerifyDetachedBinaryFromFile checks the signature file at sigPath against
// dataPath, using this signer's own entity as the trusted keyring. Grounded
// on original_source/src/signing.c's gpgme_verify, which repose calls
// before resigning an already-signed repository.
func (s *GPGSigner) VerifyDetachedBinaryFromFile(dataPath, sigPath string) error {
	data, err := os.Open(dataPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", dataPath, err)
	}
	defer data.Close()

	sig, err := os.Open(sigPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", sigPath, err)
	}
	defer sig.Close()

	_, err = openpgp.CheckDetachedSignature(openpgp.EntityList{s.entity}, data, sig, nil)
	if err != nil {
		return fmt.Errorf("signature verification failed: %w", err)
	}
	return nil
}

// GetPublicKey returns the public key in armored format.
func (s *GPGSigner) GetPublicKey() ([]byte, error) {
	var buf bytes.Buffer

	w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	if err != nil {
		return nil, err
	}
	if err := s.entity.Serialize(w); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
