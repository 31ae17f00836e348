package signer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
)

func writeTestKey(t *testing.T) string {
	t.Helper()

	entity, err := openpgp.NewEntity("repose test", "", "repose-test@example.com", nil)
	if err != nil {
		t.Fatalf("openpgp.NewEntity: %v", err)
	}

	path := filepath.Join(t.TempDir(), "test.key")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w, err := armor.Encode(f, openpgp.PrivateKeyType, nil)
	if err != nil {
		t.Fatalf("armor.Encode: %v", err)
	}
	if err := entity.SerializePrivate(w, nil); err != nil {
		t.Fatalf("SerializePrivate: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSignDetachedBinaryThenVerify(t *testing.T) {
	keyPath := writeTestKey(t)
	s, err := NewGPGSigner(keyPath, "")
	if err != nil {
		t.Fatalf("NewGPGSigner: %v", err)
	}

	data := []byte("repose.db.tar.zst contents")
	sig, err := s.SignDetachedBinary(data)
	if err != nil {
		t.Fatalf("SignDetachedBinary: %v", err)
	}
	if len(sig) == 0 {
		t.Fatal("SignDetachedBinary returned an empty signature")
	}

	dir := t.TempDir()
	dataPath := filepath.Join(dir, "repo.db.tar.zst")
	sigPath := dataPath + ".sig"
	if err := os.WriteFile(dataPath, data, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(sigPath, sig, 0644); err != nil {
		t.Fatal(err)
	}

	if err := s.VerifyDetachedBinaryFromFile(dataPath, sigPath); err != nil {
		t.Errorf("VerifyDetachedBinaryFromFile failed on a genuine signature: %v", err)
	}
}

func TestVerifyDetachedBinaryRejectsTamperedData(t *testing.T) {
	keyPath := writeTestKey(t)
	s, err := NewGPGSigner(keyPath, "")
	if err != nil {
		t.Fatalf("NewGPGSigner: %v", err)
	}

	dir := t.TempDir()
	dataPath := filepath.Join(dir, "repo.db.tar.zst")
	if err := os.WriteFile(dataPath, []byte("original"), 0644); err != nil {
		t.Fatal(err)
	}

	sig, err := s.SignDetachedBinaryFromFile(dataPath)
	if err != nil {
		t.Fatalf("SignDetachedBinaryFromFile: %v", err)
	}
	sigPath := dataPath + ".sig"
	if err := os.WriteFile(sigPath, sig, 0644); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(dataPath, []byte("tampered!"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := s.VerifyDetachedBinaryFromFile(dataPath, sigPath); err == nil {
		t.Error("VerifyDetachedBinaryFromFile should reject a signature over modified data")
	}
}

func TestGetPublicKeyReturnsArmoredBlock(t *testing.T) {
	keyPath := writeTestKey(t)
	s, err := NewGPGSigner(keyPath, "")
	if err != nil {
		t.Fatalf("NewGPGSigner: %v", err)
	}

	pub, err := s.GetPublicKey()
	if err != nil {
		t.Fatalf("GetPublicKey: %v", err)
	}
	if !strings.Contains(string(pub), "BEGIN PGP PUBLIC KEY BLOCK") {
		t.Error("GetPublicKey should return an armored public key block")
	}
}
