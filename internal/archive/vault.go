package archive

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 100000
	keyLength        = 32
)

// Vault seals snapshot payloads and the stored API key with a key
// derived from the operator's password. The club name salts the
// derivation so two clubs with the same password get different keys.
type Vault struct {
	key []byte
}

// NewVault derives the sealing key from a password and club name.
func NewVault(password, club string) *Vault {
	key := pbkdf2.Key([]byte(password), []byte(club), pbkdf2Iterations, keyLength, sha256.New)
	return &Vault{key: key}
}

// Seal encrypts a payload. The nonce is prepended to the ciphertext.
func (v *Vault) Seal(plain []byte) ([]byte, error) {
	gcm, err := v.gcm()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

// Open decrypts a payload sealed by Seal. A wrong password surfaces as
// an authentication error.
func (v *Vault) Open(sealed []byte) ([]byte, error) {
	gcm, err := v.gcm()
	if err != nil {
		return nil, err
	}
	if len(sealed) < gcm.NonceSize() {
		return nil, fmt.Errorf("sealed payload too short")
	}
	nonce, cipherText := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, cipherText, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt: wrong password or corrupt data: %w", err)
	}
	return plain, nil
}

func (v *Vault) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(v.key)
	if err != nil {
		return nil, fmt.Errorf("build cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("build gcm: %w", err)
	}
	return gcm, nil
}

// WriteKeyFile seals the API key into the given file, creating the
// directory if needed.
func (v *Vault) WriteKeyFile(path, apiKey string) error {
	sealed, err := v.Seal([]byte(apiKey))
	if err != nil {
		return fmt.Errorf("seal api key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create key directory: %w", err)
	}
	if err := os.WriteFile(path, sealed, 0o600); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}
	return nil
}

// ReadKeyFile opens a sealed API key file.
func (v *Vault) ReadKeyFile(path string) (string, error) {
	sealed, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read key file: %w", err)
	}
	plain, err := v.Open(sealed)
	if err != nil {
		return "", fmt.Errorf("open key file: %w", err)
	}
	return string(plain), nil
}
