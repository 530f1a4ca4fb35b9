package archive

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestVaultSealOpenRoundTrip(t *testing.T) {
	v := NewVault("correct horse", "Test SC")

	plain := []byte(`{"Guid":"m1"}`)
	sealed, err := v.Seal(plain)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if bytes.Contains(sealed, plain) {
		t.Fatalf("sealed payload contains plaintext")
	}

	opened, err := v.Open(sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(opened, plain) {
		t.Fatalf("round trip = %q, want %q", opened, plain)
	}
}

func TestVaultWrongPassword(t *testing.T) {
	sealed, err := NewVault("correct horse", "Test SC").Seal([]byte("secret"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := NewVault("wrong horse", "Test SC").Open(sealed); err == nil {
		t.Fatalf("expected open to fail with the wrong password")
	}
}

func TestVaultClubSaltsKey(t *testing.T) {
	sealed, err := NewVault("correct horse", "Club A").Seal([]byte("secret"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := NewVault("correct horse", "Club B").Open(sealed); err == nil {
		t.Fatalf("expected open to fail with a different club salt")
	}
}

func TestVaultKeyFileRoundTrip(t *testing.T) {
	v := NewVault("correct horse", "Test SC")
	path := filepath.Join(t.TempDir(), "keys", "apikey.enc")

	if err := v.WriteKeyFile(path, "api-key-123"); err != nil {
		t.Fatalf("write key file: %v", err)
	}
	got, err := v.ReadKeyFile(path)
	if err != nil {
		t.Fatalf("read key file: %v", err)
	}
	if got != "api-key-123" {
		t.Fatalf("key = %q", got)
	}
}
