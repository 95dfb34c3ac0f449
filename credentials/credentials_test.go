package credentials

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testEncryptionKey is a fixed 32-byte key for testing (hex-encoded to 64 chars)
const testEncryptionKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func newTestStore(t *testing.T) *Store {
	t.Helper()
	t.Setenv("VENDA_CONFIG_DIR", t.TempDir())
	t.Setenv("VENDA_ENCRYPTION_KEY", testEncryptionKey)

	store, err := NewStoreWithKeyProvider(NewEnvKeyProvider("VENDA_ENCRYPTION_KEY"))
	if err != nil {
		t.Fatalf("NewStoreWithKeyProvider() error = %v", err)
	}
	return store
}

func TestCredentialsDirFromEnv(t *testing.T) {
	t.Setenv("VENDA_CONFIG_DIR", "/tmp/venda-creds")

	dir, err := CredentialsDir()
	if err != nil {
		t.Fatalf("CredentialsDir() error = %v", err)
	}
	if dir != "/tmp/venda-creds" {
		t.Errorf("CredentialsDir() = %v, want /tmp/venda-creds", dir)
	}
}

func TestSaveAndLoad(t *testing.T) {
	store := newTestStore(t)

	creds := &Credentials{
		DBPassword: "s3cret-password",
		DBUser:     "venda",
		DBHost:     "db.internal",
	}
	if err := store.Save(creds); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.DBPassword != "s3cret-password" {
		t.Errorf("DBPassword = %v, want s3cret-password", loaded.DBPassword)
	}
	if loaded.DBUser != "venda" {
		t.Errorf("DBUser = %v, want venda", loaded.DBUser)
	}
	if loaded.LastUpdated.IsZero() {
		t.Error("LastUpdated should be set on save")
	}
}

func TestPasswordEncryptedAtRest(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(&Credentials{DBPassword: "plaintext-secret"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	path, err := CredentialsPath()
	if err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading credentials file: %v", err)
	}
	if strings.Contains(string(raw), "plaintext-secret") {
		t.Error("password stored in plaintext")
	}
}

func TestLoadMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load()
	if !errors.Is(err, ErrNoCredentials) {
		t.Errorf("Load() error = %v, want ErrNoCredentials", err)
	}
}

func TestLoadCorrupted(t *testing.T) {
	store := newTestStore(t)

	path, err := CredentialsPath()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("db_password: not-base64!!\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Load(); err == nil {
		t.Error("Load() should fail on corrupted ciphertext")
	}
}

func TestSaveValidation(t *testing.T) {
	store := newTestStore(t)

	if err := store.Save(nil); err == nil {
		t.Error("Save(nil) should fail")
	}
	if err := store.Save(&Credentials{}); err == nil {
		t.Error("Save() without password should fail")
	}
}

func TestDeleteAndExists(t *testing.T) {
	store := newTestStore(t)

	if store.Exists() {
		t.Error("Exists() should be false before save")
	}

	if err := store.Save(&Credentials{DBPassword: "pw"}); err != nil {
		t.Fatal(err)
	}
	if !store.Exists() {
		t.Error("Exists() should be true after save")
	}

	if err := store.Delete(); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if store.Exists() {
		t.Error("Exists() should be false after delete")
	}

	// Deleting again is fine.
	if err := store.Delete(); err != nil {
		t.Errorf("second Delete() error = %v", err)
	}
}

func TestMaskCredential(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "****"},
		{"abc", "****"},
		{"secretpw", "se****pw"},
	}
	for _, tc := range tests {
		if got := MaskCredential(tc.in); got != tc.want {
			t.Errorf("MaskCredential(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
