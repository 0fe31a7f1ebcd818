package keystore

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Klingon-tech/avash/internal/storage"
)

// fastParams returns low-cost Argon2 params for fast tests.
func fastParams() EncryptionParams {
	return EncryptionParams{
		Memory:      64, // 64 KiB (minimal)
		Iterations:  1,
		Parallelism: 1,
	}
}

func TestCache_FirstUserBecomesActive(t *testing.T) {
	c := NewCache()
	if c.Active() != nil {
		t.Fatal("empty cache should have no active user")
	}

	c.Add(User{Username: "alice", Password: "a"}, false)
	c.Add(User{Username: "bob", Password: "b"}, false)

	active := c.Active()
	if active == nil || active.Username != "alice" {
		t.Fatalf("active = %+v, want alice", active)
	}

	c.Add(User{Username: "carol", Password: "c"}, true)
	if got := c.Active().Username; got != "carol" {
		t.Errorf("active = %q, want carol", got)
	}
}

func TestCache_RemoveActiveClearsSelection(t *testing.T) {
	c := NewCache()
	c.Add(User{Username: "alice", Password: "a"}, true)
	c.Remove("alice")

	if c.Has("alice") {
		t.Error("alice still cached")
	}
	if c.Active() != nil {
		t.Error("active user should be cleared")
	}
}

func TestCache_SetActiveUnknown(t *testing.T) {
	c := NewCache()
	if c.SetActive("nobody") {
		t.Error("SetActive on unknown user should fail")
	}
}

func TestSealOpen_Roundtrip(t *testing.T) {
	plaintext := []byte("keystore users")
	sealed, err := Seal(plaintext, []byte("pass"), fastParams())
	if err != nil {
		t.Fatalf("Seal() error: %v", err)
	}

	opened, err := Open(sealed, []byte("pass"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if !bytes.Equal(opened, plaintext) {
		t.Errorf("opened = %q, want %q", opened, plaintext)
	}

	if _, err := Open(sealed, []byte("wrong")); err == nil {
		t.Error("Open with wrong passphrase should fail")
	}
}

func TestOpen_TooShort(t *testing.T) {
	if _, err := Open([]byte{1, 2, 3}, []byte("pass")); err == nil {
		t.Error("expected error for truncated data")
	}
}

func TestVault_SaveLoad(t *testing.T) {
	db := storage.NewMemory()
	v := NewVault(db, fastParams())

	src := NewCache()
	src.Add(User{Username: "alice", Password: "a"}, false)
	src.Add(User{Username: "bob", Password: "b"}, true)

	n, err := v.Save(src, []byte("vault-pass"))
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if n != 2 {
		t.Errorf("saved %d users, want 2", n)
	}

	dst := NewCache()
	n, err = v.Load(dst, []byte("vault-pass"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if n != 2 {
		t.Errorf("loaded %d users, want 2", n)
	}
	if got := dst.Active(); got == nil || got.Username != "bob" || got.Password != "b" {
		t.Errorf("active = %+v, want bob", got)
	}
}

func TestVault_LoadEmpty(t *testing.T) {
	v := NewVault(storage.NewMemory(), fastParams())
	if _, err := v.Load(NewCache(), []byte("x")); !errors.Is(err, ErrNoVault) {
		t.Errorf("err = %v, want ErrNoVault", err)
	}
}
