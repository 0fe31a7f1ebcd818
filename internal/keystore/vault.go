package keystore

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Klingon-tech/avash/internal/storage"
)

// ErrNoVault is returned by Load when nothing has been saved yet.
var ErrNoVault = errors.New("no saved keystore users")

var vaultKey = []byte("users")

type vaultContents struct {
	Active string `json:"active"`
	Users  []User `json:"users"`
}

// Vault persists a passphrase-sealed copy of a Cache.
type Vault struct {
	db     storage.DB
	params EncryptionParams
}

// NewVault stores sealed credentials in db.
func NewVault(db storage.DB, params EncryptionParams) *Vault {
	return &Vault{db: db, params: params}
}

// Save seals every cached user and the active selection.
func (v *Vault) Save(c *Cache, passphrase []byte) (int, error) {
	vc := c.snapshot()
	data, err := json.Marshal(vc)
	if err != nil {
		return 0, fmt.Errorf("encode users: %w", err)
	}
	defer zero(data)

	sealed, err := Seal(data, passphrase, v.params)
	if err != nil {
		return 0, err
	}
	if err := v.db.Put(vaultKey, sealed); err != nil {
		return 0, fmt.Errorf("store users: %w", err)
	}
	return len(vc.Users), nil
}

// Load unseals saved users into c and returns how many were restored.
func (v *Vault) Load(c *Cache, passphrase []byte) (int, error) {
	ok, err := v.db.Has(vaultKey)
	if err != nil {
		return 0, fmt.Errorf("read users: %w", err)
	}
	if !ok {
		return 0, ErrNoVault
	}

	sealed, err := v.db.Get(vaultKey)
	if err != nil {
		return 0, fmt.Errorf("read users: %w", err)
	}
	data, err := Open(sealed, passphrase)
	if err != nil {
		return 0, fmt.Errorf("wrong passphrase or corrupt data: %w", err)
	}
	defer zero(data)

	var vc vaultContents
	if err := json.Unmarshal(data, &vc); err != nil {
		return 0, fmt.Errorf("decode users: %w", err)
	}
	c.restore(vc)
	return len(vc.Users), nil
}
