// Package cryptox holds the password hashing used for ledger accounts and
// the passphrase-based sealing applied to off-site ledger backups.
package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"errors"

	"github.com/dmitrijs2005/officeledger/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	saltSize  = 16
	nonceSize = 12
	keySize   = 32
)

var sealMagic = []byte("OLB1")

var (
	ErrNotSealed  = errors.New("blob is not sealed")
	ErrShortBlob  = errors.New("sealed blob is truncated")
	ErrDecryption = errors.New("decryption failed")
)

// HashPassword returns a bcrypt hash of password. A cost of 0 selects
// bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword reports whether password matches the bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// DeriveKey stretches a passphrase into an AES-256 key with argon2id.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, keySize)
}

// Seal encrypts plaintext with a key derived from passphrase. The output is
// magic | salt | nonce | AES-GCM ciphertext, so Open needs only the passphrase.
func Seal(plaintext, passphrase []byte) ([]byte, error) {
	salt := common.RandomBytes(saltSize)
	nonce := common.RandomBytes(nonceSize)

	gcm, err := newGCM(DeriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(sealMagic)+saltSize+nonceSize+len(plaintext)+gcm.Overhead())
	out = append(out, sealMagic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, plaintext, sealMagic), nil
}

// Open reverses Seal.
func Open(blob, passphrase []byte) ([]byte, error) {
	if !IsSealed(blob) {
		return nil, ErrNotSealed
	}
	rest := blob[len(sealMagic):]
	if len(rest) < saltSize+nonceSize {
		return nil, ErrShortBlob
	}
	salt, nonce, ct := rest[:saltSize], rest[saltSize:saltSize+nonceSize], rest[saltSize+nonceSize:]

	gcm, err := newGCM(DeriveKey(passphrase, salt))
	if err != nil {
		return nil, err
	}
	plaintext, err := gcm.Open(nil, nonce, ct, sealMagic)
	if err != nil {
		return nil, ErrDecryption
	}
	return plaintext, nil
}

// IsSealed reports whether blob starts with the Seal header.
func IsSealed(blob []byte) bool {
	return bytes.HasPrefix(blob, sealMagic)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
