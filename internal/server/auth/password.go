package auth

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/mkravec/rastlinka/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters. Changing any of them invalidates stored credentials,
// so treat them as fixed once users exist.
const (
	saltLength       = 16
	pbkdf2Iterations = 210_000
	pbkdf2KeyLength  = 64
)

// HashedPassword holds hex-encoded KDF output and the salt it was derived
// with. Both are safe to persist; neither reveals the password.
type HashedPassword struct {
	Hash string
	Salt string
}

// HashPassword derives a salted PBKDF2-SHA512 hash from the plaintext
// password with a fresh random salt.
func HashPassword(password string) (*HashedPassword, error) {
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", common.ErrValidation)
	}
	salt := common.GenerateRandByteArray(saltLength)
	hash := deriveKey([]byte(password), salt)
	return &HashedPassword{
		Hash: hex.EncodeToString(hash),
		Salt: hex.EncodeToString(salt),
	}, nil
}

// VerifyPassword recomputes the hash for password with the stored salt and
// compares it to expectedHash in constant time. A wrong password yields
// (false, nil); an error is returned only for malformed stored material.
func VerifyPassword(password, saltHex, expectedHashHex string) (bool, error) {
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false, fmt.Errorf("malformed salt: %w", err)
	}
	expected, err := hex.DecodeString(expectedHashHex)
	if err != nil {
		return false, fmt.Errorf("malformed hash: %w", err)
	}

	candidate := deriveKey([]byte(password), salt)
	return subtle.ConstantTimeCompare(candidate, expected) == 1, nil
}

func deriveKey(password, salt []byte) []byte {
	return pbkdf2.Key(password, salt, pbkdf2Iterations, pbkdf2KeyLength, sha512.New)
}
