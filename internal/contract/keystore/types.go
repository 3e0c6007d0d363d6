package keystore

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrExists is returned when creating a keystore over an existing file.
	ErrExists = errors.New("keystore already exists")
	// ErrInvalidPassword is returned when the MAC does not match.
	ErrInvalidPassword = errors.New("invalid password")
)

// Service stores a signing secret in an encrypted keystore file
type Service interface {
	// Create encrypts seed with password and writes it to path
	Create(ctx context.Context, path string, address string, seed string, password string) (*KeystoreJSON, error)

	// Load reads a keystore file
	Load(ctx context.Context, path string) (*KeystoreJSON, error)

	// Decrypt returns the secret seed stored in keystore
	Decrypt(ctx context.Context, keystore *KeystoreJSON, password string) (string, error)
}

// KeystoreJSON is the on-disk keystore v3 style JSON structure
//
//nolint:revive // KeystoreJSON mirrors the keystore v3 naming
type KeystoreJSON struct {
	Version int    `json:"version"`
	ID      string `json:"id"`
	Address string `json:"address"`
	Crypto  struct {
		Ciphertext   string `json:"ciphertext"`
		CipherParams struct {
			IV string `json:"iv"`
		} `json:"cipherparams"`
		Cipher    string `json:"cipher"`
		KDF       string `json:"kdf"`
		KDFParams struct {
			DKLen int    `json:"dklen"`
			Salt  string `json:"salt"`
			N     int    `json:"n"`
			R     int    `json:"r"`
			P     int    `json:"p"`
		} `json:"kdfparams"`
		MAC string `json:"mac"`
	} `json:"crypto"`
}

// ScryptParams defines scrypt KDF parameters
type ScryptParams struct {
	DKLen int // Derived key length (32 bytes)
	Salt  []byte
	N     int // CPU/memory cost parameter (262144)
	R     int // Block size parameter (8)
	P     int // Parallelization parameter (1)
}

// DefaultScryptParams returns the default scrypt parameters
func DefaultScryptParams() *ScryptParams {
	const (
		scryptDKLen = 32     // Derived key length (32 bytes)
		scryptN     = 262144 // CPU/memory cost parameter (2^18)
		scryptR     = 8      // Block size parameter
		scryptP     = 1      // Parallelization parameter
	)

	return &ScryptParams{
		DKLen: scryptDKLen,
		N:     scryptN,
		R:     scryptR,
		P:     scryptP,
	}
}
