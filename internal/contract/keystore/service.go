// Package keystore keeps a signing secret in a password protected file.
package keystore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github/chapool/go-invoker/internal/util"
)

const fileMode = 0o600

type service struct {
	params ScryptParams
}

// NewService creates a new keystore Service. nil params selects
// DefaultScryptParams.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(params *ScryptParams) Service {
	if params == nil {
		params = DefaultScryptParams()
	}

	return &service{params: *params}
}

// Create encrypts seed with password and writes it to path
func (s *service) Create(ctx context.Context, path string, address string, seed string, password string) (*KeystoreJSON, error) {
	log := util.LogFromContext(ctx)

	if _, err := os.Stat(path); err == nil {
		return nil, errors.Wrap(ErrExists, path)
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to check keystore existence")
	}

	ks, err := encryptSeed(seed, password, s.params)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encrypt seed")
		return nil, errors.Wrap(err, "failed to encrypt seed")
	}
	ks.Address = address

	data, err := json.MarshalIndent(ks, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal keystore JSON")
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, errors.Wrap(err, "failed to create keystore directory")
		}
	}

	if err := os.WriteFile(path, data, fileMode); err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to write keystore")
		return nil, errors.Wrap(err, "failed to write keystore")
	}

	log.Info().Str("path", path).Str("address", address).Msg("Keystore created")

	return ks, nil
}

// Load reads a keystore file
func (s *service) Load(_ context.Context, path string) (*KeystoreJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read keystore")
	}

	var ks KeystoreJSON
	if err := json.Unmarshal(data, &ks); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal keystore JSON")
	}

	return &ks, nil
}

// Decrypt returns the secret seed stored in keystore
func (s *service) Decrypt(ctx context.Context, ks *KeystoreJSON, password string) (string, error) {
	seed, err := decryptSeed(ks, password)
	if err != nil {
		util.LogFromContext(ctx).Debug().Err(err).Str("keystore_id", ks.ID).Msg("Failed to decrypt keystore")
		return "", errors.Wrap(err, "failed to decrypt keystore")
	}

	return seed, nil
}
