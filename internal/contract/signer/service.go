// Package signer turns secret seeds into signing credentials.
package signer

import (
	"context"

	"github.com/pkg/errors"
	"github/chapool/go-invoker/internal/util"
)

type service struct{}

// NewService creates a new signer Service
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService() Service {
	return &service{}
}

// FromSecret parses an S... secret seed
func (s *service) FromSecret(ctx context.Context, secret string) (Credential, error) {
	cred, err := parseSeed(secret)
	if err != nil {
		// the secret itself is never logged
		util.LogFromContext(ctx).Debug().Msg("Rejected malformed signing secret")
		return nil, err
	}

	return cred, nil
}

// Generate creates a credential from a fresh random seed
func (s *service) Generate(ctx context.Context) (Credential, string, error) {
	cred, seed, err := randomSeed()
	if err != nil {
		return nil, "", errors.Wrap(err, "failed to generate keypair")
	}

	util.LogFromContext(ctx).Info().Str("address", cred.Address()).Msg("Generated signing keypair")

	return cred, seed, nil
}
