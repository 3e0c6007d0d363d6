package signer

import (
	"context"

	"github.com/pkg/errors"
	"github.com/stellar/go-stellar-sdk/txnbuild"
)

// ErrInvalidCredential is returned for secrets that are not valid seeds.
var ErrInvalidCredential = errors.New("invalid signing credential")

// Credential is a signing capability bound to one account. Implementations
// never expose the secret through String or logging.
type Credential interface {
	// Address returns the public G... address of the credential
	Address() string
	// SignEnvelope signs tx for the network identified by passphrase
	SignEnvelope(tx *txnbuild.Transaction, passphrase string) (*txnbuild.Transaction, error)
}

// Service provides signing credentials
type Service interface {
	// FromSecret parses an S... secret seed
	FromSecret(ctx context.Context, secret string) (Credential, error)

	// Generate creates a credential from a fresh random seed and returns it
	// together with the seed
	Generate(ctx context.Context) (Credential, string, error)
}
