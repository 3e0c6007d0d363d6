package signer

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/stellar/go-stellar-sdk/keypair"
	"github.com/stellar/go-stellar-sdk/txnbuild"
)

type keypairCredential struct {
	kp *keypair.Full
}

func parseSeed(secret string) (*keypairCredential, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.Wrap(ErrInvalidCredential, "empty secret")
	}

	kp, err := keypair.ParseFull(secret)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidCredential, "secret is not a valid seed")
	}

	return &keypairCredential{kp: kp}, nil
}

func randomSeed() (*keypairCredential, string, error) {
	kp, err := keypair.Random()
	if err != nil {
		return nil, "", err
	}

	return &keypairCredential{kp: kp}, kp.Seed(), nil
}

func (c *keypairCredential) Address() string { return c.kp.Address() }

func (c *keypairCredential) String() string { return c.kp.Address() }

func (c *keypairCredential) SignEnvelope(tx *txnbuild.Transaction, passphrase string) (*txnbuild.Transaction, error) {
	signed, err := tx.Sign(passphrase, c.kp)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign transaction")
	}

	return signed, nil
}
