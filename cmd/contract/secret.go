package contract

import (
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/go-invoker/internal/contract/keystore"
	"golang.org/x/term"
)

// PromptFunc reads a secret from the user, without echoing it.
type PromptFunc func(prompt string) (string, error)

// ResolveSecret returns the signing seed: decrypted from keystorePath when
// set, else envSecret, else read interactively.
func ResolveSecret(ctx context.Context, ks keystore.Service, keystorePath string, envSecret string, prompt PromptFunc) (string, error) {
	if keystorePath != "" {
		file, err := ks.Load(ctx, keystorePath)
		if err != nil {
			return "", errors.Wrap(err, "failed to load keystore")
		}

		password, err := prompt(fmt.Sprintf("Enter password for keystore %s: ", file.Address))
		if err != nil {
			return "", errors.Wrap(err, "failed to read password")
		}

		seed, err := ks.Decrypt(ctx, file, password)
		if err != nil {
			return "", errors.Wrap(err, "failed to decrypt keystore (invalid password?)")
		}

		log.Debug().Str("address", file.Address).Msg("Using keystore signing secret")
		return seed, nil
	}

	if secret := strings.TrimSpace(envSecret); secret != "" {
		return secret, nil
	}

	secret, err := prompt("Enter source secret seed: ")
	if err != nil {
		return "", errors.Wrap(err, "failed to read secret")
	}

	return strings.TrimSpace(secret), nil
}

// PromptPassword prompts for password input (hides input)
//
//nolint:forbidigo // Password input requires direct terminal I/O
func PromptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	// Read password from terminal (hides input)
	passwordBytes, err := term.ReadPassword(syscall.Stdin)
	if err != nil {
		return "", errors.Wrap(err, "failed to read password from terminal")
	}

	fmt.Fprintln(os.Stderr) // New line after password input

	return string(passwordBytes), nil
}
