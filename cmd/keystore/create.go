package keystore

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-invoker/cmd/contract"
	"github/chapool/go-invoker/internal/config"
	"github/chapool/go-invoker/internal/contract/keystore"
	"github/chapool/go-invoker/internal/contract/signer"
	"github/chapool/go-invoker/internal/util/command"
)

func newCreate() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <path>",
		Short: "Creates an encrypted keystore file",
		Long: `Creates an encrypted keystore file holding a signing secret.

A fresh secret is generated unless --import is set, which stores the secret
from INVOKER_SOURCE_SECRET instead. Existing files are never overwritten.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			importSecret, err := cmd.Flags().GetBool(importFlag)
			if err != nil {
				return err
			}

			cfg := config.DefaultServiceConfigFromEnv()
			command.SetupLogger(cfg)

			return createKeystore(cmd, args[0], importSecret, cfg.SourceSecret, contract.PromptPassword)
		},
	}

	cmd.Flags().Bool(importFlag, false, "Store the secret from INVOKER_SOURCE_SECRET instead of generating one.")

	return cmd
}

func createKeystore(cmd *cobra.Command, path string, importSecret bool, envSecret string, prompt contract.PromptFunc) error {
	ctx := cmd.Context()
	signers := signer.NewService()

	var (
		cred signer.Credential
		seed string
		err  error
	)
	if importSecret {
		if envSecret == "" {
			return errors.New("INVOKER_SOURCE_SECRET is not set")
		}
		seed = envSecret
		cred, err = signers.FromSecret(ctx, seed)
	} else {
		log.Info().Msg("Generating new signing secret...")
		cred, seed, err = signers.Generate(ctx)
	}
	if err != nil {
		return err
	}

	password, err := prompt(fmt.Sprintf("Enter password for keystore (min %d characters): ", minPasswordLength))
	if err != nil {
		return errors.Wrap(err, "failed to read password")
	}

	if len(password) < minPasswordLength {
		return errors.Errorf("password must be at least %d characters", minPasswordLength)
	}

	// Confirm password
	passwordConfirm, err := prompt("Confirm password: ")
	if err != nil {
		return errors.Wrap(err, "failed to read password confirmation")
	}

	if password != passwordConfirm {
		return errors.New("passwords do not match")
	}

	if _, err := keystore.NewService(nil).Create(ctx, path, cred.Address(), seed, password); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cred.Address())

	return nil
}
