package contract

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-invoker/internal/api"
	"github/chapool/go-invoker/internal/config"
	"github/chapool/go-invoker/internal/contract/invoke"
	"github/chapool/go-invoker/internal/util/command"
)

const (
	timeoutFlag       = "timeout"
	sourceAccountFlag = "source-account"
	keystoreFlag      = "keystore"
)

// ErrInvocationFailed is returned when the transaction was confirmed as failed.
var ErrInvocationFailed = errors.New("invocation failed")

func NewInvoke() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoke <contract-id> <method> [args...]",
		Short: "Invokes a contract method and waits for confirmation",
		Long: `Invokes a contract method and waits for confirmation.

Arguments are JSON values or prefixed literals:
  sym:transfer  addr:G...  xdr:<base64>  bytes:<hex>  str:text
  u32:1  i32:-1  u64:1  i64:-1  u128:1  i128:-1  u256:1  i256:-1

The signing secret is read from --keystore (password prompt), from
INVOKER_SOURCE_SECRET or interactively. The result is printed as JSON.`,
		Args: cobra.MinimumNArgs(2), //nolint:mnd // contract id and method
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()

			timeout, err := flags.GetDuration(timeoutFlag)
			if err != nil {
				return err
			}
			sourceAccount, err := flags.GetString(sourceAccountFlag)
			if err != nil {
				return err
			}
			keystorePath, err := flags.GetString(keystoreFlag)
			if err != nil {
				return err
			}

			params, err := ParseArgs(args[2:])
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg := config.DefaultServiceConfigFromEnv()

			return command.WithServer(ctx, cfg, func(ctx context.Context, s *api.Server) error {
				secret, err := ResolveSecret(ctx, s.Keystore, keystorePath, cfg.SourceSecret, PromptPassword)
				if err != nil {
					return err
				}

				res, err := s.Invoker.Invoke(ctx, args[0], args[1], params, invoke.Options{
					SourceSecret:  secret,
					SourceAccount: sourceAccount,
					Timeout:       timeout,
				})
				if err != nil {
					return err
				}

				if err := writeJSON(cmd, res); err != nil {
					return err
				}

				if !res.Success {
					log.Warn().Str("hash", res.Hash).Str("error", res.Error).Msg("Transaction failed on ledger")
					return errors.Wrap(ErrInvocationFailed, res.Error)
				}

				return nil
			})
		},
	}

	cmd.Flags().Duration(timeoutFlag, 0, "Confirmation timeout, defaults to INVOKE_DEFAULT_TIMEOUT.")
	cmd.Flags().String(sourceAccountFlag, "", "Source account (G...), defaults to the address of the signing secret.")
	cmd.Flags().String(keystoreFlag, "", "Path of an encrypted keystore file holding the signing secret.")

	return cmd
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	return errors.Wrap(enc.Encode(v), "failed to write result")
}
