package contract

import (
	"context"

	"github.com/spf13/cobra"
	"github/chapool/go-invoker/internal/api"
	"github/chapool/go-invoker/internal/config"
	"github/chapool/go-invoker/internal/util/command"
)

func NewFees() *cobra.Command {
	return &cobra.Command{
		Use:   "fees <contract-id> <method> [args...]",
		Short: "Estimates the fee of a contract call",
		Long: `Estimates the fee of a contract call by simulating it.

Nothing is signed or submitted. Arguments use the same syntax as invoke.
Prints inclusion, resource and total fee in stroops as JSON.`,
		Args: cobra.MinimumNArgs(2), //nolint:mnd // contract id and method
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := ParseArgs(args[2:])
			if err != nil {
				return err
			}

			cfg := config.DefaultServiceConfigFromEnv()

			return command.WithServer(cmd.Context(), cfg, func(ctx context.Context, s *api.Server) error {
				est, err := s.Invoker.EstimateFees(ctx, args[0], args[1], params)
				if err != nil {
					return err
				}

				return writeJSON(cmd, est)
			})
		},
	}
}
