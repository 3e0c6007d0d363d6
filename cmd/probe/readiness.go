package probe

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-invoker/internal/api"
	"github/chapool/go-invoker/internal/config"
	"github/chapool/go-invoker/internal/contract/remote"
	"github/chapool/go-invoker/internal/contract/rpc"
	"github/chapool/go-invoker/internal/util/command"
)

func newReadiness() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "readiness",
		Short: "Runs readiness probes",
		Long:  "Checks that all components initialize and the ledger RPC endpoint reports healthy. Exits 1 when not.",
		Run: func(cmd *cobra.Command, _ []string) {
			verbose, err := cmd.Flags().GetBool(verboseFlag)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to parse args")
			}

			readinessCmdFunc(verbose)
		},
	}

	cmd.Flags().BoolP(verboseFlag, "v", false, "Show verbose output.")

	return cmd
}

func readinessCmdFunc(verbose bool) {
	cfg := config.DefaultServiceConfigFromEnv()

	err := command.WithServer(context.Background(), cfg, func(ctx context.Context, s *api.Server) error {
		return runReadiness(ctx, s, verbose)
	})
	if err != nil {
		if verbose {
			log.Error().Err(err).Msg("Readiness probe failed")
		}
		os.Exit(1)
	}
}

func runReadiness(ctx context.Context, s *api.Server, verbose bool) error {
	if !s.Ready() {
		return errNotReady
	}

	health, err := remote.Call(ctx, "getHealth", livenessTimeout, func(ctx context.Context) (*rpc.Health, error) {
		return s.RPC.GetHealth(ctx)
	})
	if err != nil {
		return err
	}

	network, err := remote.Call(ctx, "getNetwork", livenessTimeout, func(ctx context.Context) (*rpc.Network, error) {
		return s.RPC.GetNetwork(ctx)
	})
	if err != nil {
		return err
	}

	if network.Passphrase != s.Config.Network.Passphrase {
		log.Warn().
			Str("configured", s.Config.Network.Passphrase).
			Str("endpoint", network.Passphrase).
			Msg("Network passphrase mismatch")
		return errNetworkMismatch
	}

	if verbose {
		log.Info().
			Str("status", health.Status).
			Uint32("latest_ledger", health.LatestLedger).
			Msg("Readiness probe succeeded")
	}

	if health.Status != "healthy" {
		return errNotReady
	}

	return nil
}
