package probe

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-invoker/internal/config"
	"github/chapool/go-invoker/internal/util/command"
)

const livenessTimeout = 5 * time.Second

func newLiveness() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "liveness",
		Short: "Runs liveness probes",
		Long:  "Checks that a running server answers on its management endpoint. Exits 1 when not.",
		Run: func(cmd *cobra.Command, _ []string) {
			verbose, err := cmd.Flags().GetBool(verboseFlag)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to parse args")
			}

			livenessCmdFunc(verbose)
		},
	}

	cmd.Flags().BoolP(verboseFlag, "v", false, "Show verbose output.")

	return cmd
}

func livenessCmdFunc(verbose bool) {
	cfg := config.DefaultServiceConfigFromEnv()
	command.SetupLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), livenessTimeout)
	defer cancel()

	url := managementURL(cfg.Echo.ListenAddress, "/-/healthy")
	if err := probeURL(ctx, url); err != nil {
		if verbose {
			log.Error().Err(err).Str("url", url).Msg("Liveness probe failed")
		}
		os.Exit(1)
	}

	if verbose {
		log.Info().Str("url", url).Msg("Liveness probe succeeded")
	}
}

func managementURL(listenAddress string, path string) string {
	host := listenAddress
	if strings.HasPrefix(host, ":") {
		host = "127.0.0.1" + host
	}
	return fmt.Sprintf("http://%s%s", host, path)
}

func probeURL(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create probe request")
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "probe request failed")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return errors.Errorf("unexpected status %d", res.StatusCode)
	}

	return nil
}
