package api

import (
	"github.com/dropbox/godropbox/time2"
	"github/chapool/go-invoker/internal/config"
	"github/chapool/go-invoker/internal/contract/fees"
	"github/chapool/go-invoker/internal/contract/invoke"
	"github/chapool/go-invoker/internal/contract/keystore"
	"github/chapool/go-invoker/internal/contract/rpc"
	"github/chapool/go-invoker/internal/contract/signer"
	"github/chapool/go-invoker/internal/contract/txbuild"
	"github/chapool/go-invoker/internal/metrics"
)

// PROVIDERS - define here only providers that for various reasons (e.g. cyclic dependency) can't live in their corresponding packages
// or for wrapping providers that only accept sub-configs to prevent the requirement for defining providers for sub-configs.
// https://github.com/google/wire/blob/main/docs/guide.md#defining-providers

// NewClock returns the default wall clock. Tests replace it with a mock.
//
//nolint:ireturn
func NewClock() time2.Clock {
	return time2.DefaultClock
}

func NewRPCClient(cfg config.Server) (*rpc.Client, error) {
	return rpc.NewClient(rpc.Config{
		URL:       cfg.RPC.URL,
		Timeout:   cfg.RPC.RequestTimeout,
		RateLimit: cfg.RPC.RateLimit,
		Burst:     cfg.RPC.Burst,
	})
}

func NewNetwork(cfg config.Server) txbuild.Network {
	return txbuild.Network{
		Passphrase: cfg.Network.Passphrase,
		BaseFee:    cfg.Network.BaseFee,
	}
}

//nolint:ireturn
func NewSignerService() SignerService {
	return signer.NewService()
}

//nolint:ireturn
func NewFeeService(cfg config.Server, client *rpc.Client, network txbuild.Network, clock time2.Clock) FeeService {
	return fees.NewService(client, client, network, clock, cfg.Invoke.CallTimeout)
}

//nolint:ireturn
func NewInvokeService(
	cfg config.Server,
	client *rpc.Client,
	network txbuild.Network,
	signers SignerService,
	estimator FeeService,
	m *metrics.Service,
	clock time2.Clock,
) InvokeService {
	return invoke.NewService(invoke.Config{
		Network:        network,
		DefaultTimeout: cfg.Invoke.DefaultTimeout,
		CallTimeout:    cfg.Invoke.CallTimeout,
		PollStep:       cfg.Invoke.PollStep,
		PollMaxDelay:   cfg.Invoke.PollMaxDelay,
		RetryNotFound:  cfg.Invoke.RetryNotFound,
	}, client, signers, estimator, m, clock)
}

//nolint:ireturn
func NewKeystoreService() KeystoreService {
	return keystore.NewService(nil)
}
