package config

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/stellar/go-stellar-sdk/network"
	"github.com/subosito/gotenv"
	"github/chapool/go-invoker/internal/util"
)

type RPC struct {
	URL            string
	RequestTimeout time.Duration
	// RateLimit is in requests per second, 0 disables throttling.
	RateLimit float64
	Burst     int
}

type Network struct {
	Passphrase string
	BaseFee    int64
}

type Invoke struct {
	DefaultTimeout time.Duration
	CallTimeout    time.Duration
	PollStep       time.Duration
	PollMaxDelay   time.Duration
	// RetryNotFound keeps polling on NOT_FOUND, which the RPC endpoint
	// reports until it has ingested a submitted transaction. Disable it to
	// treat NOT_FOUND as a terminal failure.
	RetryNotFound bool
}

type LoggerServer struct {
	Level              zerolog.Level
	PrettyPrintConsole bool
}

type EchoServer struct {
	ListenAddress string
}

type Server struct {
	RPC     RPC
	Network Network
	Invoke  Invoke
	Logger  LoggerServer
	Echo    EchoServer

	// SourceSecret is the default signing seed of the CLI.
	SourceSecret string `json:"-"`
}

// DefaultServiceConfigFromEnv returns the server config as parsed from environment variables
// and their respective defaults defined below.
// An optional .env file in the working directory is loaded first, already set
// variables take precedence.
func DefaultServiceConfigFromEnv() Server {
	if err := gotenv.Load(); err == nil {
		log.Debug().Msg("Loaded environment from .env")
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("rpc.url", "http://127.0.0.1:8000/soroban/rpc")
	v.SetDefault("rpc.request_timeout", 30*time.Second)
	v.SetDefault("rpc.rate_limit", 0)
	v.SetDefault("rpc.burst", 10)
	v.SetDefault("network.passphrase", network.TestNetworkPassphrase)
	v.SetDefault("network.base_fee", 100)
	v.SetDefault("invoke.default_timeout", 60*time.Second)
	v.SetDefault("invoke.call_timeout", 30*time.Second)
	v.SetDefault("invoke.poll_step", 2*time.Second)
	v.SetDefault("invoke.poll_max_delay", 8*time.Second)
	// NOT_FOUND is non-terminal by default, see Invoke.RetryNotFound
	v.SetDefault("invoke.retry_not_found", true)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.pretty_print_console", false)
	v.SetDefault("management.listen_address", ":8081")
	v.SetDefault("invoker.source_secret", "")

	return Server{
		RPC: RPC{
			URL:            v.GetString("rpc.url"),
			RequestTimeout: v.GetDuration("rpc.request_timeout"),
			RateLimit:      v.GetFloat64("rpc.rate_limit"),
			Burst:          v.GetInt("rpc.burst"),
		},
		Network: Network{
			Passphrase: v.GetString("network.passphrase"),
			BaseFee:    v.GetInt64("network.base_fee"),
		},
		Invoke: Invoke{
			DefaultTimeout: v.GetDuration("invoke.default_timeout"),
			CallTimeout:    v.GetDuration("invoke.call_timeout"),
			PollStep:       v.GetDuration("invoke.poll_step"),
			PollMaxDelay:   v.GetDuration("invoke.poll_max_delay"),
			RetryNotFound:  v.GetBool("invoke.retry_not_found"),
		},
		Logger: LoggerServer{
			Level:              util.LogLevelFromString(v.GetString("logger.level"), zerolog.InfoLevel),
			PrettyPrintConsole: v.GetBool("logger.pretty_print_console"),
		},
		Echo: EchoServer{
			ListenAddress: v.GetString("management.listen_address"),
		},
		SourceSecret: v.GetString("invoker.source_secret"),
	}
}
