package probe

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/go-invoker/internal/util/command"
)

const (
	verboseFlag string = "verbose"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("probe",
		newLiveness(),
		newReadiness(),
	)
}

var (
	errNotReady        = errors.New("not ready")
	errNetworkMismatch = errors.New("network passphrase mismatch")
)
