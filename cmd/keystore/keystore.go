package keystore

import (
	"github.com/spf13/cobra"
	"github/chapool/go-invoker/internal/util/command"
)

const (
	importFlag        = "import"
	minPasswordLength = 8
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("keystore",
		newCreate(),
		newAddress(),
	)
}
