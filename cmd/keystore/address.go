package keystore

import (
	"fmt"

	"github.com/spf13/cobra"
	"github/chapool/go-invoker/internal/contract/keystore"
)

func newAddress() *cobra.Command {
	return &cobra.Command{
		Use:   "address <path>",
		Short: "Prints the account address stored in a keystore file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ks, err := keystore.NewService(nil).Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ks.Address)

			return nil
		},
	}
}
