package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/david/sochx/internal/auth"
)

func newHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-passcode <passcode>",
		Short: "Print the bcrypt hash to use as ADMIN_PASSCODE_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashPasscode(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}
