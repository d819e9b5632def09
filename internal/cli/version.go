package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/aimrepo/pkg/aimrepo"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the aim version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.jsonMode {
				return writeJSON(cmd, map[string]string{"version": aimrepo.Version, "module": aimrepo.ModulePath})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "aim v%s\nmodule: %s\n", aimrepo.Version, aimrepo.ModulePath)
			return nil
		},
	}
}
