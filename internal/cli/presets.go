package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/timegrid/pkg/config"
)

// presetsCommand lists the page presets accepted by --target.
func (c *CLI) presetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List page presets for --target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), presetsTable(config.Presets(), cfg.Target))
			fmt.Fprintln(cmd.OutOrStdout(), StyleDim.Render("* configured target"))
			return nil
		},
	}
}
