package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hamed0406/uptimewatch/internal/cli/style"
)

var removeCmd = &cobra.Command{
	Use:     "remove <id>",
	Short:   "Stop monitoring an endpoint and drop its history",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext(cmd)
		defer cancel()
		if err := client.DeleteEndpoint(ctx, args[0]); err != nil {
			return fmt.Errorf("remove %s: %w", args[0], err)
		}
		fmt.Println(style.SuccessBox.Render("Removed " + args[0]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
}
