package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hamed0406/uptimewatch/internal/cli/style"
)

var ticksCmd = &cobra.Command{
	Use:   "ticks <id>",
	Short: "Show the recent probe timeline of an endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := cmdContext(cmd)
		defer cancel()

		ticks, err := client.Ticks(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to fetch ticks: %w", err)
		}
		if len(ticks) == 0 {
			fmt.Println(style.DimText.Render("No probes recorded since the daemon started."))
			return nil
		}

		var bar strings.Builder
		for _, t := range ticks {
			bar.WriteString(style.Dot(string(t.Status)))
		}
		first, last := ticks[0].At.Local(), ticks[len(ticks)-1].At.Local()
		fmt.Println(bar.String())
		fmt.Println(style.DimText.Render(fmt.Sprintf("%d probes, %s → %s",
			len(ticks), first.Format("15:04:05"), last.Format("15:04:05"))))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ticksCmd)
}
