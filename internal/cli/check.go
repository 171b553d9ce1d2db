package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hamed0406/uptimewatch/internal/cli/style"
)

var checkCmd = &cobra.Command{
	Use:   "check [id]",
	Short: "Probe one endpoint now, or run a full cycle",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext(cmd)
	defer cancel()

	if len(args) == 1 {
		res, err := client.Check(ctx, args[0])
		if err != nil {
			return fmt.Errorf("check %s: %w", args[0], err)
		}
		fmt.Printf("%s %s", style.Dot(string(res.Status)), style.Status(string(res.Status)))
		if res.HTTPStatus != 0 {
			fmt.Printf("  HTTP %d", res.HTTPStatus)
		}
		fmt.Printf("  %s", latency(res.ResponseTimeMS))
		if res.Reason != "" {
			fmt.Printf("  %s", style.DimText.Render(res.Reason))
		}
		fmt.Println()
		if res.Transition != "none" {
			fmt.Println(style.Warning.Render("transition: " + res.Transition))
		}
		return nil
	}

	rep, err := client.RunCycle(ctx)
	if err != nil {
		return fmt.Errorf("run cycle: %w", err)
	}
	msg := fmt.Sprintf("Probed %d/%d endpoint(s) in %d ms\ndown: %d  failed: %d  skipped: %d",
		rep.Probed, rep.Endpoints, rep.DurationMS, rep.Down, rep.Failed, rep.Skipped)
	if rep.Down > 0 || rep.Failed > 0 {
		fmt.Println(style.ErrorBox.Render(msg))
		return nil
	}
	fmt.Println(style.SuccessBox.Render(msg))
	return nil
}
