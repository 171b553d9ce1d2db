package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hamed0406/uptimewatch/internal/apiclient"
	"github.com/hamed0406/uptimewatch/internal/cli/style"
)

var pauseCmd = &cobra.Command{
	Use:   "pause <id>",
	Short: "Exclude an endpoint from probe cycles",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setActive(cmd, args[0], false) },
}

var resumeCmd = &cobra.Command{
	Use:   "resume <id>",
	Short: "Include a paused endpoint in probe cycles again",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setActive(cmd, args[0], true) },
}

func init() {
	rootCmd.AddCommand(pauseCmd, resumeCmd)
}

func setActive(cmd *cobra.Command, id string, active bool) error {
	ctx, cancel := cmdContext(cmd)
	defer cancel()
	ep, err := client.UpdateEndpoint(ctx, id, apiclient.EndpointInput{Active: &active})
	if err != nil {
		return fmt.Errorf("update %s: %w", id, err)
	}
	verb := "Paused"
	if ep.Active {
		verb = "Resumed"
	}
	fmt.Println(style.SuccessBox.Render(fmt.Sprintf("%s %s (%s)", verb, ep.Name, ep.URL)))
	return nil
}
