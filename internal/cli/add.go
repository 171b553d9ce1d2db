package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hamed0406/uptimewatch/internal/apiclient"
	"github.com/hamed0406/uptimewatch/internal/cli/style"
)

var (
	addName   string
	addEmail  string
	addPaused bool
)

var addCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Start monitoring a URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addName, "name", "", "display name (defaults to the host)")
	addCmd.Flags().StringVar(&addEmail, "email", "", "address notified on state changes")
	addCmd.Flags().BoolVar(&addPaused, "paused", false, "register without probing yet")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	raw := strings.TrimSpace(args[0])
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	active := !addPaused
	in := apiclient.EndpointInput{URL: &raw, Active: &active}
	if addName != "" {
		in.Name = &addName
	}
	if addEmail != "" {
		in.Email = &addEmail
	}

	ctx, cancel := cmdContext(cmd)
	defer cancel()
	ep, err := client.AddEndpoint(ctx, in)
	if err != nil {
		return fmt.Errorf("add %s: %w", raw, err)
	}
	fmt.Println(style.SuccessBox.Render(fmt.Sprintf("Added %s (%s)\nid: %s", ep.Name, ep.URL, ep.ID)))
	return nil
}
