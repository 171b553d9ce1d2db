package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hamed0406/uptimewatch/internal/apiclient"
	"github.com/hamed0406/uptimewatch/internal/cli/style"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List endpoints with status and 30-day uptime",
	Aliases: []string{"ls", "status"},
	Args:    cobra.NoArgs,
	RunE:    runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext(cmd)
	defer cancel()

	eps, err := client.ListEndpoints(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch endpoints: %w", err)
	}
	if len(eps) == 0 {
		fmt.Println(style.DimText.Render("No endpoints yet. Add one with: uptimectl add https://example.com"))
		return nil
	}

	fmt.Println(style.Banner.Render("UPTIME") + style.Subtitle.Render(fmt.Sprintf("  %d endpoint(s)", len(eps))))

	header := fmt.Sprintf("  %-2s  %-36s %-20s %-8s %-9s %-9s %-10s %s",
		"", "ID", "NAME", "STATUS", "UPTIME", "LATENCY", "CHECKED", "URL")
	fmt.Println(style.TableHeader.Render(header))
	for _, ep := range eps {
		printRow(ep)
	}
	fmt.Println()
	return nil
}

func printRow(ep apiclient.EndpointView) {
	status := string(ep.Status)
	if !ep.Active {
		status = "paused"
	}
	up := fmt.Sprintf("%.2f%%", ep.Stats.UptimePercentage)
	fmt.Printf("  %s  %s %s %s %s %s %s %s\n",
		style.Dot(string(ep.Status)),
		style.DimText.Render(padRight(string(ep.ID), 36)),
		style.Bold.Render(padRight(truncate(ep.Name, 20), 20)),
		style.Status(padRight(status, 8)),
		style.Uptime(ep.Stats.UptimePercentage, padRight(up, 9)),
		padRight(latency(ep.ResponseTimeMS), 9),
		style.DimText.Render(padRight(ago(ep.LastChecked), 10)),
		ep.URL,
	)
}
