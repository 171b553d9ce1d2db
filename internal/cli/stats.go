package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hamed0406/uptimewatch/internal/cli/style"
)

var statsCmd = &cobra.Command{
	Use:   "stats <id>",
	Short: "Show 30-day uptime and recent downtime for an endpoint",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx, cancel := cmdContext(cmd)
	defer cancel()

	ep, err := client.GetEndpoint(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to fetch endpoint: %w", err)
	}

	fmt.Println(style.Banner.Render(ep.Name) + style.Subtitle.Render("  "+ep.URL))
	fmt.Println(style.KV("status", style.Status(string(ep.Status))))
	fmt.Println(style.KV("uptime (30d)", style.Uptime(ep.Stats.UptimePercentage, fmt.Sprintf("%.3f%%", ep.Stats.UptimePercentage))))
	fmt.Println(style.KV("downtime", humanMS(ep.Stats.TotalDowntimeMS)))
	fmt.Println(style.KV("incidents", fmt.Sprintf("%d", ep.Stats.DowntimeCount)))
	fmt.Println(style.KV("latency", latency(ep.ResponseTimeMS)))
	fmt.Println(style.KV("last checked", ago(ep.LastChecked)))
	if ep.NotifyEmail != "" {
		fmt.Println(style.KV("notify", ep.NotifyEmail))
	}

	if len(ep.RecentDowntime) == 0 {
		return nil
	}
	fmt.Println()
	fmt.Println(style.TableHeader.Render(fmt.Sprintf("  %-20s %-12s %s", "STARTED", "DURATION", "REASON")))
	now := time.Now()
	for _, d := range ep.RecentDowntime {
		dur := humanMS(d.Duration(now).Milliseconds())
		if d.Open() {
			dur = style.Down.Render(padRight(dur+" (open)", 12))
		} else {
			dur = padRight(dur, 12)
		}
		fmt.Printf("  %-20s %s %s\n", d.StartedAt.Local().Format("2006-01-02 15:04:05"), dur, style.DimText.Render(d.Reason))
	}
	return nil
}
