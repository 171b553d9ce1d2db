package cli

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/hamed0406/uptimewatch/internal/apiclient"
)

var (
	apiURL string
	apiKey string
	client *apiclient.Client
)

var rootCmd = &cobra.Command{
	Use:   "uptimectl",
	Short: "Manage and inspect monitored endpoints",
	Long: `uptimectl talks to a running monitord.

List endpoints with their 30-day uptime, add or pause targets, look at
recent probe ticks and downtime, and trigger a probe cycle on demand.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		client = apiclient.New(apiURL, apiKey)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	defaultURL := os.Getenv("UPTIME_API")
	if defaultURL == "" {
		defaultURL = os.Getenv("API_BASE")
	}
	if defaultURL == "" {
		defaultURL = "http://localhost:8080"
	}
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", defaultURL, "monitord API URL")
	rootCmd.PersistentFlags().StringVar(&apiKey, "key", os.Getenv("UPTIME_API_KEY"), "API key (admin key for write commands)")
}

func cmdContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 2*time.Minute)
}
