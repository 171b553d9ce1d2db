// cmd/preflight/main.go
package main

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/hamed0406/uptimewatch/internal/config"
)

func main() {
	failed := false
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		failed = true
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	cfg := config.FromEnv()

	if len(cfg.AdminAPIKeys) == 0 {
		fail("ADMIN_API_KEYS is empty (admin routes are open).")
	}
	if len(cfg.PublicAPIKeys) == 0 {
		fail("PUBLIC_API_KEYS is empty (read routes are open).")
	}
	for _, name := range []string{"ADMIN_API_KEYS", "PUBLIC_API_KEYS"} {
		if strings.Contains(os.Getenv(name), " ") {
			warn(name + " contains spaces; use comma-separated with no spaces, e.g. key1,key2")
		}
	}

	ok("ADDR=" + cfg.Addr)

	switch {
	case cfg.DatabaseURL != "":
		if u, err := url.Parse(cfg.DatabaseURL); err != nil || (u.Scheme != "postgres" && u.Scheme != "postgresql") {
			fail("DATABASE_URL is not a postgres:// URL")
		} else {
			ok("DATABASE_URL present (postgres store)")
		}
	case cfg.SQLitePath != "":
		ok("SQLITE_PATH=" + cfg.SQLitePath + " (sqlite store)")
	default:
		warn("DATABASE_URL and SQLITE_PATH empty; endpoints and downtime are kept in memory only.")
	}

	if cfg.EndpointsFile != "" {
		if entries, err := config.LoadEndpointsFile(cfg.EndpointsFile); err != nil {
			fail(err.Error())
		} else {
			ok(fmt.Sprintf("ENDPOINTS_FILE has %d endpoint(s)", len(entries)))
		}
	}

	if cfg.CheckInterval == 0 {
		warn("CHECK_INTERVAL_MS=0; periodic probing is disabled.")
	} else {
		ok("probe every " + cfg.CheckInterval.String())
	}
	if cfg.HTTPTimeout >= cfg.CheckInterval && cfg.CheckInterval > 0 {
		warn("HTTP_TIMEOUT_MS is not shorter than CHECK_INTERVAL_MS; slow endpoints will overlap cycles.")
	}
	if cfg.HTTPTimeout < time.Second {
		warn("HTTP_TIMEOUT_MS under 1s will mark slow but healthy endpoints down.")
	}

	if cfg.NotifyEnabled && cfg.SlackWebhookURL == "" && cfg.ResendAPIKey == "" {
		warn("NOTIFY_ENABLED but neither SLACK_WEBHOOK_URL nor RESEND_API_KEY is set; transitions are only logged.")
	}

	if len(cfg.AllowedOrigins) == 0 {
		warn("ALLOWED_ORIGINS empty; any origin is allowed by CORS.")
	} else {
		ok("ALLOWED_ORIGINS=" + strings.Join(cfg.AllowedOrigins, ","))
	}

	if failed {
		os.Exit(1)
	}
	ok("preflight passed")
}
