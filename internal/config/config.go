package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr     string // API bind address, e.g., "127.0.0.1:8080" (Windows) or ":8080" (Docker)
	LogDir   string // rotated log file directory; empty logs to stderr only
	LogLevel string // debug, info, warn, error

	// Store selection: Postgres if DatabaseURL is set, else SQLite if
	// SQLitePath is set, else in-memory.
	DatabaseURL   string
	SQLitePath    string
	EndpointsFile string // optional YAML seed

	PublicAPIKeys  []string
	AdminAPIKeys   []string
	AllowedOrigins []string
	PublicRPM      int
	PublicBurst    int
	AdminRPM       int
	AdminBurst     int

	CheckInterval       time.Duration // 0 disables the periodic loop
	HTTPTimeout         time.Duration
	MaxConcurrentChecks int
	ProbeUserAgent      string
	ProbeDNSDiagnostics bool

	NotifyEnabled   bool
	NotifyTimeout   time.Duration
	SlackWebhookURL string
	ResendAPIKey    string
	NotifyFrom      string
}

func FromEnv() Config {
	// Bind address (Windows-friendly default)
	addr := os.Getenv("ADDR")
	if addr == "" {
		addr = os.Getenv("API_ADDR")
	}
	if addr == "" {
		addr = "127.0.0.1:8080"
	}

	return Config{
		Addr:     addr,
		LogDir:   envString("LOG_DIR", "logs"),
		LogLevel: envString("LOG_LEVEL", "info"),

		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SQLitePath:    os.Getenv("SQLITE_PATH"),
		EndpointsFile: os.Getenv("ENDPOINTS_FILE"),

		PublicAPIKeys:  envList("PUBLIC_API_KEYS"),
		AdminAPIKeys:   envList("ADMIN_API_KEYS"),
		AllowedOrigins: envList("ALLOWED_ORIGINS"),
		PublicRPM:      envInt("PUBLIC_RPM", 60, 1),
		PublicBurst:    envInt("PUBLIC_BURST", 20, 1),
		AdminRPM:       envInt("ADMIN_RPM", 30, 1),
		AdminBurst:     envInt("ADMIN_BURST", 10, 1),

		CheckInterval:       envMillis("CHECK_INTERVAL_MS", 60*time.Second),
		HTTPTimeout:         envMillis("HTTP_TIMEOUT_MS", 10*time.Second),
		MaxConcurrentChecks: envInt("MAX_CONCURRENT_CHECKS", 16, 1),
		ProbeUserAgent:      os.Getenv("PROBE_USER_AGENT"),
		ProbeDNSDiagnostics: envBool("PROBE_DNS_DIAGNOSTICS", false),

		NotifyEnabled:   envBool("NOTIFY_ENABLED", true),
		NotifyTimeout:   envMillis("NOTIFY_TIMEOUT_MS", 10*time.Second),
		SlackWebhookURL: os.Getenv("SLACK_WEBHOOK_URL"),
		ResendAPIKey:    os.Getenv("RESEND_API_KEY"),
		NotifyFrom:      os.Getenv("NOTIFY_FROM"),
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envInt returns def when the variable is unset, unparsable or below floor.
func envInt(key string, def, floor int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= floor {
			return n
		}
	}
	return def
}

// envMillis reads a non-negative millisecond count.
func envMillis(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// envList splits a comma separated list, dropping blanks.
func envList(key string) []string {
	var out []string
	for _, p := range strings.Split(os.Getenv(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
