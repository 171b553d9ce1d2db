package domain

import (
	"net"
	"net/mail"
	"net/url"
	"strings"
)

// ValidHTTPURL accepts absolute http(s) URLs with a host.
func ValidHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	s := strings.ToLower(u.Scheme)
	return (s == "http" || s == "https") && u.Hostname() != ""
}

// NormalizeURL lowercases scheme and host, drops the default port, a bare
// "/" path and any fragment, so equivalent URLs compare equal. Every path
// that stores an endpoint URL goes through it.
func NormalizeURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	u.Scheme = strings.ToLower(u.Scheme)

	host, port := strings.ToLower(u.Hostname()), u.Port()
	if (u.Scheme == "http" && port == "80") || (u.Scheme == "https" && port == "443") {
		port = ""
	}
	switch {
	case port != "":
		u.Host = net.JoinHostPort(host, port)
	case strings.Contains(host, ":"):
		u.Host = "[" + host + "]"
	default:
		u.Host = host
	}

	if u.Path == "/" {
		u.Path = ""
		u.RawPath = ""
	}
	u.Fragment = ""
	return u.String()
}

// ValidEmail accepts a bare address, no display name.
func ValidEmail(s string) bool {
	a, err := mail.ParseAddress(s)
	return err == nil && a.Address == s
}
