package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hamed0406/uptimewatch/internal/domain"
)

// SeedEndpoint is one entry of the endpoints file.
type SeedEndpoint struct {
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	Email  string `yaml:"email"`
	Active *bool  `yaml:"active"` // defaults to true
}

type seedFile struct {
	Endpoints []SeedEndpoint `yaml:"endpoints"`
}

// LoadEndpointsFile parses and validates a YAML file of the form below.
// URLs come back normalized, as the API stores them.
//
//
//	endpoints:
//	  - name: Example
//	    url: https://example.com
//	    email: ops@example.com
//	    active: true
func LoadEndpointsFile(path string) ([]SeedEndpoint, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read endpoints file: %w", err)
	}
	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse endpoints file %s: %w", path, err)
	}
	for i := range f.Endpoints {
		e := &f.Endpoints[i]
		switch {
		case strings.TrimSpace(e.URL) == "":
			return nil, fmt.Errorf("endpoints file %s: entry %d has no url", path, i)
		case !domain.ValidHTTPURL(e.URL):
			return nil, fmt.Errorf("endpoints file %s: entry %d: %q is not an absolute http(s) URL", path, i, e.URL)
		}
		e.URL = domain.NormalizeURL(e.URL)
		e.Email = strings.TrimSpace(e.Email)
		if e.Email != "" && !domain.ValidEmail(e.Email) {
			return nil, fmt.Errorf("endpoints file %s: entry %d: invalid email %q", path, i, e.Email)
		}
	}
	return f.Endpoints, nil
}

// IsActive reports the entry's active flag, true when omitted.
func (e SeedEndpoint) IsActive() bool { return e.Active == nil || *e.Active }
