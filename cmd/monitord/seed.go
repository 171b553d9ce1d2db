package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hamed0406/uptimewatch/internal/config"
	"github.com/hamed0406/uptimewatch/internal/domain"
	"github.com/hamed0406/uptimewatch/internal/repo"
)

// seedEndpoints upserts the endpoints file into the catalog, keyed by URL.
func seedEndpoints(ctx context.Context, logger *zap.Logger, catalog repo.EndpointCatalog, path string) error {
	entries, err := config.LoadEndpointsFile(path)
	if err != nil {
		return err
	}

	var created, updated int
	for _, s := range entries {
		cur, err := catalog.GetByURL(ctx, s.URL)
		if err != nil {
			return fmt.Errorf("lookup %s: %w", s.URL, err)
		}
		if cur == nil {
			e := &domain.Endpoint{Name: s.Name, URL: s.URL, NotifyEmail: s.Email, Active: s.IsActive()}
			if e.Name == "" {
				e.Name = s.URL
			}
			if err := catalog.Create(ctx, e); err != nil {
				return fmt.Errorf("create %s: %w", s.URL, err)
			}
			created++
			continue
		}

		if (s.Name == "" || cur.Name == s.Name) && cur.NotifyEmail == s.Email && cur.Active == s.IsActive() {
			continue
		}
		if s.Name != "" {
			cur.Name = s.Name
		}
		cur.NotifyEmail = s.Email
		cur.Active = s.IsActive()
		if err := catalog.Update(ctx, cur); err != nil {
			return fmt.Errorf("update %s: %w", s.URL, err)
		}
		updated++
	}

	logger.Info("endpoints_seeded",
		zap.String("file", path),
		zap.Int("entries", len(entries)),
		zap.Int("created", created),
		zap.Int("updated", updated))
	return nil
}
