package repo_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/hamed0406/uptimewatch/internal/repo"
	"github.com/hamed0406/uptimewatch/internal/repo/memory"
	pg "github.com/hamed0406/uptimewatch/internal/repo/postgres"
	"github.com/hamed0406/uptimewatch/internal/repo/sqlite"
)

// Compile-time interface satisfaction checks.
// Using external test package avoids import cycle.
func TestInterfaceSatisfaction(t *testing.T) {
	var _ repo.Store = memory.New()
	var _ repo.Store = (*pg.Store)(nil)
	var _ repo.Store = (*sqlite.Store)(nil)
}

func TestInvariantError_IsSentinel(t *testing.T) {
	err := fmt.Errorf("find open: %w", &repo.InvariantError{EndpointID: "E1", Open: 2})
	if !errors.Is(err, repo.ErrInvariantViolation) {
		t.Fatalf("wrapped InvariantError should match ErrInvariantViolation")
	}
	var ie *repo.InvariantError
	if !errors.As(err, &ie) || ie.Open != 2 {
		t.Fatalf("errors.As failed: %+v", ie)
	}
}
