package repo

import (
	"errors"
	"fmt"

	"github.com/hamed0406/uptimewatch/internal/domain"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateURL       = errors.New("endpoint url already registered")
	ErrOpenIntervalExists = errors.New("open downtime interval already exists")
	ErrInvariantViolation = errors.New("downtime invariant violated")
)

// InvariantError reports more than one open downtime interval for an
// endpoint. It needs data repair and is never merged silently.
type InvariantError struct {
	EndpointID domain.EndpointID
	Open       int
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("endpoint %s has %d open downtime intervals", e.EndpointID, e.Open)
}

func (e *InvariantError) Is(target error) bool { return target == ErrInvariantViolation }
