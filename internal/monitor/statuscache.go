package monitor

import (
	"sync"

	"github.com/hamed0406/uptimewatch/internal/domain"
)

// StatusCache holds the last observed status per endpoint. It is process
// scoped and exists only to detect transitions; a restart starts empty.
type StatusCache struct {
	m sync.Map // domain.EndpointID -> domain.Status
}

func NewStatusCache() *StatusCache { return &StatusCache{} }

// Get returns the cached status, or unknown when the endpoint has none.
func (c *StatusCache) Get(id domain.EndpointID) domain.Status {
	if v, ok := c.m.Load(id); ok {
		return v.(domain.Status)
	}
	return domain.StatusUnknown
}

// Swap stores next and returns the previous status.
func (c *StatusCache) Swap(id domain.EndpointID, next domain.Status) domain.Status {
	prev, loaded := c.m.Swap(id, next)
	if !loaded {
		return domain.StatusUnknown
	}
	return prev.(domain.Status)
}

func (c *StatusCache) Forget(id domain.EndpointID) { c.m.Delete(id) }

type Transition int

const (
	TransitionNone Transition = iota
	TransitionDown
	TransitionRecovered
)

func (t Transition) String() string {
	switch t {
	case TransitionDown:
		return "down"
	case TransitionRecovered:
		return "recovered"
	default:
		return "none"
	}
}

// DetectTransition reports an edge into down (from anything but down) or a
// recovery from down to up. Sustained states are TransitionNone.
func DetectTransition(prev, next domain.Status) Transition {
	switch {
	case prev == domain.StatusDown && next == domain.StatusUp:
		return TransitionRecovered
	case prev != domain.StatusDown && next == domain.StatusDown:
		return TransitionDown
	default:
		return TransitionNone
	}
}
