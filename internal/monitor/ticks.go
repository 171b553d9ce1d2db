package monitor

import (
	"sync"

	"github.com/hamed0406/uptimewatch/internal/domain"
)

// MaxTicks is how many probe outcomes are kept per endpoint.
const MaxTicks = 30

// TickHistory is a bounded, in-memory timeline of recent probe outcomes per
// endpoint. It is never persisted.
type TickHistory struct {
	capacity int
	m        sync.Map // domain.EndpointID -> *tickRing
}

type tickRing struct {
	mu    sync.Mutex
	ticks []domain.Tick
}

// NewTickHistory returns a history keeping capacity ticks per endpoint;
// capacity <= 0 means MaxTicks.
func NewTickHistory(capacity int) *TickHistory {
	if capacity <= 0 {
		capacity = MaxTicks
	}
	return &TickHistory{capacity: capacity}
}

func (h *TickHistory) Append(id domain.EndpointID, t domain.Tick) {
	v, _ := h.m.LoadOrStore(id, &tickRing{})
	r := v.(*tickRing)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks = append(r.ticks, t)
	if over := len(r.ticks) - h.capacity; over > 0 {
		// copy down so the backing array does not grow without bound
		n := copy(r.ticks, r.ticks[over:])
		r.ticks = r.ticks[:n]
	}
}

// Recent returns a copy of the endpoint's ticks, oldest first.
func (h *TickHistory) Recent(id domain.EndpointID) []domain.Tick {
	v, ok := h.m.Load(id)
	if !ok {
		return []domain.Tick{}
	}
	r := v.(*tickRing)
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Tick, len(r.ticks))
	copy(out, r.ticks)
	return out
}

func (h *TickHistory) Forget(id domain.EndpointID) { h.m.Delete(id) }
